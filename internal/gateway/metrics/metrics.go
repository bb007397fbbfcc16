package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the HTTP gateway.
type Metrics struct {
	RequestsAuthorized prometheus.Counter
	ExpiredResponses   prometheus.Counter
	RefreshAttempts    prometheus.Counter
	RefreshWaiters     prometheus.Counter
	RetriedRequests    prometheus.Counter
	SessionExpiries    prometheus.Counter
}

// New registers and returns gateway metrics collectors on the given
// registerer. Pass nil to use the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RequestsAuthorized: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_gateway_requests_authorized_total",
			Help: "Total number of outbound requests that had a bearer token attached",
		}),
		ExpiredResponses: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_gateway_expired_responses_total",
			Help: "Total number of authorization-failure responses observed",
		}),
		RefreshAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_gateway_refresh_attempts_total",
			Help: "Total number of refresh calls made to the identity server",
		}),
		RefreshWaiters: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_gateway_refresh_waiters_total",
			Help: "Total number of callers that awaited a coalesced in-flight refresh",
		}),
		RetriedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_gateway_retried_requests_total",
			Help: "Total number of requests re-issued after a successful refresh",
		}),
		SessionExpiries: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_gateway_session_expiries_total",
			Help: "Total number of refresh failures that forced a sign-out",
		}),
	}
}
