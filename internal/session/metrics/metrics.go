package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for session operations.
type Metrics struct {
	Logins            prometheus.Counter
	Registrations     prometheus.Counter
	Logouts           prometheus.Counter
	AuthFailures      *prometheus.CounterVec
	RestoredSessions  prometheus.Counter
	DiscardedRestores prometheus.Counter
	LoginDurationMs   prometheus.Histogram
}

// New registers and returns session metrics collectors on the given
// registerer. Pass nil to use the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_session_logins_total",
			Help: "Total number of successful logins",
		}),
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_session_registrations_total",
			Help: "Total number of successful registrations",
		}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_session_logouts_total",
			Help: "Total number of logouts",
		}),
		AuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pfn_session_auth_failures_total",
			Help: "Total number of failed session operations by operation",
		}, []string{"operation"}),
		RestoredSessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_session_restores_total",
			Help: "Total number of sessions restored from stored credentials",
		}),
		DiscardedRestores: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfn_session_discarded_restores_total",
			Help: "Total number of startup restores that found stale or missing credentials",
		}),
		LoginDurationMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pfn_session_login_duration_ms",
			Help:    "Login operation duration in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
	}
}
