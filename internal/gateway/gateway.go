package gateway

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Pixelynx/pfn-client-go/internal/credstore"
	"github.com/Pixelynx/pfn-client-go/internal/gateway/metrics"
	"github.com/Pixelynx/pfn-client-go/internal/identity"
)

// maxPropagatedBody bounds how much of a 401 body is buffered for
// propagation after its connection has been reclaimed.
const maxPropagatedBody = 1 << 20

type retryMarker struct{}

// withRetryMarker tags a request context so a logical request is retried at
// most once, no matter how many authorization failures it accumulates.
func withRetryMarker(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryMarker{}, true)
}

func alreadyRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retryMarker{}).(bool)
	return retried
}

// Transport is the shared request pipeline for every outbound call that does
// not target the auth endpoints. It attaches the current access token, read
// fresh from the credential store on every call, and on an authorization
// failure performs exactly one transparent refresh-and-retry before
// surfacing the failure.
type Transport struct {
	base      http.RoundTripper
	store     credstore.Store
	refresher *Refresher
	navigate  func()
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Transport)

// WithBase sets the underlying transport. Defaults to http.DefaultTransport.
func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) {
		t.base = base
	}
}

// WithNavigator registers the hook fired when a refresh fails and the
// application must land on the sign-in entry point. The hook is the entire
// surface the gateway exposes toward navigation.
func WithNavigator(navigate func()) Option {
	return func(t *Transport) {
		t.navigate = navigate
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transport) {
		t.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(t *Transport) {
		t.tracer = tracer
	}
}

func New(store credstore.Store, refresher *Refresher, opts ...Option) *Transport {
	t := &Transport{
		store:     store,
		refresher: refresher,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.base == nil {
		t.base = http.DefaultTransport
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer("pfn-client-go/gateway")
	}
	return t
}

// NewHTTPClient wraps the transport in an http.Client ready for API calls.
func NewHTTPClient(t *Transport) *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if identity.IsAuthPath(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	authed := req.Clone(ctx)
	if token, ok := t.store.AccessToken(ctx); ok {
		authed.Header.Set("Authorization", "Bearer "+token)
		if t.metrics != nil {
			t.metrics.RequestsAuthorized.Inc()
		}
	}

	resp, err := t.base.RoundTrip(authed)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	if t.metrics != nil {
		t.metrics.ExpiredResponses.Inc()
	}
	if alreadyRetried(ctx) {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// The body was consumed by the first attempt and cannot be replayed.
		t.logger.WarnContext(ctx, "cannot retry request without replayable body",
			"method", req.Method,
			"path", req.URL.Path,
		)
		return resp, nil
	}

	// Keep the original failure around: if recovery fails it must be
	// propagated unchanged, but its connection has to be reclaimed first.
	resp = bufferResponse(resp)

	ctx, span := t.tracer.Start(ctx, "gateway.refresh_and_retry",
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)

	if _, err := t.refresher.Refresh(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		t.expireSession(ctx, req)
		return resp, nil
	}
	span.End()

	retry := req.Clone(withRetryMarker(req.Context()))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}

	t.logger.DebugContext(ctx, "re-issuing request with refreshed token",
		"method", req.Method,
		"path", req.URL.Path,
	)
	if t.metrics != nil {
		t.metrics.RetriedRequests.Inc()
	}
	return t.RoundTrip(retry)
}

// expireSession tears down credentials and forces the unauthenticated
// navigation state. The user did nothing wrong here, so the failure is never
// shaped like a form-level error.
func (t *Transport) expireSession(ctx context.Context, req *http.Request) {
	t.logger.InfoContext(ctx, "refresh failed, signing out",
		"method", req.Method,
		"path", req.URL.Path,
	)
	if t.metrics != nil {
		t.metrics.SessionExpiries.Inc()
	}
	if err := t.store.Clear(ctx); err != nil {
		t.logger.ErrorContext(ctx, "failed to clear credentials after refresh failure", "error", err)
	}
	if t.navigate != nil {
		t.navigate()
	}
}

// bufferResponse reads the body into memory so the response can outlive its
// network connection.
func bufferResponse(resp *http.Response) *http.Response {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPropagatedBody))
	resp.Body.Close()
	if err != nil {
		body = nil
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp
}
