package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks IdentityClient,Refresher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Pixelynx/pfn-client-go/internal/credstore"
	"github.com/Pixelynx/pfn-client-go/internal/identity"
	"github.com/Pixelynx/pfn-client-go/internal/session/metrics"
	"github.com/Pixelynx/pfn-client-go/internal/session/models"
)

// IdentityClient defines the remote auth operations the session service
// orchestrates. Refresh is deliberately absent: expiry recovery flows through
// the Refresher so concurrent callers coalesce.
type IdentityClient interface {
	Login(ctx context.Context, req models.LoginRequest) (*identity.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*identity.RegisterResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// Refresher validates and rotates the stored token pair. Satisfied by
// gateway.Refresher so the startup restore shares the in-flight refresh with
// any request recovery happening at the same time.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Service owns the process-wide session: the current user, lifecycle status,
// and last operation error. It is the only writer of the credential store.
//
// Operations are not mutually exclusive: a Logout issued while a Login is in
// flight is a legitimate race, and the last state transition to complete
// wins. The mutex protects individual state reads and writes, never a whole
// operation across its network call.
type Service struct {
	store      credstore.Store
	client     IdentityClient
	refresher  Refresher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	invalidate func()
	now        func() time.Time

	mu        sync.RWMutex
	status    models.Status
	current   *models.User
	lastError string
	inflight  int

	restoreOnce sync.Once
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCacheInvalidator registers the hook fired on logout so session-scoped
// cached data (query caches, prefetched views) is dropped with the session.
func WithCacheInvalidator(invalidate func()) Option {
	return func(s *Service) {
		s.invalidate = invalidate
	}
}

// WithNow sets the time source (primarily for testing).
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store credstore.Store, client IdentityClient, refresher Refresher, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		client:    client,
		refresher: refresher,
		status:    models.StatusInitializing,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// CurrentUser returns a copy of the signed-in user, or nil when nobody is.
func (s *Service) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Status returns the session lifecycle state.
func (s *Service) Status() models.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Loading reports whether the session is still initializing or any operation
// is in flight.
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.status.IsSettled() || s.inflight > 0
}

// Err returns the most recent operation error message, cleared at the start
// of the next attempt. Empty when the last operation succeeded.
func (s *Service) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// beginOp clears the previous error and marks an operation in flight,
// returning the status it found so failed attempts can return to it.
func (s *Service) beginOp() models.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
	s.inflight++
	return s.status
}

func (s *Service) endOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}

func (s *Service) setStatus(status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *Service) setFailure(message string, prev models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
	s.status = prev
}

func (s *Service) incrementAuthFailure(operation string) {
	if s.metrics != nil {
		s.metrics.AuthFailures.WithLabelValues(operation).Inc()
	}
}
