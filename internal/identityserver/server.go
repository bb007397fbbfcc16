// Package identityserver is a development identity server implementing the
// four auth endpoints the SDK talks to. It exists for local development and
// integration tests; it is not the production identity service.
package identityserver

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Pixelynx/pfn-client-go/internal/identity"
	"github.com/Pixelynx/pfn-client-go/internal/platform/config"
)

// Server holds the dev identity server's stores and token issuer.
type Server struct {
	users      *InMemoryUserStore
	refreshTok *InMemoryRefreshTokenStore
	issuer     *TokenIssuer
	refreshTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithNow sets the time source (primarily for testing token expiry).
func WithNow(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
		s.issuer.now = now
	}
}

func New(cfg config.Server, opts ...Option) *Server {
	s := &Server{
		users:      NewInMemoryUserStore(),
		refreshTok: NewInMemoryRefreshTokenStore(),
		issuer:     NewTokenIssuer(cfg.JWTSigningKey, cfg.AccessTokenTTL),
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Register registers the auth routes with the chi router.
func (s *Server) Register(r chi.Router) {
	r.Post(identity.LoginPath, s.HandleLogin)
	r.Post(identity.RegisterPath, s.HandleRegister)
	r.Post(identity.LogoutPath, s.HandleLogout)
	r.Post(identity.RefreshPath, s.HandleRefresh)
}

// Router returns a chi router with the auth routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	s.Register(r)
	return r
}
