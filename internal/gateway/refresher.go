package gateway

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/Pixelynx/pfn-client-go/internal/credstore"
	"github.com/Pixelynx/pfn-client-go/internal/gateway/metrics"
	"github.com/Pixelynx/pfn-client-go/internal/identity"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
)

// RefreshClient is the slice of the identity client the refresher needs.
type RefreshClient interface {
	Refresh(ctx context.Context, refreshToken string) (*identity.TokenPair, error)
}

// Refresher exchanges the stored refresh token for a fresh pair and
// overwrites the credential store in a single Set, keeping the user snapshot
// unchanged. Concurrent callers are coalesced: while a refresh is in flight,
// every additional caller awaits the same result instead of issuing its own
// refresh call. Duplicate refreshes would invalidate each other's rotated
// tokens server-side, so this is the one concurrency invariant the gateway
// cannot compromise on.
type Refresher struct {
	store   credstore.Store
	client  RefreshClient
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type RefresherOption func(*Refresher)

func WithRefresherLogger(logger *slog.Logger) RefresherOption {
	return func(r *Refresher) {
		r.logger = logger
	}
}

func WithRefresherMetrics(m *metrics.Metrics) RefresherOption {
	return func(r *Refresher) {
		r.metrics = m
	}
}

func NewRefresher(store credstore.Store, client RefreshClient, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		store:  store,
		client: client,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Refresh returns a live access token, performing at most one remote refresh
// call regardless of how many callers arrive while it is in flight. On any
// failure the store is left untouched; tearing down the session is the
// caller's decision.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	token, err, shared := r.group.Do("refresh", func() (any, error) {
		return r.refreshOnce(ctx)
	})
	if shared && r.metrics != nil {
		r.metrics.RefreshWaiters.Inc()
	}
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (r *Refresher) refreshOnce(ctx context.Context) (string, error) {
	refreshToken, ok := r.store.RefreshToken(ctx)
	if !ok {
		return "", dErrors.New(dErrors.CodeSessionExpired, "no refresh token available")
	}
	user, ok := r.store.User(ctx)
	if !ok {
		return "", dErrors.New(dErrors.CodeSessionExpired, "no stored user to refresh")
	}

	if r.metrics != nil {
		r.metrics.RefreshAttempts.Inc()
	}
	pair, err := r.client.Refresh(ctx, refreshToken)
	if err != nil {
		r.logger.WarnContext(ctx, "token refresh rejected", "error", err)
		return "", dErrors.Wrap(err, dErrors.CodeSessionExpired, "refresh attempt failed")
	}

	// The pair is overwritten as a unit with the user unchanged; a failed
	// write must not leave an old access token alongside a new refresh token.
	rec := credstore.Record{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}
	if err := r.store.Set(ctx, rec); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeSessionExpired, "failed to persist refreshed tokens")
	}

	r.logger.DebugContext(ctx, "access token refreshed")
	return pair.AccessToken, nil
}
