package service

import (
	"context"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
)

// Restore validates stored credentials at startup and settles the session
// into authenticated or unauthenticated. A stored user plus refresh token is
// only trusted after a successful refresh proves the token is still live.
//
// Every failure path is swallowed: a stale or invalid stored session is a
// normal outcome, not an operational error, so Restore never sets the
// session error. It runs once; later calls return the already-settled state.
func (s *Service) Restore(ctx context.Context) models.Status {
	s.restoreOnce.Do(func() {
		s.restore(ctx)
	})
	return s.Status()
}

func (s *Service) restore(ctx context.Context) {
	user, hasUser := s.store.User(ctx)
	_, hasRefresh := s.store.RefreshToken(ctx)

	if !hasUser || !hasRefresh {
		s.discardRestore(ctx, "no stored session")
		return
	}

	if _, err := s.refresher.Refresh(ctx); err != nil {
		s.logger.InfoContext(ctx, "stored session is stale, starting signed out", "error", err)
		s.discardRestore(ctx, "refresh token rejected")
		return
	}

	s.mu.Lock()
	s.current = user
	s.status = models.StatusAuthenticated
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RestoredSessions.Inc()
	}
	s.logger.InfoContext(ctx, "session restored", "user_id", user.ID)
}

func (s *Service) discardRestore(ctx context.Context, reason string) {
	if err := s.store.Clear(ctx); err != nil {
		// Recovered locally; an unreadable store means "no session".
		s.logger.WarnContext(ctx, "failed to clear stale credentials", "error", err)
	}
	s.setStatus(models.StatusUnauthenticated)
	if s.metrics != nil {
		s.metrics.DiscardedRestores.Inc()
	}
	s.logger.DebugContext(ctx, "restore discarded", "reason", reason)
}
