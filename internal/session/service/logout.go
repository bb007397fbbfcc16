package service

import (
	"context"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
)

// Logout tears the session down. The remote revocation is best-effort: its
// failure is recorded as the session error and returned, but never prevents
// the local teardown. The credential store is cleared unconditionally, the
// session becomes unauthenticated, and any session-scoped cached data is
// invalidated. Logging out while already unauthenticated is a no-op with
// respect to state.
func (s *Service) Logout(ctx context.Context) error {
	s.beginOp()
	defer s.endOp()

	var remoteErr error
	if token, ok := s.store.AccessToken(ctx); ok {
		if err := s.client.Logout(ctx, token); err != nil {
			remoteErr = err
			s.logger.WarnContext(ctx, "remote logout failed, tearing down locally", "error", err)
		}
	}

	if err := s.store.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear credentials on logout", "error", err)
		if remoteErr == nil {
			remoteErr = err
		}
	}

	s.mu.Lock()
	s.current = nil
	s.status = models.StatusUnauthenticated
	if remoteErr != nil {
		s.lastError = messageFromError(remoteErr, logoutFailedMessage)
	}
	s.mu.Unlock()

	if s.invalidate != nil {
		s.invalidate()
	}
	if s.metrics != nil {
		s.metrics.Logouts.Inc()
	}
	if remoteErr != nil {
		s.incrementAuthFailure("logout")
	}
	return remoteErr
}
