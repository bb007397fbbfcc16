package service

import (
	"context"

	"github.com/Pixelynx/pfn-client-go/internal/credstore"
	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
	"github.com/Pixelynx/pfn-client-go/pkg/validation"
)

// Login exchanges credentials for an authenticated session. On success the
// credential record is persisted as a unit, the current user is set, and the
// session becomes authenticated. On failure the session returns to the state
// it was in before the attempt; a failed login never mutates the current
// user.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	req := models.LoginRequest{Email: email, Password: password}
	if err := validation.Validate(&req); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		return nil, err
	}

	prev := s.beginOp()
	defer s.endOp()
	s.setStatus(models.StatusAuthenticating)

	start := s.now()
	resp, err := s.client.Login(ctx, req)
	if err != nil {
		s.setFailure(messageFromError(err, loginFailedMessage), prev)
		s.incrementAuthFailure("login")
		s.logger.WarnContext(ctx, "login rejected", "error", err)
		return nil, err
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" || resp.User == nil {
		err := dErrors.New(dErrors.CodeInternal, "identity server returned an incomplete login response")
		s.setFailure(loginFailedMessage, prev)
		s.incrementAuthFailure("login")
		return nil, err
	}

	record := credstore.Record{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	if err := s.store.Set(ctx, record); err != nil {
		// A rejected write means no usable session: tokens that cannot be
		// persisted would strand the user on the next refresh.
		s.setFailure(loginFailedMessage, prev)
		s.incrementAuthFailure("login")
		s.logger.ErrorContext(ctx, "failed to persist credentials", "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.current = resp.User.Clone()
	s.status = models.StatusAuthenticated
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Logins.Inc()
		s.metrics.LoginDurationMs.Observe(float64(s.now().Sub(start).Milliseconds()))
	}
	s.logger.InfoContext(ctx, "user signed in", "user_id", resp.User.ID)
	return resp.User.Clone(), nil
}
