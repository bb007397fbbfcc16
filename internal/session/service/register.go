package service

import (
	"context"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	"github.com/Pixelynx/pfn-client-go/pkg/validation"
)

// Register creates a new account and returns the created user. Registration
// does not imply an authenticated session: the current user, the credential
// store, and the lifecycle status are all left untouched on success.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	req := models.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := validation.Validate(&req); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		return nil, err
	}

	prev := s.beginOp()
	defer s.endOp()

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		s.setFailure(messageFromError(err, registerFailedMessage), prev)
		s.incrementAuthFailure("register")
		s.logger.WarnContext(ctx, "registration rejected", "error", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	s.logger.InfoContext(ctx, "user registered", "email", email)
	return resp.User, nil
}
