package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Pixelynx/pfn-client-go/internal/identity"
	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
)

func (s *ServiceSuite) signIn() {
	s.mockClient.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(&identity.AuthResponse{AccessToken: "t1", RefreshToken: "r1", User: s.testUser()}, nil)
	_, err := s.service.Login(context.Background(), "test@example.com", "password")
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestLogout() {
	s.T().Run("clears credentials, user, and cached data", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()
		s.signIn()
		ctx := context.Background()

		s.mockClient.EXPECT().Logout(gomock.Any(), "t1").Return(nil)

		require.NoError(t, s.service.Logout(ctx))

		assert.Equal(t, models.StatusUnauthenticated, s.service.Status())
		assert.Nil(t, s.service.CurrentUser())
		assert.Empty(t, s.service.Err())
		assert.Equal(t, 1, s.invalidated)

		_, ok := s.store.AccessToken(ctx)
		assert.False(t, ok)
		_, ok = s.store.RefreshToken(ctx)
		assert.False(t, ok)
		_, ok = s.store.User(ctx)
		assert.False(t, ok)
	})

	s.T().Run("remote failure never prevents local teardown", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()
		s.signIn()

		apiErr := &identity.APIError{Status: 500, Message: "Server exploded"}
		s.mockClient.EXPECT().
			Logout(gomock.Any(), "t1").
			Return(dErrors.Wrap(apiErr, dErrors.CodeAPI, apiErr.Message))

		err := s.service.Logout(context.Background())
		require.Error(t, err)

		// The failure is observable, but the session is gone regardless.
		assert.Equal(t, "Server exploded", s.service.Err())
		assert.Equal(t, models.StatusUnauthenticated, s.service.Status())
		assert.Nil(t, s.service.CurrentUser())
		assert.False(t, s.store.HasValidCredentials(context.Background()))
		assert.Equal(t, 1, s.invalidated)
	})

	s.T().Run("logout while unauthenticated is a state no-op", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		// No stored token, so no remote call is attempted.
		require.NoError(t, s.service.Logout(context.Background()))
		assert.Equal(t, models.StatusUnauthenticated, s.service.Status())
		assert.Nil(t, s.service.CurrentUser())
		assert.Empty(t, s.service.Err())
	})
}
