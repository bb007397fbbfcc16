package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Pixelynx/pfn-client-go/internal/identity"
	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
)

func (s *ServiceSuite) TestLogin() {
	s.T().Run("success sets user, status, and a matching stored record", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()
		ctx := context.Background()

		s.mockClient.EXPECT().
			Login(gomock.Any(), models.LoginRequest{Email: "test@example.com", Password: "password"}).
			Return(&identity.AuthResponse{AccessToken: "t1", RefreshToken: "r1", User: s.testUser()}, nil)

		user, err := s.service.Login(ctx, "test@example.com", "password")
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", user.Email)

		assert.Equal(t, models.StatusAuthenticated, s.service.Status())
		assert.Equal(t, "test@example.com", s.service.CurrentUser().Email)
		assert.False(t, s.service.Loading())
		assert.Empty(t, s.service.Err())

		// The stored record matches and is not torn: token and user together.
		access, ok := s.store.AccessToken(ctx)
		require.True(t, ok)
		assert.Equal(t, "t1", access)
		stored, ok := s.store.User(ctx)
		require.True(t, ok)
		assert.Equal(t, user.ID, stored.ID)
		assert.True(t, s.store.HasValidCredentials(ctx))
	})

	s.T().Run("server rejection surfaces the typed error and keeps prior state", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		apiErr := &identity.APIError{Status: 401, Message: "Invalid email or password"}
		s.mockClient.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(apiErr, dErrors.CodeAPI, apiErr.Message))

		_, err := s.service.Login(context.Background(), "test@example.com", "wrong-password")
		require.Error(t, err)

		// Callers can detect the exact failure, not just the message.
		var got *identity.APIError
		require.True(t, errors.As(err, &got))
		assert.Equal(t, 401, got.Status)

		assert.Equal(t, "Invalid email or password", s.service.Err())
		assert.Equal(t, models.StatusUnauthenticated, s.service.Status())
		assert.Nil(t, s.service.CurrentUser())
		assert.False(t, s.store.HasValidCredentials(context.Background()))
	})

	s.T().Run("network failure falls back to the generic message", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		s.mockClient.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("dial tcp: refused"), dErrors.CodeNetwork, "request never reached the identity server"))

		_, err := s.service.Login(context.Background(), "test@example.com", "password")
		require.Error(t, err)
		assert.Equal(t, "Login failed. Please check your credentials and try again.", s.service.Err())
	})

	s.T().Run("a failed login never mutates the current user", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		// First sign in successfully.
		s.mockClient.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return(&identity.AuthResponse{AccessToken: "t1", RefreshToken: "r1", User: s.testUser()}, nil)
		_, err := s.service.Login(context.Background(), "test@example.com", "password")
		require.NoError(t, err)

		// Then fail a second attempt: the session stays authenticated as before.
		s.mockClient.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeAPI, "Invalid email or password"))
		_, err = s.service.Login(context.Background(), "other@example.com", "password")
		require.Error(t, err)

		assert.Equal(t, models.StatusAuthenticated, s.service.Status())
		assert.Equal(t, "test@example.com", s.service.CurrentUser().Email)
	})

	s.T().Run("storage rejection means not authenticated", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		s.mockClient.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return(&identity.AuthResponse{AccessToken: "t1", RefreshToken: "r1", User: s.testUser()}, nil)

		failing := &failingStore{Store: s.store}
		svc := New(failing, s.mockClient, s.mockRefresher, WithLogger(discardLogger()))
		svc.Restore(context.Background())

		_, err := svc.Login(context.Background(), "test@example.com", "password")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStorage))
		assert.Equal(t, models.StatusUnauthenticated, svc.Status())
		assert.Nil(t, svc.CurrentUser())
	})

	s.T().Run("invalid input is rejected before any remote call", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		_, err := s.service.Login(context.Background(), "not-an-email", "password")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.NotEmpty(t, s.service.Err())
	})

	s.T().Run("error is cleared at the start of the next attempt", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		s.mockClient.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeAPI, "Invalid email or password"))
		_, err := s.service.Login(context.Background(), "test@example.com", "wrong")
		require.Error(t, err)
		require.NotEmpty(t, s.service.Err())

		s.mockClient.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return(&identity.AuthResponse{AccessToken: "t1", RefreshToken: "r1", User: s.testUser()}, nil)
		_, err = s.service.Login(context.Background(), "test@example.com", "password")
		require.NoError(t, err)
		assert.Empty(t, s.service.Err())
	})
}
