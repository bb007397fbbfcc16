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

func (s *ServiceSuite) TestRegister() {
	s.T().Run("success returns the created user without signing in", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		created := &models.User{ID: 7, Email: "new@example.com", FirstName: "Ada", LastName: "Lovelace"}
		s.mockClient.EXPECT().
			Register(gomock.Any(), models.RegisterRequest{
				Email: "new@example.com", Password: "password123", FirstName: "Ada", LastName: "Lovelace",
			}).
			Return(&identity.RegisterResponse{Message: "User registered successfully", User: created}, nil)

		user, err := s.service.Register(context.Background(), "new@example.com", "password123", "Ada", "Lovelace")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)

		// Registration does not imply an authenticated session.
		assert.Nil(t, s.service.CurrentUser())
		assert.Equal(t, models.StatusUnauthenticated, s.service.Status())
		assert.False(t, s.store.HasValidCredentials(context.Background()))
	})

	s.T().Run("duplicate email surfaces the server message", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		apiErr := &identity.APIError{Status: 409, Message: "Email already registered"}
		s.mockClient.EXPECT().
			Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(apiErr, dErrors.CodeAPI, apiErr.Message))

		_, err := s.service.Register(context.Background(), "new@example.com", "password123", "Ada", "Lovelace")
		require.Error(t, err)
		assert.Equal(t, "Email already registered", s.service.Err())
		assert.Equal(t, models.StatusUnauthenticated, s.service.Status())
	})

	s.T().Run("failure without server payload uses the generic message", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		s.mockClient.EXPECT().
			Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNetwork, "request never reached the identity server"))

		_, err := s.service.Register(context.Background(), "new@example.com", "password123", "Ada", "Lovelace")
		require.Error(t, err)
		assert.Equal(t, "Registration failed. Please try again.", s.service.Err())
	})

	s.T().Run("registering while signed in keeps the current session", func(t *testing.T) {
		s.SetupTest()
		s.settleUnauthenticated()

		s.mockClient.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return(&identity.AuthResponse{AccessToken: "t1", RefreshToken: "r1", User: s.testUser()}, nil)
		_, err := s.service.Login(context.Background(), "test@example.com", "password")
		require.NoError(t, err)

		created := &models.User{ID: 8, Email: "second@example.com", FirstName: "Grace", LastName: "Hopper"}
		s.mockClient.EXPECT().
			Register(gomock.Any(), gomock.Any()).
			Return(&identity.RegisterResponse{Message: "User registered successfully", User: created}, nil)

		_, err = s.service.Register(context.Background(), "second@example.com", "password123", "Grace", "Hopper")
		require.NoError(t, err)
		assert.Equal(t, models.StatusAuthenticated, s.service.Status())
		assert.Equal(t, "test@example.com", s.service.CurrentUser().Email)
	})
}
