package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/Pixelynx/pfn-client-go/internal/identity"
	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
)

func (s *ServiceSuite) TestRestore() {
	s.T().Run("stored session with live refresh token becomes authenticated", func(t *testing.T) {
		s.SetupTest()
		s.seedCredentials()

		s.mockRefresher.EXPECT().Refresh(gomock.Any()).Return("t2", nil)

		status := s.service.Restore(context.Background())
		assert.Equal(t, models.StatusAuthenticated, status)
		assert.Equal(t, "test@example.com", s.service.CurrentUser().Email)
		assert.False(t, s.service.Loading())
		assert.Empty(t, s.service.Err())
	})

	s.T().Run("no stored session settles unauthenticated", func(t *testing.T) {
		s.SetupTest()

		status := s.service.Restore(context.Background())
		assert.Equal(t, models.StatusUnauthenticated, status)
		assert.Nil(t, s.service.CurrentUser())
		assert.False(t, s.service.Loading())
	})

	s.T().Run("rejected refresh token is swallowed and credentials cleared", func(t *testing.T) {
		s.SetupTest()
		s.seedCredentials()

		s.mockRefresher.EXPECT().
			Refresh(gomock.Any()).
			Return("", dErrors.New(dErrors.CodeSessionExpired, "refresh token rejected"))

		status := s.service.Restore(context.Background())
		assert.Equal(t, models.StatusUnauthenticated, status)
		assert.Nil(t, s.service.CurrentUser())

		// A stale session is a normal outcome, never a user-visible error.
		assert.Empty(t, s.service.Err())
		assert.False(t, s.store.HasValidCredentials(context.Background()))
	})

	s.T().Run("restore runs once and later calls return the settled state", func(t *testing.T) {
		s.SetupTest()
		s.seedCredentials()

		s.mockRefresher.EXPECT().Refresh(gomock.Any()).Return("t2", nil).Times(1)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.service.Restore(context.Background())
			}()
		}
		wg.Wait()

		assert.Equal(t, models.StatusAuthenticated, s.service.Restore(context.Background()))
	})

	s.T().Run("loading is true until restore settles", func(t *testing.T) {
		s.SetupTest()
		assert.True(t, s.service.Loading())
		s.service.Restore(context.Background())
		assert.False(t, s.service.Loading())
	})
}

// Overlapping operations are a legitimate race: the last state transition to
// complete wins, and nothing serializes them implicitly.
func (s *ServiceSuite) TestLastWriterWins() {
	s.SetupTest()
	s.settleUnauthenticated()

	loginStarted := make(chan struct{})
	releaseLogin := make(chan struct{})

	s.mockClient.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req models.LoginRequest) (*identity.AuthResponse, error) {
			close(loginStarted)
			<-releaseLogin
			return &identity.AuthResponse{AccessToken: "t1", RefreshToken: "r1", User: s.testUser()}, nil
		})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.service.Login(context.Background(), "test@example.com", "password")
		s.Require().NoError(err)
	}()

	// Logout lands while the login is still in flight.
	<-loginStarted
	s.Require().NoError(s.service.Logout(context.Background()))
	s.Require().Equal(models.StatusUnauthenticated, s.service.Status())

	// The login completes last, so its transition wins.
	close(releaseLogin)
	<-done
	s.Equal(models.StatusAuthenticated, s.service.Status())
	s.Require().NotNil(s.service.CurrentUser())
	s.Equal("test@example.com", s.service.CurrentUser().Email)
}
