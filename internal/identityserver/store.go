package identityserver

import (
	"context"
	"sync"
	"time"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
)

var (
	ErrNotFound       = dErrors.New(dErrors.CodeNotFound, "record not found")
	ErrDuplicateEmail = dErrors.New(dErrors.CodeConflict, "Email already registered")
	ErrTokenExpired   = dErrors.New(dErrors.CodeUnauthorized, "Refresh token expired")
)

type userRecord struct {
	User         models.User
	PasswordHash []byte
}

// InMemoryUserStore keeps registered users in process memory. The dev server
// intentionally favors clarity over performance.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	byEmail map[string]*userRecord
	byID    map[int64]*userRecord
	nextID  int64
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		byEmail: make(map[string]*userRecord),
		byID:    make(map[int64]*userRecord),
		nextID:  1,
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, user models.User, passwordHash []byte) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return nil, ErrDuplicateEmail
	}
	user.ID = s.nextID
	s.nextID++
	rec := &userRecord{User: user, PasswordHash: passwordHash}
	s.byEmail[user.Email] = rec
	s.byID[user.ID] = rec
	created := rec.User
	return &created, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byEmail[email]
	if !ok {
		return nil, nil, ErrNotFound
	}
	user := rec.User
	return &user, rec.PasswordHash, nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	user := rec.User
	return &user, nil
}

// RefreshTokenRecord is one issued refresh token. Tokens are opaque,
// single-use, and rotated on every refresh.
type RefreshTokenRecord struct {
	Token      string
	UserID     int64
	DeviceName string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

type InMemoryRefreshTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*RefreshTokenRecord
}

func NewInMemoryRefreshTokenStore() *InMemoryRefreshTokenStore {
	return &InMemoryRefreshTokenStore{tokens: make(map[string]*RefreshTokenRecord)}
}

func (s *InMemoryRefreshTokenStore) Create(_ context.Context, rec *RefreshTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[rec.Token] = rec
	return nil
}

// Consume atomically looks up and removes the token so it can be used at
// most once. Expired tokens are removed on sight.
func (s *InMemoryRefreshTokenStore) Consume(_ context.Context, token string, now time.Time) (*RefreshTokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.tokens, token)
	if rec.ExpiresAt.Before(now) {
		return nil, ErrTokenExpired
	}
	return rec, nil
}

func (s *InMemoryRefreshTokenStore) DeleteByUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, rec := range s.tokens {
		if rec.UserID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}
