package credstore

import (
	"context"
	"sync"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
)

// InMemoryStore keeps the credential record in process memory. It backs tests
// and short-lived tooling where persistence across restarts is not wanted.
// It intentionally favors clarity over performance.
type InMemoryStore struct {
	mu     sync.RWMutex
	record *Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Set(_ context.Context, rec Record) error {
	if !rec.Complete() {
		return ErrIncompleteRecord
	}
	rec.User = rec.User.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = &rec
	return nil
}

func (s *InMemoryStore) AccessToken(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record == nil {
		return "", false
	}
	return s.record.AccessToken, true
}

func (s *InMemoryStore) RefreshToken(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record == nil {
		return "", false
	}
	return s.record.RefreshToken, true
}

func (s *InMemoryStore) User(_ context.Context) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record == nil {
		return nil, false
	}
	return s.record.User.Clone(), true
}

func (s *InMemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	return nil
}

func (s *InMemoryStore) HasValidCredentials(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record != nil && s.record.Complete()
}
