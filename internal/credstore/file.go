package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
)

// FileStore persists the credential record as a single JSON document on disk,
// the durable analog of the browser client's local storage slots. Writes go
// through a temp file and rename so a failed write can never leave a torn
// record behind; readers see either the old record or the new one.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates a store rooted at path. The parent directory is
// created on first write, not here, so constructing a store is side-effect
// free.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Set(_ context.Context, rec Record) error {
	if !rec.Complete() {
		return ErrIncompleteRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to encode credential record")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to create credentials directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to stage credential record")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to restrict credential file permissions")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to write credential record")
	}
	if err := tmp.Close(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to flush credential record")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to commit credential record")
	}
	return nil
}

func (s *FileStore) AccessToken(ctx context.Context) (string, bool) {
	rec, ok := s.read()
	if !ok {
		return "", false
	}
	return rec.AccessToken, true
}

func (s *FileStore) RefreshToken(ctx context.Context) (string, bool) {
	rec, ok := s.read()
	if !ok {
		return "", false
	}
	return rec.RefreshToken, true
}

func (s *FileStore) User(ctx context.Context) (*models.User, bool) {
	rec, ok := s.read()
	if !ok {
		return nil, false
	}
	return rec.User, true
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to clear credential record")
	}
	return nil
}

func (s *FileStore) HasValidCredentials(ctx context.Context) bool {
	rec, ok := s.read()
	return ok && rec.Complete()
}

// read loads and decodes the record. Missing or malformed data reads as
// absent: a corrupt credentials file must behave like "no record", never
// like a fatal error.
func (s *FileStore) read() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false
	}
	if !rec.Complete() {
		return Record{}, false
	}
	return rec, true
}
