package credstore

import (
	"context"

	"github.com/Pixelynx/pfn-client-go/internal/session/models"
	dErrors "github.com/Pixelynx/pfn-client-go/pkg/domain-errors"
)

// Record is the unit of credential persistence: the access/refresh token pair
// and the profile snapshot they belong to. The three fields are written and
// cleared together; no state may exist with a token but no user, or a user
// but no refresh token.
type Record struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user"`
}

// Complete reports whether the record honors the all-or-nothing invariant.
func (r Record) Complete() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && r.User != nil
}

// ErrIncompleteRecord rejects writes that would tear the credential record.
var ErrIncompleteRecord = dErrors.New(dErrors.CodeInvalidInput, "credential record requires access token, refresh token, and user")

// Error Contract:
// All store methods follow this pattern:
// - Set returns a CodeStorage domain error when the persistence medium rejects
//   the write; the previous record is left intact (no partial writes).
// - Readers report absence with the ", bool" convention and never fail:
//   missing or malformed persisted data reads as "no record".
// - Clear is idempotent.
//
// Store is the persistence boundary for the current credential record.
// The session service is the only writer; the HTTP gateway reads tokens per
// call and overwrites the pair during refresh recovery.
type Store interface {
	Set(ctx context.Context, rec Record) error
	AccessToken(ctx context.Context) (string, bool)
	RefreshToken(ctx context.Context) (string, bool)
	User(ctx context.Context) (*models.User, bool)
	Clear(ctx context.Context) error
	HasValidCredentials(ctx context.Context) bool
}
