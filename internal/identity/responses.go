package identity

import "github.com/Pixelynx/pfn-client-go/internal/session/models"

// Wire types mirroring the identity server's auth endpoints. These are the
// exact response shapes the server produces; the session service maps them
// into domain state.

// AuthResponse is the login success payload.
type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user"`
}

// RegisterResponse is the register success payload. Registration does not
// establish a session, so no tokens are returned.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// TokenPair is the refresh success payload: a fresh access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// errorResponse is the body shape of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}
