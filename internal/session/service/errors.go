package service

import (
	"errors"

	"github.com/Pixelynx/pfn-client-go/internal/identity"
)

// User-facing fallback messages, used when the server supplies no error
// payload (network failures, empty bodies).
const (
	loginFailedMessage    = "Login failed. Please check your credentials and try again."
	registerFailedMessage = "Registration failed. Please try again."
	logoutFailedMessage   = "Logout failed. Please try again."
)

// messageFromError extracts the server-supplied error message for display,
// falling back to the given generic message. The typed error itself is
// re-surfaced to the caller unchanged; this only shapes the session's
// observable error string.
func messageFromError(err error, fallback string) string {
	var apiErr *identity.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
