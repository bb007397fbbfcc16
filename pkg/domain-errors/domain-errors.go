package domainerrors

import "errors"

// Code represents a client error category independent of transport layer.
// These codes describe what went wrong in session-management terms, not HTTP terms.
type Code string

const (
	// CodeStorage indicates the credential persistence medium rejected an
	// operation (quota exceeded, unwritable path). Callers treat this as
	// "not authenticated"; partial writes never occur.
	CodeStorage Code = "storage_error"

	// CodeAPI indicates the remote identity server returned a structured
	// error payload. The payload is carried verbatim on the wrapped error.
	CodeAPI Code = "api_error"

	// CodeNetwork indicates the request never reached the server.
	CodeNetwork Code = "network_error"

	// CodeSessionExpired indicates a refresh attempt itself failed, as
	// opposed to the original request failing. It forces a silent sign-out
	// and is never surfaced as a form-level error.
	CodeSessionExpired Code = "session_expired"

	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
	CodeUnauthorized Code = "unauthorized"
	CodeConflict     Code = "conflict"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

// Error wraps session or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and gateway layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
