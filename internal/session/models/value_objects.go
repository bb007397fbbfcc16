package models

// Status represents the lifecycle state of the client session.
type Status string

const (
	// StatusInitializing is the startup state while stored credentials are
	// being validated against the identity server.
	StatusInitializing Status = "initializing"

	// StatusAuthenticating is in effect while a login attempt is in flight.
	StatusAuthenticating Status = "authenticating"

	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

func (s Status) IsValid() bool {
	return s == StatusInitializing || s == StatusAuthenticating ||
		s == StatusAuthenticated || s == StatusUnauthenticated
}

func (s Status) String() string {
	return string(s)
}

// IsSettled reports whether the session has reached a terminal answer to
// "is anyone signed in": initializing and authenticating are transient and
// always resolve to one of the settled states.
func (s Status) IsSettled() bool {
	return s == StatusAuthenticated || s == StatusUnauthenticated
}
