package models

import "time"

// This file contains pure domain models for the client session: entities
// that should not depend on transport or HTTP-specific concerns.

// User is the profile snapshot returned by the identity server.
// It is an immutable value: replaced wholesale on login or restore,
// never patched in place.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Clone returns a copy so callers cannot mutate a stored snapshot.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// FullName joins first and last name for display purposes.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
