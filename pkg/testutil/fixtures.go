package testutil

import (
	"fmt"
	"time"

	"github.com/Pixelynx/pfn-client-go/internal/credstore"
	"github.com/Pixelynx/pfn-client-go/internal/session/models"
)

// TestTokens provides convenient pre-generated token values for tests.
// Use these for deterministic test data.
var TestTokens = struct {
	Access1  string
	Access2  string
	Refresh1 string
	Refresh2 string
}{
	Access1:  "eyJ0ZXN0IjoxfQ.access-token-1",
	Access2:  "eyJ0ZXN0IjoyfQ.access-token-2",
	Refresh1: "ref_11111111-1111-1111-1111-111111111111",
	Refresh2: "ref_22222222-2222-2222-2222-222222222222",
}

// UserBuilder provides a fluent interface for building test users.
type UserBuilder struct {
	user *models.User
}

// NewUserBuilder creates a new UserBuilder with sensible defaults.
func NewUserBuilder() *UserBuilder {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	return &UserBuilder{
		user: &models.User{
			ID:        1,
			Email:     "test@example.com",
			FirstName: "Test",
			LastName:  "User",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (b *UserBuilder) WithID(userID int64) *UserBuilder {
	b.user.ID = userID
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithName(firstName, lastName string) *UserBuilder {
	b.user.FirstName = firstName
	b.user.LastName = lastName
	return b
}

func (b *UserBuilder) CreatedAt(t time.Time) *UserBuilder {
	b.user.CreatedAt = t
	return b
}

func (b *UserBuilder) Build() *models.User {
	return b.user
}

// RecordBuilder provides a fluent interface for building credential records.
type RecordBuilder struct {
	record credstore.Record
}

// NewRecordBuilder creates a new RecordBuilder with a complete default record.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{
		record: credstore.Record{
			AccessToken:  TestTokens.Access1,
			RefreshToken: TestTokens.Refresh1,
			User:         NewUserBuilder().Build(),
		},
	}
}

func (b *RecordBuilder) WithAccessToken(token string) *RecordBuilder {
	b.record.AccessToken = token
	return b
}

func (b *RecordBuilder) WithRefreshToken(token string) *RecordBuilder {
	b.record.RefreshToken = token
	return b
}

func (b *RecordBuilder) WithUser(user *models.User) *RecordBuilder {
	b.record.User = user
	return b
}

// Incomplete drops the refresh token, producing a record that stores reject.
func (b *RecordBuilder) Incomplete() *RecordBuilder {
	b.record.RefreshToken = ""
	return b
}

func (b *RecordBuilder) Build() credstore.Record {
	return b.record
}

// Email returns a unique email address for the given index, for tests that
// register several users.
func Email(idx int) string {
	return fmt.Sprintf("user%d@example.com", idx)
}
