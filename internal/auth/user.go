// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Password length policy. The minimum counts characters; the maximum counts
// bytes, since that is bcrypt's input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// MaxEmailLength is the longest address accepted (RFC 5321 path limit).
const MaxEmailLength = 254

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents an account. It deliberately has no JSON encoding: the only
// client-facing shape is PublicView.
type User struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a validated, non-admin User.
func NewUser(email, passwordHash string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// PublicView is the subset of a User that may be sent to a client.
type PublicView struct {
	ID      ulid.ULID `json:"_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
}

// Project reduces a user to its public fields. It never mutates u.
func Project(u *User) PublicView {
	if u == nil {
		return PublicView{}
	}
	return PublicView{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

// Project returns a copy of v with only the public fields. Types that embed a
// PublicView next to extra data project down to the same three fields.
func (v PublicView) Project() PublicView {
	return PublicView{ID: v.ID, Email: v.Email, IsAdmin: v.IsAdmin}
}

// IsZero reports whether v carries no identity.
func (v PublicView) IsZero() bool {
	return v.ID.Compare(ulid.ULID{}) == 0
}

// NormalizeEmail returns the canonical stored form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(email)
}

// ValidateEmail checks that email is present and syntactically valid.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError(`"email" is not allowed to be empty`)
	}
	if len(email) > MaxEmailLength || !emailRegex.MatchString(email) {
		return NewValidationError(`"email" must be a valid email`)
	}
	return nil
}

// ValidatePassword applies the registration password policy.
func ValidatePassword(password string) error {
	if password == "" {
		return NewValidationError(`"password" is not allowed to be empty`)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return NewValidationError(`"password" length must be at least %d characters long`, MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError(`"password" length must be less than or equal to %d characters long`, MaxPasswordLength)
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns an error wrapping ErrDuplicate when
	// the email is already taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	// Returns ErrNotFound if no user has the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *User) error
}
