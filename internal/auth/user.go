// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// MinPasswordLength is enforced when a password is changed through the
// reset flow.
const MinPasswordLength = 6

// User represents a registered account. Email is the de-facto unique
// identity; Name carries no uniqueness constraint.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a User with a fresh identifier and timestamps.
// The caller is responsible for hashing the password beforehand.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrEmailTaken if a user with the
	// same email already exists.
	Create(ctx context.Context, user *User) error

	// GetByEmail retrieves a user by exact email match.
	// Returns ErrNotFound if no user has the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword replaces the password hash of the user with the given
	// email. Returns ErrNotFound if no record matched.
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}
