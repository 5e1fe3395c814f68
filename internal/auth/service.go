// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// Service provides registration and login.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	return &Service{users: users, hasher: hasher}, nil
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a new account. All three fields are required. The email
// must not already have an account; the repository's unique constraint backs
// the pre-check, so a concurrent duplicate registration still resolves to
// ErrEmailTaken. Registration does not log the user in.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	if name == "" || email == "" || password == "" {
		return nil, oops.Code("AUTH_VALIDATION").
			Wrapf(ErrValidation, "name, email and password are required")
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, oops.Code("AUTH_EMAIL_TAKEN").
			With("email", email).
			Wrap(ErrEmailTaken)
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user := NewUser(name, email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// Lost the race against a concurrent registration.
			return nil, oops.Code("AUTH_EMAIL_TAKEN").
				With("email", email).
				Wrap(ErrEmailTaken)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	return user, nil
}

// Login authenticates a user by email and password. Unknown email and wrong
// password return the same error. Uses constant-time operations to prevent
// timing-based account enumeration.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, oops.Code("AUTH_VALIDATION").
			Wrapf(ErrValidation, "email and password are required")
	}

	user, lookupErr := s.users.GetByEmail(ctx, email)

	// Determine which hash to verify against (real or dummy for timing
	// attack prevention).
	targetHash := dummyPasswordHash
	userExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		// A malformed stored hash reads as a failed match, never a 500.
		valid = false
	}

	if !userExists || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").
			Wrapf(ErrInvalidCredentials, "invalid email or password")
	}

	return user, nil
}
