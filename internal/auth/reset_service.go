// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// ResetService handles the two-phase password reset flow.
//
// Phase 1 (RequestReset) establishes intent: the caller records the email in
// the visitor's session. Phase 2 (PerformReset) applies the new credential
// for that email. The session marker is the only authorization between the
// phases; completing a reset does not authenticate the visitor.
type ResetService struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewResetService creates a new ResetService.
func NewResetService(users UserRepository, hasher PasswordHasher) (*ResetService, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	return &ResetService{users: users, hasher: hasher}, nil
}

// RequestReset verifies that an account exists for the email. Unlike login,
// this reports an unknown email to the caller: the visitor supplied the
// address voluntarily, so confirming it is the flow working as intended.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return oops.Code("AUTH_VALIDATION").
			Wrapf(ErrValidation, "email is required")
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("RESET_EMAIL_NOT_FOUND").
				With("email", email).
				Wrap(ErrNotFound)
		}
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	return nil
}

// PerformReset replaces the credential of the account identified by email.
// Every failure leaves the stored credential unchanged and is retryable: the
// caller keeps its reset intent until this succeeds.
func (s *ResetService) PerformReset(ctx context.Context, email, newPassword string) error {
	if newPassword == "" {
		return oops.Code("AUTH_VALIDATION").
			Wrapf(ErrValidation, "new password is required")
	}
	if len(newPassword) < MinPasswordLength {
		return oops.Code("AUTH_VALIDATION").
			With("min_length", MinPasswordLength).
			Wrapf(ErrValidation, "password must be at least %d characters", MinPasswordLength)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Record vanished between phases.
			return oops.Code("RESET_UPDATE_FAILED").
				With("email", email).
				Wrap(ErrUpdateFailed)
		}
		return oops.Code("RESET_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	return nil
}
