// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package auth

import "errors"

// Sentinel errors for the authentication domain. Services wrap these in
// oops errors; callers branch with errors.Is.
var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidCredentials is returned on login failure. Unknown email and
	// wrong password produce this same error so account existence does not
	// leak.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when registering an email that already has
	// an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUpdateFailed is returned when a password update matched no record.
	ErrUpdateFailed = errors.New("update matched no record")
)
