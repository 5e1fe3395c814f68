// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

// Package auth provides authentication primitives for CloudPrep.
//
// # Domain Types
//
// User records are created with NewUser, which assigns the identifier and
// timestamps. Direct struct initialization bypasses that and may create
// invalid state. Repository implementations receive pre-validated values.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - registration and login
//   - ResetService - the two-phase password reset flow
//
// Services are created with New*Service constructors that validate
// dependencies. Both report failures as oops errors wrapping the sentinel
// errors in errors.go, so callers can branch with errors.Is while logs keep
// the full code and context.
package auth
