// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

// Package session provides server-side per-visitor state keyed by an opaque
// client-held token.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenBytes is the size of the random session token (64 hex chars).
const TokenBytes = 32

// Session is one visitor's server-side state. UserEmail/UserID presence is
// the sole authentication predicate; ResetEmail presence is the sole gate on
// the reset-completion step. The two are independent.
type Session struct {
	ID         string
	UserEmail  string
	UserID     string
	ResetEmail string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// IsAuthenticated reports whether a login populated this session.
func (s *Session) IsAuthenticated() bool {
	return s.UserEmail != ""
}

// HasResetIntent reports whether phase 1 of the reset flow completed.
func (s *Session) HasResetIntent() bool {
	return s.ResetEmail != ""
}

// Authenticate records a successful login.
func (s *Session) Authenticate(email, userID string) {
	s.UserEmail = email
	s.UserID = userID
}

// Clear removes all visitor state. Used by logout; idempotent.
func (s *Session) Clear() {
	s.UserEmail = ""
	s.UserID = ""
	s.ResetEmail = ""
}

// newSession creates an empty session.
func newSession() *Session {
	now := time.Now()
	return &Session{
		ID:         ulid.Make().String(),
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// GenerateToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token goes to the client cookie; only the hash is stored.
func GenerateToken() (token, hash string, err error) {
	tokenBytes := make([]byte, TokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashToken(token)

	return token, hash, nil
}

// HashToken computes the SHA-256 hash of a session token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Store manages session persistence. Implementations must be safe for
// concurrent use; each visitor's session is only ever mutated by that
// visitor's own requests, so last-writer-wins per session is acceptable.
type Store interface {
	// Create stores a new empty session and returns it with its plaintext
	// token.
	Create(ctx context.Context) (*Session, string, error)

	// Get retrieves the session for a plaintext token and refreshes its
	// last-seen time. Returns ErrNoSession for unknown or expired tokens.
	Get(ctx context.Context, token string) (*Session, error)

	// Save writes back a mutated session. Returns ErrNoSession if the
	// session no longer exists.
	Save(ctx context.Context, sess *Session) error

	// Delete removes a session by ID. Deleting an absent session is a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes idle sessions and returns the count removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
