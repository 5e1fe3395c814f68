// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned when a token or ID resolves to no live session.
var ErrNoSession = errors.New("no such session")

// record pairs a stored session with its token hash.
type record struct {
	sess      Session
	tokenHash string
}

// MemoryStore is an in-process Store. Sessions do not survive a restart,
// which matches the lifecycle the rest of the system assumes: restart logs
// everyone out.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	byID    map[string]*record
	byToken map[string]string // token hash -> session ID
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore. Sessions idle longer than ttl are
// treated as expired; ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		byID:    make(map[string]*record),
		byToken: make(map[string]string),
		now:     time.Now,
	}
}

// Create stores a new empty session and returns it with its plaintext token.
func (m *MemoryStore) Create(_ context.Context) (*Session, string, error) {
	token, hash, err := GenerateToken()
	if err != nil {
		return nil, "", err
	}

	sess := newSession()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[sess.ID] = &record{sess: *sess, tokenHash: hash}
	m.byToken[hash] = sess.ID

	out := *sess
	return &out, token, nil
}

// Get retrieves the session for a plaintext token. The returned session is a
// copy; mutations must be written back with Save.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	hash := HashToken(token)

	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byToken[hash]
	if !ok {
		return nil, ErrNoSession
	}
	rec, ok := m.byID[id]
	if !ok {
		delete(m.byToken, hash)
		return nil, ErrNoSession
	}
	if m.expired(rec) {
		delete(m.byID, id)
		delete(m.byToken, hash)
		return nil, ErrNoSession
	}

	rec.sess.LastSeenAt = m.now()
	out := rec.sess
	return &out, nil
}

// Save writes back a mutated session.
func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[sess.ID]
	if !ok {
		return ErrNoSession
	}
	tokenHash := rec.tokenHash
	rec.sess = *sess
	rec.tokenHash = tokenHash
	return nil
}

// Delete removes a session by ID.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return nil
	}
	delete(m.byToken, rec.tokenHash)
	delete(m.byID, id)
	return nil
}

// DeleteExpired removes idle sessions and returns the count removed.
func (m *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, rec := range m.byID {
		if m.expired(rec) {
			delete(m.byToken, rec.tokenHash)
			delete(m.byID, id)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of live sessions, expired included until swept.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (m *MemoryStore) expired(rec *record) bool {
	if m.ttl <= 0 {
		return false
	}
	return m.now().Sub(rec.sess.LastSeenAt) > m.ttl
}
