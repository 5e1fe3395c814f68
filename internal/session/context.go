// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package session

import "context"

// ctxKey is the context key for the request's session.
type ctxKey struct{}

// NewContext returns a context carrying the given session.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the session carried by ctx, or nil if none.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(ctxKey{}).(*Session)
	return sess
}
