// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudprep/cloudprep/internal/auth"
	"github.com/cloudprep/cloudprep/pkg/errutil"
)

func TestArgon2idHasher_HashAndVerify(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	valid, err := hasher.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = hasher.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestArgon2idHasher_SameInputDifferentDigests(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)
	second, err := hasher.Hash("secret1")
	require.NoError(t, err)

	// Random salt: digests differ but both verify.
	assert.NotEqual(t, first, second)

	valid, err := hasher.Verify("secret1", first)
	require.NoError(t, err)
	assert.True(t, valid)
	valid, err = hasher.Verify("secret1", second)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestArgon2idHasher_EmptyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	_, err := hasher.Hash("")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
}

func TestArgon2idHasher_MalformedHash(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not a hash", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{"bad hash encoding", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
		{"missing sections", "$argon2id$v=19$m=65536,t=1,p=4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, err := hasher.Verify("password", tt.hash)
			require.Error(t, err)
			assert.False(t, valid)
			errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
		})
	}
}
