// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudprep/cloudprep/internal/auth"
	"github.com/cloudprep/cloudprep/internal/auth/mocks"
	"github.com/cloudprep/cloudprep/pkg/errutil"
)

func TestNewResetService_NilDependencies(t *testing.T) {
	tests := []struct {
		name        string
		users       auth.UserRepository
		hasher      auth.PasswordHasher
		expectError string
	}{
		{
			name:        "nil user repository",
			users:       nil,
			hasher:      mocks.NewMockPasswordHasher(t),
			expectError: "user repository is required",
		},
		{
			name:        "nil password hasher",
			users:       mocks.NewMockUserRepository(t),
			hasher:      nil,
			expectError: "password hasher is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewResetService(tt.users, tt.hasher)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestResetService_RequestReset(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds for a known email", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewResetService(users, hasher)
		require.NoError(t, err)

		users.On("GetByEmail", ctx, "a@x.com").Return(&auth.User{ID: "01X", Email: "a@x.com"}, nil)

		require.NoError(t, svc.RequestReset(ctx, "a@x.com"))
	})

	t.Run("empty email fails validation", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewResetService(users, hasher)
		require.NoError(t, err)

		err = svc.RequestReset(ctx, "")
		require.ErrorIs(t, err, auth.ErrValidation)
		users.AssertNotCalled(t, "GetByEmail")
	})

	t.Run("unknown email is reported", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewResetService(users, hasher)
		require.NoError(t, err)

		users.On("GetByEmail", ctx, "ghost@x.com").Return(nil, auth.ErrNotFound)

		err = svc.RequestReset(ctx, "ghost@x.com")
		require.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "RESET_EMAIL_NOT_FOUND")
	})

	t.Run("store failure surfaces as request error", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewResetService(users, hasher)
		require.NoError(t, err)

		users.On("GetByEmail", ctx, "a@x.com").Return(nil, assert.AnError)

		err = svc.RequestReset(ctx, "a@x.com")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_REQUEST_FAILED")
	})
}

func TestResetService_PerformReset(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes and stores the new password", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewResetService(users, hasher)
		require.NoError(t, err)

		hasher.On("Hash", "newpass1").Return("$argon2id$new", nil)
		users.On("UpdatePassword", ctx, "a@x.com", "$argon2id$new").Return(nil)

		require.NoError(t, svc.PerformReset(ctx, "a@x.com", "newpass1"))
	})

	t.Run("empty password fails validation without touching the store", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewResetService(users, hasher)
		require.NoError(t, err)

		err = svc.PerformReset(ctx, "a@x.com", "")
		require.ErrorIs(t, err, auth.ErrValidation)
		users.AssertNotCalled(t, "UpdatePassword")
	})

	t.Run("short password fails validation without touching the store", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewResetService(users, hasher)
		require.NoError(t, err)

		err = svc.PerformReset(ctx, "a@x.com", "short")
		require.ErrorIs(t, err, auth.ErrValidation)
		errutil.AssertErrorCode(t, err, "AUTH_VALIDATION")
		hasher.AssertNotCalled(t, "Hash")
		users.AssertNotCalled(t, "UpdatePassword")
	})

	t.Run("zero matched records is a retryable update failure", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewResetService(users, hasher)
		require.NoError(t, err)

		hasher.On("Hash", "newpass1").Return("$argon2id$new", nil)
		users.On("UpdatePassword", ctx, "gone@x.com", "$argon2id$new").Return(auth.ErrNotFound)

		err = svc.PerformReset(ctx, "gone@x.com", "newpass1")
		require.ErrorIs(t, err, auth.ErrUpdateFailed)
		errutil.AssertErrorCode(t, err, "RESET_UPDATE_FAILED")
	})

	t.Run("store failure surfaces as reset error", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewResetService(users, hasher)
		require.NoError(t, err)

		hasher.On("Hash", "newpass1").Return("$argon2id$new", nil)
		users.On("UpdatePassword", ctx, "a@x.com", "$argon2id$new").Return(assert.AnError)

		err = svc.PerformReset(ctx, "a@x.com", "newpass1")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_FAILED")
	})
}
