// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudprep/cloudprep/internal/auth"
	"github.com/cloudprep/cloudprep/internal/config"
)

// fakeDirectory satisfies UserDirectory without a database.
type fakeDirectory struct {
	users map[string]*auth.User
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: make(map[string]*auth.User)}
}

func (d *fakeDirectory) EnsureIndexes(context.Context) error { return nil }

func (d *fakeDirectory) Create(_ context.Context, user *auth.User) error {
	if _, ok := d.users[user.Email]; ok {
		return auth.ErrEmailTaken
	}
	u := *user
	d.users[user.Email] = &u
	return nil
}

func (d *fakeDirectory) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	u, ok := d.users[email]
	if !ok {
		return nil, auth.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (d *fakeDirectory) UpdatePassword(_ context.Context, email, passwordHash string) error {
	u, ok := d.users[email]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		ListenAddr:  "127.0.0.1:0",
		MetricsAddr: "",
		LogFormat:   "text",
		Mongo: config.MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "cloudprep",
			Collection: "users",
		},
		Session: config.SessionConfig{
			TTL:           time.Hour,
			SweepSchedule: "@every 5m",
		},
	}
}

func testDeps(dir UserDirectory) *ServeDeps {
	return &ServeDeps{
		OpenDirectory: func(context.Context, config.MongoConfig) (UserDirectory, func(context.Context) error, error) {
			return dir, func(context.Context) error { return nil }, nil
		},
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "cloudprep", cmd.Use)

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Use)
}

func TestServeCmdFlags(t *testing.T) {
	cmd := NewServeCmd()

	for flag, want := range map[string]string{
		"listen-addr":            config.DefaultListenAddr,
		"metrics-addr":           config.DefaultMetricsAddr,
		"log-format":             config.DefaultLogFormat,
		"mongo-uri":              config.DefaultMongoURI,
		"mongo-database":         config.DefaultMongoDatabase,
		"mongo-collection":       config.DefaultMongoColl,
		"session-sweep-schedule": config.DefaultSweepSchedule,
	} {
		f := cmd.Flags().Lookup(flag)
		require.NotNil(t, f, "flag %s", flag)
		assert.Equal(t, want, f.DefValue, "flag %s", flag)
	}

	ttl := cmd.Flags().Lookup("session-ttl")
	require.NotNil(t, ttl)
	assert.Equal(t, config.DefaultSessionTTL.String(), ttl.DefValue)
}

func TestRunServeShutsDownOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := runServe(ctx, testConfig(), testDeps(newFakeDirectory()))
	assert.NoError(t, err)
}

func TestRunServeWithMetricsServer(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsAddr = "127.0.0.1:0"

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := runServe(ctx, cfg, testDeps(newFakeDirectory()))
	assert.NoError(t, err)
}

func TestRunServeDirectoryFailure(t *testing.T) {
	deps := &ServeDeps{
		OpenDirectory: func(context.Context, config.MongoConfig) (UserDirectory, func(context.Context) error, error) {
			return nil, nil, assert.AnError
		},
	}

	err := runServe(context.Background(), testConfig(), deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to user directory")
}

func TestRunServeBadSweepSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SweepSchedule = "not a schedule"

	err := runServe(context.Background(), cfg, testDeps(newFakeDirectory()))
	require.Error(t, err)
}
