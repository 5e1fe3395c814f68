// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package mongodb

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connection retry parameters for startup.
const (
	connectPingTimeout = 5 * time.Second
	connectBaseBackoff = 500 * time.Millisecond
	connectMaxRetries  = 5
)

// Connect dials the MongoDB deployment at uri and verifies it responds to a
// ping, retrying with exponential backoff. The store may still be starting
// when the process comes up; a deployment that never answers fails startup.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, oops.Code("MONGO_CONNECT_FAILED").Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectMaxRetries, retry.NewExponential(connectBaseBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background()) //nolint:errcheck // Best effort teardown on failed startup
		return nil, oops.Code("MONGO_PING_FAILED").
			With("uri", uri).
			Wrap(err)
	}

	return client, nil
}
