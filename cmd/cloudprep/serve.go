// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cloudprep/cloudprep/internal/auth"
	"github.com/cloudprep/cloudprep/internal/auth/mongodb"
	"github.com/cloudprep/cloudprep/internal/config"
	"github.com/cloudprep/cloudprep/internal/logging"
	"github.com/cloudprep/cloudprep/internal/observability"
	"github.com/cloudprep/cloudprep/internal/session"
	"github.com/cloudprep/cloudprep/internal/web"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

// UserDirectory is the persistence surface serve needs from the document
// store.
type UserDirectory interface {
	auth.UserRepository
	EnsureIndexes(ctx context.Context) error
}

// ServeDeps allows tests to substitute the document store.
// A nil field selects the production implementation.
type ServeDeps struct {
	// OpenDirectory connects to the user directory and returns it with a
	// close function.
	OpenDirectory func(ctx context.Context, cfg config.MongoConfig) (UserDirectory, func(context.Context) error, error)
}

// openMongoDirectory is the production OpenDirectory.
func openMongoDirectory(ctx context.Context, cfg config.MongoConfig) (UserDirectory, func(context.Context) error, error) {
	client, err := mongodb.Connect(ctx, cfg.URI)
	if err != nil {
		return nil, nil, err
	}
	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	return mongodb.NewUserRepository(coll), client.Disconnect, nil
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the CloudPrep web server",
		Long: `Start the web server along with its metrics endpoint, the MongoDB
user directory connection, and the session sweeper.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg, nil)
		},
	}

	cmd.Flags().String("listen-addr", config.DefaultListenAddr, "web listen address")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("mongo-uri", config.DefaultMongoURI, "MongoDB connection URI")
	cmd.Flags().String("mongo-database", config.DefaultMongoDatabase, "MongoDB database name")
	cmd.Flags().String("mongo-collection", config.DefaultMongoColl, "MongoDB users collection name")
	cmd.Flags().Duration("session-ttl", config.DefaultSessionTTL, "session idle expiry (0 = never)")
	cmd.Flags().String("session-sweep-schedule", config.DefaultSweepSchedule, "cron schedule for expired-session cleanup")

	return cmd
}

// runServe wires the process together and blocks until ctx is cancelled or a
// server fails.
func runServe(ctx context.Context, cfg *config.Config, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.OpenDirectory == nil {
		deps.OpenDirectory = openMongoDirectory
	}

	logging.SetDefault("cloudprep", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting cloudprep",
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
		"mongo_database", cfg.Mongo.Database,
	)

	directory, closeDirectory, err := deps.OpenDirectory(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect to user directory: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := closeDirectory(closeCtx); err != nil {
			logger.Error("user directory close failed", "error", err)
		}
	}()

	if err := directory.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}
	logger.Info("user directory ready")

	hasher := auth.NewArgon2idHasher()
	authSvc, err := auth.NewService(directory, hasher)
	if err != nil {
		return err
	}
	resetSvc, err := auth.NewResetService(directory, hasher)
	if err != nil {
		return err
	}

	sessions := session.NewMemoryStore(cfg.Session.TTL)
	sweeper, err := session.NewSweeper(sessions, cfg.Session.SweepSchedule, logger)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	var ready atomic.Bool

	// The metrics endpoint is optional; the web server still records into a
	// private registry when it is disabled.
	var metrics *observability.Metrics
	var obsErr <-chan error
	if cfg.MetricsAddr != "" {
		obs := observability.NewServer(cfg.MetricsAddr, ready.Load)
		metrics = obs.Metrics()

		obsErr, err = obs.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := obs.Stop(stopCtx); err != nil {
				logger.Error("observability server stop failed", "error", err)
			}
		}()
	} else {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	metrics.ObserveActiveSessions(sessions.Count)

	webServer, err := web.NewServer(web.Config{
		Addr:     cfg.ListenAddr,
		Auth:     authSvc,
		Resets:   resetSvc,
		Sessions: sessions,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	webErr, err := webServer.Start()
	if err != nil {
		return fmt.Errorf("failed to start web server: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := webServer.Stop(stopCtx); err != nil {
			logger.Error("web server stop failed", "error", err)
		}
	}()

	ready.Store(true)
	logger.Info("cloudprep ready", "addr", webServer.Addr())

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-webErr:
		if err != nil {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	case err := <-obsErr:
		if err != nil {
			return fmt.Errorf("observability server failed: %w", err)
		}
		return nil
	}
}
