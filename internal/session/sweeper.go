// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package session

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/samber/oops"

	"github.com/cloudprep/cloudprep/pkg/errutil"
)

// Sweeper periodically removes expired sessions on a cron schedule.
type Sweeper struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewSweeper schedules DeleteExpired on store per the cron spec in schedule
// (e.g. "@every 5m"). The sweeper is created stopped; call Start.
func NewSweeper(store Store, schedule string, logger *slog.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		removed, err := store.DeleteExpired(context.Background())
		if err != nil {
			errutil.LogError(logger, "session sweep failed", err)
			return
		}
		if removed > 0 {
			logger.Info("swept expired sessions", "removed", removed)
		}
	})
	if err != nil {
		return nil, oops.Code("SESSION_SWEEP_SCHEDULE_INVALID").
			With("schedule", schedule).
			Wrap(err)
	}

	return &Sweeper{cron: c, logger: logger}, nil
}

// Start begins running sweeps on schedule.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
