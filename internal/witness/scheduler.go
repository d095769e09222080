// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package witness

import (
	"context"
	"time"

	"github.com/luxfi/sdag/internal/config"
	"github.com/luxfi/sdag/internal/log"
)

// PostFunc composes and submits one witnessing/heartbeat unit. Errors
// are logged, never fatal: a missed posting round is not a process-abort
// condition, unlike a main-chain ordering failure.
type PostFunc func(ctx context.Context) error

// Scheduler posts a witnessing unit every cfg.WitnessPostInterval for as
// long as it is running, mirroring the periodic witness-posting loop
// every active witness node runs.
type Scheduler struct {
	interval time.Duration
	post     PostFunc
	log      log.Logger
}

// NewScheduler constructs a Scheduler paced by cfg.WitnessPostInterval.
func NewScheduler(cfg config.Config, logger log.Logger, post PostFunc) *Scheduler {
	return &Scheduler{
		interval: cfg.WitnessPostInterval,
		post:     post,
		log:      log.New(logger, "witness"),
	}
}

// Run blocks, posting on every tick until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.post(ctx); err != nil {
				s.log.Warn("witness post failed", "error", err)
			}
		}
	}
}
