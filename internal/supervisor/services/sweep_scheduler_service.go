// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package services

import (
	"context"
	"fmt"
)

// SweepScheduler is satisfied by *scheduler.Scheduler.
type SweepScheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// SweepSchedulerService adapts the inactivity sweep scheduler's Start/Stop
// lifecycle to suture's Serve.
type SweepSchedulerService struct {
	scheduler SweepScheduler
	name      string
}

// NewSweepSchedulerService wraps scheduler.
func NewSweepSchedulerService(scheduler SweepScheduler) *SweepSchedulerService {
	return &SweepSchedulerService{
		scheduler: scheduler,
		name:      "sweep-scheduler",
	}
}

// Serve starts the scheduler, blocks until ctx is canceled and then stops it.
// Stop waits for an in-flight sweep, which is bounded by the sweep's own
// execution timeout.
func (s *SweepSchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("sweep scheduler start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("sweep scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

func (s *SweepSchedulerService) String() string {
	return s.name
}
