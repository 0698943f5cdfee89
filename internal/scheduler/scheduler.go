// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/metrics"
	"github.com/tomtom215/geotrack/internal/sweeper"
)

// SweepRunner runs one inactivity sweep. Satisfied by *sweeper.Sweeper.
type SweepRunner interface {
	Run(ctx context.Context) sweeper.Result
}

// Config holds configuration for the sweep scheduler.
type Config struct {
	// Schedule is a 5-field cron expression (default: DefaultSchedule).
	Schedule string

	// Location is the time zone Schedule is evaluated in. Nil means time.Local.
	Location *time.Location

	// ExecutionTimeout bounds a single sweep (default: 1 minute).
	ExecutionTimeout time.Duration

	// Enabled controls whether sweeps are triggered at all.
	Enabled bool
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Schedule:         DefaultSchedule,
		ExecutionTimeout: time.Minute,
		Enabled:          true,
	}
}

// Scheduler triggers the inactivity sweep at the times named by a cron
// expression. Sweeps never overlap; a sweep that is still running when the
// next one falls due delays it.
type Scheduler struct {
	runner SweepRunner
	cron   *CronExpression
	config Config
	logger zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	nextRun time.Time
	lastRun time.Time
	last    sweeper.Result
}

// New creates a Scheduler. It fails if the schedule does not parse.
func New(runner SweepRunner, config Config) (*Scheduler, error) {
	if config.Schedule == "" {
		config.Schedule = DefaultSchedule
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.ExecutionTimeout <= 0 {
		config.ExecutionTimeout = time.Minute
	}

	cron, err := ParseCron(config.Schedule)
	if err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", config.Schedule, err)
	}

	return &Scheduler{
		runner: runner,
		cron:   cron,
		config: config,
		logger: logging.WithComponent("sweep-scheduler"),
	}, nil
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info().Msg("Inactivity sweep scheduler disabled")
		go func() {
			defer close(s.doneCh)
			select {
			case <-s.stopCh:
			case <-ctx.Done():
			}
		}()
		return nil
	}

	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Str("timezone", s.config.Location.String()).
		Msg("Starting inactivity sweep scheduler")

	go s.run(ctx)
	return nil
}

// Stop stops the scheduler loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.logger.Info().Msg("Inactivity sweep scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	for {
		next := s.cron.NextRun(time.Now(), s.config.Location)
		if next.IsZero() {
			s.logger.Error().Str("schedule", s.config.Schedule).Msg("Schedule never fires; scheduler idle")
			select {
			case <-s.stopCh:
			case <-ctx.Done():
			}
			return
		}

		s.mu.Lock()
		s.nextRun = next
		s.mu.Unlock()
		s.logger.Debug().Time("next_run", next).Msg("Next inactivity sweep scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			s.RunOnce(ctx)
		case <-s.stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// RunOnce performs one sweep immediately, bounded by ExecutionTimeout. A
// panic inside the sweep is recovered and logged so the loop keeps running.
func (s *Scheduler) RunOnce(ctx context.Context) (result sweeper.Result) {
	execCtx, cancel := context.WithTimeout(logging.ContextWithNewCorrelationID(ctx), s.config.ExecutionTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordSweepPanic()
			s.logger.Error().
				Interface("panic", r).
				Msg("Inactivity sweep panicked")
			result = sweeper.Result{Suppressed: fmt.Errorf("sweep panicked: %v", r)}
		}
		s.mu.Lock()
		s.lastRun = time.Now()
		s.last = result
		s.mu.Unlock()
	}()

	return s.runner.Run(execCtx)
}

// NextRun returns when the next sweep is due. Zero until the loop has started.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// LastRun returns when the previous sweep finished and its result.
func (s *Scheduler) LastRun() (time.Time, sweeper.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.last
}
