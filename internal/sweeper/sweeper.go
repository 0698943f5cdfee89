// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

// Package sweeper removes users that stopped reporting their location.
//
// A run computes the cutoff date as today minus the configured number of
// days, using calendar arithmetic in the configured time zone, and deletes
// every user whose last update date equals the cutoff in MM/DD/YY form. The
// match is exact: a user last seen before the cutoff is not touched. Running
// the sweep twice on the same day is harmless.
package sweeper

import (
	"context"
	"time"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/metrics"
	"github.com/tomtom215/geotrack/internal/models"
)

// DefaultInactiveDays is how far back the cutoff lies when Config leaves it unset.
const DefaultInactiveDays = 30

// Deleter is the store capability the sweep needs.
type Deleter interface {
	DeleteByLastUpdateDate(ctx context.Context, date string) (int, error)
}

// Config configures a Sweeper.
type Config struct {
	// InactiveDays is the age of the date that gets swept.
	InactiveDays int

	// Location is the time zone "today" is computed in. Nil means time.Local.
	Location *time.Location

	// Now replaces the wall clock in tests.
	Now func() time.Time
}

// Result describes one sweep.
type Result struct {
	DeletedCount int    `json:"deletedCount"`
	Cutoff       string `json:"cutoff"`

	// Suppressed is the store error that was logged instead of returned.
	// DeletedCount is 0 whenever it is set.
	Suppressed error `json:"-"`
}

// Degraded reports whether the run hit a store failure.
func (r Result) Degraded() bool {
	return r.Suppressed != nil
}

// Sweeper runs the inactivity sweep against a store.
type Sweeper struct {
	store Deleter
	days  int
	loc   *time.Location
	now   func() time.Time
}

// New creates a Sweeper.
func New(store Deleter, cfg Config) *Sweeper {
	if cfg.InactiveDays <= 0 {
		cfg.InactiveDays = DefaultInactiveDays
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Sweeper{
		store: store,
		days:  cfg.InactiveDays,
		loc:   cfg.Location,
		now:   cfg.Now,
	}
}

// Cutoff returns the date string swept at instant now.
func (s *Sweeper) Cutoff(now time.Time) string {
	return CutoffDate(now.In(s.loc), s.days)
}

// CutoffDate subtracts days calendar days from now and formats the result
// as MM/DD/YY. Month and year boundaries roll over as with time.AddDate.
func CutoffDate(now time.Time, days int) string {
	return now.AddDate(0, 0, -days).Format(models.DateLayout)
}

// Run performs one sweep. It never returns an error; store failures are
// logged and reported through Result.Suppressed.
func (s *Sweeper) Run(ctx context.Context) Result {
	start := time.Now()
	cutoff := s.Cutoff(s.now())

	deleted, err := s.store.DeleteByLastUpdateDate(ctx, cutoff)
	metrics.RecordSweep(deleted, err)
	if err != nil {
		logging.Ctx(ctx).Error().
			Err(err).
			Str("cutoff", cutoff).
			Msg("Inactivity sweep failed")
		return Result{Cutoff: cutoff, Suppressed: err}
	}

	logging.Ctx(ctx).Info().
		Str("cutoff", cutoff).
		Int("deleted_count", deleted).
		Dur("duration", time.Since(start)).
		Msg("Inactivity sweep completed")
	return Result{DeletedCount: deleted, Cutoff: cutoff}
}
