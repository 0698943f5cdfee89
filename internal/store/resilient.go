// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/metrics"
	"github.com/tomtom215/geotrack/internal/models"
)

// BreakerConfig configures the circuit breaker in front of a Store.
type BreakerConfig struct {
	// Name labels metrics and log lines.
	Name string

	// MaxRequests is how many calls are let through while half-open.
	MaxRequests uint32

	// Interval resets the failure counts while closed. Zero never resets.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "user-store",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// ResilientStore guards a Store with a circuit breaker.
//
// Domain outcomes such as ErrNotFound or ErrDuplicateUsername count as
// successes; only storage failures move the breaker towards open. While
// open, calls fail fast with ErrUnavailable.
type ResilientStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

// NewResilientStore wraps inner.
func NewResilientStore(inner Store, cfg BreakerConfig) *ResilientStore {
	if cfg.Name == "" {
		cfg.Name = DefaultBreakerConfig().Name
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	name := cfg.Name
	threshold := cfg.ConsecutiveFailures

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures < threshold {
				return false
			}
			logging.Warn().
				Str("breaker", name).
				Uint32("consecutive_failures", counts.ConsecutiveFailures).
				Msg("[CIRCUIT BREAKER] Opening circuit")
			return true
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				IsDomainError(err) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
	})

	return &ResilientStore{inner: inner, cb: cb, name: name}
}

// State returns the breaker state.
func (r *ResilientStore) State() gobreaker.State {
	return r.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// execute runs fn through the breaker and restores its static result type.
func execute[T any](r *ResilientStore, fn func() (T, error)) (T, error) {
	var zero T

	result, err := r.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "rejected").Inc()
			return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if IsDomainError(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "failure").Inc()
		}
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func (r *ResilientStore) Create(ctx context.Context, username string) (*models.TrackedUser, error) {
	return execute(r, func() (*models.TrackedUser, error) {
		return r.inner.Create(ctx, username)
	})
}

func (r *ResilientStore) GetByID(ctx context.Context, id string) (*models.TrackedUser, error) {
	return execute(r, func() (*models.TrackedUser, error) {
		return r.inner.GetByID(ctx, id)
	})
}

func (r *ResilientStore) GetByIDs(ctx context.Context, ids []string) ([]models.TrackedUser, error) {
	return execute(r, func() ([]models.TrackedUser, error) {
		return r.inner.GetByIDs(ctx, ids)
	})
}

func (r *ResilientStore) GetAll(ctx context.Context) ([]models.TrackedUser, error) {
	return execute(r, func() ([]models.TrackedUser, error) {
		return r.inner.GetAll(ctx)
	})
}

func (r *ResilientStore) Update(ctx context.Context, id string, update models.LocationUpdate) (*models.TrackedUser, error) {
	return execute(r, func() (*models.TrackedUser, error) {
		return r.inner.Update(ctx, id, update)
	})
}

func (r *ResilientStore) Delete(ctx context.Context, id string) (*models.TrackedUser, error) {
	return execute(r, func() (*models.TrackedUser, error) {
		return r.inner.Delete(ctx, id)
	})
}

func (r *ResilientStore) DeleteByLastUpdateDate(ctx context.Context, date string) (int, error) {
	return execute(r, func() (int, error) {
		return r.inner.DeleteByLastUpdateDate(ctx, date)
	})
}

// Ping fails fast while the breaker is open.
func (r *ResilientStore) Ping(ctx context.Context) error {
	_, err := execute(r, func() (struct{}, error) {
		return struct{}{}, r.inner.Ping(ctx)
	})
	return err
}

// Close closes the wrapped store without going through the breaker.
func (r *ResilientStore) Close() error {
	return r.inner.Close()
}

var _ Store = (*ResilientStore)(nil)
var _ Store = (*BadgerStore)(nil)
