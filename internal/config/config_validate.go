// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/scheduler"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateBreaker(); err != nil {
		return err
	}

	if c.Notifier.BufferSize <= 0 {
		return fmt.Errorf("NOTIFIER_BUFFER must be positive, got %d", c.Notifier.BufferSize)
	}

	if err := c.validateSweep(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	if c.Store.GCInterval < 0 {
		return fmt.Errorf("STORE_GC_INTERVAL must not be negative, got %v", c.Store.GCInterval)
	}
	if c.Store.GCDiscardRatio <= 0 || c.Store.GCDiscardRatio >= 1 {
		return fmt.Errorf("STORE_GC_DISCARD_RATIO must be between 0 and 1 exclusive, got %v", c.Store.GCDiscardRatio)
	}
	if c.Store.MaxConflictRetries < 0 {
		return fmt.Errorf("STORE_MAX_CONFLICT_RETRIES must not be negative, got %d", c.Store.MaxConflictRetries)
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("BREAKER_FAILURES must be at least 1")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive, got %v", c.Breaker.Timeout)
	}
	return nil
}

func (c *Config) validateSweep() error {
	if c.Sweep.InactiveDays < 1 {
		return fmt.Errorf("SWEEP_INACTIVE_DAYS must be at least 1, got %d", c.Sweep.InactiveDays)
	}
	if _, err := c.Sweep.Location(); err != nil {
		return fmt.Errorf("SWEEP_TIMEZONE: %w", err)
	}
	if !c.Sweep.Enabled {
		return nil
	}
	if _, err := scheduler.ParseCron(c.Sweep.Schedule); err != nil {
		return fmt.Errorf("SWEEP_SCHEDULE %q: %w", c.Sweep.Schedule, err)
	}
	if c.Sweep.ExecutionTimeout <= 0 {
		return fmt.Errorf("SWEEP_TIMEOUT must be positive, got %v", c.Sweep.ExecutionTimeout)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
