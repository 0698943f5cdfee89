// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional config file and environment variables.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Notifier NotifierConfig `koanf:"notifier"`
	Sweep    SweepConfig    `koanf:"sweep"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Address returns the host:port the server listens on.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// StoreConfig holds BadgerDB settings for the user store.
type StoreConfig struct {
	Path       string `koanf:"path"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`

	MaxConflictRetries int `koanf:"max_conflict_retries"`
}

// BreakerConfig holds circuit breaker settings for the user store.
type BreakerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	MaxRequests         uint32        `koanf:"max_requests"` // allowed through while half-open
	Interval            time.Duration `koanf:"interval"`     // closed-state count reset period
	Timeout             time.Duration `koanf:"timeout"`      // open duration before probing
	ConsecutiveFailures uint32        `koanf:"consecutive_failures"`
}

// NotifierConfig holds locationAdded fan-out settings.
type NotifierConfig struct {
	BufferSize int `koanf:"buffer_size"`
}

// SweepConfig holds inactivity sweep settings.
type SweepConfig struct {
	Enabled          bool          `koanf:"enabled"`
	Schedule         string        `koanf:"schedule"`
	InactiveDays     int           `koanf:"inactive_days"`
	Timezone         string        `koanf:"timezone"` // IANA name; empty means local time
	ExecutionTimeout time.Duration `koanf:"execution_timeout"`
}

// Location resolves Timezone.
func (s SweepConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings for zerolog.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from all sources in priority order:
//  1. Built-in defaults
//  2. Config file (CONFIG_PATH, or one of DefaultConfigPaths)
//  3. Environment variables
func Load() (*Config, error) {
	return LoadWithKoanf()
}
