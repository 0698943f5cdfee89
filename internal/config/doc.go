// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

/*
Package config provides centralized configuration management for Geotrack.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - Optional YAML file (CONFIG_PATH, or config.yaml / /etc/geotrack/config.yaml)
  - Environment variables

# Environment Variables

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 4000)
  - HTTP_TIMEOUT: Read/write timeout (default: 30s)
  - HTTP_SHUTDOWN_TIMEOUT: Graceful drain limit (default: 10s)

User Store (StoreConfig):
  - STORE_PATH: BadgerDB directory (default: /data/geotrack)
  - STORE_IN_MEMORY: Keep all data in memory (default: false)
  - STORE_SYNC_WRITES: fsync each commit (default: false)
  - STORE_GC_INTERVAL: Value log GC period, 0 disables (default: 10m)

Circuit Breaker (BreakerConfig):
  - BREAKER_ENABLED: Wrap the store in a circuit breaker (default: true)
  - BREAKER_FAILURES: Consecutive failures that open it (default: 5)
  - BREAKER_TIMEOUT: Open duration before probing (default: 30s)

Notifier (NotifierConfig):
  - NOTIFIER_BUFFER: Per-subscriber buffer (default: 256)

Inactivity Sweep (SweepConfig):
  - SWEEP_ENABLED: Run the scheduled sweep (default: true)
  - SWEEP_SCHEDULE: Cron expression (default: "0 0 * * *")
  - SWEEP_INACTIVE_DAYS: Age of the swept date (default: 30)
  - SWEEP_TIMEZONE: IANA zone for "today", empty for local

Security (SecurityConfig):
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS: Requests per window per IP (default: 100)
  - RATE_LIMIT_WINDOW: Window length (default: 1m)
  - DISABLE_RATE_LIMIT: Turn rate limiting off (default: false)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	addr := cfg.Server.Address()

Config is immutable after Load and safe for concurrent reads.
*/
package config
