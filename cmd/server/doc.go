// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

/*
Package main is the entry point for the Geotrack server.

Geotrack keeps one record per tracked user (username, last known coordinates,
optional street address, date and time of the last update), serves queries
over those records and pushes every location write to live WebSocket
subscribers.

# Application Architecture

	RootSupervisor ("geotrack")
	├── DataSupervisor ("data-layer")
	│   └── Store GC (on-disk stores only)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Notifier (locationAdded fan-out)
	│   └── Sweep Scheduler (cron-driven inactivity sweep)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (REST + WebSocket)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. User store: BadgerDB, optionally behind a gobreaker circuit breaker
 4. Notifier, sweeper and tracking service
 5. Sweep scheduler
 6. Chi router with WebSocket subscription endpoint
 7. Supervisor tree: suture v4

The store is closed only after the supervisor tree has stopped.

# Configuration

	HTTP_PORT=4000               # HTTP server port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	STORE_PATH=/data/geotrack    # BadgerDB directory
	STORE_IN_MEMORY=false        # ephemeral store
	SWEEP_SCHEDULE="0 0 * * *"   # inactivity sweep, 5-field cron
	SWEEP_INACTIVE_DAYS=30
	CORS_ORIGINS=*

See internal/config for the full list.

# Signals

SIGINT and SIGTERM cancel the root context. Each service gets
HTTP_SHUTDOWN_TIMEOUT to stop; services that miss it are logged.
*/
package main
