// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

/*
Package supervisor provides process supervision for Geotrack using suture v4.

# Overview

The supervisor tree organizes services into three layers:

	RootSupervisor ("geotrack")
	├── DataSupervisor ("data-layer")
	│   └── StoreGCService (if STORE_GC_INTERVAL > 0 and the store is on disk)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── NotifierService
	│   └── SweepSchedulerService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer restarts independently: a crashing sweep scheduler never stops
the HTTP server from answering queries.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewStoreGCService(userStore, cfg.Store.GCInterval))
	tree.AddMessagingService(services.NewNotifierService(hub))
	tree.AddMessagingService(services.NewSweepSchedulerService(sched))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: Service stopped cleanly, will not be restarted
  - Return error: Service crashed, will be restarted
  - Context canceled: Shutdown requested, return promptly

# What Is NOT Supervised

BadgerDB is an embedded library, not a long-running service. It is opened
before the tree starts and closed after the tree has stopped, so every
supervised service sees an open store for its whole lifetime.

# Debugging Shutdown Issues

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("Service didn't stop: %v", svc)
	}
*/
package supervisor
