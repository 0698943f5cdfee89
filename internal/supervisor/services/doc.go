// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

/*
Package services provides suture.Service wrappers for Geotrack components.

Each wrapper translates a component's own lifecycle into suture's
context-aware Serve and names itself through fmt.Stringer so supervisor
events identify it.

# Available Services

HTTPServerService (api-layer, "http-server"):
  - Wraps *http.Server, converting ListenAndServe to Serve
  - Drains in-flight requests within a configurable shutdown timeout

NotifierService (messaging-layer, "notifier"):
  - Delegates to notifier.Notifier.RunWithContext
  - Closes every locationAdded subscription when the tree stops

SweepSchedulerService (messaging-layer, "sweep-scheduler"):
  - Adapts scheduler.Scheduler's Start/Stop pattern
  - Stop waits for an in-flight sweep

StoreGCService (data-layer, "store-gc"):
  - Runs BadgerDB value log GC on a ticker
  - Logs failed passes instead of crashing

# Error Handling

	nil         -> stopped cleanly, not restarted
	error       -> crashed, restarted by the supervisor
	ctx.Err()   -> shutdown requested
*/
package services
