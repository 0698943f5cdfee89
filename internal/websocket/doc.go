// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

/*
Package websocket exposes the locationAdded subscription over WebSocket.

Each upgraded connection gets its own notifier subscription. Records are
pushed as JSON text frames:

	{"type":"locationAdded","data":{"_id":"...","username":"ana",...}}

A client may send {"type":"ping"} at any time and receives {"type":"pong"}.
Other client frames are ignored.

# Connection Lifecycle

  - The server pings every 54s; a client that has not answered within 60s
    is dropped
  - Writes time out after 10s
  - Client frames larger than 512 KB close the connection
  - When the notifier shuts down the client receives a close frame

There is no replay. A client only sees records committed after its
subscription was attached, which happens before the upgrade response is
written.

# Origin Checking

Handler accepts a connection when its Origin header matches one of the
configured origins. A "*" entry accepts any origin, including requests
without an Origin header.
*/
package websocket
