// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package models

import (
	"time"
)

// APIResponse is the envelope written by every JSON endpoint.
//
// Status is "success" (see Data) or "error" (see Error).
//
//	{
//	  "status": "success",
//	  "data": {"_id": "66f1...", "username": "alice", ...},
//	  "metadata": {"timestamp": "2026-10-15T12:00:00Z"}
//	}
//
//	{
//	  "status": "error",
//	  "error": {"code": "NOT_FOUND", "message": "user not found"},
//	  "metadata": {"timestamp": "2026-10-15T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	// Degraded is set when the data is a fallback produced after a suppressed
	// store failure (for example an empty user list).
	Degraded bool `json:"degraded,omitempty"`
}

// APIError is the error detail of a failed request.
//
// Codes in use:
//   - VALIDATION_ERROR: malformed input
//   - NOT_FOUND: unknown user id
//   - DUPLICATE_USERNAME: username already taken
//   - LOOKUP_FAILED, CREATE_FAILED, UPDATE_FAILED, DELETE_FAILED: store-layer failures
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	StoreOK       bool      `json:"store_ok"`
	Subscribers   int       `json:"subscribers"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
}
