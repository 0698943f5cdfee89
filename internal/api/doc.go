// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

/*
Package api provides the HTTP surface of Geotrack using the Chi router.

# Endpoints

	GET    /ping                                  liveness text "Ping"
	GET    /metrics                               Prometheus exposition
	GET    /api/v1/health/live                    process is up
	GET    /api/v1/health/ready                   store answers Ping
	GET    /api/v1/hello                          "Ping"
	GET    /api/v1/users                          every user
	POST   /api/v1/users                          {"username": "..."} -> 201
	GET    /api/v1/users/{id}                     one user
	DELETE /api/v1/users/{id}                     removed record
	PUT    /api/v1/users/{id}/location            position report, broadcast
	GET    /api/v1/locations?ids=a,b              users among ids
	POST   /api/v1/locations                      {"ids": [...]}
	POST   /api/v1/maintenance/cleanup            run the inactivity sweep now
	GET    /api/v1/subscriptions/location-added   WebSocket locationAdded stream

# Response Envelope

Every JSON endpoint answers with models.APIResponse. Errors carry a stable
code:

	400 VALIDATION_ERROR     malformed body or field, or a user id shorter than 24 characters
	404 NOT_FOUND            unknown user id
	409 DUPLICATE_USERNAME   username taken
	500 LOOKUP_FAILED, CREATE_FAILED, UPDATE_FAILED, DELETE_FAILED

UPDATE_FAILED and DELETE_FAILED use 404 when the id does not exist and 400
when it is malformed, keeping their code.

When GET /api/v1/users or the cleanup endpoint had to suppress a store
failure the response is still 200 and metadata.degraded is true.

# Middleware Stack

Global: RequestID, RealIP, RequestLogger, Recoverer, CORS. The /api/v1
group adds per-IP rate limiting, security headers and Prometheus metrics;
health probes get a separate, more permissive limit.
*/
package api
