// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

/*
Package middleware provides HTTP middleware for the Geotrack API.

All middleware uses the chi signature func(http.Handler) http.Handler:

  - RequestID: X-Request-ID propagation plus request and correlation IDs in
    the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge labelled
    by chi route pattern
  - RequestLogger: one structured zerolog entry per request

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PrometheusMetrics)

Response writers are wrapped with chi's WrapResponseWriter, which keeps
http.Hijacker available for the WebSocket upgrade.
*/
package middleware
