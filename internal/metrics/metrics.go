// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of user record store operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of failed user record store operations",
		},
		[]string{"operation", "error_type"},
	)

	StoreConflictRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_conflict_retries_total",
			Help: "Total number of transactions retried after a write conflict",
		},
		[]string{"operation"},
	)

	StoreGCRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_gc_runs_total",
			Help: "Total number of value log garbage collection passes",
		},
	)

	StoreGCDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_gc_duration_seconds",
			Help:    "Duration of value log garbage collection passes",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	// Notifier Metrics
	NotifierSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifier_subscribers",
			Help: "Current number of locationAdded subscribers",
		},
	)

	NotifierPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_published_total",
			Help: "Total number of records published",
		},
	)

	NotifierDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_delivered_total",
			Help: "Total number of records queued to a subscriber",
		},
	)

	NotifierDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_dropped_total",
			Help: "Total number of records dropped because a subscriber buffer was full",
		},
	)

	// Sweep Metrics
	SweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Total number of inactivity sweeps",
		},
		[]string{"result"}, // success, error, panic
	)

	SweepDeletedUsers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_deleted_users_total",
			Help: "Total number of users removed by inactivity sweeps",
		},
	)

	SweepLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweep_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful sweep",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordStoreOperation records one store call. errorType is empty on success.
func RecordStoreOperation(operation string, duration time.Duration, errorType string) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if errorType != "" {
		StoreOperationErrors.WithLabelValues(operation, errorType).Inc()
	}
}

// RecordStoreGC records one value log GC pass.
func RecordStoreGC(duration time.Duration) {
	StoreGCRuns.Inc()
	StoreGCDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSweep records the outcome of one inactivity sweep.
func RecordSweep(deleted int, err error) {
	if err != nil {
		SweepRuns.WithLabelValues("error").Inc()
		return
	}
	SweepRuns.WithLabelValues("success").Inc()
	SweepDeletedUsers.Add(float64(deleted))
	SweepLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordSweepPanic records a sweep run that panicked.
func RecordSweepPanic() {
	SweepRuns.WithLabelValues("panic").Inc()
}
