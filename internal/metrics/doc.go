// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

/*
Package metrics provides the Prometheus instrumentation for Geotrack.

All collectors are registered on the default registry through promauto and
exposed at /metrics:

	curl http://localhost:4000/metrics

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Store:
  - store_operation_duration_seconds{operation}
  - store_operation_errors_total{operation,error_type}
  - store_conflict_retries_total{operation}
  - store_gc_runs_total, store_gc_duration_seconds

Notifier:
  - notifier_subscribers
  - notifier_published_total
  - notifier_delivered_total
  - notifier_dropped_total

Sweep:
  - sweep_runs_total{result}
  - sweep_deleted_users_total
  - sweep_last_success_timestamp_seconds

Circuit breaker:
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result},
    circuit_breaker_state_transitions_total{name,from_state,to_state}

WebSocket:
  - websocket_connections, websocket_messages_sent_total,
    websocket_messages_received_total, websocket_errors_total{error_type}
*/
package metrics
