// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/models"
)

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.healthStatus("alive", true),
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthReady handles readiness probe requests.
// Returns 503 when the user store cannot serve requests.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	storeOK := true
	if err := h.service.Ready(r.Context()); err != nil {
		storeOK = false
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
	}

	statusCode := http.StatusOK
	status := "ready"
	if !storeOK {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data:   h.healthStatus(status, storeOK),
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

func (h *Handler) healthStatus(status string, storeOK bool) models.HealthStatus {
	subscribers := 0
	if h.subscribers != nil {
		subscribers = h.subscribers.SubscriberCount()
	}
	return models.HealthStatus{
		Status:        status,
		Version:       h.version,
		StoreOK:       storeOK,
		Subscribers:   subscribers,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Timestamp:     time.Now().UTC(),
	}
}
