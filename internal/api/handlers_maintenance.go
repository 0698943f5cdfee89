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

// CleanUpInactiveUsers handles POST /api/v1/maintenance/cleanup. It runs the
// same sweep as the scheduler and answers {"deletedCount": n, "cutoff": "MM/DD/YY"}.
func (h *Handler) CleanUpInactiveUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	result := h.service.CleanUpInactiveUsers(r.Context())
	logging.Ctx(r.Context()).Info().
		Int("deleted_count", result.DeletedCount).
		Str("cutoff", result.Cutoff).
		Bool("degraded", result.Degraded()).
		Msg("Manual inactivity sweep finished")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Degraded:    result.Degraded(),
		},
	})
}

// SubscribeLocationAdded handles GET /api/v1/subscriptions/location-added.
func (h *Handler) SubscribeLocationAdded(w http.ResponseWriter, r *http.Request) {
	if h.subscriptions == nil {
		respondError(w, http.StatusServiceUnavailable, "SUBSCRIPTIONS_UNAVAILABLE", "subscriptions are not enabled", nil)
		return
	}
	h.subscriptions.ServeHTTP(w, r)
}
