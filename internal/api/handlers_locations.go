// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package api

import (
	"net/http"
	"time"
)

// locationsRequest bounds one getLocations call to 1000 ids.
type locationsRequest struct {
	IDs []string `json:"ids" validate:"max=1000"`
}

// GetLocations handles GET /api/v1/locations?ids=a,b.
func (h *Handler) GetLocations(w http.ResponseWriter, r *http.Request) {
	h.locations(w, r, locationsRequest{IDs: parseCommaSeparated(r.URL.Query().Get("ids"))})
}

// PostLocations handles POST /api/v1/locations for id lists too long for a
// query string.
func (h *Handler) PostLocations(w http.ResponseWriter, r *http.Request) {
	var req locationsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IDs == nil {
		req.IDs = []string{}
	}
	h.locations(w, r, req)
}

// locations answers with the users found among req.IDs; unknown ids are
// simply absent from the result.
func (h *Handler) locations(w http.ResponseWriter, r *http.Request, req locationsRequest) {
	start := time.Now()

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	users, err := h.service.GetLocations(r.Context(), req.IDs)
	if err != nil {
		respondTrackingError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, users, start)
}
