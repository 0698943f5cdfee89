// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/geotrack/internal/models"
	"github.com/tomtom215/geotrack/internal/tracking"
)

type addUserRequest struct {
	Username string `json:"username"`
}

// Ping answers the bare liveness check outside the API surface.
func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.service.Hello()))
}

// Hello handles GET /api/v1/hello.
func (h *Handler) Hello(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, h.service.Hello(), time.Now())
}

// GetUser handles GET /api/v1/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondTrackingError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, user, start)
}

// GetAllUsers handles GET /api/v1/users. A store failure still answers 200
// with an empty list and metadata.degraded set.
func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	result := h.service.GetAllUsers(r.Context())
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result.Users,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Degraded:    result.Degraded(),
		},
	})
}

// AddUser handles POST /api/v1/users.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req addUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.AddUser(r.Context(), req.Username)
	if err != nil {
		respondTrackingError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, user, start)
}

// DeleteUser handles DELETE /api/v1/users/{id} and returns the removed record.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondTrackingError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, user, start)
}

// AddLocation handles PUT /api/v1/users/{id}/location. The stored record is
// returned and broadcast to locationAdded subscribers.
func (h *Handler) AddLocation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in tracking.LocationInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.service.AddLocation(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondTrackingError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, user, start)
}
