// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/models"
	"github.com/tomtom215/geotrack/internal/store"
	"github.com/tomtom215/geotrack/internal/tracking"
	"github.com/tomtom215/geotrack/internal/validation"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 * 1024

// sanitizeLogValue replaces control characters so client input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondTrackingError maps a tracking error to its HTTP status and code.
// The service has already logged store-layer causes.
func respondTrackingError(w http.ResponseWriter, r *http.Request, err error) {
	var terr *tracking.Error
	if !errors.As(err, &terr) {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Unclassified error")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", nil)
		return
	}

	status, code := statusForError(terr)

	var details map[string]interface{}
	var verr *validation.RequestValidationError
	if errors.As(terr.Err, &verr) {
		details = verr.ToAPIError().Details
	}

	logging.Ctx(r.Context()).Debug().
		Str("op", terr.Op).
		Str("kind", terr.Kind.String()).
		Int("status", status).
		Msg("Request failed")

	respondError(w, status, code, terr.Message, details)
}

func statusForError(err *tracking.Error) (int, string) {
	switch err.Kind {
	case tracking.KindInvalidArgument:
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case tracking.KindNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case tracking.KindDuplicateUsername:
		return http.StatusConflict, "DUPLICATE_USERNAME"
	case tracking.KindLookupFailed:
		return http.StatusInternalServerError, "LOOKUP_FAILED"
	case tracking.KindCreateFailed:
		return http.StatusInternalServerError, "CREATE_FAILED"
	case tracking.KindUpdateFailed:
		return storeFailureStatus(err.Err), "UPDATE_FAILED"
	case tracking.KindDeleteFailed:
		return storeFailureStatus(err.Err), "DELETE_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func storeFailureStatus(cause error) int {
	switch {
	case errors.Is(cause, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(cause, store.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v. It writes the 400 response
// itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "request body too large", nil)
		case errors.Is(err, io.EOF):
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is required", nil)
		default:
			logging.Ctx(r.Context()).Debug().Str("error", sanitizeLogValue(err.Error())).Msg("Invalid JSON body")
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		}
		return false
	}
	return true
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// parseCommaSeparated splits a comma-separated list, dropping blank entries.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
