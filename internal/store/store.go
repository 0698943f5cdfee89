// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

// Package store persists TrackedUser records.
//
// Store is the contract the tracking service depends on. BadgerStore is the
// durable implementation; ResilientStore wraps any Store in a circuit
// breaker. Record ids are 24 lowercase hex characters and are assigned by
// the store on Create.
package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/geotrack/internal/models"
	"github.com/tomtom215/geotrack/internal/validation"
)

// IDLength is the number of hex characters in a record id.
const IDLength = 24

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateUsername is returned by Create when the username is taken.
	// The wrapping error carries the conflicting value.
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrInvalidID is returned when an id is not 24 hex characters.
	ErrInvalidID = errors.New("invalid user id")

	// ErrUnavailable is returned when the backing store cannot serve requests,
	// for example because it is closed or its circuit breaker is open.
	ErrUnavailable = errors.New("store unavailable")
)

// Store is the user record store.
//
// Every method honours ctx cancellation before touching storage. Methods
// returning a record return a copy the caller may keep.
type Store interface {
	// Create inserts a new record in the "never updated" state.
	Create(ctx context.Context, username string) (*models.TrackedUser, error)

	// GetByID returns the record with the given id.
	GetByID(ctx context.Context, id string) (*models.TrackedUser, error)

	// GetByIDs returns the records that exist among ids in creation order.
	// Missing or malformed ids are omitted and duplicates collapse.
	GetByIDs(ctx context.Context, ids []string) ([]models.TrackedUser, error)

	// GetAll returns every record in creation order.
	GetAll(ctx context.Context) ([]models.TrackedUser, error)

	// Update overwrites the position group of one record and returns the
	// record as stored after the write.
	Update(ctx context.Context, id string, update models.LocationUpdate) (*models.TrackedUser, error)

	// Delete removes a record and returns it as it was just before removal.
	Delete(ctx context.Context, id string) (*models.TrackedUser, error)

	// DeleteByLastUpdateDate removes every record whose Date equals date
	// exactly and returns how many were removed.
	DeleteByLastUpdateDate(ctx context.Context, date string) (int, error)

	// Ping reports whether the store can serve requests.
	Ping(ctx context.Context) error

	Close() error
}

// NewID returns a fresh record id. Ids are the leading 12 bytes of a UUIDv7,
// so lexical order matches creation order within a process.
func NewID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return hex.EncodeToString(u[:IDLength/2]), nil
}

// NormalizeID lowercases id and checks that it is 24 hex characters.
func NormalizeID(id string) (string, error) {
	if len(id) != IDLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	id = strings.ToLower(id)
	if !validation.IsObjectID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return id, nil
}

// IsDomainError reports whether err is an expected outcome of a well-formed
// call rather than a storage failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrInvalidID)
}

// errorType is the metrics label for err.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateUsername):
		return "duplicate_username"
	case errors.Is(err, ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
