// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/geotrack/internal/models"
	"github.com/tomtom215/geotrack/internal/tracking"
)

// TrackingService is the subset of *tracking.Service the handlers call.
type TrackingService interface {
	Hello() string
	GetUser(ctx context.Context, id string) (*models.TrackedUser, error)
	GetLocations(ctx context.Context, ids []string) ([]models.TrackedUser, error)
	GetAllUsers(ctx context.Context) tracking.UsersResult
	AddUser(ctx context.Context, username string) (*models.TrackedUser, error)
	DeleteUser(ctx context.Context, id string) (*models.TrackedUser, error)
	AddLocation(ctx context.Context, id string, in tracking.LocationInput) (*models.TrackedUser, error)
	CleanUpInactiveUsers(ctx context.Context) tracking.SweepResult
	Ready(ctx context.Context) error
}

// SubscriberCounter is satisfied by *notifier.Notifier.
type SubscriberCounter interface {
	SubscriberCount() int
}

// Handler holds the dependencies of every endpoint.
type Handler struct {
	service       TrackingService
	subscriptions http.Handler
	subscribers   SubscriberCounter
	version       string
	startTime     time.Time
}

// NewHandler creates a Handler. subscriptions serves the WebSocket upgrade
// for locationAdded.
func NewHandler(service TrackingService, subscriptions http.Handler, subscribers SubscriberCounter, version string) *Handler {
	return &Handler{
		service:       service,
		subscriptions: subscriptions,
		subscribers:   subscribers,
		version:       version,
		startTime:     time.Now(),
	}
}
