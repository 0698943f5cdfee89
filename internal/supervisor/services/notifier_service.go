// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package services

import (
	"context"
)

// ContextHub is satisfied by *notifier.Notifier.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// NotifierService ties the locationAdded notifier to the tree's lifetime.
// When the tree stops, every open subscription is closed and its WebSocket
// client receives a close frame.
type NotifierService struct {
	hub  ContextHub
	name string
}

// NewNotifierService wraps hub.
func NewNotifierService(hub ContextHub) *NotifierService {
	return &NotifierService{
		hub:  hub,
		name: "notifier",
	}
}

// Serve implements suture.Service.
func (n *NotifierService) Serve(ctx context.Context) error {
	return n.hub.RunWithContext(ctx)
}

func (n *NotifierService) String() string {
	return n.name
}
