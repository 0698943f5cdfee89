// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package websocket

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/geotrack/internal/models"
)

// Message types for WebSocket communication
const (
	MessageTypeLocationAdded = "locationAdded"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
)

// Message is one JSON frame in either direction.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// LocationAddedMessage wraps an updated record for delivery.
func LocationAddedMessage(user models.TrackedUser) Message {
	return Message{Type: MessageTypeLocationAdded, Data: user}
}

// MarshalMessage encodes msg as a text frame payload.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
