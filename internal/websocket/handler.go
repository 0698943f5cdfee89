// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package websocket

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/notifier"
)

// Source is satisfied by *notifier.Notifier.
type Source interface {
	Subscribe(ctx context.Context) *notifier.Subscription
}

// Handler upgrades HTTP requests to locationAdded WebSocket streams.
type Handler struct {
	source         Source
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewHandler returns a Handler serving subscriptions from source.
func NewHandler(source Source, allowedOrigins []string) *Handler {
	h := &Handler{
		source:         source,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return h
}

// ServeHTTP attaches a subscription and then upgrades the connection, so
// every record committed after the handshake completes is delivered.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.Ctx(r.Context())

	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "expected WebSocket upgrade", http.StatusBadRequest)
		return
	}

	// The request context ends when ServeHTTP returns; the subscription
	// lives as long as the connection instead.
	sub := h.source.Subscribe(context.Background())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	logger.Debug().Uint64("subscription_id", sub.ID()).Str("remote_addr", r.RemoteAddr).Msg("WebSocket client connected")
	newClient(conn, sub, *logger).Start()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if slices.Contains(h.allowedOrigins, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if slices.Contains(h.allowedOrigins, origin) {
		return true
	}
	logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
