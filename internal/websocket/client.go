// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package websocket

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/geotrack/internal/metrics"
	"github.com/tomtom215/geotrack/internal/notifier"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

// Client pumps one notifier subscription into one WebSocket connection.
type Client struct {
	conn    *websocket.Conn
	sub     *notifier.Subscription
	control chan Message
	logger  zerolog.Logger
}

func newClient(conn *websocket.Conn, sub *notifier.Subscription, logger zerolog.Logger) *Client {
	return &Client{
		conn:    conn,
		sub:     sub,
		control: make(chan Message, 8),
		logger:  logger.With().Uint64("subscription_id", sub.ID()).Logger(),
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	metrics.WSConnections.Inc()
	go c.writePump()
	go c.readPump()
}

// readPump consumes client frames until the connection fails, then
// detaches the subscription so writePump stops too.
func (c *Client) readPump() {
	defer func() {
		c.sub.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		metrics.WSErrors.WithLabelValues("read_deadline").Inc()
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
				c.logger.Warn().Err(err).Msg("Unexpected WebSocket close")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			metrics.WSErrors.WithLabelValues("decode").Inc()
			continue
		}
		if msg.Type == MessageTypePing {
			select {
			case c.control <- Message{Type: MessageTypePong}:
			default:
			}
		}
	}
}

// writePump delivers published records, pong replies and keepalive pings.
// It sends a close frame when the subscription ends.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.sub.Close()
		_ = c.conn.Close()
		metrics.WSConnections.Dec()
		c.logger.Debug().Msg("WebSocket client disconnected")
	}()

	for {
		select {
		case user, ok := <-c.sub.C():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription closed"))
				return
			}
			if !c.write(LocationAddedMessage(user)) {
				return
			}

		case msg := <-c.control:
			if !c.write(msg) {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(msg Message) bool {
	payload, err := MarshalMessage(msg)
	if err != nil {
		metrics.WSErrors.WithLabelValues("encode").Inc()
		c.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode WebSocket message")
		return true
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		metrics.WSErrors.WithLabelValues("write_deadline").Inc()
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		metrics.WSErrors.WithLabelValues("write").Inc()
		return false
	}
	metrics.WSMessagesSent.Inc()
	return true
}
