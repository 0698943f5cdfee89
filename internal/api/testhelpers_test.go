// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/models"
	"github.com/tomtom215/geotrack/internal/notifier"
	"github.com/tomtom215/geotrack/internal/store"
	"github.com/tomtom215/geotrack/internal/sweeper"
	"github.com/tomtom215/geotrack/internal/tracking"
	"github.com/tomtom215/geotrack/internal/websocket"
)

func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

var testNow = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

type apiEnv struct {
	handler http.Handler
	store   *store.BadgerStore
	hub     *notifier.Notifier
}

// newAPIEnv wires the full stack on an in-memory store. A nil config
// disables rate limiting.
func newAPIEnv(t *testing.T, config *ChiMiddlewareConfig) *apiEnv {
	t.Helper()

	st, err := store.OpenBadger(store.BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	hub := notifier.New(notifier.Config{BufferSize: 16})
	sw := sweeper.New(st, sweeper.Config{Location: time.UTC, Now: func() time.Time { return testNow }})
	svc := tracking.NewService(st, hub, sw)

	if config == nil {
		config = DefaultChiMiddlewareConfig()
		config.RateLimitDisabled = true
	}

	handler := NewHandler(svc, websocket.NewHandler(hub, config.CORSAllowedOrigins), hub, "test")
	return &apiEnv{
		handler: NewRouter(handler, config).Setup(),
		store:   st,
		hub:     hub,
	}
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		Degraded bool `json:"degraded"`
	} `json:"metadata"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func mustCreateUser(t *testing.T, h http.Handler, username string) models.TrackedUser {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/api/v1/users", `{"username":"`+username+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %q: status %d body %s", username, rec.Code, rec.Body.String())
	}
	return decodeData[models.TrackedUser](t, env)
}

func locationBody(lat, lng float64, date string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"latitude":  lat,
		"longitude": lng,
		"address":   map[string]string{"street": "Rue Sainte-Catherine", "streetNumber": "1200", "city": "Montreal"},
		"date":      date,
		"time":      "09:30",
	})
	return string(body)
}
