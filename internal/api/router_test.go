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
	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/geotrack/internal/models"
)

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	env := newAPIEnv(t, nil)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantErr  string
	}{
		{"unknown route", http.MethodGet, "/api/v1/nothing", http.StatusNotFound, "NOT_FOUND"},
		{"unknown root route", http.MethodGet, "/graphql", http.StatusNotFound, "NOT_FOUND"},
		{"wrong method", http.MethodPatch, "/api/v1/users", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, env.handler, tt.method, tt.path, "")
			if rec.Code != tt.wantCode || body.Error == nil || body.Error.Code != tt.wantErr {
				t.Errorf("%s %s = %d %s", tt.method, tt.path, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_Headers(t *testing.T) {
	env := newAPIEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/hello", nil)
	req.Header.Set("X-Request-ID", "trace-1")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	want := map[string]string{
		"X-Request-ID":           "trace-1",
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
		"Content-Type":           "application/json",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS sent over plain HTTP: %q", got)
	}
}

func TestRouter_CORS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"wildcard", []string{"*"}, "https://map.example", "*"},
		{"listed", []string{"https://map.example"}, "https://map.example", "https://map.example"},
		{"unlisted", []string{"https://map.example"}, "https://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultChiMiddlewareConfig()
			config.CORSAllowedOrigins = tt.allowed
			config.RateLimitDisabled = true
			env := newAPIEnv(t, config)

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/users", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouter_RateLimit(t *testing.T) {
	config := DefaultChiMiddlewareConfig()
	config.RateLimitRequests = 2
	config.RateLimitWindow = time.Minute
	env := newAPIEnv(t, config)

	for i := 0; i < 2; i++ {
		if rec, _ := do(t, env.handler, http.MethodGet, "/api/v1/hello", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, rec.Code)
		}
	}

	rec, body := do(t, env.handler, http.MethodGet, "/api/v1/hello", "")
	if rec.Code != http.StatusTooManyRequests || body.Error == nil || body.Error.Code != "RATE_LIMITED" {
		t.Errorf("third request = %d %s", rec.Code, rec.Body.String())
	}

	// Probes have their own budget.
	if rec, _ := do(t, env.handler, http.MethodGet, "/api/v1/health/live", ""); rec.Code != http.StatusOK {
		t.Errorf("health/live while API limited = %d", rec.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	env := newAPIEnv(t, nil)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		rec, body := do(t, env.handler, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", path, rec.Code)
		}
		status := decodeData[models.HealthStatus](t, body)
		if !status.StoreOK || status.Version != "test" {
			t.Errorf("GET %s = %+v", path, status)
		}
	}

	_ = env.store.Close()
	rec, body := do(t, env.handler, http.MethodGet, "/api/v1/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable || body.Status != "not_ready" {
		t.Errorf("ready after close = %d %s", rec.Code, body.Status)
	}
	if rec, _ := do(t, env.handler, http.MethodGet, "/api/v1/health/live", ""); rec.Code != http.StatusOK {
		t.Errorf("live after close = %d", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	env := newAPIEnv(t, nil)
	do(t, env.handler, http.MethodGet, "/api/v1/hello", "")

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"api_active_requests", `api_requests_total{endpoint="/api/v1/hello"`} {
		if !strings.Contains(body, name) {
			t.Errorf("/metrics missing %s", name)
		}
	}
}

func TestRouter_LocationAddedSubscription(t *testing.T) {
	env := newAPIEnv(t, nil)
	server := httptest.NewServer(env.handler)
	defer server.Close()

	user := mustCreateUser(t, env.handler, "ana")

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/subscriptions/location-added"
	conn, resp, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req, _ := http.NewRequest(http.MethodPut, server.URL+"/api/v1/users/"+user.ID+"/location",
		strings.NewReader(locationBody(48.8566, 2.3522, "10/15/26")))
	req.Header.Set("Content-Type", "application/json")
	putResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	_, _ = io.Copy(io.Discard, putResp.Body)
	putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("PUT = %d", putResp.StatusCode)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame struct {
		Type string             `json:"type"`
		Data models.TrackedUser `json:"data"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if frame.Type != "locationAdded" || frame.Data.ID != user.ID || frame.Data.Latitude != 48.8566 {
		t.Errorf("frame = %+v", frame)
	}
}
