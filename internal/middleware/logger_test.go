// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geotrack/internal/logging"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() {
		logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
	})

	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success logs at debug", http.StatusCreated, "debug"},
		{"client error logs at debug", http.StatusConflict, "debug"},
		{"server error logs at warn", http.StatusInternalServerError, "warn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			handler := RequestID(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{}`))
			})))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
			req.Header.Set(RequestIDHeader, "req-42")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			var entry struct {
				Level     string `json:"level"`
				Method    string `json:"method"`
				Path      string `json:"path"`
				Status    int    `json:"status"`
				Bytes     int    `json:"bytes"`
				RequestID string `json:"request_id"`
			}
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
				t.Fatalf("decode log entry %q: %v", buf.String(), err)
			}
			if entry.Level != tt.wantLevel {
				t.Errorf("level = %q, want %q", entry.Level, tt.wantLevel)
			}
			if entry.Method != http.MethodPost || entry.Path != "/api/v1/users" {
				t.Errorf("method/path = %s %s", entry.Method, entry.Path)
			}
			if entry.Status != tt.status || entry.Bytes != 2 {
				t.Errorf("status/bytes = %d/%d, want %d/2", entry.Status, entry.Bytes, tt.status)
			}
			if entry.RequestID != "req-42" {
				t.Errorf("request_id = %q, want req-42", entry.RequestID)
			}
		})
	}
}
