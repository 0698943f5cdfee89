// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Store.Path != "/data/geotrack" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Store.GCInterval != 10*time.Minute {
		t.Errorf("Store.GCInterval = %v, want 10m", cfg.Store.GCInterval)
	}
	if !cfg.Breaker.Enabled || cfg.Breaker.ConsecutiveFailures != 5 {
		t.Errorf("Breaker = %+v", cfg.Breaker)
	}
	if cfg.Notifier.BufferSize != 256 {
		t.Errorf("Notifier.BufferSize = %d, want 256", cfg.Notifier.BufferSize)
	}
	if cfg.Sweep.Schedule != "0 0 * * *" {
		t.Errorf("Sweep.Schedule = %q", cfg.Sweep.Schedule)
	}
	if cfg.Sweep.InactiveDays != 30 {
		t.Errorf("Sweep.InactiveDays = %d, want 30", cfg.Sweep.InactiveDays)
	}
	if !slices.Equal(cfg.Security.CORSOrigins, []string{"*"}) {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"HTTP_TIMEOUT", "server.timeout"},
		{"STORE_PATH", "store.path"},
		{"STORE_IN_MEMORY", "store.in_memory"},
		{"STORE_GC_INTERVAL", "store.gc_interval"},
		{"BREAKER_ENABLED", "breaker.enabled"},
		{"BREAKER_FAILURES", "breaker.consecutive_failures"},
		{"NOTIFIER_BUFFER", "notifier.buffer_size"},
		{"SWEEP_SCHEDULE", "sweep.schedule"},
		{"SWEEP_TIMEZONE", "sweep.timezone"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"LOG_LEVEL", "logging.level"},
		{"log_format", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})

	t.Run("config.yaml in working directory", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("server:\n  port: 5000\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(filepath.Join(tmpDir, "config.yaml"))

		if got := findConfigFile(); got != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", got)
		}
	})

	t.Run("CONFIG_PATH wins", func(t *testing.T) {
		custom := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(custom, []byte("{}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv(ConfigPathEnvVar, custom)

		if got := findConfigFile(); got != custom {
			t.Errorf("findConfigFile() = %q, want %q", got, custom)
		}
	})

	t.Run("missing CONFIG_PATH falls back", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, filepath.Join(tmpDir, "nope.yaml"))
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})
}

// TestLoadWithKoanf covers the layering of defaults, file and environment.
func TestLoadWithKoanf(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("defaults only", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		cfg, err := LoadWithKoanf()
		if err != nil {
			t.Fatalf("LoadWithKoanf() error = %v", err)
		}
		if cfg.Server.Port != 4000 || cfg.Sweep.InactiveDays != 30 {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("file then environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "geotrack.yaml")
		yaml := strings.Join([]string{
			"server:",
			"  port: 5000",
			"  host: 127.0.0.1",
			"store:",
			"  in_memory: true",
			"sweep:",
			"  schedule: \"30 3 * * *\"",
			"  timezone: UTC",
			"security:",
			"  cors_origins:",
			"    - https://a.example",
			"    - https://b.example",
			"",
		}, "\n")
		if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv(ConfigPathEnvVar, path)
		t.Setenv("HTTP_PORT", "6000")
		t.Setenv("HTTP_TIMEOUT", "45s")
		t.Setenv("SWEEP_INACTIVE_DAYS", "7")
		t.Setenv("BREAKER_ENABLED", "false")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := LoadWithKoanf()
		if err != nil {
			t.Fatalf("LoadWithKoanf() error = %v", err)
		}
		if cfg.Server.Port != 6000 {
			t.Errorf("Server.Port = %d, env should override file", cfg.Server.Port)
		}
		if cfg.Server.Host != "127.0.0.1" {
			t.Errorf("Server.Host = %q, want file value", cfg.Server.Host)
		}
		if cfg.Server.Timeout != 45*time.Second {
			t.Errorf("Server.Timeout = %v, want 45s", cfg.Server.Timeout)
		}
		if !cfg.Store.InMemory {
			t.Error("Store.InMemory should come from the file")
		}
		if cfg.Sweep.Schedule != "30 3 * * *" || cfg.Sweep.InactiveDays != 7 {
			t.Errorf("Sweep = %+v", cfg.Sweep)
		}
		if cfg.Breaker.Enabled {
			t.Error("Breaker.Enabled should be false")
		}
		if !slices.Equal(cfg.Security.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
			t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Logging.Level = %q", cfg.Logging.Level)
		}
		// Untouched defaults survive.
		if cfg.Notifier.BufferSize != 256 {
			t.Errorf("Notifier.BufferSize = %d", cfg.Notifier.BufferSize)
		}
	})

	t.Run("comma-separated origins from env", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		t.Setenv("CORS_ORIGINS", "https://x.example, https://y.example,,")

		cfg, err := LoadWithKoanf()
		if err != nil {
			t.Fatalf("LoadWithKoanf() error = %v", err)
		}
		if !slices.Equal(cfg.Security.CORSOrigins, []string{"https://x.example", "https://y.example"}) {
			t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		t.Setenv("SWEEP_SCHEDULE", "whenever")

		if _, err := LoadWithKoanf(); err == nil {
			t.Error("LoadWithKoanf() should reject an invalid schedule")
		}
	})
}

func TestProcessSliceFields(t *testing.T) {
	k := koanf.New(".")
	if err := k.Set("security.cors_origins", " a , b ,c"); err != nil {
		t.Fatal(err)
	}
	if err := processSliceFields(k); err != nil {
		t.Fatalf("processSliceFields() error = %v", err)
	}
	if got := k.Strings("security.cors_origins"); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("cors_origins = %v", got)
	}
}
