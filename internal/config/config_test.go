// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME at a temp dir and clears AGENTDESK_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"AGENTDESK_API_URL", "AGENTDESK_DEBUG", "AGENTDESK_REVEAL_INTERVAL_MS", "AGENTDESK_TOKEN_FILE"} {
		t.Setenv(k, "")
	}
	return home
}

func TestDefault(t *testing.T) {
	isolate(t)
	cfg := Default()

	if cfg.UI.RevealIntervalMs != 8 {
		t.Errorf("RevealIntervalMs = %d, want 8", cfg.UI.RevealIntervalMs)
	}
	if cfg.RevealInterval() != 8*time.Millisecond {
		t.Errorf("RevealInterval = %v, want 8ms", cfg.RevealInterval())
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Storage.SQLitePath != ":memory:" {
		t.Errorf("SQLitePath = %q, want :memory:", cfg.Storage.SQLitePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
	if err := cfg.RequireAPI(); err == nil {
		t.Error("RequireAPI should fail without api.url")
	}
}

func TestLoad_TOML(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".agentdesk")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	content := `
[api]
url = "https://agents.example.com"

[ui]
reveal_interval_ms = 20
theme = "light"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.URL != "https://agents.example.com" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.UI.RevealIntervalMs != 20 {
		t.Errorf("RevealIntervalMs = %d, want 20", cfg.UI.RevealIntervalMs)
	}
	// Keys missing from the file keep their defaults.
	if cfg.API.TimeoutSecs != DefaultTimeoutSecs {
		t.Errorf("TimeoutSecs = %d, want default", cfg.API.TimeoutSecs)
	}
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".agentdesk")
	os.MkdirAll(dir, 0700)
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"storage":{"backend":"sqlite"}}`), 0600)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Storage.Backend)
	}
}

func TestLoad_BrokenFileFallsBackToDefaults(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".agentdesk")
	os.MkdirAll(dir, 0700)
	os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[api\nurl="), 0600)

	cfg, err := Load()
	if err == nil {
		t.Error("Expected parse error to be reported")
	}
	if cfg == nil || cfg.UI.RevealIntervalMs != DefaultRevealIntervalMs {
		t.Errorf("Expected defaults alongside the error, got %+v", cfg)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("AGENTDESK_API_URL", "http://localhost:8080")
	t.Setenv("AGENTDESK_DEBUG", "true")
	t.Setenv("AGENTDESK_REVEAL_INTERVAL_MS", "3")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.URL != "http://localhost:8080" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if !cfg.Debug {
		t.Error("Debug should be enabled")
	}
	if cfg.UI.RevealIntervalMs != 3 {
		t.Errorf("RevealIntervalMs = %d, want 3", cfg.UI.RevealIntervalMs)
	}
}

func TestValidate(t *testing.T) {
	isolate(t)
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero interval", func(c *Config) { c.UI.RevealIntervalMs = 0 }, "ui.reveal_interval_ms"},
		{"negative interval", func(c *Config) { c.UI.RevealIntervalMs = -5 }, "ui.reveal_interval_ms"},
		{"bad url", func(c *Config) { c.API.URL = "ftp://x" }, "api.url"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidateErrors", err)
			}
			if len(verrs) != 1 || verrs[0].Field != tt.field {
				t.Errorf("Validate() = %v, want one error on %s", verrs, tt.field)
			}
		})
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.API.URL = "https://agents.example.com"
	cfg.UI.RevealIntervalMs = 12
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.API.URL != cfg.API.URL || loaded.UI.RevealIntervalMs != 12 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\nreveal_interval_ms = 8\n"), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	err := Watch(ctx, path, func(cfg *Config, err error) {
		if err == nil {
			got <- cfg
		}
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("[ui]\nreveal_interval_ms = 30\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-got:
		if cfg.UI.RevealIntervalMs != 30 {
			t.Errorf("reloaded RevealIntervalMs = %d, want 30", cfg.UI.RevealIntervalMs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
