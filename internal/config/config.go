// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/agentdesk/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete agentdesk configuration.
type Config struct {
	API     APIConfig     `toml:"api" json:"api"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	Auth    AuthConfig    `toml:"auth" json:"auth"`

	// Debug turns on the log file. Off means logs are discarded.
	Debug   bool   `toml:"debug" json:"debug"`
	LogFile string `toml:"log_file" json:"log_file"`
}

// APIConfig holds the remote agent API settings.
type APIConfig struct {
	URL               string  `toml:"url" json:"url"`
	TimeoutSecs       int     `toml:"timeout_secs" json:"timeout_secs"`
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// UIConfig holds transcript and theme settings.
type UIConfig struct {
	// RevealIntervalMs is the delay between two revealed characters.
	RevealIntervalMs int    `toml:"reveal_interval_ms" json:"reveal_interval_ms"`
	Theme            string `toml:"theme" json:"theme"`
	ShowTimestamps   bool   `toml:"show_timestamps" json:"show_timestamps"`
}

// StorageConfig selects the session store backend.
type StorageConfig struct {
	Backend    string `toml:"backend" json:"backend"`
	SQLitePath string `toml:"sqlite_path" json:"sqlite_path"`
}

// AuthConfig locates the persisted bearer token.
type AuthConfig struct {
	TokenFile string `toml:"token_file" json:"token_file"`
}

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Defaults.
const (
	DefaultRevealIntervalMs  = 8
	DefaultTimeoutSecs       = 60
	DefaultRequestsPerSecond = 5
	DefaultTheme             = "dark"
	DefaultSQLitePath        = ":memory:"
)

// Default returns a configuration with all defaults filled in. The API URL
// is intentionally empty: there is no public default backend.
func Default() *Config {
	cfg := &Config{
		API: APIConfig{
			TimeoutSecs:       DefaultTimeoutSecs,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		UI: UIConfig{
			RevealIntervalMs: DefaultRevealIntervalMs,
			Theme:            DefaultTheme,
			ShowTimestamps:   true,
		},
		Storage: StorageConfig{
			Backend:    BackendMemory,
			SQLitePath: DefaultSQLitePath,
		},
	}
	if dir, err := ConfigDir(); err == nil {
		cfg.Auth.TokenFile = filepath.Join(dir, "token")
		cfg.LogFile = filepath.Join(dir, "agentdesk.log")
	}
	return cfg
}

// RevealInterval returns the per-character reveal delay.
func (c *Config) RevealInterval() time.Duration {
	return time.Duration(c.UI.RevealIntervalMs) * time.Millisecond
}

// Timeout returns the HTTP timeout for API calls.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the agentdesk configuration directory (~/.agentdesk).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".agentdesk"), nil
}

// ConfigPathTOML returns the path of the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path of the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads ~/.agentdesk/config.toml, falling back to config.json, then to
// defaults. Environment overrides are applied last. When a file exists but
// cannot be parsed the defaults are returned together with the parse error.
func Load() (*Config, error) {
	var loadErr error

	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			loadErr = err
			continue
		}
		return cfg, nil
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadFromPath loads a single file, picking the format from its extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to load TOML config %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to load JSON config %s: %w", path, err)
	}
	return nil
}

// fillDefaults restores defaults for values a file zeroed out.
func (c *Config) fillDefaults() {
	def := Default()
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if c.API.RequestsPerSecond == 0 {
		c.API.RequestsPerSecond = def.API.RequestsPerSecond
	}
	if c.UI.RevealIntervalMs == 0 {
		c.UI.RevealIntervalMs = def.UI.RevealIntervalMs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = def.Storage.SQLitePath
	}
	if c.Auth.TokenFile == "" {
		c.Auth.TokenFile = def.Auth.TokenFile
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
}

// ApplyEnvOverrides applies AGENTDESK_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	// AGENTDESK_API_URL
	if u := os.Getenv("AGENTDESK_API_URL"); u != "" {
		c.API.URL = u
	}

	// AGENTDESK_DEBUG
	if debug := os.Getenv("AGENTDESK_DEBUG"); debug != "" {
		c.Debug = debug == "1" || strings.EqualFold(debug, "true")
	}

	// AGENTDESK_REVEAL_INTERVAL_MS
	if ms := os.Getenv("AGENTDESK_REVEAL_INTERVAL_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil {
			c.UI.RevealIntervalMs = n
		}
	}

	// AGENTDESK_TOKEN_FILE
	if tf := os.Getenv("AGENTDESK_TOKEN_FILE"); tf != "" {
		c.Auth.TokenFile = tf
	}
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes cfg to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# agentdesk configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.API.URL != "" {
		u, err := url.Parse(c.API.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "api.url",
				Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host", c.API.URL),
			})
		}
	}
	if c.API.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "api.timeout_secs", Message: "must not be negative"})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_second", Message: "must not be negative"})
	}

	if c.UI.RevealIntervalMs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.reveal_interval_ms",
			Message: fmt.Sprintf("must be positive, got %d", c.UI.RevealIntervalMs),
		})
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite:
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: memory, sqlite", c.Storage.Backend),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequireAPI reports a validation error when no API URL is configured.
func (c *Config) RequireAPI() error {
	if c.API.URL == "" {
		return ValidationError{
			Field:   "api.url",
			Message: "not set (use `agentdesk config init --api-url` or AGENTDESK_API_URL)",
		}
	}
	return nil
}
