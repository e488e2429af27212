// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for agentdesk.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, validation and live reload.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (AGENTDESK_*)
//   - ~/.agentdesk/config.toml
//   - ~/.agentdesk/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	interval := cfg.RevealInterval()
//
// Watch for edits while the TUI runs:
//
//	config.Watch(ctx, path, func(cfg *config.Config, err error) { ... })
package config
