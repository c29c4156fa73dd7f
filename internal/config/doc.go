// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management.
//
// Supports TOML, JSON and YAML configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - MentionsConfig: Trigger matching and menu behaviour
//   - ThemeEntry: One ordered [[theme]] rule
//   - Limit, Creatable: Values that accept number|false and bool|label
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MENTIONS_*)
//   - ~/.mentions/config.toml
//   - ~/.mentions/config.json
//   - ~/.mentions/config.yaml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Build the menu options:
//
//	opts := cfg.MenuOptions(dir.Search)
package config
