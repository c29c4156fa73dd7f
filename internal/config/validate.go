// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	m := c.Mentions
	for i, t := range m.Triggers {
		if t == "" {
			add(fmt.Sprintf("mentions.triggers[%d]", i), "trigger must not be empty")
			continue
		}
		if _, err := regexp.Compile(t); err != nil {
			add(fmt.Sprintf("mentions.triggers[%d]", i), "invalid pattern %q: %v", t, err)
		}
	}
	if len(m.Triggers) == 0 && len(m.Items) == 0 {
		add("mentions.triggers", "at least one trigger or item list is required")
	}
	if len(m.Items) > 0 && c.Directory.Path != "" {
		add("mentions.items", "static items and directory.path are mutually exclusive")
	}
	if m.SearchDelayMS < 0 {
		add("mentions.search_delay_ms", "must not be negative, got %d", m.SearchDelayMS)
	}
	if !m.MenuItemLimit.Disabled && m.MenuItemLimit.Value < 0 {
		add("mentions.menu_item_limit", "must be a positive number or false, got %d", m.MenuItemLimit.Value)
	}
	for k, l := range m.MenuItemLimits {
		if !l.Disabled && l.Value < 0 {
			add("mentions.menu_item_limits."+k, "must be a positive number or false, got %d", l.Value)
		}
	}
	if m.MentionEnclosure != "" {
		if utf8.RuneCountInString(m.MentionEnclosure) != 1 {
			add("mentions.mention_enclosure", "must be a single character, got %q", m.MentionEnclosure)
		} else if !m.AllowSpaces {
			add("mentions.mention_enclosure", "requires allow_spaces")
		}
	}
	for i, it := range m.ComboboxAdditionalItems {
		if it.Value == "" {
			add(fmt.Sprintf("mentions.combobox_additional_items[%d]", i), "value is required")
		}
	}

	for i, e := range c.Theme {
		field := fmt.Sprintf("theme[%d]", i)
		if e.Key == "" {
			add(field, "key is required")
			continue
		}
		if _, err := regexp.Compile(strings.TrimSuffix(e.Key, "Focused")); err != nil {
			add(field, "invalid pattern %q: %v", e.Key, err)
		}
		if e.Class != "" && e.structured() {
			add(field, "class and part classes are mutually exclusive")
		}
	}

	if c.Directory.RateLimit < 0 {
		add("directory.rate_limit", "must not be negative")
	}
	if c.Directory.Watch && c.Directory.Path == "" {
		add("directory.watch", "requires directory.path")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		add("logging.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		add("logging.format", "invalid format '%s', must be one of: console, json", c.Logging.Format)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - MENTIONS_TRIGGERS: comma-separated trigger patterns
//   - MENTIONS_ALLOW_SPACES: overrides mentions.allow_spaces
//   - MENTIONS_COMBOBOX: overrides mentions.combobox
//   - MENTIONS_SEARCH_DELAY_MS: overrides mentions.search_delay_ms
//   - MENTIONS_MENU_ITEM_LIMIT: a number or "false"
//   - MENTIONS_CREATABLE: "true", "false" or a label
//   - MENTIONS_DIRECTORY: overrides directory.path and drops static items
//   - MENTIONS_DATA_DIR: overrides storage.dir
//   - MENTIONS_LOG_LEVEL: overrides logging.level
//   - MENTIONS_LOG_FORMAT: overrides logging.format
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MENTIONS_TRIGGERS"); v != "" {
		var triggers []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				triggers = append(triggers, t)
			}
		}
		c.Mentions.Triggers = triggers
	}
	if v := os.Getenv("MENTIONS_ALLOW_SPACES"); v != "" {
		c.Mentions.AllowSpaces = envBool(v)
	}
	if v := os.Getenv("MENTIONS_COMBOBOX"); v != "" {
		c.Mentions.Combobox = envBool(v)
	}
	if v := os.Getenv("MENTIONS_SEARCH_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Mentions.SearchDelayMS = n
		}
	}
	if v := os.Getenv("MENTIONS_MENU_ITEM_LIMIT"); v != "" {
		var l Limit
		if err := l.UnmarshalText([]byte(v)); err == nil {
			c.Mentions.MenuItemLimit = l
		}
	}
	if v := os.Getenv("MENTIONS_CREATABLE"); v != "" {
		_ = c.Mentions.Creatable.UnmarshalText([]byte(v))
	}
	if v := os.Getenv("MENTIONS_DIRECTORY"); v != "" {
		c.Directory.Path = v
		c.Mentions.Items = nil
	}
	if v := os.Getenv("MENTIONS_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("MENTIONS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MENTIONS_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

func envBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
}
