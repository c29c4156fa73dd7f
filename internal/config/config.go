// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the mentions editor.
//
// Supports TOML, JSON and YAML configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.mentions/config.toml
//   - ~/.mentions/config.json
//   - ~/.mentions/config.yaml
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/mentions-tui/internal/menu"
	"github.com/jeranaias/mentions-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	// Mentions configures trigger matching and the suggestion menu.
	Mentions MentionsConfig `toml:"mentions" json:"mentions" yaml:"mentions"`

	// Theme maps trigger patterns to style classes, in evaluation order.
	Theme []ThemeEntry `toml:"theme" json:"theme" yaml:"theme"`

	// Directory configures the SQLite candidate directory.
	Directory DirectoryConfig `toml:"directory" json:"directory" yaml:"directory"`

	// Storage configures where documents are saved.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Logging configures the structured logger.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// MentionsConfig holds the menu options in file form.
type MentionsConfig struct {
	// Triggers are trigger patterns. Empty means the keys of Items.
	Triggers []string `toml:"triggers" json:"triggers" yaml:"triggers"`

	// Items are static suggestions per trigger. Mutually exclusive with
	// the directory.
	Items map[string][]string `toml:"items,omitempty" json:"items,omitempty" yaml:"items,omitempty"`

	Punctuation                      string `toml:"punctuation,omitempty" json:"punctuation,omitempty" yaml:"punctuation,omitempty"`
	PreTriggerChars                  string `toml:"pre_trigger_chars,omitempty" json:"pre_trigger_chars,omitempty" yaml:"pre_trigger_chars,omitempty"`
	AllowSpaces                      bool   `toml:"allow_spaces" json:"allow_spaces" yaml:"allow_spaces"`
	MentionEnclosure                 string `toml:"mention_enclosure,omitempty" json:"mention_enclosure,omitempty" yaml:"mention_enclosure,omitempty"`
	ShowMentionsOnDelete             bool   `toml:"show_mentions_on_delete" json:"show_mentions_on_delete" yaml:"show_mentions_on_delete"`
	ShowCurrentMentionsAsSuggestions bool   `toml:"show_current_mentions_as_suggestions" json:"show_current_mentions_as_suggestions" yaml:"show_current_mentions_as_suggestions"`
	InsertOnBlur                     bool   `toml:"insert_on_blur" json:"insert_on_blur" yaml:"insert_on_blur"`

	// SearchDelayMS is the debounce before a directory lookup.
	SearchDelayMS int `toml:"search_delay_ms" json:"search_delay_ms" yaml:"search_delay_ms"`

	MenuItemLimit   Limit                `toml:"menu_item_limit" json:"menu_item_limit" yaml:"menu_item_limit"`
	MenuItemLimits  map[string]Limit     `toml:"menu_item_limits,omitempty" json:"menu_item_limits,omitempty" yaml:"menu_item_limits,omitempty"`
	Creatable       Creatable            `toml:"creatable" json:"creatable" yaml:"creatable"`
	CreatableLabels map[string]Creatable `toml:"creatable_labels,omitempty" json:"creatable_labels,omitempty" yaml:"creatable_labels,omitempty"`

	Combobox                bool        `toml:"combobox" json:"combobox" yaml:"combobox"`
	ComboboxAdditionalItems []menu.Item `toml:"combobox_additional_items,omitempty" json:"combobox_additional_items,omitempty" yaml:"combobox_additional_items,omitempty"`
}

// ThemeEntry is one [[theme]] table. Class entries set Class; structured
// entries set any of the part classes instead.
type ThemeEntry struct {
	Key              string `toml:"key" json:"key" yaml:"key"`
	Class            string `toml:"class,omitempty" json:"class,omitempty" yaml:"class,omitempty"`
	Trigger          string `toml:"trigger,omitempty" json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Value            string `toml:"value,omitempty" json:"value,omitempty" yaml:"value,omitempty"`
	Container        string `toml:"container,omitempty" json:"container,omitempty" yaml:"container,omitempty"`
	ContainerFocused string `toml:"container_focused,omitempty" json:"container_focused,omitempty" yaml:"container_focused,omitempty"`
}

// DirectoryConfig configures the candidate directory.
type DirectoryConfig struct {
	// Path is the SQLite database file. Empty disables the directory.
	Path string `toml:"path" json:"path" yaml:"path"`
	// Seeds are YAML or TOML files loaded into the directory.
	Seeds []string `toml:"seeds,omitempty" json:"seeds,omitempty" yaml:"seeds,omitempty"`
	// Watch reseeds when a seed file changes.
	Watch bool `toml:"watch" json:"watch" yaml:"watch"`
	// RateLimit caps lookups per second; zero means unlimited.
	RateLimit float64 `toml:"rate_limit" json:"rate_limit" yaml:"rate_limit"`
	// RateBurst is the lookup burst allowed by RateLimit.
	RateBurst int `toml:"rate_burst" json:"rate_burst" yaml:"rate_burst"`
}

// StorageConfig configures document storage.
type StorageConfig struct {
	// Dir holds saved documents. Empty means ~/.mentions/documents.
	Dir string `toml:"dir" json:"dir" yaml:"dir"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level" yaml:"level"`
	Format string `toml:"format" json:"format" yaml:"format"`
	// File receives logs instead of stderr when set.
	File string `toml:"file,omitempty" json:"file,omitempty" yaml:"file,omitempty"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",
		Mentions: MentionsConfig{
			Triggers: []string{"@", "#", `\w+:`},
			Items: map[string][]string{
				"@":    {"Catherine", "Anna", "Jacob", "Johanna", "John", "Josh"},
				"#":    {"urgent", "later", "idea", "bug"},
				`\w+:`: {"today", "tomorrow", "next week"},
			},
			AllowSpaces:                      true,
			ShowCurrentMentionsAsSuggestions: true,
			InsertOnBlur:                     true,
			SearchDelayMS:                    int(menu.DefaultSearchDelay.Milliseconds()),
			MenuItemLimit:                    Limit{Value: menu.DefaultMenuItemLimit},
		},
		Theme: []ThemeEntry{
			{Key: "@", Class: "mention mention-user"},
			{Key: "@Focused", Class: "mention-focused"},
			{Key: "#", Class: "mention mention-tag"},
			{Key: "#Focused", Class: "mention-focused"},
			{Key: "rec:", Trigger: "mention-trigger", Value: "mention-value", Container: "mention-box", ContainerFocused: "mention-box mention-focused"},
			{Key: `\w+:`, Class: "mention mention-generic"},
			{Key: `\w+:Focused`, Class: "mention-focused"},
		},
		Directory: DirectoryConfig{
			RateBurst: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".mentions"), nil
}

// ConfigPaths returns the candidate config files in precedence order.
func ConfigPaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.yaml"),
	}, nil
}

// DocumentsDir returns the resolved document storage directory.
func (c *Config) DocumentsDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "documents"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the first config file that exists, or
// the defaults. Environment overrides are applied last.
func Load() (*Config, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. The format follows the extension; anything unrecognized is
// read as TOML.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Format is a configuration file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format for a file name.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Parse decodes data over the defaults. Tables present in the file replace
// the default items and theme rather than merging with them.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	var probe struct {
		Mentions struct {
			Items    map[string][]string `toml:"items" json:"items" yaml:"items"`
			Triggers []string            `toml:"triggers" json:"triggers" yaml:"triggers"`
		} `toml:"mentions" json:"mentions" yaml:"mentions"`
	}

	var err error
	var triggers, items bool
	switch format {
	case FormatJSON:
		if err = json.Unmarshal(data, &probe); err == nil {
			triggers, items = probe.Mentions.Triggers != nil, probe.Mentions.Items != nil
			cfg.resetListsFor(triggers, items)
			err = json.Unmarshal(data, cfg)
		}
	case FormatYAML:
		if err = yaml.Unmarshal(data, &probe); err == nil {
			triggers, items = probe.Mentions.Triggers != nil, probe.Mentions.Items != nil
			cfg.resetListsFor(triggers, items)
			err = yaml.Unmarshal(data, cfg)
		}
	default:
		var md toml.MetaData
		if md, err = toml.Decode(string(data), &probe); err == nil {
			triggers, items = md.IsDefined("mentions", "triggers"), md.IsDefined("mentions", "items")
			cfg.resetListsFor(triggers, items)
			_, err = toml.Decode(string(data), cfg)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", format, err)
	}
	// A configured directory replaces the built-in static items.
	if cfg.Directory.Path != "" && !items {
		cfg.Mentions.Items = nil
	}
	return cfg, nil
}

// resetListsFor clears default lists the file is about to supply, so that a
// file declaring only triggers does not inherit items for other triggers.
func (c *Config) resetListsFor(triggers, items bool) {
	if triggers || items {
		c.Mentions.Items = nil
	}
	if items && !triggers {
		c.Mentions.Triggers = nil
	}
	c.Theme = c.Theme[:0:0]
}

// SetDefaults fills zero values that have a non-zero default.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if len(c.Theme) == 0 {
		c.Theme = d.Theme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Directory.RateBurst <= 0 {
		c.Directory.RateBurst = d.Directory.RateBurst
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	paths, err := ConfigPaths()
	if err != nil {
		return err
	}
	return SaveAs(cfg, paths[0])
}

// Marshal encodes the configuration in the given format.
func Marshal(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(cfg, "", "  ")
	case FormatYAML:
		return yaml.Marshal(cfg)
	default:
		var b strings.Builder
		b.WriteString("# mentions configuration file\n\n")
		if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}
}

// SaveAs writes the configuration to path in the format its extension
// names.
func SaveAs(cfg *Config, path string) error {
	data, err := Marshal(cfg, FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Load errors fall back to the defaults.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
