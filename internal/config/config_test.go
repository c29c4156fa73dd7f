// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentions-tui/internal/menu"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts := cfg.MenuOptions(nil)
	require.NoError(t, opts.Validate())
	assert.True(t, opts.AllowSpaces)
	assert.True(t, opts.InsertOnBlur)
	assert.Equal(t, menu.Limit(5), opts.MenuItemLimit)

	table, err := cfg.ThemeTable()
	require.NoError(t, err)
	assert.Equal(t, "mention mention-user mention-focused", table.Resolve("@").ClassName(true))
	assert.NotNil(t, table.Resolve("rec:").Values)
}

func TestLoadFromPath_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "config.toml", `
[mentions]
triggers = ["@", "due:"]
allow_spaces = false
menu_item_limit = false
creatable = 'Add "{{name}}"'
search_delay_ms = 100

[mentions.items]
"@" = ["Anna", "Bob"]
"due:" = ["today"]

[mentions.menu_item_limits]
"@" = 3
"due:" = false

[mentions.creatable_labels]
"due:" = false

[[theme]]
key = "@"
class = "user"

[[theme]]
key = "due:"
trigger = "t"
value = "v"
`},
		{"json", "config.json", `{
  "mentions": {
    "triggers": ["@", "due:"],
    "allow_spaces": false,
    "menu_item_limit": false,
    "creatable": "Add \"{{name}}\"",
    "search_delay_ms": 100,
    "items": {"@": ["Anna", "Bob"], "due:": ["today"]},
    "menu_item_limits": {"@": 3, "due:": false},
    "creatable_labels": {"due:": false}
  },
  "theme": [
    {"key": "@", "class": "user"},
    {"key": "due:", "trigger": "t", "value": "v"}
  ]
}`},
		{"yaml", "config.yaml", `
mentions:
  triggers: ["@", "due:"]
  allow_spaces: false
  menu_item_limit: false
  creatable: 'Add "{{name}}"'
  search_delay_ms: 100
  items:
    "@": [Anna, Bob]
    "due:": [today]
  menu_item_limits:
    "@": 3
    "due:": false
  creatable_labels:
    "due:": false
theme:
  - key: "@"
    class: user
  - key: "due:"
    trigger: t
    value: v
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromPath(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			m := cfg.Mentions
			assert.Equal(t, []string{"@", "due:"}, m.Triggers)
			assert.False(t, m.AllowSpaces)
			assert.True(t, m.InsertOnBlur, "unset keys keep their defaults")
			assert.Equal(t, NoLimit, m.MenuItemLimit)
			assert.Equal(t, Creatable{Enabled: true, Label: `Add "{{name}}"`}, m.Creatable)
			assert.Equal(t, map[string][]string{"@": {"Anna", "Bob"}, "due:": {"today"}}, m.Items)
			assert.Equal(t, map[string]Limit{"@": {Value: 3}, "due:": NoLimit}, m.MenuItemLimits)
			assert.Equal(t, map[string]Creatable{"due:": {}}, m.CreatableLabels)

			require.Len(t, cfg.Theme, 2)
			assert.Equal(t, "user", cfg.Theme[0].Class)
			assert.Equal(t, "t", cfg.Theme[1].Trigger)

			opts := cfg.MenuOptions(nil)
			assert.Equal(t, menu.Unlimited, opts.MenuItemLimit)
			assert.Equal(t, menu.Limit(3), opts.MenuItemLimits["@"])
			assert.Equal(t, 100*time.Millisecond, opts.SearchDelay)
			assert.Equal(t, `Add "x"`, opts.Creatable.LabelFor("x"))
			assert.Equal(t, menu.Values("Anna", "Bob"), opts.Items["@"])
		})
	}
}

func TestParse_FileListsReplaceDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[mentions]
triggers = ["@"]
`), FormatTOML)
	require.NoError(t, err)
	assert.Nil(t, cfg.Mentions.Items)
	assert.NoError(t, cfg.Validate(), "creatable-only menus need no source")

	cfg, err = Parse([]byte(`{"mentions": {"items": {"#": ["a"]}}}`), FormatJSON)
	require.NoError(t, err)
	assert.Nil(t, cfg.Mentions.Triggers)
	assert.Equal(t, map[string][]string{"#": {"a"}}, cfg.Mentions.Items)
	assert.Empty(t, cfg.Theme)
	cfg.SetDefaults()
	assert.Equal(t, Default().Theme, cfg.Theme)

	cfg, err = Parse([]byte("directory:\n  path: /tmp/dir.db\n"), FormatYAML)
	require.NoError(t, err)
	assert.Nil(t, cfg.Mentions.Items, "a directory replaces the built-in items")
	assert.Equal(t, Default().Mentions.Triggers, cfg.Mentions.Triggers)
	require.NoError(t, cfg.Validate())
}

func TestParse_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  Format
	}{
		{"limit true", "[mentions]\nmenu_item_limit = true\n", FormatTOML},
		{"limit string", `{"mentions": {"menu_item_limit": "five"}}`, FormatJSON},
		{"limit fraction", `{"mentions": {"menu_item_limit": 2.5}}`, FormatJSON},
		{"creatable number", "mentions:\n  creatable: 3\n", FormatYAML},
		{"syntax", "[mentions\n", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{"bad trigger", func(c *Config) { c.Mentions.Triggers = []string{"("} }, "mentions.triggers[0]"},
		{"items with directory", func(c *Config) { c.Directory.Path = "x.db" }, "mentions.items"},
		{"negative delay", func(c *Config) { c.Mentions.SearchDelayMS = -1 }, "mentions.search_delay_ms"},
		{"negative limit", func(c *Config) { c.Mentions.MenuItemLimit = Limit{Value: -2} }, "mentions.menu_item_limit"},
		{"long enclosure", func(c *Config) { c.Mentions.MentionEnclosure = `""` }, "mentions.mention_enclosure"},
		{"enclosure without spaces", func(c *Config) {
			c.Mentions.MentionEnclosure = `"`
			c.Mentions.AllowSpaces = false
		}, "mentions.mention_enclosure"},
		{"theme key", func(c *Config) { c.Theme = []ThemeEntry{{Key: "["}} }, "theme[0]"},
		{"theme mixed", func(c *Config) { c.Theme = []ThemeEntry{{Key: "@", Class: "a", Value: "b"}} }, "theme[0]"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"watch without path", func(c *Config) { c.Directory.Watch = true }, "directory.watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var errs ValidateErrors
			require.ErrorAs(t, err, &errs)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MENTIONS_TRIGGERS", "@, #")
	t.Setenv("MENTIONS_ALLOW_SPACES", "false")
	t.Setenv("MENTIONS_COMBOBOX", "1")
	t.Setenv("MENTIONS_SEARCH_DELAY_MS", "40")
	t.Setenv("MENTIONS_MENU_ITEM_LIMIT", "false")
	t.Setenv("MENTIONS_CREATABLE", "New {{name}}")
	t.Setenv("MENTIONS_DIRECTORY", "/tmp/people.db")
	t.Setenv("MENTIONS_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, []string{"@", "#"}, cfg.Mentions.Triggers)
	assert.False(t, cfg.Mentions.AllowSpaces)
	assert.True(t, cfg.Mentions.Combobox)
	assert.Equal(t, 40, cfg.Mentions.SearchDelayMS)
	assert.Equal(t, NoLimit, cfg.Mentions.MenuItemLimit)
	assert.Equal(t, Creatable{Enabled: true, Label: "New {{name}}"}, cfg.Mentions.Creatable)
	assert.Equal(t, "/tmp/people.db", cfg.Directory.Path)
	assert.Nil(t, cfg.Mentions.Items)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("mentions.allow_spaces", "false"))
	require.NoError(t, cfg.Set("mentions.menu_item_limit", "false"))
	require.NoError(t, cfg.Set("mentions.creatable", "true"))
	require.NoError(t, cfg.Set("mentions.search_delay_ms", "10"))
	require.NoError(t, cfg.Set("mentions.triggers", "@, due:"))
	require.NoError(t, cfg.Set("directory.rate_limit", "2.5"))

	v, err := cfg.Get("mentions.allow_spaces")
	require.NoError(t, err)
	assert.Equal(t, false, v)
	v, err = cfg.Get("mentions.menu_item_limit")
	require.NoError(t, err)
	assert.Equal(t, NoLimit, v)
	assert.Equal(t, Creatable{Enabled: true}, cfg.Mentions.Creatable)
	assert.Equal(t, 10, cfg.Mentions.SearchDelayMS)
	assert.Equal(t, []string{"@", "due:"}, cfg.Mentions.Triggers)
	assert.Equal(t, 2.5, cfg.Directory.RateLimit)

	_, err = cfg.Get("mentions.nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("mentions.allow_spaces.x", "1"))
	assert.Error(t, cfg.Set("mentions.search_delay_ms", "soon"))

	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestSaveAs_RoundTrip(t *testing.T) {
	for _, name := range []string{"config.toml", "config.json", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Mentions.MenuItemLimit = NoLimit
			cfg.Mentions.Creatable = Creatable{Enabled: true, Label: "Create <{{name}}>"}
			cfg.Mentions.MenuItemLimits = map[string]Limit{"#": {Value: 2}}
			cfg.Mentions.ComboboxAdditionalItems = []menu.Item{{Value: "help", DisplayValue: "Help"}}

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveAs(cfg, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			loaded, err := LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Mentions.MenuItemLimit, loaded.Mentions.MenuItemLimit)
			assert.Equal(t, cfg.Mentions.Creatable, loaded.Mentions.Creatable)
			assert.Equal(t, cfg.Mentions.MenuItemLimits, loaded.Mentions.MenuItemLimits)
			assert.Equal(t, cfg.Mentions.Items, loaded.Mentions.Items)
			assert.Equal(t, cfg.Mentions.Triggers, loaded.Mentions.Triggers)
			assert.Equal(t, cfg.Theme, loaded.Theme)
			require.Len(t, loaded.Mentions.ComboboxAdditionalItems, 1)
			assert.Equal(t, "help", loaded.Mentions.ComboboxAdditionalItems[0].Value)
		})
	}
}

func TestWatch(t *testing.T) {
	path := writeFile(t, "config.toml", "[mentions]\ncombobox = false\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, nil, func(c *Config) { got <- c }) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[mentions]\ncombobox = true\n"), 0600))

	select {
	case cfg := <-got:
		assert.True(t, cfg.Mentions.Combobox)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

// TestConfig_ConcurrentAccess checks Global and SetGlobal under the race
// detector.
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)
	t.Setenv("HOME", t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestMatcherConfig(t *testing.T) {
	cfg := Default()
	cfg.Mentions.MentionEnclosure = `"`

	mc := cfg.MatcherConfig()
	assert.Equal(t, []string{"@", "#", `\w+:`}, mc.Triggers)
	assert.True(t, mc.AllowSpaces)
	assert.Equal(t, `"`, mc.Enclosure)

	cfg.Mentions.Triggers = nil
	assert.Equal(t, []string{"#", "@", `\w+:`}, cfg.MatcherConfig().Triggers)
}
