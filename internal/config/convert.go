// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/matcher"
	"github.com/jeranaias/mentions-tui/internal/menu"
	"github.com/jeranaias/mentions-tui/internal/theme"
)

// MenuOptions converts the mentions section. search is used when no
// static items are configured and may be nil otherwise.
func (c *Config) MenuOptions(search menu.SearchFunc) menu.Options {
	m := c.Mentions
	opts := menu.DefaultOptions()

	opts.Triggers = append([]string(nil), m.Triggers...)
	if len(m.Items) > 0 {
		opts.Items = make(map[string][]menu.SourceItem, len(m.Items))
		for trigger, values := range m.Items {
			opts.Items[trigger] = menu.Values(values...)
		}
	} else {
		opts.Search = search
	}

	opts.Punctuation = m.Punctuation
	opts.PreTriggerChars = m.PreTriggerChars
	opts.AllowSpaces = m.AllowSpaces
	opts.Enclosure = m.MentionEnclosure
	opts.ShowMentionsOnDelete = m.ShowMentionsOnDelete
	opts.ShowCurrentMentionsAsSuggestions = m.ShowCurrentMentionsAsSuggestions
	opts.InsertOnBlur = m.InsertOnBlur
	opts.SearchDelay = time.Duration(m.SearchDelayMS) * time.Millisecond
	opts.MenuItemLimit = m.MenuItemLimit.Menu()
	opts.Creatable = m.Creatable.Menu()
	opts.Combobox = m.Combobox
	opts.ComboboxAdditionalItems = append([]menu.Item(nil), m.ComboboxAdditionalItems...)

	if len(m.MenuItemLimits) > 0 {
		opts.MenuItemLimits = make(map[string]menu.Limit, len(m.MenuItemLimits))
		for k, l := range m.MenuItemLimits {
			opts.MenuItemLimits[k] = l.Menu()
		}
	}
	if len(m.CreatableLabels) > 0 {
		opts.CreatableLabels = make(map[string]menu.Creatable, len(m.CreatableLabels))
		for k, cr := range m.CreatableLabels {
			opts.CreatableLabels[k] = cr.Menu()
		}
	}
	return opts
}

// MatcherConfig returns the recognition settings of the mentions section,
// for converting text outside an editor.
func (c *Config) MatcherConfig() matcher.Config {
	m := c.Mentions
	triggers := append([]string(nil), m.Triggers...)
	if len(triggers) == 0 {
		for t := range m.Items {
			triggers = append(triggers, t)
		}
		sort.Strings(triggers)
	}
	return matcher.Config{
		Triggers:        triggers,
		Punctuation:     m.Punctuation,
		PreTriggerChars: m.PreTriggerChars,
		AllowSpaces:     m.AllowSpaces,
		Enclosure:       m.MentionEnclosure,
	}
}

func (e ThemeEntry) structured() bool {
	return e.Trigger != "" || e.Value != "" || e.Container != "" || e.ContainerFocused != ""
}

// ThemeTable compiles the theme entries in order.
func (c *Config) ThemeTable() (*theme.Table, error) {
	pairs := make([]theme.Pair, 0, len(c.Theme))
	for _, e := range c.Theme {
		p := theme.Pair{Key: e.Key, Class: e.Class}
		if e.structured() {
			p.Values = &theme.Values{
				Trigger:          e.Trigger,
				Value:            e.Value,
				Container:        e.Container,
				ContainerFocused: e.ContainerFocused,
			}
		}
		pairs = append(pairs, p)
	}
	return theme.New(pairs)
}

// LoggerConfig builds the logger configuration, writing to out.
func (c *Config) LoggerConfig(out io.Writer) *logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Logging.Level)
	lc.JSONFormat = strings.EqualFold(c.Logging.Format, "json")
	if out != nil {
		lc.Output = out
	}
	return lc
}
