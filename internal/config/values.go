// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/mentions-tui/internal/menu"
)

// =============================================================================
// LIMIT (int | false)
// =============================================================================

// Limit is a menu length written as a number, or false for no limit.
type Limit struct {
	Value    int
	Disabled bool
}

// NoLimit is the false form.
var NoLimit = Limit{Disabled: true}

// Menu converts the limit for the menu options.
func (l Limit) Menu() menu.Limit {
	if l.Disabled {
		return menu.Unlimited
	}
	return menu.Limit(l.Value)
}

func (l *Limit) set(v any) error {
	switch v := v.(type) {
	case bool:
		if v {
			return fmt.Errorf("limit must be a number or false, got true")
		}
		*l = NoLimit
	case int64:
		*l = Limit{Value: int(v)}
	case int:
		*l = Limit{Value: v}
	case float64:
		if v != float64(int(v)) {
			return fmt.Errorf("limit must be a whole number, got %v", v)
		}
		*l = Limit{Value: int(v)}
	default:
		return fmt.Errorf("limit must be a number or false, got %T", v)
	}
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (l *Limit) UnmarshalTOML(v any) error { return l.set(v) }

// UnmarshalJSON implements json.Unmarshaler.
func (l *Limit) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return l.set(v)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Limit) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return l.set(v)
}

// UnmarshalText parses "false" or a number, as used by environment
// overrides and `config set`.
func (l *Limit) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if strings.EqualFold(s, "false") {
		*l = NoLimit
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("limit must be a number or false, got %q", s)
	}
	*l = Limit{Value: n}
	return nil
}

func (l Limit) value() any {
	if l.Disabled {
		return false
	}
	return l.Value
}

// MarshalTOML implements toml.Marshaler.
func (l Limit) MarshalTOML() ([]byte, error) { return json.Marshal(l.value()) }

// MarshalJSON implements json.Marshaler.
func (l Limit) MarshalJSON() ([]byte, error) { return json.Marshal(l.value()) }

// MarshalYAML implements yaml.Marshaler.
func (l Limit) MarshalYAML() (any, error) { return l.value(), nil }

func (l Limit) String() string {
	if l.Disabled {
		return "false"
	}
	return strconv.Itoa(l.Value)
}

// =============================================================================
// CREATABLE (bool | string)
// =============================================================================

// Creatable enables the "create new" entry; the string form is its label
// template, where {{name}} stands for the query.
type Creatable struct {
	Enabled bool
	Label   string
}

// Menu converts the setting for the menu options.
func (c Creatable) Menu() menu.Creatable {
	return menu.Creatable{Enabled: c.Enabled, Label: c.Label}
}

func (c *Creatable) set(v any) error {
	switch v := v.(type) {
	case bool:
		*c = Creatable{Enabled: v}
	case string:
		*c = Creatable{Enabled: true, Label: v}
	default:
		return fmt.Errorf("creatable must be a bool or a label, got %T", v)
	}
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (c *Creatable) UnmarshalTOML(v any) error { return c.set(v) }

// UnmarshalJSON implements json.Unmarshaler.
func (c *Creatable) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return c.set(v)
}

// UnmarshalYAML implements yaml.Unmarshaler. Unquoted true/false are
// booleans; anything else is a label.
func (c *Creatable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("creatable must be a bool or a label")
	}
	switch node.ShortTag() {
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		return c.set(b)
	case "!!str":
		return c.set(node.Value)
	default:
		return fmt.Errorf("creatable must be a bool or a label, got %s", node.ShortTag())
	}
}

// UnmarshalText parses "true", "false" or a label.
func (c *Creatable) UnmarshalText(text []byte) error {
	s := string(text)
	if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		return c.set(b)
	}
	return c.set(s)
}

func (c Creatable) value() any {
	if c.Enabled && c.Label != "" {
		return c.Label
	}
	return c.Enabled
}

// MarshalTOML implements toml.Marshaler.
func (c Creatable) MarshalTOML() ([]byte, error) { return json.Marshal(c.value()) }

// MarshalJSON implements json.Marshaler.
func (c Creatable) MarshalJSON() ([]byte, error) { return json.Marshal(c.value()) }

// MarshalYAML implements yaml.Marshaler.
func (c Creatable) MarshalYAML() (any, error) { return c.value(), nil }

func (c Creatable) String() string {
	if c.Enabled && c.Label != "" {
		return c.Label
	}
	return strconv.FormatBool(c.Enabled)
}
