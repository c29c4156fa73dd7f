// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package menu

import (
	"github.com/jeranaias/mentions-tui/internal/mention"
)

// ItemType distinguishes the entries of the candidate list.
type ItemType string

const (
	// ItemTrigger offers a trigger (combobox only).
	ItemTrigger ItemType = "trigger"
	// ItemValue offers a mention value.
	ItemValue ItemType = "value"
	// ItemAdditional is a synthetic entry: the creatable entry or a
	// caller-supplied combobox item.
	ItemAdditional ItemType = "additional"
)

// Item is one entry of the candidate list.
type Item struct {
	ItemType     ItemType     `json:"itemType" yaml:"item_type" toml:"item_type"`
	Trigger      string       `json:"trigger" yaml:"trigger" toml:"trigger"`
	Value        string       `json:"value" yaml:"value" toml:"value"`
	DisplayValue string       `json:"displayValue" yaml:"display_value" toml:"display_value"`
	Data         mention.Data `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
}

// ID is the structural identity of the item.
func (i Item) ID() string {
	return i.Trigger + i.Value
}

// Label returns the display value, falling back to the value.
func (i Item) Label() string {
	if i.DisplayValue != "" {
		return i.DisplayValue
	}
	return i.Value
}

func valueItem(trigger string, s SourceItem) Item {
	return Item{
		ItemType:     ItemValue,
		Trigger:      trigger,
		Value:        s.Value,
		DisplayValue: s.Value,
		Data:         s.Data,
	}
}
