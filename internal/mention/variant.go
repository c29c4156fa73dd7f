// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"errors"
	"sync"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/logging"
)

// CustomType is the serialized type tag of custom-rendered mentions.
const CustomType = "custom-betterMention"

// ErrNilComponent is returned by CustomVariant for a nil component.
var ErrNilComponent = errors.New("custom mention variant requires a component")

// Variant is a mention subtype that renders through a caller-supplied
// component. It keeps the base serialization shape; only the type tag
// differs.
type Variant struct {
	typ       string
	component Component
}

var (
	variantMu sync.Mutex
	variant   *Variant
)

// CustomVariant returns the process-wide custom variant and a replacement
// that upgrades base mentions to it. The first component passed wins;
// later calls return the same variant.
func CustomVariant(component Component) (*Variant, document.Replacement, error) {
	if component == nil {
		return nil, document.Replacement{}, ErrNilComponent
	}
	variantMu.Lock()
	if variant == nil {
		variant = &Variant{typ: CustomType, component: component}
	}
	v := variant
	variantMu.Unlock()
	return v, v.Replacement(), nil
}

// Type returns the variant's type tag.
func (v *Variant) Type() string { return v.typ }

// Component returns the render component.
func (v *Variant) Component() Component { return v.component }

// New returns a detached mention of this variant.
func (v *Variant) New(trigger, value string, data Data) *Node {
	n := New(trigger, value, data)
	n.variant = v
	return n
}

// Replacement upgrades base mentions to v when they are created or
// imported.
func (v *Variant) Replacement() document.Replacement {
	return document.Replacement{
		Replace: Type,
		With: func(n document.Node) document.Node {
			m, ok := n.(*Node)
			if !ok || m.variant != nil {
				return nil
			}
			return v.New(m.trigger, m.value, m.data)
		},
	}
}

// NodeType returns the registration of the variant's serialized form.
// HTML spans are recognized by the base registration and then upgraded
// through the replacement.
func (v *Variant) NodeType() document.NodeType {
	return document.NodeType{
		Type: v.typ,
		ImportJSON: func(raw []byte) (document.Node, error) {
			n, err := ImportJSON(raw)
			if err != nil {
				return nil, err
			}
			n.variant = v
			return n, nil
		},
	}
}

// EditorConfig returns an editor configuration with mention support. A
// non-nil v also registers the variant and upgrades base mentions to it.
func EditorConfig(log logging.Logger, v *Variant) document.Config {
	cfg := document.Config{
		Nodes:  []document.NodeType{NodeType(log)},
		Logger: log,
	}
	if v != nil {
		cfg.Nodes = append(cfg.Nodes, v.NodeType())
		cfg.Replacements = append(cfg.Replacements, v.Replacement())
	}
	return cfg
}
