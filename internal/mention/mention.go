// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mention implements the mention node: an atomic document node
// holding a trigger, a value and optional scalar data, with JSON and HTML
// round-tripping, theme-driven rendering props and a custom rendering
// variant.
package mention

import (
	"errors"
	"fmt"

	"github.com/jeranaias/mentions-tui/internal/document"
)

// Type is the serialized type tag of mention nodes.
const Type = "betterMention"

// Version is the serialized record version.
const Version = 1

var (
	// ErrNotMention is returned when a key does not name a mention node.
	ErrNotMention = errors.New("node is not a mention")

	// ErrInvalidData is returned for data values that are not JSON scalars.
	ErrInvalidData = errors.New("mention data values must be string, number, bool or null")
)

// Data is caller-supplied metadata. Values are string, float64, bool or nil.
type Data map[string]any

// Node is a mention. The trigger is fixed at creation; value and data are
// changed only through a transaction (SetValue, SetData).
type Node struct {
	document.DecoratorBase
	trigger string
	value   string
	data    Data
	variant *Variant
}

// New returns a detached mention. Integer data values are stored as
// float64 and non-scalar values are dropped; an empty map is stored as nil.
func New(trigger, value string, data Data) *Node {
	return &Node{trigger: trigger, value: value, data: normalizeData(data)}
}

// Create creates a mention inside tx, applying any configured replacement
// (for example an upgrade to a custom variant).
func Create(tx *document.Tx, trigger, value string, data Data) *Node {
	return tx.Create(New(trigger, value, data)).(*Node)
}

// Type returns "betterMention", or the variant's tag for custom mentions.
func (n *Node) Type() string {
	if n.variant != nil {
		return n.variant.typ
	}
	return Type
}

// Clone returns a copy with the same key and its own data map.
func (n *Node) Clone() document.Node {
	c := *n
	c.data = cloneData(n.data)
	return &c
}

// TextContent is the trigger followed by the value.
func (n *Node) TextContent() string {
	return n.trigger + n.value
}

// Trigger returns the trigger, e.g. "@".
func (n *Node) Trigger() string { return n.trigger }

// Value returns the value without the trigger.
func (n *Node) Value() string { return n.value }

// Data returns a copy of the data map, or nil.
func (n *Node) Data() Data { return cloneData(n.data) }

// HasData reports whether the mention carries data.
func (n *Node) HasData() bool { return len(n.data) > 0 }

// Variant returns the custom variant, or nil for base mentions.
func (n *Node) Variant() *Variant { return n.variant }

// Equal reports attribute equality (trigger, value, data); keys and
// variants are ignored.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.trigger != o.trigger || n.value != o.value || len(n.data) != len(o.data) {
		return false
	}
	for k, v := range n.data {
		ov, ok := o.data[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// =============================================================================
// TRANSACTIONAL ACCESS
// =============================================================================

// Get returns the mention with key as seen by r.
func Get(r document.Reader, key document.NodeKey) (*Node, bool) {
	n, ok := r.Node(key).(*Node)
	return n, ok
}

// SetValue changes a mention's value within tx.
func SetValue(tx *document.Tx, key document.NodeKey, value string) error {
	if _, ok := Get(tx, key); !ok {
		return fmt.Errorf("%w: %s", ErrNotMention, key)
	}
	tx.Writable(key).(*Node).value = value
	return nil
}

// SetData replaces a mention's data within tx. nil clears it.
func SetData(tx *document.Tx, key document.NodeKey, data Data) error {
	if _, ok := Get(tx, key); !ok {
		return fmt.Errorf("%w: %s", ErrNotMention, key)
	}
	if err := ValidateData(data); err != nil {
		return err
	}
	tx.Writable(key).(*Node).data = normalizeData(data)
	return nil
}

// Collect returns the attached mentions in document order. An empty
// trigger matches every mention.
func Collect(s *document.State, trigger string) []*Node {
	var out []*Node
	s.Walk(func(n document.Node) bool {
		if m, ok := n.(*Node); ok && (trigger == "" || m.trigger == trigger) {
			out = append(out, m)
		}
		return true
	})
	return out
}

// =============================================================================
// DATA
// =============================================================================

// ValidateData reports an error if any value is not a JSON scalar.
func ValidateData(d Data) error {
	for k, v := range d {
		if _, ok := scalar(v); !ok {
			return fmt.Errorf("%w: %q is %T", ErrInvalidData, k, v)
		}
	}
	return nil
}

func scalar(v any) (any, bool) {
	switch v := v.(type) {
	case nil, string, bool, float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return nil, false
	}
}

func normalizeData(d Data) Data {
	if len(d) == 0 {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		if s, ok := scalar(v); ok {
			out[k] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneData(d Data) Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
