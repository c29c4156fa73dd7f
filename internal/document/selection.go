// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

// PointType tells how a Point's offset is interpreted.
type PointType int

const (
	// PointText offsets count runes inside a text node.
	PointText PointType = iota
	// PointElement offsets count children of an element; offset i is the
	// gap before child i.
	PointElement
)

// Point is one end of a range selection.
type Point struct {
	Key    NodeKey
	Offset int
	Type   PointType
}

// TextPoint returns a point inside a text node.
func TextPoint(key NodeKey, offset int) Point {
	return Point{Key: key, Offset: offset, Type: PointText}
}

// ElementPoint returns a point between the children of an element.
func ElementPoint(key NodeKey, offset int) Point {
	return Point{Key: key, Offset: offset, Type: PointElement}
}

// Selection is a RangeSelection or a NodeSelection.
type Selection interface {
	Clone() Selection
	isSelection()
}

// RangeSelection is a caret (collapsed) or a text range.
type RangeSelection struct {
	Anchor Point
	Focus  Point
}

func (*RangeSelection) isSelection() {}

// Clone copies the selection.
func (r *RangeSelection) Clone() Selection {
	c := *r
	return &c
}

// IsCollapsed reports whether anchor and focus coincide.
func (r *RangeSelection) IsCollapsed() bool {
	return r.Anchor == r.Focus
}

// NodeSelection selects whole nodes, typically one atomic node.
type NodeSelection struct {
	keys []NodeKey
}

func (*NodeSelection) isSelection() {}

// NewNodeSelection selects the given nodes.
func NewNodeSelection(keys ...NodeKey) *NodeSelection {
	ns := &NodeSelection{}
	for _, k := range keys {
		ns.Add(k)
	}
	return ns
}

// Clone copies the selection.
func (n *NodeSelection) Clone() Selection {
	return &NodeSelection{keys: append([]NodeKey(nil), n.keys...)}
}

// Keys returns the selected keys in selection order.
func (n *NodeSelection) Keys() []NodeKey {
	return append([]NodeKey(nil), n.keys...)
}

// Has reports whether key is selected.
func (n *NodeSelection) Has(key NodeKey) bool {
	for _, k := range n.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Add selects key. Adding an already selected key is a no-op.
func (n *NodeSelection) Add(key NodeKey) {
	if !n.Has(key) {
		n.keys = append(n.keys, key)
	}
}

// Len returns the number of selected nodes.
func (n *NodeSelection) Len() int { return len(n.keys) }
