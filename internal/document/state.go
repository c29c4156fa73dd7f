// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import "strings"

// Reader is the read-only tree view shared by State and Tx.
type Reader interface {
	Node(key NodeKey) Node
	PreviousSibling(key NodeKey) Node
	NextSibling(key NodeKey) Node
	Selection() Selection
}

// State is an immutable snapshot of a document.
type State struct {
	nodes     map[NodeKey]Node
	selection Selection
	version   uint64
}

// NewState returns a state holding an empty root.
func NewState() *State {
	return &State{nodes: map[NodeKey]Node{RootKey: newRoot()}}
}

// Version increases by one on every committed update.
func (s *State) Version() uint64 { return s.version }

// Node returns the node with key, or nil.
func (s *State) Node(key NodeKey) Node {
	return s.nodes[key]
}

// Root returns the root element.
func (s *State) Root() *ElementNode {
	return s.nodes[RootKey].(*ElementNode)
}

// Selection returns the current selection, or nil.
func (s *State) Selection() Selection {
	return s.selection
}

// Element returns the element with key, or nil.
func (s *State) Element(key NodeKey) *ElementNode {
	e, _ := s.nodes[key].(*ElementNode)
	return e
}

// Text returns the text node with key, or nil.
func (s *State) Text(key NodeKey) *TextNode {
	t, _ := s.nodes[key].(*TextNode)
	return t
}

// Children returns the child nodes of an element.
func (s *State) Children(key NodeKey) []Node {
	e := s.Element(key)
	if e == nil {
		return nil
	}
	out := make([]Node, 0, len(e.children))
	for _, k := range e.children {
		out = append(out, s.nodes[k])
	}
	return out
}

// IndexOf returns the position of key within its parent, or -1.
func (s *State) IndexOf(key NodeKey) int {
	n := s.nodes[key]
	if n == nil {
		return -1
	}
	parent := s.Element(n.Parent())
	if parent == nil {
		return -1
	}
	return parent.indexOf(key)
}

// PreviousSibling returns the sibling before key, or nil.
func (s *State) PreviousSibling(key NodeKey) Node {
	return s.sibling(key, -1)
}

// NextSibling returns the sibling after key, or nil.
func (s *State) NextSibling(key NodeKey) Node {
	return s.sibling(key, 1)
}

func (s *State) sibling(key NodeKey, delta int) Node {
	n := s.nodes[key]
	if n == nil {
		return nil
	}
	parent := s.Element(n.Parent())
	if parent == nil {
		return nil
	}
	i := parent.indexOf(key) + delta
	if i < 0 || i >= len(parent.children) {
		return nil
	}
	return s.nodes[parent.children[i]]
}

// IsAttached reports whether key is reachable from the root.
func (s *State) IsAttached(key NodeKey) bool {
	for key != "" {
		if key == RootKey {
			return true
		}
		n := s.nodes[key]
		if n == nil {
			return false
		}
		key = n.Parent()
	}
	return false
}

// IsNodeSelected reports whether key is part of a node selection.
func (s *State) IsNodeSelected(key NodeKey) bool {
	ns, ok := s.selection.(*NodeSelection)
	return ok && ns.Has(key)
}

// Walk visits attached nodes in document order. Returning false from fn
// skips the node's children.
func (s *State) Walk(fn func(n Node) bool) {
	s.walk(RootKey, fn)
}

func (s *State) walk(key NodeKey, fn func(n Node) bool) {
	n := s.nodes[key]
	if n == nil || !fn(n) {
		return
	}
	if e, ok := n.(*ElementNode); ok {
		for _, k := range e.children {
			s.walk(k, fn)
		}
	}
}

// Find returns attached nodes matching fn in document order.
func (s *State) Find(fn func(n Node) bool) []Node {
	var out []Node
	s.Walk(func(n Node) bool {
		if fn(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// TextContent returns the plain text of the subtree at key. Blocks under
// the root are separated by a blank line.
func (s *State) TextContent(key NodeKey) string {
	switch n := s.nodes[key].(type) {
	case *TextNode:
		return n.text
	case Decorator:
		return n.TextContent()
	case *ElementNode:
		parts := make([]string, 0, len(n.children))
		for _, k := range n.children {
			parts = append(parts, s.TextContent(k))
		}
		if n.typ == TypeRoot {
			return strings.Join(parts, "\n\n")
		}
		return strings.Join(parts, "")
	default:
		return ""
	}
}

// Caret returns the text node and rune offset of a collapsed text caret.
func (s *State) Caret() (*TextNode, int, bool) {
	rs, ok := s.selection.(*RangeSelection)
	if !ok || !rs.IsCollapsed() || rs.Anchor.Type != PointText {
		return nil, 0, false
	}
	t := s.Text(rs.Anchor.Key)
	if t == nil {
		return nil, 0, false
	}
	return t, rs.Anchor.Offset, true
}

// Block returns the top-level block (child of the root) containing key.
func (s *State) Block(key NodeKey) *ElementNode {
	for key != "" {
		n := s.nodes[key]
		if n == nil {
			return nil
		}
		if n.Parent() == RootKey {
			e, _ := n.(*ElementNode)
			return e
		}
		key = n.Parent()
	}
	return nil
}

func (s *State) clone() *State {
	nodes := make(map[NodeKey]Node, len(s.nodes))
	for k, v := range s.nodes {
		nodes[k] = v
	}
	c := &State{nodes: nodes, version: s.version}
	if s.selection != nil {
		c.selection = s.selection.Clone()
	}
	return c
}
