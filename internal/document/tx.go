// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is returned when a key does not name a node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNotElement is returned when an element was required.
	ErrNotElement = errors.New("node is not an element")

	// ErrNotText is returned when a text node was required.
	ErrNotText = errors.New("node is not a text node")

	// ErrOffsetOutOfRange is returned for offsets outside a node.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrInvalidMove is returned when a move would detach the root or
	// place a node inside itself.
	ErrInvalidMove = errors.New("invalid node move")
)

// Tx is a copy-on-write transaction over a State. Reads through the
// embedded State observe the transaction's own writes.
type Tx struct {
	*State
	editor *Editor
	owned  map[NodeKey]bool
	dirty  bool
	err    error
}

func newTx(e *Editor, base *State) *Tx {
	return &Tx{State: base.clone(), editor: e, owned: make(map[NodeKey]bool)}
}

// Editor returns the editor that opened the transaction.
func (tx *Tx) Editor() *Editor {
	return tx.editor
}

// Fail marks the transaction failed. Update and Dispatch discard it and
// report the first error passed here.
func (tx *Tx) Fail(err error) {
	if tx.err == nil {
		tx.err = err
	}
}

// Writable returns a copy of the node owned by this transaction; writes to
// it become part of the next state. Returns nil for unknown keys.
func (tx *Tx) Writable(key NodeKey) Node {
	n := tx.nodes[key]
	if n == nil {
		return nil
	}
	if !tx.owned[key] {
		n = n.Clone()
		tx.nodes[key] = n
		tx.owned[key] = true
	}
	tx.dirty = true
	return n
}

func (tx *Tx) writableElement(key NodeKey) (*ElementNode, error) {
	n := tx.nodes[key]
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	}
	if _, ok := n.(*ElementNode); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotElement, key)
	}
	return tx.Writable(key).(*ElementNode), nil
}

func (tx *Tx) writableText(key NodeKey) (*TextNode, error) {
	n := tx.nodes[key]
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	}
	if _, ok := n.(*TextNode); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotText, key)
	}
	return tx.Writable(key).(*TextNode), nil
}

// Create registers a detached node with the transaction, applying any node
// replacement configured for its type, and returns the node actually
// stored. Nodes still detached at commit are discarded.
func (tx *Tx) Create(n Node) Node {
	if tx.editor != nil {
		n = tx.editor.applyReplacement(n)
	}
	b := n.base()
	if b.key == "" {
		b.key = newKey()
	}
	b.parent = ""
	tx.nodes[b.key] = n
	tx.owned[b.key] = true
	tx.dirty = true
	return n
}

// =============================================================================
// STRUCTURE
// =============================================================================

// Append moves keys, in order, to the end of parent's children.
func (tx *Tx) Append(parent NodeKey, keys ...NodeKey) error {
	for _, k := range keys {
		e := tx.Element(parent)
		if e == nil {
			return fmt.Errorf("%w: %s", ErrNotElement, parent)
		}
		if err := tx.InsertAt(parent, len(e.children), k); err != nil {
			return err
		}
	}
	return nil
}

// InsertAt moves key to position index among parent's children. The index
// is interpreted after key has been detached from its old position.
func (tx *Tx) InsertAt(parent NodeKey, index int, key NodeKey) error {
	if key == RootKey || tx.isAncestor(key, parent) {
		return fmt.Errorf("%w: %s into %s", ErrInvalidMove, key, parent)
	}
	if tx.nodes[key] == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	}
	if _, err := tx.writableElement(parent); err != nil {
		return err
	}
	tx.detach(key)

	e := tx.nodes[parent].(*ElementNode)
	if index < 0 || index > len(e.children) {
		return fmt.Errorf("%w: index %d in %s", ErrOffsetOutOfRange, index, parent)
	}
	e.children = append(e.children, "")
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = key
	tx.Writable(key).base().parent = parent
	return nil
}

// InsertBefore moves key directly before ref.
func (tx *Tx) InsertBefore(ref, key NodeKey) error {
	return tx.insertRelative(ref, key, 0)
}

// InsertAfter moves key directly after ref.
func (tx *Tx) InsertAfter(ref, key NodeKey) error {
	return tx.insertRelative(ref, key, 1)
}

func (tx *Tx) insertRelative(ref, key NodeKey, delta int) error {
	r := tx.nodes[ref]
	if r == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, ref)
	}
	if ref == key {
		return fmt.Errorf("%w: %s relative to itself", ErrInvalidMove, key)
	}
	parent := r.Parent()
	if parent == "" {
		return fmt.Errorf("%w: %s is detached", ErrInvalidMove, ref)
	}
	tx.detach(key)
	return tx.InsertAt(parent, tx.Element(parent).indexOf(ref)+delta, key)
}

// Remove detaches key from the tree.
func (tx *Tx) Remove(key NodeKey) error {
	if key == RootKey {
		return fmt.Errorf("%w: cannot remove root", ErrInvalidMove)
	}
	if tx.nodes[key] == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	}
	tx.detach(key)
	return nil
}

// Replace puts n where old is and detaches old. n is created first if it is
// not yet part of the transaction. Returns the stored replacement.
func (tx *Tx) Replace(old NodeKey, n Node) (Node, error) {
	if tx.nodes[old] == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, old)
	}
	if n.Key() == "" || tx.nodes[n.Key()] == nil {
		n = tx.Create(n)
	}
	if err := tx.InsertBefore(old, n.Key()); err != nil {
		return nil, err
	}
	tx.detach(old)
	return n, nil
}

func (tx *Tx) detach(key NodeKey) {
	n := tx.nodes[key]
	if n == nil || n.Parent() == "" {
		return
	}
	if p, err := tx.writableElement(n.Parent()); err == nil {
		if i := p.indexOf(key); i >= 0 {
			p.children = append(p.children[:i], p.children[i+1:]...)
		}
	}
	tx.Writable(key).base().parent = ""
}

// isAncestor reports whether a is parent or an ancestor of b, or b itself.
func (tx *Tx) isAncestor(a, b NodeKey) bool {
	for b != "" {
		if a == b {
			return true
		}
		n := tx.nodes[b]
		if n == nil {
			return false
		}
		b = n.Parent()
	}
	return false
}

// =============================================================================
// TEXT
// =============================================================================

// SetText replaces the text of a text node.
func (tx *Tx) SetText(key NodeKey, text string) error {
	t, err := tx.writableText(key)
	if err != nil {
		return err
	}
	t.text = text
	return nil
}

// ReplaceTextRange replaces runes [start, end) of a text node with n. Text
// on either side is kept in text nodes around it. Returns the stored node.
func (tx *Tx) ReplaceTextRange(key NodeKey, start, end int, n Node) (Node, error) {
	t := tx.Text(key)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotText, key)
	}
	runes := []rune(t.text)
	if start < 0 || end < start || end > len(runes) {
		return nil, fmt.Errorf("%w: [%d,%d) in %d runes", ErrOffsetOutOfRange, start, end, len(runes))
	}
	left, right := string(runes[:start]), string(runes[end:])

	n = tx.Create(n)
	switch {
	case left != "":
		if err := tx.SetText(key, left); err != nil {
			return nil, err
		}
		if err := tx.InsertAfter(key, n.Key()); err != nil {
			return nil, err
		}
		if right != "" {
			r := tx.Create(NewText(right))
			if err := tx.InsertAfter(n.Key(), r.Key()); err != nil {
				return nil, err
			}
		}
	case right != "":
		if err := tx.SetText(key, right); err != nil {
			return nil, err
		}
		if err := tx.InsertBefore(key, n.Key()); err != nil {
			return nil, err
		}
	default:
		if _, err := tx.Replace(key, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// SplitText splits a text node at the given rune offset and returns the
// key of the right-hand part. The left part keeps the original key.
func (tx *Tx) SplitText(key NodeKey, offset int) (NodeKey, error) {
	t := tx.Text(key)
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrNotText, key)
	}
	runes := []rune(t.text)
	if offset < 0 || offset > len(runes) {
		return "", fmt.Errorf("%w: %d in %d runes", ErrOffsetOutOfRange, offset, len(runes))
	}
	if err := tx.SetText(key, string(runes[:offset])); err != nil {
		return "", err
	}
	right := tx.Create(NewText(string(runes[offset:])))
	if err := tx.InsertAfter(key, right.Key()); err != nil {
		return "", err
	}
	return right.Key(), nil
}

// =============================================================================
// SELECTION
// =============================================================================

// SetSelection replaces the selection. nil clears it.
func (tx *Tx) SetSelection(sel Selection) {
	tx.selection = sel
	tx.dirty = true
}

// SelectText selects runes [anchor, focus] of a text node.
func (tx *Tx) SelectText(key NodeKey, anchor, focus int) {
	tx.SetSelection(&RangeSelection{Anchor: TextPoint(key, anchor), Focus: TextPoint(key, focus)})
}

// SelectPoint places a collapsed caret at p.
func (tx *Tx) SelectPoint(p Point) {
	tx.SetSelection(&RangeSelection{Anchor: p, Focus: p})
}

// SelectNode selects whole nodes.
func (tx *Tx) SelectNode(keys ...NodeKey) {
	tx.SetSelection(NewNodeSelection(keys...))
}

// SelectStart places the caret at the start of key.
func (tx *Tx) SelectStart(key NodeKey) {
	switch n := tx.nodes[key].(type) {
	case *TextNode:
		tx.SelectPoint(TextPoint(key, 0))
	case *ElementNode:
		if len(n.children) > 0 {
			switch first := tx.nodes[n.children[0]].(type) {
			case *TextNode, *ElementNode:
				tx.SelectStart(first.Key())
				return
			}
		}
		tx.SelectPoint(ElementPoint(key, 0))
	case Node:
		tx.SelectPrevious(key)
	}
}

// SelectEnd places the caret at the end of key.
func (tx *Tx) SelectEnd(key NodeKey) {
	switch n := tx.nodes[key].(type) {
	case *TextNode:
		tx.SelectPoint(TextPoint(key, n.Len()))
	case *ElementNode:
		if len(n.children) > 0 {
			switch last := tx.nodes[n.children[len(n.children)-1]].(type) {
			case *TextNode, *ElementNode:
				tx.SelectEnd(last.Key())
				return
			}
		}
		tx.SelectPoint(ElementPoint(key, len(n.children)))
	case Node:
		tx.SelectNext(key)
	}
}

// SelectPrevious places the caret immediately before key.
func (tx *Tx) SelectPrevious(key NodeKey) {
	n := tx.nodes[key]
	if n == nil || n.Parent() == "" {
		return
	}
	parent := n.Parent()
	switch prev := tx.PreviousSibling(key).(type) {
	case nil:
		tx.SelectPoint(ElementPoint(parent, 0))
	case *ElementNode:
		tx.SelectEnd(prev.Key())
	case *TextNode:
		tx.SelectPoint(TextPoint(prev.Key(), prev.Len()))
	default:
		tx.SelectPoint(ElementPoint(parent, tx.IndexOf(prev.Key())+1))
	}
}

// SelectNext places the caret immediately after key.
func (tx *Tx) SelectNext(key NodeKey) {
	n := tx.nodes[key]
	if n == nil || n.Parent() == "" {
		return
	}
	parent := n.Parent()
	switch next := tx.NextSibling(key).(type) {
	case nil:
		tx.SelectPoint(ElementPoint(parent, tx.Element(parent).ChildCount()))
	case *ElementNode:
		tx.SelectStart(next.Key())
	case *TextNode:
		tx.SelectPoint(TextPoint(next.Key(), 0))
	default:
		tx.SelectPoint(ElementPoint(parent, tx.IndexOf(next.Key())))
	}
}

// =============================================================================
// COMMIT
// =============================================================================

// finish normalizes the tree, drops detached nodes and repairs the
// selection. It runs once, just before the state is published.
func (tx *Tx) finish() *State {
	tx.normalize(RootKey)
	tx.collect()
	tx.repairSelection()
	tx.version++
	return tx.State
}

// normalize merges adjacent plain text nodes and drops empty ones, moving
// any selection point that referenced them.
func (tx *Tx) normalize(key NodeKey) {
	e := tx.Element(key)
	if e == nil {
		return
	}
	var kept []NodeKey
	changed := false
	for _, k := range e.children {
		child := tx.nodes[k]
		t, isText := child.(*TextNode)
		if !isText || t.typ != TypeText {
			tx.normalize(k)
			kept = append(kept, k)
			continue
		}
		if t.text == "" {
			tx.remapPoints(k, func(int) Point { return ElementPoint(key, len(kept)) })
			changed = true
			continue
		}
		if n := len(kept); n > 0 {
			if prev, ok := tx.nodes[kept[n-1]].(*TextNode); ok && prev.typ == TypeText {
				shift := prev.Len()
				w := tx.Writable(prev.Key()).(*TextNode)
				w.text += t.text
				tx.remapPoints(k, func(off int) Point { return TextPoint(w.Key(), shift+off) })
				changed = true
				continue
			}
		}
		kept = append(kept, k)
	}
	if !changed {
		return
	}
	for _, k := range e.children {
		if !contains(kept, k) {
			tx.Writable(k).base().parent = ""
		}
	}
	tx.Writable(key).(*ElementNode).children = kept
}

func (tx *Tx) remapPoints(key NodeKey, to func(offset int) Point) {
	rs, ok := tx.selection.(*RangeSelection)
	if !ok {
		return
	}
	if rs.Anchor.Key == key {
		rs.Anchor = to(rs.Anchor.Offset)
	}
	if rs.Focus.Key == key {
		rs.Focus = to(rs.Focus.Offset)
	}
}

func (tx *Tx) collect() {
	reachable := make(map[NodeKey]bool, len(tx.nodes))
	tx.Walk(func(n Node) bool {
		reachable[n.Key()] = true
		return true
	})
	for k := range tx.nodes {
		if !reachable[k] {
			delete(tx.nodes, k)
		}
	}
}

func (tx *Tx) repairSelection() {
	switch sel := tx.selection.(type) {
	case *RangeSelection:
		if !tx.validPoint(&sel.Anchor) || !tx.validPoint(&sel.Focus) {
			tx.selection = nil
		}
	case *NodeSelection:
		var keys []NodeKey
		for _, k := range sel.keys {
			if tx.nodes[k] != nil {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			tx.selection = nil
		} else {
			sel.keys = keys
		}
	}
}

// validPoint reports whether p names a live node, clamping its offset.
func (tx *Tx) validPoint(p *Point) bool {
	var size int
	switch n := tx.nodes[p.Key].(type) {
	case *TextNode:
		if p.Type != PointText {
			return false
		}
		size = n.Len()
	case *ElementNode:
		if p.Type != PointElement {
			return false
		}
		size = len(n.children)
	default:
		return false
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Offset > size {
		p.Offset = size
	}
	return true
}

func contains(keys []NodeKey, key NodeKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
