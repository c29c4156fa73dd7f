// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package navigate computes caret targets next to atomic nodes so that one
// arrow press always moves across a mention in a single step.
package navigate

import "github.com/jeranaias/mentions-tui/internal/document"

// Kind classifies a navigation target.
type Kind int

const (
	// None means there is no usable sibling; the caret escapes to the
	// enclosing block.
	None Kind = iota
	Element
	Text
	Atomic
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Element:
		return "element"
	case Text:
		return "text"
	case Atomic:
		return "atomic"
	default:
		return "none"
	}
}

// Target is the node adjacent to a starting node.
type Target struct {
	Kind Kind
	Key  document.NodeKey
}

// Previous returns the closest preceding sibling of key, skipping
// zero-width spacers.
func Previous(r document.Reader, key document.NodeKey) Target {
	n := r.PreviousSibling(key)
	for isZeroWidth(n) {
		n = r.PreviousSibling(n.Key())
	}
	return classify(n)
}

// Next returns the closest following sibling of key, skipping zero-width
// spacers.
func Next(r document.Reader, key document.NodeKey) Target {
	n := r.NextSibling(key)
	for isZeroWidth(n) {
		n = r.NextSibling(n.Key())
	}
	return classify(n)
}

func isZeroWidth(n document.Node) bool {
	t, ok := n.(*document.TextNode)
	return ok && t.IsZeroWidth()
}

func classify(n document.Node) Target {
	if n == nil {
		return Target{}
	}
	switch n.Kind() {
	case document.KindElement, document.KindRoot:
		return Target{Kind: Element, Key: n.Key()}
	case document.KindText:
		return Target{Kind: Text, Key: n.Key()}
	default:
		return Target{Kind: Atomic, Key: n.Key()}
	}
}

// MoveLeft places the caret immediately left of the node key:
//
//   - element: at its end
//   - text: at its end
//   - atomic: right after it
//   - none: before key in its parent
//
// It returns false when key does not exist.
func MoveLeft(tx *document.Tx, key document.NodeKey) bool {
	if tx.Node(key) == nil {
		return false
	}
	t := Previous(tx, key)
	switch t.Kind {
	case Element:
		tx.SelectEnd(t.Key)
	case Text:
		tx.SelectPoint(document.TextPoint(t.Key, tx.Text(t.Key).Len()))
	case Atomic:
		tx.SelectNext(t.Key)
	default:
		tx.SelectPrevious(key)
	}
	return true
}

// MoveRight is the mirror of MoveLeft.
func MoveRight(tx *document.Tx, key document.NodeKey) bool {
	if tx.Node(key) == nil {
		return false
	}
	t := Next(tx, key)
	switch t.Kind {
	case Element:
		tx.SelectStart(t.Key)
	case Text:
		tx.SelectPoint(document.TextPoint(t.Key, 0))
	case Atomic:
		tx.SelectPrevious(t.Key)
	default:
		tx.SelectNext(key)
	}
	return true
}
