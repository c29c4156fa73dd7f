// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

// NodeKey identifies a node for the lifetime of an editor.
type NodeKey string

// RootKey is the key of every document's root element.
const RootKey NodeKey = "root"

// Built-in node type tags.
const (
	TypeRoot      = "root"
	TypeParagraph = "paragraph"
	TypeText      = "text"
	TypeZeroWidth = "zeroWidth"
)

// Kind is the closed set of structural node kinds.
type Kind int

const (
	KindRoot Kind = iota
	KindElement
	KindText
	KindDecorator
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindDecorator:
		return "decorator"
	default:
		return "unknown"
	}
}

// Node is a document tree node. Implementations outside this package embed
// DecoratorBase.
type Node interface {
	Key() NodeKey
	Parent() NodeKey
	Type() string
	Kind() Kind

	// Clone returns a copy with the same key. Mutable reference fields
	// must be copied so the clone can be written without aliasing.
	Clone() Node

	base() *NodeBase
}

// Decorator is an atomic node: one caret stop wide and never edited as text.
type Decorator interface {
	Node
	TextContent() string
}

// JSONExporter is implemented by registered leaf nodes.
type JSONExporter interface {
	ExportJSON() any
}

// NodeBase carries the key and parent link shared by every node.
type NodeBase struct {
	key    NodeKey
	parent NodeKey
}

// Key returns the node key.
func (b *NodeBase) Key() NodeKey { return b.key }

// Parent returns the parent key, or "" for detached nodes and the root.
func (b *NodeBase) Parent() NodeKey { return b.parent }

func (b *NodeBase) base() *NodeBase { return b }

// DecoratorBase is embedded by atomic node implementations.
type DecoratorBase struct {
	NodeBase
}

// Kind reports KindDecorator.
func (d *DecoratorBase) Kind() Kind { return KindDecorator }

func newKey() NodeKey {
	return NodeKey(uuid.NewString())
}

// =============================================================================
// ELEMENTS
// =============================================================================

// ElementNode is a container node: the root or a paragraph.
type ElementNode struct {
	NodeBase
	typ      string
	children []NodeKey
}

// NewParagraph returns a detached, empty paragraph.
func NewParagraph() *ElementNode {
	return &ElementNode{typ: TypeParagraph}
}

// NewElement returns a detached element with the given type tag.
func NewElement(typ string) *ElementNode {
	return &ElementNode{typ: typ}
}

func newRoot() *ElementNode {
	return &ElementNode{NodeBase: NodeBase{key: RootKey}, typ: TypeRoot}
}

// Type returns the element's type tag.
func (e *ElementNode) Type() string { return e.typ }

// Kind reports KindRoot for the root and KindElement otherwise.
func (e *ElementNode) Kind() Kind {
	if e.typ == TypeRoot {
		return KindRoot
	}
	return KindElement
}

// Children returns a copy of the child keys.
func (e *ElementNode) Children() []NodeKey {
	return append([]NodeKey(nil), e.children...)
}

// ChildCount returns the number of children.
func (e *ElementNode) ChildCount() int { return len(e.children) }

// Clone copies the element and its child list.
func (e *ElementNode) Clone() Node {
	c := *e
	c.children = append([]NodeKey(nil), e.children...)
	return &c
}

func (e *ElementNode) indexOf(key NodeKey) int {
	for i, k := range e.children {
		if k == key {
			return i
		}
	}
	return -1
}

// =============================================================================
// TEXT
// =============================================================================

// TextNode holds plain text. Offsets into it are rune offsets.
type TextNode struct {
	NodeBase
	typ  string
	text string
}

// NewText returns a detached text node.
func NewText(text string) *TextNode {
	return &TextNode{typ: TypeText, text: text}
}

// NewZeroWidth returns a zero-width text node. It renders nothing and
// navigation skips over it; it exists so documents written by editors that
// pad atomic nodes with it load unchanged.
func NewZeroWidth() *TextNode {
	return &TextNode{typ: TypeZeroWidth}
}

// Type returns "text" or "zeroWidth".
func (t *TextNode) Type() string { return t.typ }

// Kind reports KindText.
func (t *TextNode) Kind() Kind { return KindText }

// Text returns the node's text.
func (t *TextNode) Text() string { return t.text }

// Len returns the text length in runes.
func (t *TextNode) Len() int { return utf8.RuneCountInString(t.text) }

// IsZeroWidth reports whether the node is a zero-width spacer.
func (t *TextNode) IsZeroWidth() bool { return t.typ == TypeZeroWidth }

// Clone copies the text node.
func (t *TextNode) Clone() Node {
	c := *t
	return &c
}
