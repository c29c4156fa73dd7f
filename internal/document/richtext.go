// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"fmt"

	"github.com/jeranaias/mentions-tui/internal/logging"
)

// RegisterRichText installs the default plain editing behaviour (typing,
// deleting, caret movement, paragraph splitting) at PriorityEditor, below
// every plugin handler. It returns a function that removes it.
func RegisterRichText(e *Editor) func() {
	return MergeRegister(
		e.RegisterCommand(InsertTextCommand, PriorityEditor, func(tx *Tx, payload any) bool {
			s, ok := payload.(string)
			if !ok || s == "" {
				return false
			}
			tx.InsertText(s)
			return true
		}),
		e.RegisterCommand(InsertParagraphCommand, PriorityEditor, func(tx *Tx, _ any) bool {
			return tx.InsertParagraph()
		}),
		e.RegisterCommand(KeyEnterCommand, PriorityEditor, func(tx *Tx, _ any) bool {
			return tx.InsertParagraph()
		}),
		e.RegisterCommand(KeyBackspaceCommand, PriorityEditor, func(tx *Tx, _ any) bool {
			return tx.DeleteBackward()
		}),
		e.RegisterCommand(KeyDeleteCommand, PriorityEditor, func(tx *Tx, _ any) bool {
			return tx.DeleteForward()
		}),
		e.RegisterCommand(KeyArrowLeftCommand, PriorityEditor, func(tx *Tx, _ any) bool {
			return tx.MoveBackward()
		}),
		e.RegisterCommand(KeyArrowRightCommand, PriorityEditor, func(tx *Tx, _ any) bool {
			return tx.MoveForward()
		}),
		e.RegisterCommand(ClickCommand, PriorityEditor, func(tx *Tx, payload any) bool {
			ev, ok := payload.(ClickEvent)
			if !ok {
				return false
			}
			if t := tx.Text(ev.Key); t != nil {
				tx.SelectPoint(TextPoint(ev.Key, clamp(ev.Offset, 0, t.Len())))
				return true
			}
			return false
		}),
	)
}

// caret returns a collapsed caret point, collapsing other selections first.
// A missing selection lands at the end of the document.
func (tx *Tx) caret() (Point, bool) {
	switch sel := tx.selection.(type) {
	case *RangeSelection:
		if !sel.IsCollapsed() {
			if sel.Anchor.Key == sel.Focus.Key && sel.Anchor.Type == PointText {
				lo, hi := sel.Anchor.Offset, sel.Focus.Offset
				if lo > hi {
					lo, hi = hi, lo
				}
				t := tx.Text(sel.Anchor.Key)
				runes := []rune(t.text)
				tx.logged("set text", tx.SetText(t.Key(), string(runes[:lo])+string(runes[hi:])))
				tx.SelectPoint(TextPoint(t.Key(), lo))
			} else {
				tx.SelectPoint(sel.Focus)
			}
		}
	case *NodeSelection:
		keys := sel.Keys()
		tx.SelectNext(keys[len(keys)-1])
	case nil:
		if tx.Root().ChildCount() == 0 {
			p := tx.Create(NewParagraph())
			tx.logged("append", tx.Append(RootKey, p.Key()))
		}
		tx.SelectEnd(RootKey)
	}
	rs, ok := tx.selection.(*RangeSelection)
	if !ok {
		return Point{}, false
	}
	return rs.Anchor, true
}

// InsertText types s at the caret, replacing any selected text.
func (tx *Tx) InsertText(s string) {
	p, ok := tx.caret()
	if !ok {
		return
	}
	if p.Type == PointText {
		t := tx.Text(p.Key)
		runes := []rune(t.text)
		off := clamp(p.Offset, 0, len(runes))
		tx.logged("set text", tx.SetText(p.Key, string(runes[:off])+s+string(runes[off:])))
		tx.SelectPoint(TextPoint(p.Key, off+len([]rune(s))))
		return
	}

	parent := p.Key
	if parent == RootKey {
		para := tx.Create(NewParagraph())
		tx.logged("insert", tx.InsertAt(RootKey, clamp(p.Offset, 0, tx.Root().ChildCount()), para.Key()))
		parent, p = para.Key(), ElementPoint(para.Key(), 0)
	}
	children := tx.Element(parent).children
	if p.Offset > 0 {
		if t, ok := tx.nodes[children[p.Offset-1]].(*TextNode); ok && !t.IsZeroWidth() {
			tx.SelectPoint(TextPoint(t.Key(), t.Len()))
			tx.InsertText(s)
			return
		}
	}
	if p.Offset < len(children) {
		if t, ok := tx.nodes[children[p.Offset]].(*TextNode); ok && !t.IsZeroWidth() {
			tx.SelectPoint(TextPoint(t.Key(), 0))
			tx.InsertText(s)
			return
		}
	}
	t := tx.Create(NewText(s))
	tx.logged("insert", tx.InsertAt(parent, p.Offset, t.Key()))
	tx.SelectPoint(TextPoint(t.Key(), len([]rune(s))))
}

// InsertParagraph splits the block at the caret.
func (tx *Tx) InsertParagraph() bool {
	p, ok := tx.caret()
	if !ok {
		return false
	}

	var parent NodeKey
	var index int
	switch p.Type {
	case PointText:
		t := tx.Text(p.Key)
		parent = t.Parent()
		index = tx.IndexOf(t.Key()) + 1
		if p.Offset == 0 {
			index--
		} else if p.Offset < t.Len() {
			if _, err := tx.SplitText(t.Key(), p.Offset); err != nil {
				return false
			}
		}
	case PointElement:
		parent, index = p.Key, p.Offset
	}
	if parent == RootKey || parent == "" {
		return false
	}

	block := tx.Create(NewParagraph())
	if err := tx.InsertAfter(parent, block.Key()); err != nil {
		return false
	}
	for _, k := range tx.Element(parent).Children()[index:] {
		tx.logged("append", tx.Append(block.Key(), k))
	}
	tx.SelectStart(block.Key())
	return true
}

// =============================================================================
// DELETION
// =============================================================================

// DeleteBackward implements backspace.
func (tx *Tx) DeleteBackward() bool {
	if ns, ok := tx.selection.(*NodeSelection); ok {
		return tx.removeSelected(ns)
	}
	if rs, ok := tx.selection.(*RangeSelection); ok && !rs.IsCollapsed() {
		_, ok := tx.caret()
		return ok
	}
	p, ok := tx.caret()
	if !ok {
		return false
	}
	if p.Type == PointText && p.Offset > 0 {
		t := tx.Text(p.Key)
		runes := []rune(t.text)
		tx.logged("set text", tx.SetText(p.Key, string(runes[:p.Offset-1])+string(runes[p.Offset:])))
		tx.SelectPoint(TextPoint(p.Key, p.Offset-1))
		return true
	}

	prev := tx.before(p)
	for prev != nil {
		t, ok := prev.(*TextNode)
		if !ok || !t.IsZeroWidth() {
			break
		}
		next := tx.PreviousSibling(t.Key())
		tx.logged("remove", tx.Remove(t.Key()))
		prev = next
	}

	switch prev := prev.(type) {
	case nil:
		return tx.mergeWithPrevious(p)
	case *TextNode:
		runes := []rune(prev.text)
		tx.logged("set text", tx.SetText(prev.Key(), string(runes[:len(runes)-1])))
		tx.SelectPoint(TextPoint(prev.Key(), len(runes)-1))
	case *ElementNode:
		tx.SelectEnd(prev.Key())
	default:
		if p.Type == PointElement {
			tx.SelectPoint(ElementPoint(p.Key, p.Offset-1))
		}
		tx.logged("remove", tx.Remove(prev.Key()))
	}
	return true
}

// DeleteForward implements the delete key.
func (tx *Tx) DeleteForward() bool {
	if ns, ok := tx.selection.(*NodeSelection); ok {
		return tx.removeSelected(ns)
	}
	if rs, ok := tx.selection.(*RangeSelection); ok && !rs.IsCollapsed() {
		_, ok := tx.caret()
		return ok
	}
	p, ok := tx.caret()
	if !ok {
		return false
	}
	if p.Type == PointText {
		t := tx.Text(p.Key)
		if p.Offset < t.Len() {
			runes := []rune(t.text)
			tx.logged("set text", tx.SetText(p.Key, string(runes[:p.Offset])+string(runes[p.Offset+1:])))
			return true
		}
	}

	next := tx.after(p)
	for next != nil {
		t, ok := next.(*TextNode)
		if !ok || !t.IsZeroWidth() {
			break
		}
		after := tx.NextSibling(t.Key())
		tx.logged("remove", tx.Remove(t.Key()))
		next = after
	}

	switch next := next.(type) {
	case nil:
		return tx.mergeNext(p)
	case *TextNode:
		runes := []rune(next.text)
		tx.logged("set text", tx.SetText(next.Key(), string(runes[1:])))
	case *ElementNode:
		tx.SelectStart(next.Key())
	default:
		tx.logged("remove", tx.Remove(next.Key()))
	}
	return true
}

func (tx *Tx) removeSelected(ns *NodeSelection) bool {
	keys := ns.Keys()
	tx.SelectPrevious(keys[0])
	for _, k := range keys {
		tx.logged("remove", tx.Remove(k))
	}
	return true
}

// before returns the node directly before a caret point, or nil at the
// start of its block.
func (tx *Tx) before(p Point) Node {
	if p.Type == PointText {
		if p.Offset > 0 {
			return nil
		}
		return tx.PreviousSibling(p.Key)
	}
	e := tx.Element(p.Key)
	if e == nil || p.Offset == 0 || p.Offset > len(e.children) {
		return nil
	}
	return tx.nodes[e.children[p.Offset-1]]
}

// after returns the node directly after a caret point, or nil at the end
// of its block.
func (tx *Tx) after(p Point) Node {
	if p.Type == PointText {
		if t := tx.Text(p.Key); t == nil || p.Offset < t.Len() {
			return nil
		}
		return tx.NextSibling(p.Key)
	}
	e := tx.Element(p.Key)
	if e == nil || p.Offset >= len(e.children) {
		return nil
	}
	return tx.nodes[e.children[p.Offset]]
}

// mergeWithPrevious joins the caret's block onto the end of the previous one.
func (tx *Tx) mergeWithPrevious(p Point) bool {
	block := tx.Block(p.Key)
	if block == nil {
		return false
	}
	prev, ok := tx.PreviousSibling(block.Key()).(*ElementNode)
	if !ok {
		return false
	}
	tx.SelectEnd(prev.Key())
	for _, k := range block.Children() {
		tx.logged("append", tx.Append(prev.Key(), k))
	}
	tx.logged("remove", tx.Remove(block.Key()))
	return true
}

// mergeNext joins the following block onto the caret's block.
func (tx *Tx) mergeNext(p Point) bool {
	block := tx.Block(p.Key)
	if block == nil {
		return false
	}
	next, ok := tx.NextSibling(block.Key()).(*ElementNode)
	if !ok {
		return false
	}
	for _, k := range next.Children() {
		tx.logged("append", tx.Append(block.Key(), k))
	}
	tx.logged("remove", tx.Remove(next.Key()))
	return true
}

// =============================================================================
// CARET MOVEMENT
// =============================================================================

// MoveBackward moves the caret one stop left. Stepping onto an atomic node
// selects it.
func (tx *Tx) MoveBackward() bool {
	if ns, ok := tx.selection.(*NodeSelection); ok {
		tx.SelectPrevious(ns.Keys()[0])
		return true
	}
	p, ok := tx.caret()
	if !ok {
		return false
	}
	if p.Type == PointText && p.Offset > 0 {
		tx.SelectPoint(TextPoint(p.Key, p.Offset-1))
		return true
	}
	prev := tx.before(p)
	for {
		t, ok := prev.(*TextNode)
		if !ok || !t.IsZeroWidth() {
			break
		}
		prev = tx.PreviousSibling(t.Key())
	}
	switch prev := prev.(type) {
	case nil:
		block := tx.Block(p.Key)
		if block == nil {
			return false
		}
		if pb, ok := tx.PreviousSibling(block.Key()).(*ElementNode); ok {
			tx.SelectEnd(pb.Key())
			return true
		}
		return false
	case *TextNode:
		tx.SelectPoint(TextPoint(prev.Key(), max(prev.Len()-1, 0)))
	case *ElementNode:
		tx.SelectEnd(prev.Key())
	default:
		tx.SelectNode(prev.Key())
	}
	return true
}

// MoveForward moves the caret one stop right. Stepping onto an atomic node
// selects it.
func (tx *Tx) MoveForward() bool {
	if ns, ok := tx.selection.(*NodeSelection); ok {
		keys := ns.Keys()
		tx.SelectNext(keys[len(keys)-1])
		return true
	}
	p, ok := tx.caret()
	if !ok {
		return false
	}
	if p.Type == PointText {
		if t := tx.Text(p.Key); p.Offset < t.Len() {
			tx.SelectPoint(TextPoint(p.Key, p.Offset+1))
			return true
		}
	}
	next := tx.after(p)
	for {
		t, ok := next.(*TextNode)
		if !ok || !t.IsZeroWidth() {
			break
		}
		next = tx.NextSibling(t.Key())
	}
	switch next := next.(type) {
	case nil:
		block := tx.Block(p.Key)
		if block == nil {
			return false
		}
		if nb, ok := tx.NextSibling(block.Key()).(*ElementNode); ok {
			tx.SelectStart(nb.Key())
			return true
		}
		return false
	case *TextNode:
		tx.SelectPoint(TextPoint(next.Key(), min(1, next.Len())))
	case *ElementNode:
		tx.SelectStart(next.Key())
	default:
		tx.SelectNode(next.Key())
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// logged reports a failed edit through the editor's logger and fails the
// transaction.
func (tx *Tx) logged(op string, err error) {
	if err == nil {
		return
	}
	if tx.editor != nil {
		tx.editor.Logger().Warn("rich text edit failed", logging.F("op", op), logging.Err(err))
	}
	tx.Fail(fmt.Errorf("%s: %w", op, err))
}
