// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/navigate"
)

// RegisterBehavior installs the interactive behaviour of mentions at
// PriorityLow: clicking selects a mention as a whole, backspace and delete
// remove a selected mention, arrows step across it in one press and blur
// drops the node selection. It returns a function that removes it.
func RegisterBehavior(ed *document.Editor) func() {
	return document.MergeRegister(
		ed.RegisterCommand(document.ClickCommand, document.PriorityLow, onClick),
		ed.RegisterCommand(document.KeyDeleteCommand, document.PriorityLow, onDelete),
		ed.RegisterCommand(document.KeyBackspaceCommand, document.PriorityLow, onDelete),
		ed.RegisterCommand(document.KeyArrowLeftCommand, document.PriorityLow, func(tx *document.Tx, _ any) bool {
			key, ok := selected(tx)
			return ok && navigate.MoveLeft(tx, key)
		}),
		ed.RegisterCommand(document.KeyArrowRightCommand, document.PriorityLow, func(tx *document.Tx, _ any) bool {
			key, ok := selected(tx)
			return ok && navigate.MoveRight(tx, key)
		}),
		ed.RegisterCommand(document.BlurCommand, document.PriorityLow, func(tx *document.Tx, _ any) bool {
			if _, ok := selected(tx); ok {
				tx.SetSelection(nil)
			}
			return false
		}),
	)
}

func onClick(tx *document.Tx, payload any) bool {
	ev, ok := payload.(document.ClickEvent)
	if !ok {
		return false
	}
	if _, ok := Get(tx, ev.Key); !ok {
		return false
	}
	if ns, ok := tx.Selection().(*document.NodeSelection); ok && ev.Shift {
		ns = ns.Clone().(*document.NodeSelection)
		ns.Add(ev.Key)
		tx.SetSelection(ns)
		return true
	}
	tx.SelectNode(ev.Key)
	return true
}

func onDelete(tx *document.Tx, _ any) bool {
	ns, ok := tx.Selection().(*document.NodeSelection)
	if !ok {
		return false
	}
	var keys []document.NodeKey
	for _, k := range ns.Keys() {
		if _, ok := Get(tx, k); ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return false
	}
	tx.SelectPrevious(keys[0])
	for _, k := range keys {
		if err := tx.Remove(k); err != nil {
			tx.Editor().Logger().Warn("failed to remove mention", logging.F("key", string(k)), logging.Err(err))
		}
	}
	return true
}

// selected returns the mention held by a node selection.
func selected(tx *document.Tx) (document.NodeKey, bool) {
	ns, ok := tx.Selection().(*document.NodeSelection)
	if !ok {
		return "", false
	}
	for _, k := range ns.Keys() {
		if _, ok := Get(tx, k); ok {
			return k, true
		}
	}
	return "", false
}
