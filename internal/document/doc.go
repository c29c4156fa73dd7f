// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package document is an in-memory, versioned document tree with a
// transactional update API, a selection model and prioritized command
// dispatch. It is the host runtime that mention nodes live in.
//
// # Key Types
//
//   - Editor: owns the current State, the node registry, node replacements,
//     command handlers and update listeners
//   - State: an immutable snapshot of the tree and selection
//   - Tx: a copy-on-write transaction; reads see the transaction's own
//     writes, and nothing is visible outside until it commits
//   - Node: ElementNode (root, paragraph), TextNode, and decorator nodes
//     registered by other packages (atomic, one caret stop wide)
//
// # Usage
//
//	ed, err := document.NewEditor(document.Config{Nodes: []document.NodeType{...}})
//	err = ed.Update(func(tx *document.Tx) error {
//	    p := tx.Create(document.NewParagraph())
//	    tx.Append(document.RootKey, p.Key())
//	    t := tx.Create(document.NewText("Hey "))
//	    tx.Append(p.Key(), t.Key())
//	    tx.SelectText(t.Key(), 4, 4)
//	    return nil
//	})
//
// Snapshots are never mutated. Tx.Writable clones a node into the
// transaction the first time it is written, so a State obtained before an
// update keeps describing the document as it was.
//
// The editor is not safe for concurrent use; all calls are expected from a
// single event loop.
package document
