// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists mention documents as JSON files.
//
// Each document is stored as its serialized editor state together with a
// small metadata header (title, timestamps, preview and the mentions it
// contains) so that listing and searching never need a live editor.
//
// # Usage
//
//	store, err := storage.NewStoreWithDir(dir)
//	doc, err := storage.FromState(ed.State(), "")
//	id, err := store.Save(doc)
//
//	metas, err := store.List()
//	doc, err = store.Load(metas[0].ID)
//	state, err := doc.Restore(ed)
//
// # Storage Location
//
// Documents are stored in ~/.mentions/documents/ unless the storage
// directory is configured.
package storage
