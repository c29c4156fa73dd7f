// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"github.com/jeranaias/mentions-tui/internal/document"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SavedMsg reports the outcome of a save.
type SavedMsg struct {
	ID    string
	State *document.State
	Err   error
}

// SeededMsg reports a directory reseed triggered by a seed file change.
type SeededMsg struct {
	Path  string
	Count int
	Err   error
}

// NoticeMsg shows an informational message in the status bar.
type NoticeMsg struct {
	Text string
}
