// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual UI components of the mentions editor.

Components are plain structs with a View method, built on Lip Gloss and
Bubble Tea. They never own editor or menu state; the editor model pushes
snapshots into them and renders the result.

# Components

MenuPopup (menu.go) - Suggestion menu and combobox panel for a menu.State
snapshot, with a scrolling window centered on the active row and a loading
spinner while a lookup is in flight.

MentionView (mention.go) - Draws mention nodes as colored chips by resolving
the mention theme to class tokens of the styles palette.

Header (header.go) and StatusBar (statusbar.go) - Title line and bottom
status line of the editor.

Spinner (spinner.go) - ASCII loading spinner wrapping bubbles/spinner.

CodeBlock (codeblock.go) - Chroma-highlighted rendering of exported
documents for terminal previews.

# Usage

	popup := components.NewMenuPopup(theme)
	cmd := popup.SetState(orchestrator.State())
	view := popup.View()
*/
package components
