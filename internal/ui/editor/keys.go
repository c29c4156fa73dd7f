// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap holds the editor shortcuts. Keys not bound here are translated to
// editor commands (typing, caret movement, menu navigation).
type KeyMap struct {
	Save        key.Binding
	Quit        key.Binding
	Help        key.Binding
	ToggleFocus key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save document"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("C-q/C-c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "toggle help"),
		),
		ToggleFocus: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "focus/blur editor"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Save, k.ToggleFocus},
		{k.Help, k.Quit},
	}
}

// editingHelp describes the keys handled by the document and the menu.
var editingHelp = [][2]string{
	{"@ # due:", "start a mention"},
	{"up/down", "move in the menu"},
	{"enter/tab", "insert the highlighted mention"},
	{"esc", "close the menu"},
	{"left/right", "move the caret, select mentions"},
	{"backspace", "delete; reopens the menu on a mention"},
}
