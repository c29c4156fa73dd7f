// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentions-tui/internal/ui/styles"
)

// =============================================================================
// STATUS TYPES
// =============================================================================

// Status is the kind of the transient status message.
type Status int

const (
	StatusIdle Status = iota
	StatusInfo
	StatusSuccess
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusInfo:
		return "Info"
	case StatusSuccess:
		return "Saved"
	case StatusError:
		return "Error"
	default:
		return "Ready"
	}
}

// Icon returns an ASCII indicator for the status.
func (s Status) Icon() string {
	switch s {
	case StatusSuccess:
		return "[OK]"
	case StatusError:
		return "[!!]"
	case StatusInfo:
		return "[i]"
	default:
		return "[ ]"
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar is the bottom line of the editor: document title, mention count,
// suggestion mode and the last status message.
type StatusBar struct {
	Width int

	Title    string
	Mentions int
	Dirty    bool
	Focused  bool
	Mode     string

	Status  Status
	Message string

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width:   80,
		Title:   "Untitled",
		Focused: true,
		Mode:    "menu",
		theme:   theme,
	}
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetMessage shows a transient message.
func (s *StatusBar) SetMessage(status Status, msg string) {
	s.Status = status
	s.Message = msg
}

// ClearMessage removes the transient message.
func (s *StatusBar) ClearMessage() {
	s.Status = StatusIdle
	s.Message = ""
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

func (s *StatusBar) title() string {
	title := s.Title
	if title == "" {
		title = "Untitled"
	}
	if s.Dirty {
		title = "*" + title
	}
	return title
}

// viewNarrow renders a compact status bar for narrow terminals
// Format: *title N@ [OK]
func (s *StatusBar) viewNarrow() string {
	title := s.theme.HeaderTitle.Render(s.title())
	count := s.theme.StatusText.Render(formatInt(s.Mentions) + "@")
	status := s.statusStyle().Render(s.Status.Icon())

	result := strings.Join([]string{title, count, status}, " ")
	return s.theme.StatusBar.
		Width(s.Width).
		MaxWidth(s.Width).
		Render(result)
}

// viewWide renders the full status bar
// Format: *title | N mentions | menu | message            shortcuts
func (s *StatusBar) viewWide() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{
		s.theme.HeaderTitle.Render(s.title()),
		s.theme.StatusText.Render(pluralize(s.Mentions, "mention", "mentions")),
		s.modeStyle().Render(s.Mode),
	}
	if !s.Focused {
		parts = append(parts, s.theme.WarningStyle.Render("blurred"))
	}
	if s.Message != "" {
		parts = append(parts, s.statusStyle().Render(s.Status.Icon()+" "+s.Message))
	}
	left := strings.Join(parts, separator)

	right := s.renderShortcuts()
	gap := s.Width - s.theme.StatusBar.GetHorizontalFrameSize() - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if gap > 0 {
		line = left + strings.Repeat(" ", gap) + right
	}

	return s.theme.StatusBar.
		Width(s.Width).
		MaxWidth(s.Width).
		Render(line)
}

// renderShortcuts renders keyboard shortcut hints
func (s *StatusBar) renderShortcuts() string {
	shortcuts := []string{
		s.theme.ShortcutKey.Render("^S") + s.theme.ShortcutDesc.Render("save"),
		s.theme.ShortcutKey.Render("^Q") + s.theme.ShortcutDesc.Render("quit"),
	}
	return strings.Join(shortcuts, " ")
}

func (s *StatusBar) modeStyle() lipgloss.Style {
	if s.Mode == "combobox" {
		return lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusSuccess:
		return s.theme.SuccessStyle
	case StatusError:
		return s.theme.ErrorStyle
	case StatusInfo:
		return s.theme.StatusText
	default:
		return s.theme.ShortcutDesc
	}
}
