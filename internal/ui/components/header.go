// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentions-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: the brand, the configured triggers and a badge
// when the candidate directory is in use.
type Header struct {
	Title     string
	Triggers  []string
	Directory bool
	Width     int
	theme     *styles.Theme
}

// NewHeader creates a new Header component with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "mentions",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetTriggers updates the trigger list shown in the subtitle.
func (h *Header) SetTriggers(triggers []string) {
	h.Triggers = append([]string(nil), triggers...)
}

// View renders the header on one line.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}

	accent := lipgloss.NewStyle().Foreground(styles.Purple)
	brand := accent.Render("< ") + h.theme.HeaderTitle.Render(h.Title) + accent.Render(" >")

	var badges []string
	for _, t := range h.Triggers {
		badges = append(badges, lipgloss.NewStyle().
			Foreground(styles.ColorForTrigger(t)).
			Bold(true).
			Render(t))
	}
	if h.Directory {
		badges = append(badges, h.theme.HeaderSubtitle.Render("[directory]"))
	}

	line := brand
	if len(badges) > 0 {
		line += "  " + strings.Join(badges, " ")
	}

	return h.theme.Header.
		Width(width).
		MaxWidth(width).
		Render(line)
}
