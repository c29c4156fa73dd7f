// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// EDITOR STYLES
	// ==========================================================================

	Editor        lipgloss.Style
	EditorFocused lipgloss.Style
	Paragraph     lipgloss.Style
	Caret         lipgloss.Style
	Placeholder   lipgloss.Style

	// ==========================================================================
	// MENU STYLES
	// ==========================================================================

	MenuBox            lipgloss.Style
	MenuTitle          lipgloss.Style
	MenuItem           lipgloss.Style
	MenuItemSelected   lipgloss.Style
	MenuItemAdditional lipgloss.Style
	MenuTrigger        lipgloss.Style
	MenuHint           lipgloss.Style
	MenuEmpty          lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusText   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// SPINNER AND FEEDBACK STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style

	// classes maps a theme class token to its terminal style.
	classes map[string]lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	t.initClasses()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Editor
	t.Editor = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.EditorFocused = t.Editor.
		BorderForeground(Purple)

	t.Paragraph = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Caret = lipgloss.NewStyle().
		Reverse(true)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Menu
	t.MenuBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)

	t.MenuTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.MenuItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.MenuItemSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true)

	t.MenuItemAdditional = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.MenuTrigger = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.MenuHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.MenuEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Feedback
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(Amber)
}

// =============================================================================
// MENTION CLASS PALETTE
// =============================================================================

// initClasses registers the class tokens used by the default mention theme.
func (t *Theme) initClasses() {
	t.classes = map[string]lipgloss.Style{
		"mention": lipgloss.NewStyle(),
		"mention-user": lipgloss.NewStyle().
			Foreground(MentionUserFg).
			Background(MentionUserBg),
		"mention-tag": lipgloss.NewStyle().
			Foreground(MentionTagFg).
			Background(MentionTagBg),
		"mention-due": lipgloss.NewStyle().
			Foreground(MentionDueFg).
			Background(MentionDueBg),
		"mention-generic": lipgloss.NewStyle().
			Foreground(MentionGenericFg).
			Background(MentionGenericBg),
		"mention-focused": lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		"mention-box": lipgloss.NewStyle().
			Background(SurfaceBright),
		"mention-trigger": lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true),
		"mention-value": lipgloss.NewStyle().
			Foreground(TextPrimary),
	}
}

// SetClass registers or replaces the style of a class token.
func (t *Theme) SetClass(name string, style lipgloss.Style) {
	if t.classes == nil {
		t.classes = make(map[string]lipgloss.Style)
	}
	t.classes[name] = style
}

// HasClass reports whether a class token has a registered style.
func (t *Theme) HasClass(name string) bool {
	_, ok := t.classes[name]
	return ok
}

// Class composes the styles of a space-separated class list. Tokens are
// applied left to right, so later tokens override earlier ones; unknown
// tokens are ignored.
func (t *Theme) Class(classList string) lipgloss.Style {
	style := lipgloss.NewStyle()
	for _, token := range strings.Fields(classList) {
		s, ok := t.classes[token]
		if !ok {
			continue
		}
		style = s.Inherit(style)
	}
	return style
}

// =============================================================================
// LAYOUT HELPERS
// =============================================================================

// SetSize updates the theme's known terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ContentWidth returns the usable width inside the editor frame.
func (t *Theme) ContentWidth() int {
	w := t.Width - t.Editor.GetHorizontalFrameSize()
	if w < 10 {
		return 10
	}
	return w
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
