// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentions-tui/internal/menu"
	"github.com/jeranaias/mentions-tui/internal/ui/styles"
	"github.com/jeranaias/mentions-tui/internal/util"
)

// =============================================================================
// MENU POPUP COMPONENT
// =============================================================================

// MenuPopup renders the suggestion menu or combobox panel for a snapshot of
// the orchestrator state. It holds no selection of its own; the highlighted
// row is always State.ActiveIndex.
type MenuPopup struct {
	state      menu.State
	maxVisible int
	width      int
	showHints  bool
	theme      *styles.Theme
	spinner    Spinner
}

// NewMenuPopup creates a new menu popup.
func NewMenuPopup(theme *styles.Theme) *MenuPopup {
	return &MenuPopup{
		state:      menu.State{ActiveIndex: -1},
		maxVisible: 8,
		width:      40,
		showHints:  true,
		theme:      theme,
		spinner:    NewSpinner(theme),
	}
}

// SetState replaces the rendered snapshot and starts or stops the loading
// spinner to follow State.Loading.
func (c *MenuPopup) SetState(s menu.State) tea.Cmd {
	c.state = s
	if s.Open && s.Loading {
		return c.spinner.Start()
	}
	c.spinner.Stop()
	return nil
}

// State returns the rendered snapshot.
func (c *MenuPopup) State() menu.State {
	return c.state
}

// Visible reports whether the popup draws anything.
func (c *MenuPopup) Visible() bool {
	return c.state.Open
}

// Update forwards spinner ticks.
func (c *MenuPopup) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.spinner, cmd = c.spinner.Update(msg)
	return cmd
}

// SetWidth sets the popup width.
func (c *MenuPopup) SetWidth(width int) {
	if width < 16 {
		width = 16
	}
	c.width = width
}

// SetMaxVisible sets the maximum number of visible rows.
func (c *MenuPopup) SetMaxVisible(max int) {
	if max < 1 {
		max = 1
	}
	c.maxVisible = max
}

// SetShowHints sets whether the key hint footer is drawn.
func (c *MenuPopup) SetShowHints(show bool) {
	c.showHints = show
}

// visibleRange returns the scrolling window, centered on the active row.
func (c *MenuPopup) visibleRange() (start, end int) {
	n := len(c.state.Candidates)
	if n <= c.maxVisible {
		return 0, n
	}
	selected := c.state.ActiveIndex
	if selected < 0 {
		selected = 0
	}
	start = selected - c.maxVisible/2
	if start < 0 {
		start = 0
	}
	end = start + c.maxVisible
	if end > n {
		end = n
		start = end - c.maxVisible
	}
	return start, end
}

// View renders the popup.
func (c *MenuPopup) View() string {
	if !c.state.Open {
		return ""
	}

	var rows []string
	if title := c.title(); title != "" {
		rows = append(rows, c.theme.MenuTitle.Render(util.TruncateWidth(title, c.innerWidth())))
	}

	start, end := c.visibleRange()
	for i := start; i < end; i++ {
		rows = append(rows, c.renderItem(c.state.Candidates[i], i == c.state.ActiveIndex))
	}

	switch {
	case c.state.Loading:
		rows = append(rows, c.spinner.View())
	case len(c.state.Candidates) == 0:
		rows = append(rows, c.theme.MenuEmpty.Render("No matches"))
	}

	if n := len(c.state.Candidates); n > end-start {
		rows = append(rows, c.theme.MenuHint.Render(formatInt(c.state.ActiveIndex+1)+"/"+formatInt(n)))
	}

	if c.showHints {
		rows = append(rows, c.renderHints())
	}

	return c.theme.MenuBox.
		Width(c.width).
		MaxWidth(c.width + c.theme.MenuBox.GetHorizontalBorderSize()).
		Render(strings.Join(rows, "\n"))
}

func (c *MenuPopup) innerWidth() int {
	w := c.width - c.theme.MenuBox.GetHorizontalPadding()
	if w < 4 {
		return 4
	}
	return w
}

// title names what the list offers: the typed trigger and query, or the
// trigger list of an idle combobox.
func (c *MenuPopup) title() string {
	if c.state.Match == nil {
		if c.state.Mode == menu.ModeCombobox {
			return "Triggers"
		}
		return ""
	}
	return c.state.Match.Trigger + c.state.Match.Query
}

// renderItem renders a single row.
func (c *MenuPopup) renderItem(item menu.Item, isSelected bool) string {
	indicator := "  "
	if isSelected {
		indicator = "> "
	}
	indicatorStyle := lipgloss.NewStyle().Foreground(styles.Cyan)

	available := c.innerWidth() - lipgloss.Width(indicator)

	var label string
	switch item.ItemType {
	case menu.ItemTrigger:
		badge := lipgloss.NewStyle().
			Foreground(styles.ColorForTrigger(item.Trigger)).
			Bold(true)
		label = badge.Render(util.TruncateWidth(item.Trigger, available))
	case menu.ItemAdditional:
		style := c.theme.MenuItemAdditional
		if isSelected {
			style = c.theme.MenuItemSelected
		}
		label = style.Render(util.TruncateWidth(item.Label(), available))
	default:
		style := c.theme.MenuItem
		if isSelected {
			style = c.theme.MenuItemSelected
		}
		label = style.Render(util.TruncateWidth(item.Label(), available))
	}

	return indicatorStyle.Render(indicator) + label
}

func (c *MenuPopup) renderHints() string {
	hints := []string{
		c.theme.ShortcutKey.Render("up/down") + " " + c.theme.ShortcutDesc.Render("move"),
		c.theme.ShortcutKey.Render("enter") + " " + c.theme.ShortcutDesc.Render("select"),
		c.theme.ShortcutKey.Render("esc") + " " + c.theme.ShortcutDesc.Render("close"),
	}
	line := strings.Join(hints, "  ")
	if lipgloss.Width(line) > c.innerWidth() {
		return ""
	}
	return line
}

// ViewCompact renders a single-line summary for narrow layouts, e.g.
// `Tab: "John"` or `Tab: 4 matches`.
func (c *MenuPopup) ViewCompact() string {
	if !c.state.Open {
		return ""
	}
	style := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	if c.state.Loading && len(c.state.Candidates) == 0 {
		return c.spinner.View()
	}
	if item, ok := c.state.Active(); ok && len(c.state.Candidates) == 1 {
		return style.Render("Tab: \"" + item.Label() + "\"")
	}
	if len(c.state.Candidates) == 0 {
		return style.Render("No matches")
	}
	return style.Render("Tab: " + formatInt(len(c.state.Candidates)) + " matches")
}
