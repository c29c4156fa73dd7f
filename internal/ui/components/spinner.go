// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mentions-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER
// =============================================================================

// asciiFrames render on every terminal, including the Windows console.
var asciiFrames = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    time.Second / 10,
}

// Spinner is the loading row of the suggestion menu. It only animates
// between Start and Stop, so a lookup that finishes drops its pending tick.
type Spinner struct {
	model   spinner.Model
	theme   *styles.Theme
	message string
	active  bool
}

// NewSpinner creates a stopped spinner styled by th.
func NewSpinner(th *styles.Theme) Spinner {
	m := spinner.New()
	m.Spinner = asciiFrames
	m.Style = th.Spinner
	return Spinner{model: m, theme: th, message: "Searching"}
}

// SetMessage sets the text shown next to the frame.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// Start activates the spinner and returns its first tick, or nil when it is
// already running.
func (s *Spinner) Start() tea.Cmd {
	if s.active {
		return nil
	}
	s.active = true
	return s.model.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.active = false
}

// IsActive reports whether the spinner is running.
func (s *Spinner) IsActive() bool {
	return s.active
}

// Update advances the animation on spinner ticks while active.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(tick)
	return s, cmd
}

// View renders the frame and the message, or "" when stopped.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	return s.model.View() + " " + s.theme.MenuHint.Italic(true).Render(s.message+"...")
}
