// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the mentions CLI.
//
// TTY detection decides whether logs are written as console or JSON
// lines, whether exports are previewed with colors, and whether the
// interactive editor can start at all.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsTTY reports whether stdin is a terminal.
func IsTTY() bool { return isTerminal(os.Stdin) }

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool { return isTerminal(os.Stdout) }

// IsStderrTTY reports whether stderr is a terminal.
func IsStderrTTY() bool { return isTerminal(os.Stderr) }

// =============================================================================
// PREVIEW WIDTH
// =============================================================================

const (
	DefaultTerminalWidth = 80
	// MinTerminalWidth keeps --pretty previews readable in narrow panes.
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the width --pretty renders at.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil || width <= 0:
		return DefaultTerminalWidth
	case width < MinTerminalWidth:
		return MinTerminalWidth
	default:
		return width
	}
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

var colorsEnabled = sync.OnceValue(func() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return IsStdoutTTY()
})

// ColorsEnabled reports whether styled output should be written. NO_COLOR
// wins over FORCE_COLOR; otherwise stdout must be a terminal.
func ColorsEnabled() bool {
	return colorsEnabled()
}

// GetColorProfile returns the termenv profile for lipgloss, Ascii when
// colors are disabled.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// =============================================================================
// INTERACTIVE COMMANDS
// =============================================================================

// RequiresTTY returns a TTYRequiredError unless both stdin and stdout are
// terminals.
func RequiresTTY(operation string) error {
	if IsTTY() && IsStdoutTTY() {
		return nil
	}
	return &TTYRequiredError{Operation: operation}
}

// TTYRequiredError is returned when an interactive command runs without a
// terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation == "" {
		return "not a terminal; interactive input not available"
	}
	return "not a terminal; cannot " + e.Operation + " interactively"
}
