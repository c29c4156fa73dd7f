// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface functionality.
// This file contains shared helper functions used across multiple CLI commands.
package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/mentions-tui/internal/export"
)

// formatBytes formats a byte count for display.
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// formatTime formats a timestamp for listings, or "never".
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// nonNil keeps empty lists as [] in JSON output.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// formatNames lists the formats accepted by export and import.
func formatNames() []string {
	names := []string{
		string(export.FormatJSON),
		string(export.FormatHTML),
		string(export.FormatMarkdown),
		string(export.FormatText),
	}
	sort.Strings(names)
	return names
}

// mentionList renders trigger+value strings for human output.
func mentionList(mentions []string) string {
	if len(mentions) == 0 {
		return DimStyle.Render("(none)")
	}
	out := make([]string, len(mentions))
	for i, m := range mentions {
		out[i] = MentionStyle.Render(m)
	}
	return strings.Join(out, " ")
}
