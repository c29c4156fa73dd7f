// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "strconv"

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

// formatInt converts an integer to its decimal form.
func formatInt(n int) string {
	return strconv.Itoa(n)
}

// pluralize returns "1 mention", "2 mentions" and so on.
func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return formatInt(n) + " " + singular
	}
	return formatInt(n) + " " + plural
}
