// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the mentions editor.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Purple - Primary accent, selections, focused mentions
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// PurpleDeep - Darker purple for backgrounds
var PurpleDeep = lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#4C1D95"}

// Cyan - Brand color, user mentions, menu borders
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// CyanDeep - Darker cyan for backgrounds
var CyanDeep = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#164E63"}

// Emerald - Tags, success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// EmeraldDeep - Darker emerald for backgrounds
var EmeraldDeep = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#064E3B"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, critical alerts
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, due dates, creatable entries
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// AmberDeep - Darker amber for backgrounds
var AmberDeep = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#78350F"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Slightly darker/lighter surface for headers/footers
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// SurfaceBright - Slightly lighter/darker surface for highlights
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#313244"}

// Overlay - Borders, separators, subtle backgrounds
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// OverlayDim - Dimmer overlay for less prominent elements
var OverlayDim = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#45475A"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, placeholders, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// MENTION CHIP COLORS
// =============================================================================

// User mentions - Blue tones
var MentionUserBg = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A5F"}
var MentionUserFg = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#BAE6FD"}

// Tag mentions - Green tones
var MentionTagBg = lipgloss.AdaptiveColor{Light: "#D1FAE5", Dark: "#064E3B"}
var MentionTagFg = lipgloss.AdaptiveColor{Light: "#065F46", Dark: "#A7F3D0"}

// Due-date mentions - Amber tones
var MentionDueBg = lipgloss.AdaptiveColor{Light: "#FEF3C7", Dark: "#78350F"}
var MentionDueFg = lipgloss.AdaptiveColor{Light: "#92400E", Dark: "#FEF3C7"}

// Generic mentions - Neutral
var MentionGenericBg = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#313244"}
var MentionGenericFg = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#CDD6F4"}

// =============================================================================
// COLOR HELPERS
// =============================================================================

// ColorForTrigger returns an accent color for a trigger, used where no theme
// class applies (menu trigger badges, status lines).
func ColorForTrigger(trigger string) lipgloss.AdaptiveColor {
	switch trigger {
	case "@":
		return Cyan
	case "#":
		return Emerald
	case "":
		return TextMuted
	}
	if trigger[len(trigger)-1] == ':' {
		return Amber
	}
	return Purple
}
