// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/theme"
	"github.com/jeranaias/mentions-tui/internal/ui/styles"
)

// =============================================================================
// MENTION CHIPS
// =============================================================================

// MentionView draws mention nodes as terminal chips. The mention theme picks
// class names for a trigger and the styles palette turns them into colors.
type MentionView struct {
	theme *styles.Theme
	table *theme.Table
}

// NewMentionView creates a chip renderer. A nil table renders every mention
// unstyled.
func NewMentionView(th *styles.Theme, table *theme.Table) *MentionView {
	return &MentionView{theme: th, table: table}
}

// Table returns the mention theme in use.
func (v *MentionView) Table() *theme.Table {
	return v.table
}

// Render draws n. Mentions of a custom variant are drawn by the variant's
// component; all others use the class palette.
func (v *MentionView) Render(n *mention.Node, focused bool) string {
	p := mention.Decorate(n, v.table, focused)
	if variant := n.Variant(); variant != nil && variant.Component() != nil {
		return variant.Component().Render(p)
	}
	return v.RenderProps(p)
}

// RenderProps draws a chip from resolved props. It satisfies
// mention.ComponentFunc so custom variants can fall back to it.
func (v *MentionView) RenderProps(p mention.Props) string {
	if p.Values != nil {
		container := v.theme.Class(p.ContainerClass)
		trigger := v.theme.Class(p.Values.Trigger).Inherit(container)
		value := v.theme.Class(p.Values.Value).Inherit(container)
		return trigger.Render(p.Trigger) + value.Render(p.Value)
	}

	if p.ClassName == "" {
		if p.Focused {
			return lipgloss.NewStyle().Underline(true).Render(p.Mention)
		}
		return p.Mention
	}
	return v.theme.Class(p.ClassName).Render(p.Mention)
}
