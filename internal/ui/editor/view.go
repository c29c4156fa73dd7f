// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/ui/styles"
	"github.com/jeranaias/mentions-tui/internal/util"
)

const placeholder = "Type @ to mention someone, # for a tag..."

// =============================================================================
// LAYOUT
// =============================================================================

// render lays out header, document, popup and status bar.
func (m Model) render() string {
	body := m.renderDocument()

	frame := m.theme.Editor
	if m.editor.Focused() {
		frame = m.theme.EditorFocused
	}
	width := m.width - frame.GetHorizontalBorderSize()
	if width < 10 {
		width = 10
	}

	sections := []string{
		m.header.View(),
		frame.Width(width).Render(body),
	}
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else if m.popup.Visible() {
		if m.theme.GetLayoutMode() == styles.LayoutNarrow {
			sections = append(sections, m.popup.ViewCompact())
		} else {
			sections = append(sections, m.popup.View())
		}
	}
	sections = append(sections, m.status.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHelp renders the key reference.
func (m Model) renderHelp() string {
	var lines []string
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, m.theme.ShortcutKey.Render(util.PadWidth(h.Key, 12))+m.theme.ShortcutDesc.Render(h.Desc))
		}
	}
	for _, h := range editingHelp {
		lines = append(lines, m.theme.ShortcutKey.Render(util.PadWidth(h[0], 12))+m.theme.ShortcutDesc.Render(h[1]))
	}
	return m.theme.MenuBox.Render(strings.Join(lines, "\n"))
}

// =============================================================================
// DOCUMENT RENDERING
// =============================================================================

// renderDocument draws every paragraph with mentions as chips and the caret
// as a reversed cell.
func (m Model) renderDocument() string {
	var out string
	m.editor.Read(func(s *document.State) {
		out = m.renderState(s)
	})
	return out
}

func (m Model) renderState(s *document.State) string {
	focused := m.editor.Focused()
	blocks := s.Children(document.RootKey)

	if s.TextContent(document.RootKey) == "" {
		caret := ""
		if focused {
			caret = m.theme.Caret.Render(" ")
		}
		return caret + m.theme.Placeholder.Render(placeholder)
	}

	caretKey, caretOffset, caretType := caretPoint(s)
	if !focused {
		caretKey = ""
	}

	lines := make([]string, 0, len(blocks))
	for _, block := range blocks {
		var b strings.Builder
		children := s.Children(block.Key())
		for i, child := range children {
			if caretType == document.PointElement && caretKey == block.Key() && caretOffset == i {
				b.WriteString(m.theme.Caret.Render(" "))
			}
			b.WriteString(m.renderInline(s, child, caretKey, caretOffset, caretType))
		}
		if caretType == document.PointElement && caretKey == block.Key() && caretOffset >= len(children) {
			b.WriteString(m.theme.Caret.Render(" "))
		}
		lines = append(lines, m.theme.Paragraph.Render(b.String()))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderInline(s *document.State, n document.Node, caretKey document.NodeKey, caretOffset int, caretType document.PointType) string {
	switch n := n.(type) {
	case *mention.Node:
		return m.mentions.Render(n, s.IsNodeSelected(n.Key()))
	case *document.TextNode:
		text := n.Text()
		if n.IsZeroWidth() {
			text = ""
		}
		if caretType != document.PointText || caretKey != n.Key() {
			return text
		}
		return m.withCaret(text, caretOffset)
	case document.Decorator:
		return n.TextContent()
	}
	return ""
}

// withCaret draws the caret over the rune at offset, or after the text.
func (m Model) withCaret(text string, offset int) string {
	runes := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(runes) {
		return text + m.theme.Caret.Render(" ")
	}
	if runes[offset] == '\n' {
		return string(runes[:offset]) + m.theme.Caret.Render(" ") + string(runes[offset:])
	}
	return string(runes[:offset]) + m.theme.Caret.Render(string(runes[offset])) + string(runes[offset+1:])
}

// caretPoint returns the collapsed caret, if any.
func caretPoint(s *document.State) (document.NodeKey, int, document.PointType) {
	rs, ok := s.Selection().(*document.RangeSelection)
	if !ok || !rs.IsCollapsed() {
		return "", 0, document.PointText
	}
	return rs.Anchor.Key, rs.Anchor.Offset, rs.Anchor.Type
}

// =============================================================================
// HELPERS
// =============================================================================

func itoa(n int) string {
	return strconv.Itoa(n)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
