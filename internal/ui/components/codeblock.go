// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentions-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// DefaultCodeStyle is the chroma style used when CodeBlock.Style is empty.
const DefaultCodeStyle = "monokai"

// CodeBlock renders exported document source (JSON, HTML) in a bordered
// box with syntax highlighting and a line-number gutter.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
	// Style names a chroma style.
	Style       string
	LineNumbers bool
}

// NewCodeBlock creates a code block 80 cells wide with line numbers.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language:    language,
		Code:        code,
		MaxWidth:    80,
		Style:       DefaultCodeStyle,
		LineNumbers: true,
	}
}

// SetMaxWidth sets the width of the box, border included.
func (c *CodeBlock) SetMaxWidth(width int) {
	c.MaxWidth = width
}

// Render returns the highlighted block.
func (c CodeBlock) Render() string {
	source := strings.TrimRight(c.Code, "\n")
	lines := strings.Split(highlight(source, c.Language, c.Style), "\n")
	if c.LineNumbers {
		c.addGutter(lines)
	}

	body := strings.Join(lines, "\n")
	if c.Language != "" {
		body = c.label() + "\n" + body
	}

	width := c.MaxWidth - 4
	if width < 20 {
		width = 20
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		MaxWidth(width).
		Render(body)
}

// addGutter prefixes each line with its number, right-aligned to the
// widest number.
func (c CodeBlock) addGutter(lines []string) {
	gutter := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(len(formatInt(len(lines)))).
		Align(lipgloss.Right).
		MarginRight(1)
	for i := range lines {
		lines[i] = gutter.Render(formatInt(i+1)) + lines[i]
	}
}

func (c CodeBlock) label() string {
	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Background(styles.OverlayDim).
		Padding(0, 1).
		Bold(true).
		Render(c.Language)
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Highlight colors code for a 256-color terminal with the default style.
// Unknown languages are detected from the content; on any failure the
// code is returned unchanged.
func Highlight(code, language string) string {
	return highlight(code, language, DefaultCodeStyle)
}

func highlight(code, language, styleName string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		if lexer = lexers.Analyse(code); lexer == nil {
			lexer = lexers.Fallback
		}
	}

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	tokens, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var sb strings.Builder
	if err := formatter.Format(&sb, style, tokens); err != nil {
		return code
	}
	return sb.String()
}
