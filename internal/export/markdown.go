// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/mention"
)

// MentionScheme is the link scheme of Markdown mentions:
// [@John](mention:@?id=1) where the opaque part is the trigger and each
// query value is a JSON scalar.
const MentionScheme = "mention"

const frontMatterFence = "---"

// frontMatter is the YAML header of a Markdown export.
type frontMatter struct {
	Title     string   `yaml:"title"`
	Created   string   `yaml:"created,omitempty"`
	Updated   string   `yaml:"updated,omitempty"`
	Mentions  []string `yaml:"mentions,omitempty"`
	Generator string   `yaml:"generator,omitempty"`
}

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports documents to Markdown, one paragraph per block.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a document to Markdown.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	if e.options.IncludeMetadata {
		fm := frontMatter{
			Title:     doc.Title,
			Mentions:  doc.Mentions(),
			Generator: "mentions-tui",
		}
		if !doc.CreatedAt.IsZero() {
			fm.Created = doc.CreatedAt.Format(time.RFC3339)
		}
		if !doc.UpdatedAt.IsZero() {
			fm.Updated = doc.UpdatedAt.Format(time.RFC3339)
		}
		header, err := yaml.Marshal(fm)
		if err != nil {
			return nil, fmt.Errorf("failed to encode front matter: %w", err)
		}
		sb.WriteString(frontMatterFence + "\n")
		sb.Write(header)
		sb.WriteString(frontMatterFence + "\n\n")
	}

	s := doc.State
	for i, block := range s.Children(document.RootKey) {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(e.renderBlock(s, block.Key()))
	}
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

func (e *MarkdownExporter) renderBlock(s *document.State, key document.NodeKey) string {
	var sb strings.Builder
	for _, child := range s.Children(key) {
		switch n := child.(type) {
		case *document.TextNode:
			if !n.IsZeroWidth() {
				sb.WriteString(escapeMarkdown(n.Text()))
			}
		case *mention.Node:
			if e.options.MentionLinks {
				sb.WriteString(mentionLink(n))
			} else {
				sb.WriteString(escapeMarkdown(n.TextContent()))
			}
		case document.Decorator:
			sb.WriteString(escapeMarkdown(n.TextContent()))
		}
	}
	return escapeLineStart(sb.String())
}

// mentionLink renders [trigger+value](mention:trigger?data).
func mentionLink(n *mention.Node) string {
	dest := MentionScheme + ":" + url.PathEscape(n.Trigger())
	if data := n.Data(); len(data) > 0 {
		q := url.Values{}
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b, err := json.Marshal(data[k])
			if err != nil {
				continue
			}
			q.Set(k, string(b))
		}
		dest += "?" + q.Encode()
	}
	return "[" + escapeMarkdown(n.TextContent()) + "](" + dest + ")"
}

// =============================================================================
// PRETTY PRINTING
// =============================================================================

// RenderPretty renders Markdown for the terminal with glamour. Width 0
// means 80 columns.
func RenderPretty(markdown []byte, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(string(stripFrontMatter(markdown)))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"!", `\!`,
	"|", `\|`,
	"~", `\~`,
	"&", `\&`,
	"\n", "\\\n",
)

// escapeMarkdown escapes inline Markdown syntax in plain text. Newlines
// become hard line breaks.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// escapeLineStart escapes block markers that only matter at the start of
// a paragraph: list bullets, setext underlines and ordered list numbers.
func escapeLineStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '-', '+', '=':
		return `\` + s
	}
	i := 0
	for i < len(s) && i < 9 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[:i] + `\` + s[i:]
	}
	return s
}
