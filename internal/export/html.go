// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/theme"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports documents to HTML with embedded CSS. Mention spans
// carry their theme classes next to the attributes ParseHTML reads back.
type HTMLExporter struct {
	options *Options
	table   *theme.Table
}

// NewHTMLExporter creates a new HTML exporter. A nil table uses the
// default theme.
func NewHTMLExporter(opts *Options, table *theme.Table) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	if table == nil {
		table = theme.Default()
	}
	return &HTMLExporter{options: opts, table: table}
}

// Export converts a document to HTML.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	body, err := e.renderBody(doc.State)
	if err != nil {
		return nil, err
	}
	if e.options.Fragment {
		return []byte(body), nil
	}

	themeName := e.options.Theme
	if themeName != "light" {
		themeName = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(doc.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"mentions-tui\">\n")
	if !doc.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", doc.CreatedAt.Format(time.RFC3339)))
	}
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", themeName))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(doc))
	}

	sb.WriteString("        <main class=\"document\">\n")
	sb.WriteString(body)
	sb.WriteString("\n        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>mentions-tui</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the title and metadata block.
func (e *HTMLExporter) renderHeader(doc *Document) string {
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(doc.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	if !doc.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(doc.CreatedAt)))
	}
	if !doc.UpdatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Updated:</strong> %s</span>\n", formatTimestamp(doc.UpdatedAt)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Mentions:</strong> %d</span>\n", len(doc.Mentions())))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
	return sb.String()
}

// renderBody renders one <p> per block.
func (e *HTMLExporter) renderBody(s *document.State) (string, error) {
	var sb strings.Builder
	for i, block := range s.Children(document.RootKey) {
		p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
		for _, child := range s.Children(block.Key()) {
			el, ok := e.renderInline(child)
			if ok {
				p.AppendChild(el)
			}
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		if err := html.Render(&sb, p); err != nil {
			return "", fmt.Errorf("failed to render html: %w", err)
		}
	}
	return sb.String(), nil
}

func (e *HTMLExporter) renderInline(n document.Node) (*html.Node, bool) {
	switch n := n.(type) {
	case *document.TextNode:
		if n.IsZeroWidth() {
			return nil, false
		}
		return &html.Node{Type: html.TextNode, Data: n.Text()}, true
	case *mention.Node:
		el := n.ExportDOM()
		if class := e.classFor(n); class != "" {
			el.Attr = append(el.Attr, html.Attribute{Key: "class", Val: class})
		}
		return el, true
	case document.DOMExporter:
		return n.ExportDOM(), true
	case document.Decorator:
		return &html.Node{Type: html.TextNode, Data: n.TextContent()}, true
	default:
		return nil, false
	}
}

// classFor returns the theme classes of an unfocused mention.
func (e *HTMLExporter) classFor(n *mention.Node) string {
	res := e.table.Resolve(n.Trigger())
	if res.Values != nil {
		return res.ContainerClass(false)
	}
	return res.ClassName(false)
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

// getCSS returns the embedded CSS for the HTML export.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
        }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --accent-blue: #7aa2f7;
            --accent-green: #9ece6a;
            --accent-purple: #bb9af7;
            --accent-orange: #ff9e64;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-secondary: #586069;
            --accent-blue: #0366d6;
            --accent-green: #22863a;
            --accent-purple: #6f42c1;
            --accent-orange: #d15704;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header {
            padding: 24px 32px;
            background: var(--bg-tertiary);
        }

        .header h1 {
            font-size: 26px;
            margin-bottom: 12px;
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
            color: var(--text-secondary);
        }

        .document {
            padding: 24px 32px;
        }

        .document p {
            margin-bottom: 12px;
            white-space: pre-wrap;
        }

        .mention, .mention-box {
            padding: 0 4px;
            border-radius: 4px;
            background: var(--bg-tertiary);
        }

        .mention-user { color: var(--accent-blue); }
        .mention-tag { color: var(--accent-green); }
        .mention-due { color: var(--accent-orange); }
        .mention-generic { color: var(--accent-purple); }
        .mention-trigger { opacity: 0.7; }
        .mention-value { font-weight: 600; }

        .mention-focused {
            outline: 2px solid var(--accent-blue);
        }

        .footer {
            padding: 16px 32px;
            font-size: 13px;
            color: var(--text-secondary);
        }
    </style>
`
}
