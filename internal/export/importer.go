// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	gmutil "github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/matcher"
	"github.com/jeranaias/mentions-tui/internal/mention"
)

// Result is an imported document.
type Result struct {
	// Title comes from Markdown front matter or the HTML <title>.
	Title string
	State *document.State
}

// =============================================================================
// IMPORTER
// =============================================================================

// Importer builds documents from files using an editor's node types.
type Importer struct {
	editor  *document.Editor
	matcher *matcher.Matcher
	md      goldmark.Markdown

	// ConvertText turns trigger occurrences in Markdown and plain text
	// into mentions. It requires a matcher.
	ConvertText bool
}

// NewImporter creates an importer. m recognizes mentions in plain text;
// with a nil matcher only explicit mentions (HTML spans, JSON records,
// Markdown mention links) are imported.
func NewImporter(ed *document.Editor, m *matcher.Matcher) *Importer {
	return &Importer{
		editor:      ed,
		matcher:     m,
		md:          goldmark.New(goldmark.WithExtensions(extension.GFM)),
		ConvertText: m != nil,
	}
}

// Import parses src in the given format.
func (im *Importer) Import(format Format, src []byte) (*Result, error) {
	switch format {
	case FormatJSON:
		return im.JSON(src)
	case FormatHTML:
		return im.HTML(src)
	case FormatMarkdown:
		return im.Markdown(src)
	case FormatText:
		return im.Text(src)
	default:
		return nil, fmt.Errorf("%w for import: %q", ErrUnsupportedFormat, format)
	}
}

// JSON parses a serialized editor state.
func (im *Importer) JSON(src []byte) (*Result, error) {
	s, err := im.editor.ParseState(src)
	if err != nil {
		return nil, err
	}
	return &Result{State: s}, nil
}

// Text builds one paragraph per line.
func (im *Importer) Text(src []byte) (*Result, error) {
	body := strings.TrimSuffix(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
	s, err := im.editor.Build(func(tx *document.Tx) error {
		if im.convert() {
			_, err := mention.AppendText(tx, im.matcher, body)
			return err
		}
		for _, line := range strings.Split(body, "\n") {
			p := tx.Create(document.NewParagraph())
			if err := tx.Append(document.RootKey, p.Key()); err != nil {
				return err
			}
			if err := tx.Append(p.Key(), tx.Create(document.NewText(line)).Key()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{State: s}, nil
}

func (im *Importer) convert() bool {
	return im.ConvertText && im.matcher != nil
}

// =============================================================================
// HTML
// =============================================================================

// HTML parses an HTML fragment or a full page. For pages exported by
// HTMLExporter only the document body is read; the header and footer
// are skipped.
func (im *Importer) HTML(src []byte) (*Result, error) {
	page, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	content := findElement(page, func(n *html.Node) bool {
		return n.DataAtom == atom.Main && hasClass(n, "document")
	})
	if content == nil {
		content = findElement(page, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	}

	var inner strings.Builder
	if content != nil {
		for c := content.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&inner, c); err != nil {
				return nil, fmt.Errorf("failed to render html: %w", err)
			}
		}
	}

	s, err := im.editor.ParseHTML(inner.String())
	if err != nil {
		return nil, err
	}

	res := &Result{State: s}
	if title := findElement(page, func(n *html.Node) bool { return n.DataAtom == atom.Title }); title != nil {
		res.Title = strings.TrimSpace(nodeText(title))
	}
	return res, nil
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	v, ok := document.Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// =============================================================================
// MARKDOWN
// =============================================================================

// Markdown parses Markdown with goldmark. Each leaf block (paragraph,
// heading, list item text, code block) becomes a paragraph. Mention links
// become mentions; with ConvertText, so do trigger occurrences in text.
// Code is always kept verbatim.
func (im *Importer) Markdown(src []byte) (*Result, error) {
	header, body := splitFrontMatter(src)

	res := &Result{}
	if header != nil {
		var fm frontMatter
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return nil, fmt.Errorf("failed to parse front matter: %w", err)
		}
		res.Title = fm.Title
	}

	root := im.md.Parser().Parse(text.NewReader(body))
	s, err := im.editor.Build(func(tx *document.Tx) error {
		w := &markdownWalker{tx: tx, source: body}
		if im.convert() {
			w.matcher = im.matcher
		}
		return ast.Walk(root, w.walk)
	})
	if err != nil {
		return nil, err
	}
	res.State = s
	return res, nil
}

// markdownWalker appends goldmark nodes to a document under construction.
type markdownWalker struct {
	tx      *document.Tx
	matcher *matcher.Matcher
	source  []byte
	block   document.NodeKey
	buf     strings.Builder
}

func (w *markdownWalker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	// --- Blocks ---
	case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
		if entering {
			return ast.WalkContinue, w.startBlock()
		}
		return ast.WalkContinue, w.endBlock()

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		if err := w.startBlock(); err != nil {
			return ast.WalkStop, err
		}
		var code strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(w.source))
		}
		if err := w.appendLiteral(strings.TrimSuffix(code.String(), "\n")); err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkSkipChildren, w.endBlock()

	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil

	// --- Inlines ---
	case *ast.Text:
		if entering {
			w.buf.Write(unescape(n.Segment.Value(w.source)))
			if n.HardLineBreak() {
				w.buf.WriteByte('\n')
			} else if n.SoftLineBreak() {
				w.buf.WriteByte(' ')
			}
		}

	case *ast.String:
		if entering {
			w.buf.Write(n.Value)
		}

	case *ast.CodeSpan:
		if entering {
			var code strings.Builder
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					code.Write(t.Segment.Value(w.source))
				}
			}
			if err := w.appendLiteral(code.String()); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, nil
		}

	case *ast.AutoLink:
		if entering {
			w.buf.Write(n.URL(w.source))
			return ast.WalkSkipChildren, nil
		}

	case *ast.Link:
		if !entering {
			return ast.WalkContinue, nil
		}
		trigger, value, data, ok := parseMentionLink(string(n.Destination), w.label(n))
		if !ok {
			return ast.WalkContinue, nil
		}
		if err := w.flush(); err != nil {
			return ast.WalkStop, err
		}
		m := mention.Create(w.tx, trigger, value, data)
		if err := w.tx.Append(w.block, m.Key()); err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (w *markdownWalker) startBlock() error {
	if err := w.endBlock(); err != nil {
		return err
	}
	p := w.tx.Create(document.NewParagraph())
	if err := w.tx.Append(document.RootKey, p.Key()); err != nil {
		return err
	}
	w.block = p.Key()
	return nil
}

func (w *markdownWalker) endBlock() error {
	if w.block == "" {
		return nil
	}
	err := w.flush()
	w.block = ""
	return err
}

// flush appends the buffered text, converting mentions when a matcher is
// set.
func (w *markdownWalker) flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	s := w.buf.String()
	w.buf.Reset()
	if w.block == "" {
		if err := w.startBlock(); err != nil {
			return err
		}
	}

	if w.matcher == nil {
		return w.tx.Append(w.block, w.tx.Create(document.NewText(s)).Key())
	}
	for _, n := range mention.ConvertText(w.tx, w.matcher, s) {
		if err := w.tx.Append(w.block, n.Key()); err != nil {
			return err
		}
	}
	return nil
}

// appendLiteral appends text that is never converted.
func (w *markdownWalker) appendLiteral(s string) error {
	if err := w.flush(); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if w.block == "" {
		if err := w.startBlock(); err != nil {
			return err
		}
	}
	return w.tx.Append(w.block, w.tx.Create(document.NewText(s)).Key())
}

// label returns the plain text of a link's children.
func (w *markdownWalker) label(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(unescape(t.Segment.Value(w.source)))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// parseMentionLink decodes mention:trigger?key=json links. The label must
// start with the trigger; the rest is the value.
func parseMentionLink(dest, label string) (string, string, mention.Data, bool) {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != MentionScheme {
		return "", "", nil, false
	}
	trigger, err := url.PathUnescape(u.Opaque)
	if err != nil || trigger == "" {
		return "", "", nil, false
	}
	value, ok := strings.CutPrefix(label, trigger)
	if !ok || value == "" {
		return "", "", nil, false
	}

	var data mention.Data
	for k, vs := range u.Query() {
		if len(vs) == 0 {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(vs[0]), &v); err != nil {
			v = vs[0]
		}
		if mention.ValidateData(mention.Data{k: v}) != nil {
			continue
		}
		if data == nil {
			data = mention.Data{}
		}
		data[k] = v
	}
	return trigger, value, data, true
}

// unescape resolves backslash escapes and character references the way
// goldmark's renderer does.
func unescape(b []byte) []byte {
	b = gmutil.UnescapePunctuations(b)
	b = gmutil.ResolveNumericReferences(b)
	return gmutil.ResolveEntityNames(b)
}

// =============================================================================
// FRONT MATTER
// =============================================================================

// splitFrontMatter separates a leading "---" YAML block. header is nil
// when there is none.
func splitFrontMatter(src []byte) (header, body []byte) {
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	first, rest, ok := bytes.Cut(src, []byte("\n"))
	if !ok || string(bytes.TrimRight(first, "\r")) != frontMatterFence {
		return nil, src
	}

	offset := 0
	for offset <= len(rest) {
		line, next, more := bytes.Cut(rest[offset:], []byte("\n"))
		if string(bytes.TrimRight(line, "\r")) == frontMatterFence {
			header = rest[:offset]
			if !more {
				return header, nil
			}
			return header, next
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return nil, src
}

func stripFrontMatter(src []byte) []byte {
	_, body := splitFrontMatter(src)
	return body
}
