// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/matcher"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/storage"
)

var (
	fixedTime   = time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	demoMatcher = matcher.MustNew(matcher.Config{Triggers: []string{"@", "#", `\w+:`}})
)

func newEditor(t *testing.T) *document.Editor {
	t.Helper()
	ed, err := document.NewEditor(mention.EditorConfig(nil, nil))
	require.NoError(t, err)
	return ed
}

// sample writes "Hey @John, see #5 & *stars*" and "- dash #urgent".
func sample(t *testing.T, ed *document.Editor) *Document {
	t.Helper()
	require.NoError(t, ed.Update(func(tx *document.Tx) error {
		p1 := tx.Create(document.NewParagraph())
		p2 := tx.Create(document.NewParagraph())
		if err := tx.Append(document.RootKey, p1.Key(), p2.Key()); err != nil {
			return err
		}
		if err := tx.Append(p1.Key(),
			tx.Create(document.NewText("Hey ")).Key(),
			mention.Create(tx, "@", "John", mention.Data{"id": 7}).Key(),
			tx.Create(document.NewText(", see #5 & *stars*")).Key(),
		); err != nil {
			return err
		}
		return tx.Append(p2.Key(),
			tx.Create(document.NewText("- dash ")).Key(),
			mention.Create(tx, "#", "urgent", nil).Key(),
		)
	}))
	return &Document{Title: "Standup", CreatedAt: fixedTime, UpdatedAt: fixedTime, State: ed.State()}
}

const sampleText = "Hey @John, see #5 & *stars*\n\n- dash #urgent"

func mentionsOf(s *document.State) []string {
	var out []string
	for _, m := range mention.Collect(s, "") {
		out = append(out, m.Trigger()+"|"+m.Value())
	}
	return out
}

// =============================================================================
// FORMAT TESTS
// =============================================================================

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{".HTML", FormatHTML, false},
		{"htm", FormatHTML, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"txt", FormatText, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	f, err := FormatOf("notes/today.md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	_, err = FormatOf("README")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNew(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatHTML, FormatMarkdown} {
		e, err := New(f, nil, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, e.FileExtension())
		assert.NotEmpty(t, e.MimeType())
	}
	_, err := New(FormatText, nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExporters_RejectNilDocument(t *testing.T) {
	for _, e := range []Exporter{NewJSONExporter(nil), NewHTMLExporter(nil, nil), NewMarkdownExporter(nil)} {
		_, err := e.Export(nil)
		assert.Error(t, err)
		_, err = e.Export(&Document{})
		assert.Error(t, err)
	}
}

// =============================================================================
// JSON TESTS
// =============================================================================

func TestJSON_RoundTrip(t *testing.T) {
	ed := newEditor(t)
	doc := sample(t, ed)

	out, err := NewJSONExporter(nil).Export(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type": "betterMention"`)

	res, err := NewImporter(newEditor(t), nil).Import(FormatJSON, out)
	require.NoError(t, err)
	assert.Equal(t, sampleText, res.State.TextContent(document.RootKey))
	assert.Equal(t, []string{"@|John", "#|urgent"}, mentionsOf(res.State))
}

// =============================================================================
// HTML TESTS
// =============================================================================

func TestHTMLExporter_Page(t *testing.T) {
	doc := sample(t, newEditor(t))

	out, err := NewHTMLExporter(DefaultOptions(), nil).Export(doc)
	require.NoError(t, err)
	page := string(out)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Standup</title>")
	assert.Contains(t, page, `<body class="dark-theme">`)
	assert.Contains(t, page, "<strong>Mentions:</strong> 2")
	assert.Contains(t, page, `data-lexical-better-mention-value="John"`)
	assert.Contains(t, page, `class="mention mention-user"`)
	assert.Contains(t, page, `class="mention mention-tag"`)
	assert.Contains(t, page, "see #5 &amp; *stars*")
}

func TestHTMLExporter_Fragment(t *testing.T) {
	doc := sample(t, newEditor(t))
	opts := DefaultOptions()
	opts.Fragment = true

	out, err := NewHTMLExporter(opts, nil).Export(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "<p>Hey <span "))
	assert.NotContains(t, string(out), "<html")
	assert.Equal(t, 2, strings.Count(string(out), "<p>"))
}

func TestHTML_RoundTrip(t *testing.T) {
	doc := sample(t, newEditor(t))
	for _, fragment := range []bool{false, true} {
		opts := DefaultOptions()
		opts.Fragment = fragment
		out, err := NewHTMLExporter(opts, nil).Export(doc)
		require.NoError(t, err)

		res, err := NewImporter(newEditor(t), demoMatcher).Import(FormatHTML, out)
		require.NoError(t, err)
		assert.Equal(t, sampleText, res.State.TextContent(document.RootKey))
		assert.Equal(t, []string{"@|John", "#|urgent"}, mentionsOf(res.State))
		assert.Equal(t, mention.Data{"id": float64(7)}, mention.Collect(res.State, "@")[0].Data())
		if !fragment {
			assert.Equal(t, "Standup", res.Title)
		}
	}
}

// =============================================================================
// MARKDOWN TESTS
// =============================================================================

func TestMarkdownExporter(t *testing.T) {
	doc := sample(t, newEditor(t))
	opts := DefaultOptions()
	opts.IncludeMetadata = false

	out, err := NewMarkdownExporter(opts).Export(doc)
	require.NoError(t, err)
	assert.Equal(t,
		"Hey [@John](mention:@?id=7), see \\#5 \\& \\*stars\\*\n\n\\- dash [\\#urgent](mention:%23)\n",
		string(out))

	opts.MentionLinks = false
	out, err = NewMarkdownExporter(opts).Export(doc)
	require.NoError(t, err)
	assert.Equal(t, "Hey @John, see \\#5 \\& \\*stars\\*\n\n\\- dash \\#urgent\n", string(out))
}

func TestMarkdownExporter_FrontMatter(t *testing.T) {
	doc := sample(t, newEditor(t))

	out, err := NewMarkdownExporter(nil).Export(doc)
	require.NoError(t, err)
	md := string(out)
	assert.True(t, strings.HasPrefix(md, "---\ntitle: Standup\n"))
	assert.Contains(t, md, "created: \"2025-03-04T09:30:00Z\"")
	assert.Contains(t, md, "    - '@John'")
	assert.Contains(t, md, "generator: mentions-tui\n---\n\n")
}

func TestMarkdown_RoundTrip(t *testing.T) {
	doc := sample(t, newEditor(t))
	out, err := NewMarkdownExporter(nil).Export(doc)
	require.NoError(t, err)

	im := NewImporter(newEditor(t), demoMatcher)
	im.ConvertText = false
	res, err := im.Import(FormatMarkdown, out)
	require.NoError(t, err)

	assert.Equal(t, "Standup", res.Title)
	assert.Equal(t, sampleText, res.State.TextContent(document.RootKey))
	assert.Equal(t, []string{"@|John", "#|urgent"}, mentionsOf(res.State))
	assert.Equal(t, mention.Data{"id": float64(7)}, mention.Collect(res.State, "@")[0].Data())
}

func TestMarkdownImport_ConvertsText(t *testing.T) {
	src := "# Notes\n\nPing @ops about #launch.\n\n```\n@not converted\n```\n\n- item due:friday\n- `#code`\n"

	res, err := NewImporter(newEditor(t), demoMatcher).Markdown([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Notes\n\nPing @ops about #launch.\n\n@not converted\n\nitem due:friday\n\n#code",
		res.State.TextContent(document.RootKey))
	assert.Equal(t, []string{"@|ops", "#|launch", "due:|friday"}, mentionsOf(res.State))
}

func TestMarkdownImport_Links(t *testing.T) {
	src := "[@x](mention:) and [site](https://example.com) and [#ok](mention:%23?n=%22v%22&bad=%5B1%5D)"

	res, err := NewImporter(newEditor(t), nil).Markdown([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "@x and site and #ok", res.State.TextContent(document.RootKey))
	mentions := mention.Collect(res.State, "")
	require.Len(t, mentions, 1)
	assert.Equal(t, "ok", mentions[0].Value())
	assert.Equal(t, mention.Data{"n": "v"}, mentions[0].Data())
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantHeader string
		wantBody   string
	}{
		{"none", "hello", "", "hello"},
		{"header", "---\ntitle: x\n---\nbody", "title: x\n", "body"},
		{"crlf", "---\r\ntitle: x\r\n---\r\nbody", "title: x\r\n", "body"},
		{"unterminated", "---\ntitle: x\n", "", "---\ntitle: x\n"},
		{"header only", "---\na: 1\n---", "a: 1\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body := splitFrontMatter([]byte(tt.src))
			assert.Equal(t, tt.wantHeader, string(header))
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestRenderPretty(t *testing.T) {
	out, err := RenderPretty([]byte("---\ngenerator: mentions-tui\n---\n\nHello @John\n"), 40)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "@John")
	assert.NotContains(t, out, "generator")
}

// =============================================================================
// TEXT TESTS
// =============================================================================

func TestTextImport(t *testing.T) {
	res, err := NewImporter(newEditor(t), demoMatcher).Text([]byte("Hey @John\r\nsee #urgent\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hey @John\n\nsee #urgent", res.State.TextContent(document.RootKey))
	assert.Equal(t, []string{"@|John", "#|urgent"}, mentionsOf(res.State))

	res, err = NewImporter(newEditor(t), nil).Text([]byte("Hey @John"))
	require.NoError(t, err)
	assert.Empty(t, mentionsOf(res.State))
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestExportToFile(t *testing.T) {
	doc := sample(t, newEditor(t))
	doc.Title = "Q3: plan/review"
	opts := DefaultOptions()
	opts.OutputDir = filepath.Join(t.TempDir(), "out")

	path, err := ExportToFile(doc, NewMarkdownExporter(opts), opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Q3-_plan-review_"))
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: 'Q3: plan/review'")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "document"},
		{"a b", "a_b"},
		{`a/b\c:d`, "a-b-c-d"},
		{"tab\there", "tab_here"},
		{"bell\x07", "bell-"},
		{strings.Repeat("x", 60), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}

func TestFromStored(t *testing.T) {
	ed := newEditor(t)
	doc := sample(t, ed)

	stored, err := storage.FromState(doc.State, "Standup")
	require.NoError(t, err)
	stored.ID = "doc_1"
	stored.CreatedAt = fixedTime

	got, err := FromStored(stored, newEditor(t))
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, []string{"@John", "#urgent"}, got.Mentions())

	_, err = FromStored(nil, ed)
	assert.Error(t, err)
}
