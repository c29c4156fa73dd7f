// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jeranaias/mentions-tui/internal/logging"
)

// chip is a minimal atomic node used to exercise decorator handling.
type chip struct {
	DecoratorBase
	label string
}

func (c *chip) Type() string        { return "chip" }
func (c *chip) TextContent() string { return "[" + c.label + "]" }
func (c *chip) Clone() Node {
	cp := *c
	return &cp
}

func (c *chip) ExportJSON() any {
	return map[string]any{"type": "chip", "version": 1, "label": c.label}
}

func (c *chip) ExportDOM() *html.Node {
	el := &html.Node{Type: html.ElementNode, Data: "b", DataAtom: atom.B}
	el.Attr = []html.Attribute{{Key: "data-chip", Val: c.label}}
	el.AppendChild(&html.Node{Type: html.TextNode, Data: c.TextContent()})
	return el
}

func chipType() NodeType {
	return NodeType{
		Type: "chip",
		ImportJSON: func(data []byte) (Node, error) {
			var rec struct {
				Label string `json:"label"`
			}
			if err := json.Unmarshal(data, &rec); err != nil {
				return nil, err
			}
			return &chip{label: rec.Label}, nil
		},
		DOM: []DOMConverter{{
			Tag: "b",
			Convert: func(n *html.Node) Node {
				if v, ok := Attr(n, "data-chip"); ok {
					return &chip{label: v}
				}
				return nil
			},
		}},
	}
}

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	e, err := NewEditor(Config{Nodes: []NodeType{chipType()}})
	require.NoError(t, err)
	RegisterRichText(e)
	return e
}

// seed builds one paragraph holding "<left>[chip]<right>" and returns the
// keys of the three nodes.
func seed(t *testing.T, e *Editor, left, right string) (NodeKey, NodeKey, NodeKey) {
	t.Helper()
	var l, c, r NodeKey
	require.NoError(t, e.Update(func(tx *Tx) error {
		p := tx.Create(NewParagraph())
		require.NoError(t, tx.Append(RootKey, p.Key()))
		l = tx.Create(NewText(left)).Key()
		c = tx.Create(&chip{label: "x"}).Key()
		r = tx.Create(NewText(right)).Key()
		return tx.Append(p.Key(), l, c, r)
	}))
	return l, c, r
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestUpdate_CopyOnWrite(t *testing.T) {
	e := newTestEditor(t)
	l, _, _ := seed(t, e, "Hey ", " there")
	before := e.State()

	require.NoError(t, e.Update(func(tx *Tx) error {
		return tx.SetText(l, "Hello ")
	}))

	assert.Equal(t, "Hey ", before.Text(l).Text())
	assert.Equal(t, "Hello ", e.State().Text(l).Text())
	assert.Equal(t, before.Version()+1, e.State().Version())
}

func TestUpdate_ErrorDiscards(t *testing.T) {
	e := newTestEditor(t)
	l, _, _ := seed(t, e, "Hey ", "")
	version := e.State().Version()

	err := e.Update(func(tx *Tx) error {
		_ = tx.SetText(l, "changed")
		return ErrInvalidMove
	})
	assert.ErrorIs(t, err, ErrInvalidMove)
	assert.Equal(t, "Hey ", e.State().Text(l).Text())
	assert.Equal(t, version, e.State().Version())
}

func TestUpdate_FailDiscards(t *testing.T) {
	e := newTestEditor(t)
	l, _, _ := seed(t, e, "Hey ", "")
	version := e.State().Version()

	err := e.Update(func(tx *Tx) error {
		require.NoError(t, tx.SetText(l, "changed"))
		tx.Fail(ErrInvalidMove)
		tx.Fail(ErrNotText)
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidMove)
	assert.Equal(t, "Hey ", e.State().Text(l).Text())
	assert.Equal(t, version, e.State().Version())
}

func TestDispatch_FailedHandlerDiscardsEdit(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEditor(Config{
		Nodes:  []NodeType{chipType()},
		Logger: logging.NewLogger(&logging.Config{Level: logging.LevelWarn, JSONFormat: true, Output: &buf}),
	})
	require.NoError(t, err)
	l, _, _ := seed(t, e, "Hey ", "")
	version := e.State().Version()

	e.RegisterCommand(KeyTabCommand, PriorityHigh, func(tx *Tx, _ any) bool {
		tx.logged("set text", tx.SetText(l, "half done"))
		tx.logged("remove", tx.Remove("missing"))
		return true
	})

	assert.True(t, e.Dispatch(KeyTabCommand, nil))
	assert.Equal(t, "Hey ", e.State().Text(l).Text())
	assert.Equal(t, version, e.State().Version())
	assert.Contains(t, buf.String(), "rich text edit failed")
	assert.Contains(t, buf.String(), `"op":"remove"`)
	assert.Contains(t, buf.String(), "command failed")
}

func TestUpdate_ReadsSeeOwnWrites(t *testing.T) {
	e := newTestEditor(t)
	l, _, _ := seed(t, e, "a", "b")

	require.NoError(t, e.Update(func(tx *Tx) error {
		require.NoError(t, tx.SetText(l, "z"))
		assert.Equal(t, "z", tx.Text(l).Text())
		e.Read(func(s *State) {
			assert.Equal(t, "z", s.Text(l).Text())
		})
		return nil
	}))
}

func TestReplaceTextRange(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		start, end int
		want       string
		children   int
	}{
		{"tail", "Hey @Jo", 4, 7, "Hey [x]", 2},
		{"middle", "a @Jo b", 2, 5, "a [x] b", 3},
		{"head", "@Jo b", 0, 3, "[x] b", 2},
		{"whole", "@Jo", 0, 3, "[x]", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t)
			var p NodeKey
			require.NoError(t, e.Update(func(tx *Tx) error {
				para := tx.Create(NewParagraph())
				p = para.Key()
				txt := tx.Create(NewText(tt.text))
				require.NoError(t, tx.Append(RootKey, p))
				require.NoError(t, tx.Append(p, txt.Key()))
				_, err := tx.ReplaceTextRange(txt.Key(), tt.start, tt.end, &chip{label: "x"})
				return err
			}))
			assert.Equal(t, tt.want, e.State().TextContent(RootKey))
			assert.Equal(t, tt.children, e.State().Element(p).ChildCount())
		})
	}
}

func TestReplaceTextRange_OutOfRange(t *testing.T) {
	e := newTestEditor(t)
	l, _, _ := seed(t, e, "abc", "")
	err := e.Update(func(tx *Tx) error {
		_, err := tx.ReplaceTextRange(l, 2, 9, &chip{})
		return err
	})
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestNormalize_MergesTextAndMovesCaret(t *testing.T) {
	e := newTestEditor(t)
	l, c, r := seed(t, e, "ab", "cd")

	require.NoError(t, e.Update(func(tx *Tx) error {
		require.NoError(t, tx.Remove(c))
		tx.SelectPoint(TextPoint(r, 1))
		return nil
	}))

	s := e.State()
	assert.Nil(t, s.Node(c))
	assert.Nil(t, s.Node(r))
	assert.Equal(t, "abcd", s.Text(l).Text())
	node, off, ok := s.Caret()
	require.True(t, ok)
	assert.Equal(t, l, node.Key())
	assert.Equal(t, 3, off)
}

func TestInsertAt_RejectsCycles(t *testing.T) {
	e := newTestEditor(t)
	err := e.Update(func(tx *Tx) error {
		p := tx.Create(NewParagraph())
		require.NoError(t, tx.Append(RootKey, p.Key()))
		return tx.Append(p.Key(), RootKey)
	})
	assert.ErrorIs(t, err, ErrInvalidMove)
}

// =============================================================================
// COMMAND TESTS
// =============================================================================

func TestDispatch_PriorityOrder(t *testing.T) {
	e := newTestEditor(t)
	var calls []string

	e.RegisterCommand(KeyTabCommand, PriorityLow, func(*Tx, any) bool {
		calls = append(calls, "low")
		return true
	})
	unregister := e.RegisterCommand(KeyTabCommand, PriorityHigh, func(*Tx, any) bool {
		calls = append(calls, "high")
		return false
	})

	assert.True(t, e.Dispatch(KeyTabCommand, nil))
	assert.Equal(t, []string{"high", "low"}, calls)

	unregister()
	calls = nil
	e.Dispatch(KeyTabCommand, nil)
	assert.Equal(t, []string{"low"}, calls)

	assert.False(t, e.Dispatch(KeyArrowUpCommand, nil))
}

func TestDispatch_FocusTracking(t *testing.T) {
	e := newTestEditor(t)
	assert.True(t, e.Focused())
	e.Dispatch(BlurCommand, nil)
	assert.False(t, e.Focused())
	e.Dispatch(FocusCommand, nil)
	assert.True(t, e.Focused())
}

func TestUpdateListener(t *testing.T) {
	e := newTestEditor(t)
	var seen []uint64
	stop := e.RegisterUpdateListener(func(prev, next *State) {
		seen = append(seen, next.Version())
	})

	e.Dispatch(InsertTextCommand, "hi")
	stop()
	e.Dispatch(InsertTextCommand, "!")

	assert.Len(t, seen, 1)
	assert.Equal(t, "hi!", e.State().TextContent(RootKey))
}

func TestReplacement(t *testing.T) {
	e, err := NewEditor(Config{
		Nodes: []NodeType{chipType()},
		Replacements: []Replacement{{
			Replace: "chip",
			With: func(n Node) Node {
				return &chip{label: n.(*chip).label + "!"}
			},
		}},
	})
	require.NoError(t, err)

	require.NoError(t, e.Update(func(tx *Tx) error {
		p := tx.Create(NewParagraph())
		c := tx.Create(&chip{label: "a"})
		require.NoError(t, tx.Append(RootKey, p.Key()))
		return tx.Append(p.Key(), c.Key())
	}))
	assert.Equal(t, "[a!]", e.State().TextContent(RootKey))

	_, err = NewEditor(Config{Replacements: []Replacement{{Replace: "missing"}}})
	assert.ErrorIs(t, err, ErrUnknownNodeType)

	_, err = NewEditor(Config{Nodes: []NodeType{chipType(), chipType()}})
	assert.ErrorIs(t, err, ErrDuplicateNodeType)
}

// =============================================================================
// RICH TEXT TESTS
// =============================================================================

func TestRichText_TypingAndParagraphs(t *testing.T) {
	e := newTestEditor(t)

	e.Dispatch(InsertTextCommand, "Hello world")
	e.Dispatch(KeyArrowLeftCommand, KeyEvent{})
	e.Dispatch(KeyArrowLeftCommand, KeyEvent{})
	e.Dispatch(KeyEnterCommand, nil)
	e.Dispatch(InsertTextCommand, ">")

	assert.Equal(t, "Hello wor\n\n>ld", e.State().TextContent(RootKey))

	// Backspace twice: removes ">" then joins the paragraphs.
	e.Dispatch(KeyBackspaceCommand, nil)
	e.Dispatch(KeyBackspaceCommand, nil)
	assert.Equal(t, "Hello world", e.State().TextContent(RootKey))
}

func TestRichText_ArrowSelectsAtomicNode(t *testing.T) {
	e := newTestEditor(t)
	_, c, r := seed(t, e, "ab", "cd")
	require.NoError(t, e.Update(func(tx *Tx) error {
		tx.SelectPoint(TextPoint(r, 0))
		return nil
	}))

	e.Dispatch(KeyArrowLeftCommand, KeyEvent{})
	assert.True(t, e.State().IsNodeSelected(c))

	e.Dispatch(KeyArrowLeftCommand, KeyEvent{})
	node, off, ok := e.State().Caret()
	require.True(t, ok)
	assert.Equal(t, "ab", node.Text())
	assert.Equal(t, 2, off)
}

func TestRichText_BackspaceRemovesAtomicNode(t *testing.T) {
	e := newTestEditor(t)
	_, c, r := seed(t, e, "ab", "cd")
	require.NoError(t, e.Update(func(tx *Tx) error {
		tx.SelectPoint(TextPoint(r, 0))
		return nil
	}))

	e.Dispatch(KeyBackspaceCommand, nil)

	s := e.State()
	assert.Nil(t, s.Node(c))
	assert.Equal(t, "abcd", s.TextContent(RootKey))
	_, off, ok := s.Caret()
	require.True(t, ok)
	assert.Equal(t, 2, off)
}

func TestRichText_DeleteSelectedNode(t *testing.T) {
	e := newTestEditor(t)
	_, c, _ := seed(t, e, "ab", "cd")
	require.NoError(t, e.Update(func(tx *Tx) error {
		tx.SelectNode(c)
		return nil
	}))

	e.Dispatch(KeyDeleteCommand, nil)
	assert.Equal(t, "abcd", e.State().TextContent(RootKey))
}

// =============================================================================
// SERIALIZATION TESTS
// =============================================================================

func TestJSONRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	seed(t, e, "Hey ", "!")

	data, err := MarshalState(e.State())
	require.NoError(t, err)
	assert.JSONEq(t, `{"root":{"type":"root","version":1,"children":[
		{"type":"paragraph","version":1,"children":[
			{"detail":0,"format":0,"mode":"normal","style":"","text":"Hey ","type":"text","version":1},
			{"type":"chip","version":1,"label":"x"},
			{"detail":0,"format":0,"mode":"normal","style":"","text":"!","type":"text","version":1}
		]}
	]}}`, string(data))

	s, err := e.ParseState(data)
	require.NoError(t, err)
	assert.Equal(t, "Hey [x]!", s.TextContent(RootKey))

	again, err := MarshalState(s)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestParseState_Errors(t *testing.T) {
	e := newTestEditor(t)

	_, err := e.ParseState([]byte(`{`))
	assert.Error(t, err)

	_, err = e.ParseState([]byte(`{}`))
	assert.Error(t, err)

	_, err = e.ParseState([]byte(`{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"video"}]}]}}`))
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestHTMLRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	seed(t, e, "a < b ", " end")

	out, err := ExportHTML(e.State())
	require.NoError(t, err)
	assert.Equal(t, `<p>a &lt; b <b data-chip="x">[x]</b> end</p>`, out)

	s, err := e.ParseHTML(out)
	require.NoError(t, err)
	assert.Equal(t, "a < b [x] end", s.TextContent(RootKey))
}

func TestParseHTML_Blocks(t *testing.T) {
	e := newTestEditor(t)

	s, err := e.ParseHTML("<div>one <i>two</i></div>\n<h1>three</h1>loose")
	require.NoError(t, err)
	assert.Equal(t, "one two\n\nthree\n\nloose", s.TextContent(RootKey))
	assert.Equal(t, 3, s.Root().ChildCount())
}

func TestBuild_LeavesEditorUntouched(t *testing.T) {
	e := newTestEditor(t)
	before := e.State()

	s, err := e.Build(func(tx *Tx) error {
		p := tx.Create(NewParagraph())
		c := tx.Create(&chip{label: "y"})
		if err := tx.Append(RootKey, p.Key()); err != nil {
			return err
		}
		return tx.Append(p.Key(), c.Key())
	})
	require.NoError(t, err)
	assert.Equal(t, "[y]", s.TextContent(RootKey))
	assert.Same(t, before, e.State())

	_, err = e.Build(func(tx *Tx) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}

func TestParseHTML_SkipsNonContent(t *testing.T) {
	e := newTestEditor(t)

	s, err := e.ParseHTML("<style>p { color: red }</style><p>kept</p><script>alert(1)</script>")
	require.NoError(t, err)
	assert.Equal(t, "kept", s.TextContent(RootKey))
}
