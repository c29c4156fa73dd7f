// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/menu"
	"github.com/jeranaias/mentions-tui/internal/storage"
	"github.com/jeranaias/mentions-tui/internal/theme"
)

func newModel(t *testing.T, store *storage.Store) Model {
	t.Helper()
	ed, err := document.NewEditor(mention.EditorConfig(nil, nil))
	require.NoError(t, err)
	document.RegisterRichText(ed)
	mention.RegisterBehavior(ed)

	opts := menu.DefaultOptions()
	opts.Items = map[string][]menu.SourceItem{
		"@": menu.Values("John", "Johanna", "Anna"),
		"#": menu.Values("urgent", "later"),
	}
	orch, err := menu.New(ed, opts, nil)
	require.NoError(t, err)
	t.Cleanup(orch.Close)

	m, err := New(Config{Editor: ed, Menu: orch, Table: theme.Default(), Store: store})
	require.NoError(t, err)

	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// typeKeys sends one key message per rune, the way a terminal delivers them.
func typeKeys(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		if r == ' ' {
			m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func text(m Model) string {
	return m.Editor().State().TextContent(document.RootKey)
}

func TestNew_RequiresEditorAndMenu(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestView_Placeholder(t *testing.T) {
	m := newModel(t, nil)

	view := m.View()
	assert.Contains(t, view, placeholder)
	assert.Contains(t, view, "mentions")
	assert.Contains(t, view, "0 mentions")
}

func TestTyping_OpensMenu(t *testing.T) {
	m := newModel(t, nil)
	m = typeKeys(t, m, "Hey @Jo")

	assert.Equal(t, "Hey @Jo", text(m))
	require.True(t, m.popup.Visible())

	view := m.View()
	assert.Contains(t, view, "@Jo")
	assert.Contains(t, view, "> John")
	assert.Contains(t, view, "Johanna")
	assert.NotContains(t, view, "Anna\n")
}

func TestEnter_InsertsMention(t *testing.T) {
	m := newModel(t, nil)
	m = typeKeys(t, m, "Hey @Jo")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "Hey @Johanna", text(m))
	assert.False(t, m.popup.Visible())
	assert.Len(t, mention.Collect(m.Editor().State(), "@"), 1)
	assert.Contains(t, m.View(), "1 mention")
}

func TestEscape_ClosesMenu(t *testing.T) {
	m := newModel(t, nil)
	m = typeKeys(t, m, "#ur")
	require.True(t, m.popup.Visible())

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.popup.Visible())
	assert.Equal(t, "#ur", text(m))
}

func TestEnter_SplitsParagraphWithoutMenu(t *testing.T) {
	m := newModel(t, nil)
	m = typeKeys(t, m, "one")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeKeys(t, m, "two")

	assert.Equal(t, "one\n\ntwo", text(m))
}

func TestPaste_SplitsLines(t *testing.T) {
	m := newModel(t, nil)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("first\r\nsecond"), Paste: true})

	assert.Equal(t, "first\n\nsecond", text(m))
}

func TestBackspace(t *testing.T) {
	m := newModel(t, nil)
	m = typeKeys(t, m, "abc")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Equal(t, "ab", text(m))
}

func TestFocusAndBlur(t *testing.T) {
	m := newModel(t, nil)

	m = send(t, m, tea.BlurMsg{})
	assert.False(t, m.Editor().Focused())
	assert.Contains(t, m.View(), "blurred")

	m = send(t, m, tea.FocusMsg{})
	assert.True(t, m.Editor().Focused())

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.False(t, m.Editor().Focused())

	m = typeKeys(t, m, "x")
	assert.True(t, m.Editor().Focused(), "typing focuses the editor")
	assert.Equal(t, "x", text(m))
}

func TestHelpOverlay(t *testing.T) {
	m := newModel(t, nil)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.Contains(t, m.View(), "save document")

	m = typeKeys(t, m, "ignored")
	assert.Empty(t, text(m), "keys are swallowed while help is shown")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, m.View(), "save document")
}

func TestSave(t *testing.T) {
	store, err := storage.NewStoreWithDir(t.TempDir())
	require.NoError(t, err)

	m := newModel(t, store)
	m = typeKeys(t, m, "Ping @Anna")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.Dirty())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg, ok := cmd().(SavedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)

	m = send(t, m, msg)
	assert.False(t, m.Dirty())
	assert.Equal(t, msg.ID, m.DocumentID())
	assert.Contains(t, m.View(), "saved "+msg.ID)

	doc, err := store.Load(msg.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"@Anna"}, doc.Mentions)
	assert.True(t, doc.HasMention("@anna"))
}

func TestSave_NoStore(t *testing.T) {
	m := newModel(t, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg := cmd().(SavedMsg)
	assert.ErrorIs(t, msg.Err, ErrNoStore)

	m = send(t, m, msg)
	assert.Contains(t, m.View(), ErrNoStore.Error())
}

func TestSeededMsg(t *testing.T) {
	m := newModel(t, nil)

	m = send(t, m, SeededMsg{Path: "people.yaml", Count: 3})
	assert.Contains(t, m.View(), "directory reloaded (3 entries)")
}

func TestQuit(t *testing.T) {
	m := newModel(t, nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestWithCaret(t *testing.T) {
	m := newModel(t, nil)

	assert.Equal(t, "ab ", m.withCaret("ab", 2))
	assert.Equal(t, "ab", m.withCaret("ab", 0))
	assert.Equal(t, "a \nb", m.withCaret("a\nb", 1))
}

func TestNoticeMsg(t *testing.T) {
	m := newModel(t, nil)

	m = send(t, m, NoticeMsg{Text: "config changed"})
	assert.Contains(t, m.View(), "config changed")

	m = typeKeys(t, m, "a")
	assert.NotContains(t, m.View(), "config changed")
}
