// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/mention"
)

type harness struct {
	t  *testing.T
	ed *document.Editor
	o  *Orchestrator
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	ed, err := document.NewEditor(mention.EditorConfig(nil, nil))
	require.NoError(t, err)
	document.RegisterRichText(ed)
	mention.RegisterBehavior(ed)

	o, err := New(ed, opts, nil)
	require.NoError(t, err)
	t.Cleanup(o.Close)
	return &harness{t: t, ed: ed, o: o}
}

func staticOptions(items map[string][]SourceItem) Options {
	opts := DefaultOptions()
	opts.Items = items
	return opts
}

// typeText inserts s at the caret and syncs the orchestrator.
func (h *harness) typeText(s string) {
	h.t.Helper()
	h.ed.Dispatch(document.InsertTextCommand, s)
	h.o.Sync()
}

func (h *harness) dispatch(cmd document.Command) bool {
	h.t.Helper()
	handled := h.ed.Dispatch(cmd, document.KeyEvent{})
	h.o.Sync()
	return handled
}

func (h *harness) text() string {
	return h.ed.State().TextContent(document.RootKey)
}

func (h *harness) values() []string {
	var out []string
	for _, it := range h.o.State().Candidates {
		out = append(out, it.Value)
	}
	return out
}

// inline returns the block's children as "text:..." or "@value" strings.
func (h *harness) inline() []string {
	s := h.ed.State()
	var out []string
	for _, block := range s.Children(document.RootKey) {
		for _, n := range s.Children(block.Key()) {
			switch n := n.(type) {
			case *document.TextNode:
				out = append(out, "text:"+n.Text())
			case *mention.Node:
				out = append(out, "mention:"+n.Trigger()+n.Value())
			}
		}
	}
	return out
}

// =============================================================================
// STATIC ITEMS
// =============================================================================

func TestStaticItems(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("John", "Josh", "Anna")}))

	h.typeText("Hey @Jo")

	st := h.o.State()
	require.True(t, st.Open)
	assert.Equal(t, ModeMenu, st.Mode)
	assert.Equal(t, []string{"John", "Josh"}, h.values())
	assert.Equal(t, 0, st.ActiveIndex)
	assert.False(t, st.Loading)
	require.NotNil(t, st.Match)
	assert.Equal(t, "@", st.Match.Trigger)
	assert.Equal(t, "Jo", st.Match.Query)
	assert.Equal(t, 4, st.Match.Start)
	assert.Equal(t, 7, st.Match.End)
	assert.Equal(t, ItemValue, st.Candidates[0].ItemType)
}

func TestStaticItems_CaseInsensitive(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("John", "mcJOHNSON", "Anna")}))

	h.typeText("@jOhN")
	assert.Equal(t, []string{"John", "mcJOHNSON"}, h.values())
}

func TestNoMatchMidWord(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("bar")}))

	h.typeText("foo@bar")
	st := h.o.State()
	assert.False(t, st.Open)
	assert.Nil(t, st.Match)
	assert.Equal(t, -1, st.ActiveIndex)
}

func TestLimits(t *testing.T) {
	items := Values("a1", "a2", "a3", "a4", "a5", "a6", "a7")

	tests := []struct {
		name  string
		apply func(o *Options)
		want  int
	}{
		{"default", func(o *Options) {}, 5},
		{"explicit", func(o *Options) { o.MenuItemLimit = 2 }, 2},
		{"unlimited", func(o *Options) { o.MenuItemLimit = Unlimited }, 7},
		{"per trigger", func(o *Options) { o.MenuItemLimits = map[string]Limit{"@": 3} }, 3},
		{"per trigger unlimited", func(o *Options) {
			o.MenuItemLimit = 1
			o.MenuItemLimits = map[string]Limit{"@": Unlimited}
		}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := staticOptions(map[string][]SourceItem{"@": items})
			tt.apply(&opts)
			h := newHarness(t, opts)
			h.typeText("@a")
			assert.Len(t, h.o.State().Candidates, tt.want)
		})
	}
}

// =============================================================================
// COMMIT
// =============================================================================

func TestCommit(t *testing.T) {
	var picked []Item
	opts := staticOptions(map[string][]SourceItem{"@": {{Value: "John", Data: mention.Data{"id": 1}}, {Value: "Josh"}}})
	opts.OnMenuItemSelect = func(it Item) { picked = append(picked, it) }
	h := newHarness(t, opts)

	h.typeText("Hey @Jo")
	require.True(t, h.o.Commit(0))
	h.o.Sync()

	assert.Equal(t, []string{"text:Hey ", "mention:@John"}, h.inline())
	assert.False(t, h.o.State().Open)
	require.Len(t, picked, 1)
	assert.Equal(t, "John", picked[0].Value)

	got := mention.Collect(h.ed.State(), "@")
	require.Len(t, got, 1)
	assert.Equal(t, mention.Data{"id": float64(1)}, got[0].Data())

	// Typing continues after the mention.
	h.typeText(" ok")
	assert.Equal(t, []string{"text:Hey ", "mention:@John", "text: ok"}, h.inline())
}

func TestCommit_EnterAndTab(t *testing.T) {
	for _, cmd := range []document.Command{document.KeyEnterCommand, document.KeyTabCommand} {
		t.Run(string(cmd), func(t *testing.T) {
			h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("John", "Josh")}))
			h.typeText("Hey @Jo")

			assert.True(t, h.dispatch(document.KeyArrowDownCommand))
			assert.True(t, h.dispatch(cmd))
			assert.Equal(t, []string{"text:Hey ", "mention:@Josh"}, h.inline())
			assert.Len(t, h.ed.State().Root().Children(), 1, "enter must not split the paragraph")
		})
	}
}

func TestCommit_MidText(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"#": Values("urgent")}))
	h.typeText("task  today")
	require.NoError(t, h.ed.Update(func(tx *document.Tx) error {
		text, _, ok := tx.Caret()
		require.True(t, ok)
		tx.SelectPoint(document.TextPoint(text.Key(), 5))
		return nil
	}))
	h.typeText("#ur")

	require.True(t, h.o.Commit(0))
	h.o.Sync()
	assert.Equal(t, []string{"text:task ", "mention:#urgent", "text: today"}, h.inline())

	text, off, ok := h.ed.State().Caret()
	require.True(t, ok)
	assert.Equal(t, " today", text.Text())
	assert.Equal(t, 0, off)
}

func TestCommit_Stale(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("John")}))
	h.typeText("@Jo")

	require.NoError(t, h.ed.Update(func(tx *document.Tx) error {
		text, _, _ := tx.Caret()
		return tx.SetText(text.Key(), "xx")
	}))

	assert.False(t, h.o.Commit(0))
	assert.Equal(t, "xx", h.text())
	assert.Empty(t, mention.Collect(h.ed.State(), ""))
	assert.False(t, h.o.State().Open)
}

func TestCommit_OutOfRange(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("John")}))
	h.typeText("@Jo")

	assert.False(t, h.o.Commit(5))
	assert.False(t, h.o.Commit(-1))
	assert.Equal(t, "@Jo", h.text())
}

// =============================================================================
// CREATABLE
// =============================================================================

func TestCreatable(t *testing.T) {
	tests := []struct {
		name      string
		creatable Creatable
		labels    map[string]Creatable
		wantLabel string
	}{
		{"raw query label", Creatable{Enabled: true}, nil, "Newbie"},
		{"template", Creatable{Enabled: true, Label: `Add "{{name}}"`}, nil, `Add "Newbie"`},
		{"per trigger", Creatable{}, map[string]Creatable{"@": {Enabled: true, Label: "New: {{name}}"}}, "New: Newbie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := staticOptions(map[string][]SourceItem{"@": Values("John")})
			opts.Creatable = tt.creatable
			opts.CreatableLabels = tt.labels
			h := newHarness(t, opts)

			h.typeText("@Newbie")
			st := h.o.State()
			require.NotEmpty(t, st.Candidates)
			last := st.Candidates[len(st.Candidates)-1]
			assert.Equal(t, ItemAdditional, last.ItemType)
			assert.Equal(t, "Newbie", last.Value)
			assert.Equal(t, tt.wantLabel, last.DisplayValue)

			require.True(t, h.o.Commit(len(st.Candidates)-1))
			assert.Equal(t, []string{"mention:@Newbie"}, h.inline())
		})
	}
}

func TestCreatable_NotOfferedForExactMatchOrEmptyQuery(t *testing.T) {
	opts := staticOptions(map[string][]SourceItem{"@": Values("John")})
	opts.Creatable = Creatable{Enabled: true}
	h := newHarness(t, opts)

	h.typeText("@John")
	assert.Equal(t, []string{"John"}, h.values())

	h2 := newHarness(t, opts)
	h2.typeText("@")
	assert.Equal(t, []string{"John"}, h2.values())
}

func TestCreatable_AppendedAfterLimit(t *testing.T) {
	opts := staticOptions(map[string][]SourceItem{"@": Values("ab1", "ab2", "ab3")})
	opts.MenuItemLimit = 2
	opts.Creatable = Creatable{Enabled: true}
	h := newHarness(t, opts)

	h.typeText("@ab")
	assert.Equal(t, []string{"ab1", "ab2", "ab"}, h.values())

	// An exact match cut off by the limit still gets the create entry.
	opts = staticOptions(map[string][]SourceItem{"@": Values("Johnny", "John")})
	opts.MenuItemLimit = 1
	opts.Creatable = Creatable{Enabled: true}
	h2 := newHarness(t, opts)

	h2.typeText("@John")
	assert.Equal(t, []string{"Johnny", "John"}, h2.values())
	last := h2.o.State().Candidates[1]
	assert.Equal(t, ItemAdditional, last.ItemType)
	require.True(t, h2.o.Commit(1))
	assert.Equal(t, []string{"mention:@John"}, h2.inline())
}

// =============================================================================
// CURRENT MENTIONS
// =============================================================================

func seedMentions(t *testing.T, h *harness, values ...string) {
	t.Helper()
	require.NoError(t, h.ed.Update(func(tx *document.Tx) error {
		p := tx.Create(document.NewParagraph())
		if err := tx.Append(document.RootKey, p.Key()); err != nil {
			return err
		}
		for _, v := range values {
			if err := tx.Append(p.Key(), mention.Create(tx, "@", v, nil).Key()); err != nil {
				return err
			}
		}
		tx.SelectEnd(p.Key())
		return nil
	}))
}

func TestCurrentMentionsFirst(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("John", "Jack")}))
	seedMentions(t, h, "Jane", "John")

	h.typeText(" @J")
	assert.Equal(t, []string{"Jane", "John", "Jack"}, h.values())
}

func TestCurrentMentionsDisabled(t *testing.T) {
	opts := staticOptions(map[string][]SourceItem{"@": Values("John")})
	opts.ShowCurrentMentionsAsSuggestions = false
	h := newHarness(t, opts)
	seedMentions(t, h, "Jane")

	h.typeText(" @J")
	assert.Equal(t, []string{"John"}, h.values())
}

// =============================================================================
// ASYNC SEARCH
// =============================================================================

type recorder struct {
	calls   []string
	results map[string][]SourceItem
	err     error
}

func (r *recorder) search(_ context.Context, trigger, query string) ([]SourceItem, error) {
	r.calls = append(r.calls, trigger+query)
	if r.err != nil {
		return nil, r.err
	}
	return r.results[query], nil
}

func searchOptions(r *recorder) Options {
	opts := DefaultOptions()
	opts.Triggers = []string{"@"}
	opts.Search = r.search
	opts.ShowCurrentMentionsAsSuggestions = false
	return opts
}

func TestSearch_LoadingAndResult(t *testing.T) {
	r := &recorder{results: map[string][]SourceItem{"Jo": Values("John", "Joan")}}
	h := newHarness(t, searchOptions(r))

	h.ed.Dispatch(document.InsertTextCommand, "@Jo")
	assert.NotNil(t, h.o.Sync(), "a debounce tick is scheduled")

	st := h.o.State()
	assert.True(t, st.Open)
	assert.True(t, st.Loading)
	assert.Empty(t, r.calls, "nothing is looked up before the delay")

	cmd := h.o.Update(debounceMsg{generation: st.Generation, trigger: "@", query: "Jo"})
	require.NotNil(t, cmd)
	h.o.Update(cmd())

	st = h.o.State()
	assert.False(t, st.Loading)
	assert.Equal(t, []string{"John", "Joan"}, h.values())
	assert.Equal(t, 0, st.ActiveIndex)
	assert.Equal(t, []string{"@Jo"}, r.calls)
}

func TestSearch_DebounceOnlyLastQuery(t *testing.T) {
	r := &recorder{}
	h := newHarness(t, searchOptions(r))

	var gens []uint64
	for _, s := range []string{"@J", "o", "h"} {
		h.typeText(s)
		gens = append(gens, h.o.State().Generation)
	}
	require.Len(t, gens, 3)
	assert.Less(t, gens[0], gens[1])
	assert.Less(t, gens[1], gens[2])

	assert.Nil(t, h.o.Update(debounceMsg{generation: gens[0], trigger: "@", query: "J"}))
	assert.Nil(t, h.o.Update(debounceMsg{generation: gens[1], trigger: "@", query: "Jo"}))
	cmd := h.o.Update(debounceMsg{generation: gens[2], trigger: "@", query: "Joh"})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []string{"@Joh"}, r.calls)
}

func TestSearch_StaleResultsDiscarded(t *testing.T) {
	h := newHarness(t, searchOptions(&recorder{}))

	h.typeText("@J")
	older := h.o.State().Generation
	h.typeText("o")
	newer := h.o.State().Generation

	// The older lookup resolves first while the newer is still loading.
	h.o.Update(searchResultMsg{generation: older, items: Values("Jack")})
	st := h.o.State()
	assert.True(t, st.Loading)
	assert.Empty(t, st.Candidates)

	h.o.Update(searchResultMsg{generation: newer, items: Values("John")})
	assert.Equal(t, []string{"John"}, h.values())

	// And again after the newer has been applied.
	h.o.Update(searchResultMsg{generation: older, items: Values("Jack")})
	assert.Equal(t, []string{"John"}, h.values())
}

func TestSearch_ResultAfterCloseDiscarded(t *testing.T) {
	h := newHarness(t, searchOptions(&recorder{}))

	h.typeText("@Jo")
	gen := h.o.State().Generation
	h.typeText(" .")

	assert.False(t, h.o.State().Open)
	h.o.Update(searchResultMsg{generation: gen, items: Values("John")})
	assert.Empty(t, h.o.State().Candidates)
}

func TestSearch_Error(t *testing.T) {
	r := &recorder{err: errors.New("backend down")}
	h := newHarness(t, searchOptions(r))

	h.typeText("@Jo")
	st := h.o.State()
	cmd := h.o.Update(debounceMsg{generation: st.Generation, trigger: "@", query: "Jo"})
	require.NotNil(t, cmd)
	h.o.Update(cmd())

	st = h.o.State()
	assert.True(t, st.Open)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Candidates)
	assert.Equal(t, -1, st.ActiveIndex)
}

func TestWithRateLimit(t *testing.T) {
	r := &recorder{results: map[string][]SourceItem{"a": Values("abc")}}
	limited := WithRateLimit(r.search, rate.Limit(0.001), 1)

	items, err := limited(context.Background(), "@", "a")
	require.NoError(t, err)
	assert.Equal(t, Values("abc"), items)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = limited(ctx, "@", "a")
	assert.Error(t, err)
	assert.Len(t, r.calls, 1)
}

// =============================================================================
// NAVIGATION
// =============================================================================

func TestActiveIndexBounds(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("a1", "a2", "a3")}))
	h.typeText("@a")

	n := len(h.o.State().Candidates)
	require.Equal(t, 3, n)

	moves := []int{1, 1, 1, 1, -1, -1, -1, -1, -1, 1, -1, 1, 1}
	want := 0
	for _, d := range moves {
		if d > 0 {
			h.o.Next()
		} else {
			h.o.Prev()
		}
		want = ((want+d)%n + n) % n
		idx := h.o.State().ActiveIndex
		assert.Equal(t, want, idx)
		assert.True(t, idx >= 0 && idx < n)
	}

	// A list change resets the index.
	h.typeText("2")
	st := h.o.State()
	assert.Equal(t, []string{"a2"}, h.values())
	assert.Equal(t, 0, st.ActiveIndex)

	h.typeText("x")
	st = h.o.State()
	assert.Empty(t, st.Candidates)
	assert.Equal(t, -1, st.ActiveIndex)
	h.o.Next()
	assert.Equal(t, -1, h.o.State().ActiveIndex)
}

func TestArrowsFallThroughWhenClosed(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("a")}))
	h.typeText("plain")

	assert.False(t, h.dispatch(document.KeyArrowDownCommand))
	assert.False(t, h.dispatch(document.KeyEscapeCommand))
}

// =============================================================================
// DISMISS / BLUR
// =============================================================================

func TestEscape(t *testing.T) {
	closed := 0
	opts := staticOptions(map[string][]SourceItem{"@": Values("John")})
	opts.OnMenuClose = func() { closed++ }
	h := newHarness(t, opts)

	h.typeText("@Jo")
	assert.True(t, h.dispatch(document.KeyEscapeCommand))
	assert.False(t, h.o.State().Open)
	assert.Equal(t, "@Jo", h.text())
	assert.Equal(t, 1, closed)

	// Unrelated updates do not reopen the dismissed match.
	h.ed.Dispatch(document.FocusCommand, nil)
	h.o.Sync()
	assert.False(t, h.o.State().Open)

	// Changing the query does.
	h.typeText("h")
	assert.True(t, h.o.State().Open)
	assert.Equal(t, []string{"John"}, h.values())
}

func TestCaretLeavingMatchCloses(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("John")}))
	h.typeText("@Jo")
	require.True(t, h.o.State().Open)

	require.NoError(t, h.ed.Update(func(tx *document.Tx) error {
		text, _, _ := tx.Caret()
		tx.SelectPoint(document.TextPoint(text.Key(), 0))
		return nil
	}))
	h.o.Sync()
	assert.False(t, h.o.State().Open)
	assert.Equal(t, "@Jo", h.text())
}

func TestInsertOnBlur(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("John")}))
	h.typeText("Hey @Jo")

	h.dispatch(document.BlurCommand)
	assert.Equal(t, []string{"text:Hey ", "mention:@John"}, h.inline())
	assert.False(t, h.o.State().Open)
}

func TestInsertOnBlurDisabled(t *testing.T) {
	opts := staticOptions(map[string][]SourceItem{"@": Values("John")})
	opts.InsertOnBlur = false
	h := newHarness(t, opts)
	h.typeText("Hey @Jo")

	h.dispatch(document.BlurCommand)
	assert.Equal(t, "Hey @Jo", h.text())
	assert.False(t, h.o.State().Open)

	// Focus brings the menu back.
	h.dispatch(document.FocusCommand)
	assert.True(t, h.o.State().Open)
}

// =============================================================================
// SHOW MENTIONS ON DELETE
// =============================================================================

func TestShowMentionsOnDelete(t *testing.T) {
	opts := staticOptions(map[string][]SourceItem{"@": Values("John", "Johanna")})
	opts.ShowMentionsOnDelete = true
	h := newHarness(t, opts)

	h.typeText("Hey @Jo")
	require.True(t, h.o.Commit(0))
	h.o.Sync()

	h.dispatch(document.KeyBackspaceCommand)
	assert.Equal(t, []string{"text:Hey @Joh"}, h.inline())
	st := h.o.State()
	require.True(t, st.Open)
	assert.Equal(t, "Joh", st.Match.Query)
	assert.Equal(t, []string{"John", "Johanna"}, h.values())

	// A menu reopened by delete is not committed by blur.
	h.dispatch(document.BlurCommand)
	assert.Equal(t, "Hey @Joh", h.text())
	assert.Empty(t, mention.Collect(h.ed.State(), ""))
}

func TestShowMentionsOnDelete_QueryChangeRestoresBlurInsert(t *testing.T) {
	opts := staticOptions(map[string][]SourceItem{"@": Values("John", "Johanna")})
	opts.ShowMentionsOnDelete = true
	h := newHarness(t, opts)

	h.typeText("@Jo")
	require.True(t, h.o.Commit(0))
	h.o.Sync()
	h.dispatch(document.KeyBackspaceCommand)
	h.typeText("a")

	h.dispatch(document.BlurCommand)
	assert.Equal(t, []string{"mention:@Johanna"}, h.inline())
}

func TestBackspaceRemovesMentionByDefault(t *testing.T) {
	h := newHarness(t, staticOptions(map[string][]SourceItem{"@": Values("John")}))

	h.typeText("Hey @Jo")
	require.True(t, h.o.Commit(0))
	h.o.Sync()

	h.dispatch(document.KeyBackspaceCommand)
	assert.Equal(t, "Hey ", h.text())
	assert.False(t, h.o.State().Open)
}

// =============================================================================
// COMBOBOX
// =============================================================================

func TestCombobox(t *testing.T) {
	var selected []Item
	var focus []string
	opts := DefaultOptions()
	opts.Triggers = []string{"@", "#", `\w+:`}
	opts.Items = map[string][]SourceItem{"@": Values("John"), "#": Values("urgent", "later")}
	opts.Combobox = true
	opts.ComboboxAdditionalItems = []Item{{Value: "help", DisplayValue: "Help"}}
	opts.OnComboboxItemSelect = func(it Item) { selected = append(selected, it) }
	opts.OnComboboxFocusChange = func(it *Item) {
		if it == nil {
			focus = append(focus, "")
			return
		}
		focus = append(focus, it.Value)
	}
	h := newHarness(t, opts)
	h.o.Sync()

	st := h.o.State()
	require.True(t, st.Open)
	assert.Equal(t, ModeCombobox, st.Mode)
	assert.Equal(t, []string{"@", "#", "help"}, h.values(), "pattern triggers are not listed")
	assert.Equal(t, ItemTrigger, st.Candidates[0].ItemType)
	assert.Equal(t, ItemAdditional, st.Candidates[2].ItemType)

	assert.True(t, h.dispatch(document.KeyArrowDownCommand))
	assert.True(t, h.dispatch(document.KeyEnterCommand))
	assert.Equal(t, "#", h.text())
	require.Len(t, selected, 1)
	assert.Equal(t, ItemTrigger, selected[0].ItemType)

	st = h.o.State()
	require.NotNil(t, st.Match)
	assert.Equal(t, []string{"urgent", "later", "help"}, h.values())
	assert.Equal(t, ItemValue, st.Candidates[0].ItemType)

	h.typeText("u")
	require.True(t, h.dispatch(document.KeyEnterCommand))
	assert.Equal(t, []string{"mention:#urgent"}, h.inline())
	assert.Contains(t, focus, "@")
	assert.Contains(t, focus, "urgent")
}

func TestCombobox_EnterNeedsNavigationOnTriggerList(t *testing.T) {
	opts := DefaultOptions()
	opts.Items = map[string][]SourceItem{"@": Values("John")}
	opts.Combobox = true
	h := newHarness(t, opts)
	h.typeText("hi")

	assert.True(t, h.o.State().Open)
	h.dispatch(document.KeyEnterCommand)
	assert.Len(t, h.ed.State().Root().Children(), 2, "enter splits the paragraph")
}

func TestCombobox_CreatableAlwaysOffered(t *testing.T) {
	opts := DefaultOptions()
	opts.Items = map[string][]SourceItem{"@": Values("John")}
	opts.Combobox = true
	opts.Creatable = Creatable{Enabled: true}
	h := newHarness(t, opts)

	h.typeText("@John")
	st := h.o.State()
	require.Len(t, st.Candidates, 2)
	assert.Equal(t, ItemAdditional, st.Candidates[1].ItemType)
	assert.Equal(t, "John", st.Candidates[1].Value)
}

func TestCombobox_AdditionalItemDoesNotEdit(t *testing.T) {
	var selected []Item
	opts := DefaultOptions()
	opts.Items = map[string][]SourceItem{"@": Values("John")}
	opts.Combobox = true
	opts.ComboboxAdditionalItems = []Item{{Value: "help", DisplayValue: "Help"}}
	opts.OnComboboxItemSelect = func(it Item) { selected = append(selected, it) }
	h := newHarness(t, opts)

	h.typeText("@Jo")
	assert.Equal(t, []string{"John", "help"}, h.values())
	assert.False(t, h.o.Commit(1))
	assert.Equal(t, "@Jo", h.text())
	require.Len(t, selected, 1)
	assert.Equal(t, "help", selected[0].Value)
}

func TestCombobox_ControlledVisibility(t *testing.T) {
	var events []string
	closed := false
	opts := DefaultOptions()
	opts.Items = map[string][]SourceItem{"@": Values("John")}
	opts.Combobox = true
	opts.ComboboxOpen = &closed
	opts.OnComboboxOpen = func() { events = append(events, "open") }
	opts.OnComboboxClose = func() { events = append(events, "close") }
	h := newHarness(t, opts)

	h.typeText("@Jo")
	assert.False(t, h.o.State().Open, "host keeps it closed while a match is typed")

	h.o.SetComboboxOpen(true)
	h.o.Sync()
	require.True(t, h.o.State().Open)
	assert.Equal(t, []string{"John"}, h.values())

	assert.False(t, h.dispatch(document.KeyEscapeCommand), "escape is left to the host")
	assert.True(t, h.o.State().Open)
	h.o.Dismiss()
	assert.True(t, h.o.State().Open)

	h.ed.Dispatch(document.BlurCommand, nil)
	h.o.Sync()
	assert.True(t, h.o.State().Open, "blur does not hide a host-opened combobox")

	h.o.SetComboboxOpen(false)
	h.o.Sync()
	assert.False(t, h.o.State().Open)
	assert.Equal(t, []string{"open", "close"}, events)
}

func TestCombobox_ControlledIgnoredInMenuMode(t *testing.T) {
	open := false
	opts := staticOptions(map[string][]SourceItem{"@": Values("John")})
	opts.ComboboxOpen = &open
	h := newHarness(t, opts)

	h.typeText("@Jo")
	assert.True(t, h.o.State().Open)
	assert.Equal(t, ModeMenu, h.o.State().Mode)
}

// =============================================================================
// CALLBACKS / OPTIONS
// =============================================================================

func TestOpenCloseCallbacks(t *testing.T) {
	var events []string
	opts := staticOptions(map[string][]SourceItem{"@": Values("John")})
	opts.OnMenuOpen = func() { events = append(events, "open") }
	opts.OnMenuClose = func() { events = append(events, "close") }
	h := newHarness(t, opts)

	h.typeText("@J")
	h.typeText("o")
	h.typeText(" ")
	h.typeText(".")

	assert.Equal(t, []string{"open", "close"}, events)
}

func TestNew_Validation(t *testing.T) {
	ed, err := document.NewEditor(document.Config{})
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Items = map[string][]SourceItem{"@": Values("a")}
	opts.Search = (&recorder{}).search
	_, err = New(ed, opts, nil)
	assert.ErrorIs(t, err, ErrConflictingSources)

	_, err = New(ed, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrNoTriggers)

	opts = DefaultOptions()
	opts.Search = (&recorder{}).search
	_, err = New(ed, opts, nil)
	assert.ErrorIs(t, err, ErrNoTriggers, "search needs explicit triggers")

	opts = DefaultOptions()
	opts.Triggers = []string{"("}
	opts.Search = (&recorder{}).search
	_, err = New(ed, opts, nil)
	assert.Error(t, err)
}

func TestOptionsHelpers(t *testing.T) {
	assert.Equal(t, DefaultMenuItemLimit, Limit(0).Max())
	assert.Equal(t, -1, Unlimited.Max())
	assert.Equal(t, 3, Limit(3).Max())

	assert.Equal(t, "q", Creatable{Enabled: true}.LabelFor("q"))
	assert.Equal(t, "Create q now", Creatable{Enabled: true, Label: "Create {{name}} now"}.LabelFor("q"))

	opts := Options{Items: map[string][]SourceItem{"@": nil, "#": nil}}
	assert.Equal(t, []string{"#", "@"}, opts.triggers())
}
