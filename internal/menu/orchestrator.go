// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package menu

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/cases"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/matcher"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/navigate"
)

// Mode is the suggestion surface.
type Mode int

const (
	// ModeMenu is the inline typeahead menu.
	ModeMenu Mode = iota
	// ModeCombobox is the persistent panel listing triggers and values.
	ModeCombobox
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeCombobox {
		return "combobox"
	}
	return "menu"
}

// State is a snapshot of the suggestion state. ActiveIndex is -1 exactly
// when Candidates is empty.
type State struct {
	Open        bool
	Mode        Mode
	Match       *matcher.Match
	Candidates  []Item
	ActiveIndex int
	Loading     bool
	Generation  uint64
}

// Active returns the highlighted candidate.
func (s State) Active() (Item, bool) {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Candidates) {
		return Item{}, false
	}
	return s.Candidates[s.ActiveIndex], true
}

// =============================================================================
// MESSAGES
// =============================================================================

// debounceMsg fires when the search delay for a generation has elapsed.
type debounceMsg struct {
	generation uint64
	trigger    string
	query      string
}

// searchResultMsg carries a lookup result back to the event loop.
type searchResultMsg struct {
	generation uint64
	items      []SourceItem
	err        error
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator watches an editor for trigger/query matches and drives the
// suggestion menu: candidate lookup, highlighting, commit and dismissal.
//
// It is not safe for concurrent use. Call Sync after every dispatch to the
// editor and route every Bubble Tea message through Update.
type Orchestrator struct {
	ed      *document.Editor
	opts    Options
	matcher *matcher.Matcher
	log     logging.Logger
	fold    cases.Caser

	ctx        context.Context
	cancel     context.CancelFunc
	unregister func()

	state     State
	textKey   document.NodeKey
	dirty     bool
	navigated bool
	pending   []tea.Cmd

	// escaped suppresses reopening the dismissed match (nil for the
	// combobox trigger list) until it changes.
	escaped   bool
	dismissed *matcher.Match

	// A menu reopened by deleting a mention is not committed on blur
	// until its query changes.
	reopenPending bool
	reopened      bool
	reopenedQuery string
}

// New attaches an orchestrator to ed.
func New(ed *document.Editor, opts Options, log logging.Logger) (*Orchestrator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m, err := matcher.New(opts.matcherConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build matcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		ed:      ed,
		opts:    opts,
		matcher: m,
		log:     logging.OrNop(log),
		fold:    cases.Fold(),
		ctx:     ctx,
		cancel:  cancel,
		dirty:   true,
		state:   State{ActiveIndex: -1},
	}
	if opts.Combobox {
		o.state.Mode = ModeCombobox
	}
	if opts.ComboboxOpen != nil {
		o.SetComboboxOpen(*opts.ComboboxOpen)
	}

	o.unregister = document.MergeRegister(
		ed.RegisterUpdateListener(func(_, _ *document.State) { o.dirty = true }),
		ed.RegisterCommand(document.KeyArrowDownCommand, document.PriorityNormal, o.onArrow(1)),
		ed.RegisterCommand(document.KeyArrowUpCommand, document.PriorityNormal, o.onArrow(-1)),
		ed.RegisterCommand(document.KeyEnterCommand, document.PriorityNormal, o.onSelect),
		ed.RegisterCommand(document.KeyTabCommand, document.PriorityNormal, o.onSelect),
		ed.RegisterCommand(document.KeyEscapeCommand, document.PriorityNormal, o.onEscape),
		ed.RegisterCommand(document.KeyBackspaceCommand, document.PriorityNormal, o.onBackspace),
		ed.RegisterCommand(document.BlurCommand, document.PriorityNormal, o.onBlur),
		ed.RegisterCommand(document.FocusCommand, document.PriorityNormal, o.onFocus),
	)
	return o, nil
}

// Close detaches the orchestrator and cancels in-flight lookups.
func (o *Orchestrator) Close() {
	o.unregister()
	o.cancel()
}

// SetComboboxOpen takes control of combobox visibility and shows or hides
// the panel on the next Sync.
func (o *Orchestrator) SetComboboxOpen(open bool) {
	o.opts.ComboboxOpen = &open
	o.dirty = true
}

// controlled reports whether the host controls combobox visibility, and
// the visibility it asked for.
func (o *Orchestrator) controlled() (open, ok bool) {
	if !o.opts.Combobox || o.opts.ComboboxOpen == nil {
		return false, false
	}
	return *o.opts.ComboboxOpen, true
}

// Triggers returns the matcher's trigger patterns.
func (o *Orchestrator) Triggers() []string {
	return o.matcher.Triggers()
}

// State returns a copy of the current state.
func (o *Orchestrator) State() State {
	s := o.state
	if s.Match != nil {
		m := *s.Match
		s.Match = &m
	}
	s.Candidates = append([]Item(nil), s.Candidates...)
	return s
}

// Sync recomputes the match if the document changed and returns the
// commands that became due.
func (o *Orchestrator) Sync() tea.Cmd {
	if o.dirty {
		o.dirty = false
		o.recompute()
	}
	cmds := o.pending
	o.pending = nil
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

// Update handles the orchestrator's own messages and ignores the rest.
func (o *Orchestrator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.generation != o.state.Generation || !o.state.Loading {
			o.log.Debug("dropping superseded search",
				logging.F("query", msg.query),
				logging.F("generation", msg.generation))
			return nil
		}
		return o.searchCmd(msg)

	case searchResultMsg:
		if msg.generation != o.state.Generation || !o.state.Loading || o.state.Match == nil {
			o.log.Debug("discarding stale search results",
				logging.F("generation", msg.generation),
				logging.F("current", o.state.Generation))
			return nil
		}
		o.state.Loading = false
		if msg.err != nil {
			o.log.Warn("search failed",
				logging.F("trigger", o.state.Match.Trigger),
				logging.F("query", o.state.Match.Query),
				logging.Err(msg.err))
			o.setCandidates(nil)
			return nil
		}
		o.setCandidates(o.candidates(*o.state.Match, msg.items))
	}
	return nil
}

func (o *Orchestrator) searchCmd(msg debounceMsg) tea.Cmd {
	search, ctx := o.opts.Search, o.ctx
	return func() tea.Msg {
		items, err := search(ctx, msg.trigger, msg.query)
		return searchResultMsg{generation: msg.generation, items: items, err: err}
	}
}

func (o *Orchestrator) debounceCmd(m matcher.Match) tea.Cmd {
	msg := debounceMsg{generation: o.state.Generation, trigger: m.Trigger, query: m.Query}
	return tea.Tick(o.opts.searchDelay(), func(time.Time) tea.Msg { return msg })
}

// =============================================================================
// MATCH TRACKING
// =============================================================================

func (o *Orchestrator) recompute() {
	open, controlled := o.controlled()
	if (controlled && !open) || (!controlled && !o.ed.Focused()) {
		o.close()
		return
	}

	var m matcher.Match
	found := false
	s := o.ed.State()
	text, caret, ok := s.Caret()
	if ok {
		m, found = o.matcher.Find(text.Text(), caret)
	}

	switch {
	case o.reopenPending:
		o.reopenPending = false
		o.reopened = found
		o.reopenedQuery = m.Query
	case o.reopened && (!found || m.Query != o.reopenedQuery):
		o.reopened = false
	}

	if o.escaped {
		if (!found && o.dismissed == nil) || (found && o.dismissed != nil && sameMatch(*o.dismissed, m)) {
			return
		}
		o.escaped, o.dismissed = false, nil
	}

	if !found {
		if o.opts.Combobox {
			o.showTriggers()
			return
		}
		o.close()
		return
	}
	o.setMatch(m, text.Key())
}

func sameMatch(a, b matcher.Match) bool {
	return a.Start == b.Start && a.Trigger == b.Trigger && a.Query == b.Query
}

func (o *Orchestrator) setMatch(m matcher.Match, key document.NodeKey) {
	prev := o.state.Match
	o.textKey = key
	o.state.Match = &m
	if prev != nil && sameMatch(*prev, m) && o.state.Open {
		return
	}

	o.state.Generation++
	if o.opts.Search != nil {
		o.state.Loading = true
		o.setCandidates(o.candidates(m, nil))
		o.pending = append(o.pending, o.debounceCmd(m))
	} else {
		o.state.Loading = false
		o.setCandidates(o.candidates(m, o.filter(o.opts.itemsFor(m), m.Query)))
	}
	o.open()
}

// showTriggers lists the available triggers in the combobox.
func (o *Orchestrator) showTriggers() {
	if o.state.Match != nil || o.state.Loading {
		o.state.Generation++
	}
	o.state.Match = nil
	o.state.Loading = false
	o.textKey = ""

	var items []Item
	for _, t := range o.matcher.Triggers() {
		if regexp.QuoteMeta(t) != t {
			continue
		}
		items = append(items, Item{ItemType: ItemTrigger, Trigger: t, Value: t, DisplayValue: t})
	}
	items = append(items, o.additional("")...)
	if !sameItems(o.state.Candidates, items) {
		o.setCandidates(items)
	}
	o.open()
}

func (o *Orchestrator) additional(trigger string) []Item {
	out := make([]Item, 0, len(o.opts.ComboboxAdditionalItems))
	for _, it := range o.opts.ComboboxAdditionalItems {
		it.ItemType = ItemAdditional
		if it.Trigger == "" {
			it.Trigger = trigger
		}
		out = append(out, it)
	}
	return out
}

func (o *Orchestrator) isAdditional(it Item) bool {
	if it.ItemType != ItemAdditional {
		return false
	}
	for _, a := range o.opts.ComboboxAdditionalItems {
		if a.Value == it.Value && a.DisplayValue == it.DisplayValue {
			return true
		}
	}
	return false
}

func sameItems(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ItemType != b[i].ItemType || a[i].ID() != b[i].ID() {
			return false
		}
	}
	return true
}

// =============================================================================
// CANDIDATES
// =============================================================================

// candidates builds the ordered list for m: mentions already in the
// document, then found items, deduplicated by value and truncated to the
// trigger's limit, then the create entry and combobox extras.
func (o *Orchestrator) candidates(m matcher.Match, found []SourceItem) []Item {
	var out []Item
	seen := make(map[string]bool)
	add := func(it Item) {
		if seen[it.Value] {
			return
		}
		seen[it.Value] = true
		out = append(out, it)
	}

	if o.opts.ShowCurrentMentionsAsSuggestions {
		for _, n := range mention.Collect(o.ed.State(), m.Trigger) {
			if o.contains(n.Value(), m.Query) {
				add(valueItem(m.Trigger, SourceItem{Value: n.Value(), Data: n.Data()}))
			}
		}
	}
	for _, s := range found {
		add(valueItem(m.Trigger, s))
	}

	if limit := o.opts.limitFor(m); limit >= 0 && len(out) > limit {
		out = out[:limit]
	}

	if c := o.opts.creatableFor(m); c.Enabled && m.Query != "" && (o.opts.Combobox || !hasValue(out, m.Query)) {
		out = append(out, Item{
			ItemType:     ItemAdditional,
			Trigger:      m.Trigger,
			Value:        m.Query,
			DisplayValue: c.LabelFor(m.Query),
		})
	}
	if o.opts.Combobox {
		out = append(out, o.additional(m.Trigger)...)
	}
	return out
}

// hasValue reports whether a listed item has exactly value. Items cut off
// by the limit do not count.
func hasValue(items []Item, value string) bool {
	for _, it := range items {
		if it.Value == value {
			return true
		}
	}
	return false
}

func (o *Orchestrator) filter(items []SourceItem, query string) []SourceItem {
	var out []SourceItem
	for _, it := range items {
		if o.contains(it.Value, query) {
			out = append(out, it)
		}
	}
	return out
}

func (o *Orchestrator) contains(s, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(o.fold.String(s), o.fold.String(query))
}

func (o *Orchestrator) setCandidates(items []Item) {
	o.state.Candidates = items
	o.navigated = false
	if len(items) == 0 {
		o.state.ActiveIndex = -1
	} else {
		o.state.ActiveIndex = 0
	}
	o.focusChanged()
}

// =============================================================================
// NAVIGATION
// =============================================================================

// Next highlights the following candidate, wrapping at the end.
func (o *Orchestrator) Next() { o.move(1) }

// Prev highlights the preceding candidate, wrapping at the start.
func (o *Orchestrator) Prev() { o.move(-1) }

func (o *Orchestrator) move(delta int) bool {
	n := len(o.state.Candidates)
	if !o.state.Open || n == 0 {
		return false
	}
	o.state.ActiveIndex = ((o.state.ActiveIndex+delta)%n + n) % n
	o.navigated = true
	o.focusChanged()
	return true
}

func (o *Orchestrator) focusChanged() {
	if o.state.Mode != ModeCombobox || o.opts.OnComboboxFocusChange == nil {
		return
	}
	if it, ok := o.state.Active(); ok {
		o.opts.OnComboboxFocusChange(&it)
		return
	}
	o.opts.OnComboboxFocusChange(nil)
}

// =============================================================================
// OPEN / CLOSE
// =============================================================================

func (o *Orchestrator) open() {
	if o.state.Open {
		return
	}
	o.state.Open = true
	if o.state.Mode == ModeCombobox {
		call(o.opts.OnComboboxOpen)
	} else {
		call(o.opts.OnMenuOpen)
	}
}

func (o *Orchestrator) close() {
	if o.state.Match != nil || o.state.Loading {
		o.state.Generation++
	}
	wasOpen := o.state.Open
	o.state.Open = false
	o.state.Match = nil
	o.state.Loading = false
	o.state.Candidates = nil
	o.state.ActiveIndex = -1
	o.textKey = ""
	o.navigated = false
	if !wasOpen {
		return
	}
	if o.state.Mode == ModeCombobox {
		call(o.opts.OnComboboxClose)
	} else {
		call(o.opts.OnMenuClose)
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// Dismiss closes the menu without touching the document. The dismissed
// match stays closed until its query changes. It does nothing while the
// host controls combobox visibility.
func (o *Orchestrator) Dismiss() {
	if _, controlled := o.controlled(); controlled || !o.state.Open {
		return
	}
	o.escaped = true
	o.dismissed = nil
	if o.state.Match != nil {
		m := *o.state.Match
		o.dismissed = &m
	}
	o.close()
}

// =============================================================================
// COMMIT
// =============================================================================

// Commit applies the candidate at index and reports whether the document
// changed. Stale commits, where the matched text is gone, are dropped.
func (o *Orchestrator) Commit(index int) bool {
	committed := false
	if err := o.ed.Update(func(tx *document.Tx) error {
		committed = o.commitIn(tx, index)
		return nil
	}); err != nil {
		return false
	}
	return committed
}

// commitIn runs commit and fails tx when the replacement could not be
// applied, so the editor discards the partial edit.
func (o *Orchestrator) commitIn(tx *document.Tx, index int) bool {
	ok, err := o.commit(tx, index)
	if err != nil {
		o.log.Warn("failed to insert mention", logging.Err(err))
		o.close()
		tx.Fail(err)
		return false
	}
	return ok
}

// commit applies the candidate inside tx. A returned error discards the
// transaction.
func (o *Orchestrator) commit(tx *document.Tx, index int) (bool, error) {
	if !o.state.Open || index < 0 || index >= len(o.state.Candidates) {
		return false, nil
	}
	item := o.state.Candidates[index]

	switch {
	case item.ItemType == ItemTrigger:
		tx.InsertText(item.Value)
		o.selected(item)
		return true, nil
	case o.isAdditional(item):
		o.selected(item)
		return false, nil
	}

	if o.state.Match == nil {
		return false, nil
	}
	m := *o.state.Match
	if !o.live(tx, m) {
		o.log.Debug("discarding stale commit",
			logging.F("trigger", m.Trigger),
			logging.F("query", m.Query))
		o.close()
		return false, nil
	}

	n, err := tx.ReplaceTextRange(o.textKey, m.Start, m.End, mention.New(m.Trigger, item.Value, item.Data))
	if err != nil {
		return false, err
	}
	tx.SelectNext(n.Key())
	o.close()
	o.selected(item)
	return true, nil
}

// live reports whether the matched text is still where it was found.
func (o *Orchestrator) live(tx *document.Tx, m matcher.Match) bool {
	t := tx.Text(o.textKey)
	if t == nil || !tx.IsAttached(o.textKey) {
		return false
	}
	runes := []rune(t.Text())
	if m.End > len(runes) || m.Start < 0 || m.Start > m.End {
		return false
	}
	return string(runes[m.Start:m.End]) == m.Text
}

func (o *Orchestrator) selected(item Item) {
	if o.state.Mode == ModeCombobox {
		if o.opts.OnComboboxItemSelect != nil {
			o.opts.OnComboboxItemSelect(item)
		}
		return
	}
	if o.opts.OnMenuItemSelect != nil {
		o.opts.OnMenuItemSelect(item)
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

func (o *Orchestrator) onArrow(delta int) document.Handler {
	return func(_ *document.Tx, _ any) bool {
		return o.move(delta)
	}
}

func (o *Orchestrator) onSelect(tx *document.Tx, _ any) bool {
	if !o.state.Open || o.state.ActiveIndex < 0 {
		return false
	}
	if o.state.Match == nil && !o.navigated {
		// The combobox trigger list only takes Enter once the user has
		// moved into it.
		return false
	}
	o.commitIn(tx, o.state.ActiveIndex)
	return true
}

func (o *Orchestrator) onEscape(_ *document.Tx, _ any) bool {
	if _, controlled := o.controlled(); controlled || !o.state.Open {
		return false
	}
	o.Dismiss()
	return true
}

func (o *Orchestrator) onBlur(tx *document.Tx, _ any) bool {
	if o.state.Open && o.state.Mode == ModeMenu && o.opts.InsertOnBlur && !o.reopened && o.state.ActiveIndex >= 0 {
		o.commitIn(tx, o.state.ActiveIndex)
	}
	if _, controlled := o.controlled(); !controlled {
		o.close()
	}
	return false
}

func (o *Orchestrator) onFocus(_ *document.Tx, _ any) bool {
	o.dirty = true
	return false
}

// onBackspace turns a mention directly before the caret back into text so
// the deletion that follows leaves trigger+value minus one character and
// the menu reopens on it.
func (o *Orchestrator) onBackspace(tx *document.Tx, _ any) bool {
	if !o.opts.ShowMentionsOnDelete {
		return false
	}
	rs, ok := tx.Selection().(*document.RangeSelection)
	if !ok || !rs.IsCollapsed() {
		return false
	}

	var key document.NodeKey
	switch p := rs.Anchor; p.Type {
	case document.PointText:
		if p.Offset != 0 {
			return false
		}
		t := navigate.Previous(tx, p.Key)
		if t.Kind != navigate.Atomic {
			return false
		}
		key = t.Key
	case document.PointElement:
		e := tx.Element(p.Key)
		if e == nil || p.Offset == 0 || p.Offset > e.ChildCount() {
			return false
		}
		key = e.Children()[p.Offset-1]
	}

	m, ok := mention.Get(tx, key)
	if !ok {
		return false
	}
	text := document.NewText(m.TextContent())
	if _, err := tx.Replace(key, text); err != nil {
		o.log.Warn("failed to reopen mention", logging.Err(err))
		return false
	}
	tx.SelectPoint(document.TextPoint(text.Key(), text.Len()))
	o.reopenPending = true
	return false
}
