// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jeranaias/mentions-tui/internal/logging"
)

var (
	// ErrDuplicateNodeType is returned when a type tag is registered twice.
	ErrDuplicateNodeType = errors.New("node type already registered")

	// ErrUnknownNodeType is returned when content names an unregistered type.
	ErrUnknownNodeType = errors.New("unknown node type")
)

// NodeType registers a leaf node type with an editor.
type NodeType struct {
	// Type is the serialized type tag.
	Type string

	// ImportJSON rebuilds a detached node from its serialized record.
	ImportJSON func(data []byte) (Node, error)

	// DOM converters recognize the type's HTML form.
	DOM []DOMConverter
}

// Replacement swaps nodes of one type for another whenever they are created
// or imported, e.g. to upgrade base nodes to a custom rendering variant.
type Replacement struct {
	Replace string
	With    func(n Node) Node
}

// Config configures an Editor.
type Config struct {
	Nodes        []NodeType
	Replacements []Replacement
	Logger       logging.Logger
}

// Command names an input event routed through Dispatch.
type Command string

const (
	InsertTextCommand      Command = "INSERT_TEXT"
	InsertParagraphCommand Command = "INSERT_PARAGRAPH"
	KeyArrowLeftCommand    Command = "KEY_ARROW_LEFT"
	KeyArrowRightCommand   Command = "KEY_ARROW_RIGHT"
	KeyArrowUpCommand      Command = "KEY_ARROW_UP"
	KeyArrowDownCommand    Command = "KEY_ARROW_DOWN"
	KeyEnterCommand        Command = "KEY_ENTER"
	KeyTabCommand          Command = "KEY_TAB"
	KeyEscapeCommand       Command = "KEY_ESCAPE"
	KeyBackspaceCommand    Command = "KEY_BACKSPACE"
	KeyDeleteCommand       Command = "KEY_DELETE"
	ClickCommand           Command = "CLICK"
	FocusCommand           Command = "FOCUS"
	BlurCommand            Command = "BLUR"
	SelectionChangeCommand Command = "SELECTION_CHANGE"
)

// Priority orders command handlers; higher runs first.
type Priority int

const (
	PriorityEditor Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// KeyEvent is the payload of key commands.
type KeyEvent struct {
	Shift bool
	Alt   bool
}

// ClickEvent is the payload of ClickCommand.
type ClickEvent struct {
	Key    NodeKey
	Offset int
	Shift  bool
}

// Handler handles a command inside a transaction. Returning true stops
// lower-priority handlers from running.
type Handler func(tx *Tx, payload any) bool

// UpdateListener observes committed states.
type UpdateListener func(prev, next *State)

type handlerEntry struct {
	id       int
	priority Priority
	fn       Handler
}

// Editor owns a document and routes input to registered handlers.
type Editor struct {
	state        *State
	tx           *Tx
	types        map[string]NodeType
	replacements map[string]func(Node) Node
	handlers     map[Command][]handlerEntry
	listeners    map[int]UpdateListener
	nextID       int
	focused      bool
	log          logging.Logger
}

// NewEditor creates an editor with an empty document.
func NewEditor(cfg Config) (*Editor, error) {
	e := &Editor{
		state:        NewState(),
		types:        make(map[string]NodeType),
		replacements: make(map[string]func(Node) Node),
		handlers:     make(map[Command][]handlerEntry),
		listeners:    make(map[int]UpdateListener),
		focused:      true,
		log:          logging.OrNop(cfg.Logger),
	}
	for _, nt := range cfg.Nodes {
		if err := e.RegisterNodeType(nt); err != nil {
			return nil, err
		}
	}
	for _, r := range cfg.Replacements {
		if _, ok := e.types[r.Replace]; !ok && !isBuiltin(r.Replace) {
			return nil, fmt.Errorf("%w: replacement for %q", ErrUnknownNodeType, r.Replace)
		}
		e.replacements[r.Replace] = r.With
	}
	return e, nil
}

// RegisterNodeType adds a leaf node type.
func (e *Editor) RegisterNodeType(nt NodeType) error {
	if nt.Type == "" {
		return fmt.Errorf("%w: empty type tag", ErrUnknownNodeType)
	}
	if _, ok := e.types[nt.Type]; ok || isBuiltin(nt.Type) {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeType, nt.Type)
	}
	e.types[nt.Type] = nt
	return nil
}

// HasNodeType reports whether a type tag is known to the editor.
func (e *Editor) HasNodeType(typ string) bool {
	_, ok := e.types[typ]
	return ok || isBuiltin(typ)
}

func isBuiltin(typ string) bool {
	switch typ {
	case TypeRoot, TypeParagraph, TypeText, TypeZeroWidth:
		return true
	}
	return false
}

func (e *Editor) applyReplacement(n Node) Node {
	with, ok := e.replacements[n.Type()]
	if !ok {
		return n
	}
	r := with(n)
	if r == nil {
		return n
	}
	return r
}

// Logger returns the editor's logger.
func (e *Editor) Logger() logging.Logger {
	return e.log
}

// State returns the current committed state.
func (e *Editor) State() *State {
	return e.state
}

// Focused reports whether the editor currently has input focus.
func (e *Editor) Focused() bool {
	return e.focused
}

// Read runs fn against the current state, or against the open transaction
// when called from inside an update.
func (e *Editor) Read(fn func(s *State)) {
	if e.tx != nil {
		fn(e.tx.State)
		return
	}
	fn(e.state)
}

// Update runs fn in a transaction and commits it if fn returns nil and
// nothing called Fail. Nested calls join the outer transaction.
func (e *Editor) Update(fn func(tx *Tx) error) error {
	if e.tx != nil {
		return fn(e.tx)
	}

	tx := newTx(e, e.state)
	e.tx = tx
	err := fn(tx)
	e.tx = nil
	if err == nil {
		err = tx.err
	}
	if err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}

	prev := e.state
	e.state = tx.finish()
	e.notify(prev, e.state)
	return nil
}

// Build runs fn against a fresh empty document and returns the result
// without touching the editor's own state. Importers use it to assemble
// documents with the editor's node types and replacements.
func (e *Editor) Build(fn func(tx *Tx) error) (*State, error) {
	tx := newTx(e, NewState())
	if err := fn(tx); err != nil {
		return nil, err
	}
	if tx.err != nil {
		return nil, tx.err
	}
	return tx.finish(), nil
}

// SetState replaces the document, e.g. after loading a saved one.
func (e *Editor) SetState(s *State) {
	prev := e.state
	next := s.clone()
	next.version = prev.version + 1
	e.state = next
	e.notify(prev, next)
}

func (e *Editor) notify(prev, next *State) {
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := e.listeners[id]; ok {
			fn(prev, next)
		}
	}
}

// RegisterUpdateListener subscribes fn to committed updates and returns a
// function that unsubscribes it.
func (e *Editor) RegisterUpdateListener(fn UpdateListener) func() {
	e.nextID++
	id := e.nextID
	e.listeners[id] = fn
	return func() { delete(e.listeners, id) }
}

// RegisterCommand subscribes a handler and returns a function that removes
// it. Handlers of equal priority run in registration order.
func (e *Editor) RegisterCommand(cmd Command, p Priority, fn Handler) func() {
	e.nextID++
	id := e.nextID
	list := append(e.handlers[cmd], handlerEntry{id: id, priority: p, fn: fn})
	sort.SliceStable(list, func(i, j int) bool { return list[i].priority > list[j].priority })
	e.handlers[cmd] = list

	return func() {
		list := e.handlers[cmd]
		for i, h := range list {
			if h.id == id {
				e.handlers[cmd] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Dispatch routes a command through its handlers inside one transaction and
// reports whether any handler claimed it.
func (e *Editor) Dispatch(cmd Command, payload any) bool {
	switch cmd {
	case FocusCommand:
		e.focused = true
	case BlurCommand:
		e.focused = false
	}

	handled := false
	err := e.Update(func(tx *Tx) error {
		// Copy so handlers may unregister themselves.
		list := append([]handlerEntry(nil), e.handlers[cmd]...)
		for _, h := range list {
			if h.fn(tx, payload) {
				handled = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		e.log.Error("command failed", logging.F("command", string(cmd)), logging.Err(err))
	}
	return handled
}

// MergeRegister combines unregister functions into one.
func MergeRegister(fns ...func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}
