// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/menu"
	"github.com/jeranaias/mentions-tui/internal/storage"
	"github.com/jeranaias/mentions-tui/internal/theme"
	"github.com/jeranaias/mentions-tui/internal/ui/components"
	"github.com/jeranaias/mentions-tui/internal/ui/styles"
)

// ErrNoStore is reported when saving without a document store.
var ErrNoStore = errors.New("no document store configured")

// =============================================================================
// EDITOR MODEL
// =============================================================================

// Config wires a Model to its collaborators.
type Config struct {
	// Editor must have rich text and mention behaviour registered.
	Editor *document.Editor

	// Menu is the orchestrator attached to Editor.
	Menu *menu.Orchestrator

	// Table styles mentions; nil renders them unstyled.
	Table *theme.Table

	// Theme defaults to styles.NewTheme().
	Theme *styles.Theme

	// Store persists documents; nil disables saving.
	Store *storage.Store

	// Document is the stored document being edited, if any. Its state must
	// already be loaded into Editor.
	Document *storage.StoredDocument

	// Title names new documents. Empty derives it from the first line.
	Title string

	// Directory marks the header when suggestions come from the directory.
	Directory bool

	Logger logging.Logger
}

// Model is the Bubble Tea model of the mention editor.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	width  int
	height int

	editor   *document.Editor
	menu     *menu.Orchestrator
	mentions *components.MentionView
	popup    *components.MenuPopup
	header   *components.Header
	status   *components.StatusBar

	store     *storage.Store
	docID     string
	title     string
	createdAt time.Time
	saved     *document.State

	showHelp bool
	quitting bool
	log      logging.Logger
}

// New creates the editor model.
func New(cfg Config) (Model, error) {
	if cfg.Editor == nil || cfg.Menu == nil {
		return Model{}, errors.New("editor and menu are required")
	}
	th := cfg.Theme
	if th == nil {
		th = styles.NewTheme()
	}

	m := Model{
		theme:    th,
		keys:     DefaultKeyMap(),
		width:    80,
		height:   24,
		editor:   cfg.Editor,
		menu:     cfg.Menu,
		mentions: components.NewMentionView(th, cfg.Table),
		popup:    components.NewMenuPopup(th),
		header:   components.NewHeader(th),
		status:   components.NewStatusBar(th),
		store:    cfg.Store,
		title:    cfg.Title,
		saved:    cfg.Editor.State(),
		log:      logging.OrNop(cfg.Logger),
	}
	if doc := cfg.Document; doc != nil {
		m.docID = doc.ID
		m.title = doc.Title
		m.createdAt = doc.CreatedAt
	}

	m.header.SetTriggers(cfg.Menu.Triggers())
	m.header.Directory = cfg.Directory
	m.refresh()
	return m, nil
}

// Init starts the suggestion state for the initial document.
func (m Model) Init() tea.Cmd {
	return m.sync()
}

// Editor returns the underlying document editor.
func (m Model) Editor() *document.Editor {
	return m.editor
}

// DocumentID returns the ID of the saved document, or "".
func (m Model) DocumentID() string {
	return m.docID
}

// Dirty reports whether the document changed since it was loaded or saved.
func (m Model) Dirty() bool {
	return m.editor.State() != m.saved
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.FocusMsg:
		m.editor.Dispatch(document.FocusCommand, nil)
		return m, m.sync()

	case tea.BlurMsg:
		m.editor.Dispatch(document.BlurCommand, nil)
		return m, m.sync()

	case SavedMsg:
		return m.handleSaved(msg)

	case SeededMsg:
		if msg.Err != nil {
			m.status.SetMessage(components.StatusError, "reseed failed: "+msg.Err.Error())
		} else {
			m.status.SetMessage(components.StatusInfo, "directory reloaded ("+itoa(msg.Count)+" entries)")
		}
		return m, nil

	case NoticeMsg:
		m.status.SetMessage(components.StatusInfo, msg.Text)
		return m, nil
	}

	// Debounce and lookup results go to the orchestrator; spinner ticks go
	// to the popup.
	cmd := m.menu.Update(msg)
	popupCmd := m.popup.Update(msg)
	return m, tea.Batch(cmd, popupCmd, m.sync())
}

// View renders the editor.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.header.SetWidth(msg.Width)
	m.status.SetWidth(msg.Width)

	popupWidth := msg.Width / 2
	if popupWidth > 48 {
		popupWidth = 48
	}
	m.popup.SetWidth(popupWidth)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.menu.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Save):
		return m, m.save()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.ToggleFocus):
		if m.editor.Focused() {
			m.editor.Dispatch(document.BlurCommand, nil)
		} else {
			m.editor.Dispatch(document.FocusCommand, nil)
		}
		return m, m.sync()
	}

	if m.showHelp {
		if msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}

	if !m.editor.Focused() {
		// Typing into a blurred editor focuses it first.
		m.editor.Dispatch(document.FocusCommand, nil)
	}
	dispatchKey(m.editor, msg)
	m.status.ClearMessage()
	return m, m.sync()
}

func (m Model) handleSaved(msg SavedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Error("save failed", logging.Err(msg.Err))
		m.status.SetMessage(components.StatusError, msg.Err.Error())
		return m, nil
	}
	m.docID = msg.ID
	m.saved = msg.State
	if m.createdAt.IsZero() {
		m.createdAt = time.Now()
	}
	m.log.Info("document saved", logging.F("id", msg.ID))
	m.status.SetMessage(components.StatusSuccess, "saved "+msg.ID)
	m.refresh()
	return m, nil
}

// =============================================================================
// KEY TRANSLATION
// =============================================================================

// dispatchKey translates a key press into an editor command. It reports
// whether any handler claimed it.
func dispatchKey(ed *document.Editor, msg tea.KeyMsg) bool {
	ev := document.KeyEvent{Alt: msg.Alt}

	switch msg.Type {
	case tea.KeyRunes:
		if msg.Paste {
			return pasteText(ed, string(msg.Runes))
		}
		return ed.Dispatch(document.InsertTextCommand, string(msg.Runes))
	case tea.KeySpace:
		return ed.Dispatch(document.InsertTextCommand, " ")
	case tea.KeyEnter:
		return ed.Dispatch(document.KeyEnterCommand, ev)
	case tea.KeyTab:
		return ed.Dispatch(document.KeyTabCommand, ev)
	case tea.KeyEsc:
		return ed.Dispatch(document.KeyEscapeCommand, ev)
	case tea.KeyBackspace:
		return ed.Dispatch(document.KeyBackspaceCommand, ev)
	case tea.KeyDelete:
		return ed.Dispatch(document.KeyDeleteCommand, ev)
	case tea.KeyLeft:
		return ed.Dispatch(document.KeyArrowLeftCommand, ev)
	case tea.KeyShiftLeft:
		ev.Shift = true
		return ed.Dispatch(document.KeyArrowLeftCommand, ev)
	case tea.KeyRight:
		return ed.Dispatch(document.KeyArrowRightCommand, ev)
	case tea.KeyShiftRight:
		ev.Shift = true
		return ed.Dispatch(document.KeyArrowRightCommand, ev)
	case tea.KeyUp:
		return ed.Dispatch(document.KeyArrowUpCommand, ev)
	case tea.KeyDown:
		return ed.Dispatch(document.KeyArrowDownCommand, ev)
	}
	return false
}

// pasteText inserts pasted text, turning line breaks into paragraphs.
func pasteText(ed *document.Editor, text string) bool {
	handled := false
	for i, line := range splitLines(text) {
		if i > 0 && ed.Dispatch(document.InsertParagraphCommand, nil) {
			handled = true
		}
		if line != "" && ed.Dispatch(document.InsertTextCommand, line) {
			handled = true
		}
	}
	return handled
}

// =============================================================================
// STATE SYNC
// =============================================================================

// sync lets the orchestrator react to the latest editor state and pushes the
// result into the popup and status bar.
func (m *Model) sync() tea.Cmd {
	cmd := m.menu.Sync()
	popupCmd := m.popup.SetState(m.menu.State())
	m.refresh()
	return tea.Batch(cmd, popupCmd)
}

// refresh recomputes the status bar from the editor state.
func (m *Model) refresh() {
	var count int
	m.editor.Read(func(s *document.State) {
		count = len(mention.Collect(s, ""))
	})
	m.status.Mentions = count
	m.status.Dirty = m.Dirty()
	m.status.Focused = m.editor.Focused()
	m.status.Mode = m.menu.State().Mode.String()
	if m.title != "" {
		m.status.Title = m.title
	}
}

// save snapshots the current state and writes it in the background.
func (m Model) save() tea.Cmd {
	if m.store == nil {
		return func() tea.Msg { return SavedMsg{Err: ErrNoStore} }
	}
	state := m.editor.State()
	doc, err := storage.FromState(state, m.title)
	if err != nil {
		return func() tea.Msg { return SavedMsg{Err: err} }
	}
	doc.ID = m.docID
	doc.CreatedAt = m.createdAt

	store := m.store
	return func() tea.Msg {
		id, err := store.Save(doc)
		return SavedMsg{ID: id, State: state, Err: err}
	}
}
