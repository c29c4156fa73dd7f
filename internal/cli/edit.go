// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jeranaias/mentions-tui/internal/config"
	"github.com/jeranaias/mentions-tui/internal/directory"
	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/menu"
	"github.com/jeranaias/mentions-tui/internal/storage"
	"github.com/jeranaias/mentions-tui/internal/ui/editor"
)

// =============================================================================
// EDIT COMMAND
// =============================================================================

type editFlags struct {
	title   string
	noWatch bool
}

func (a *App) editCommand() *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Open the mention editor",
		Long: `Open the interactive editor, on a new document or on a saved one.

Type a trigger (@, # or a custom one like due:) to open the suggestion
menu. Up/down move, enter or tab select, esc closes it. Ctrl+S saves the
document, F1 shows all keys.

Examples:
  mentions edit
  mentions edit --title "Standup notes"
  mentions edit doc_4f2a9c01d7e3b865`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := RequiresTTY("edit"); err != nil {
				return err
			}
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return a.runEdit(cmd.Context(), id, f)
		},
	}
	cmd.Flags().StringVar(&f.title, "title", "", "title for a new document")
	cmd.Flags().BoolVar(&f.noWatch, "no-watch", false, "do not reseed the directory when seed files change")
	return cmd
}

// editSession holds everything the editor program needs, so that it can
// be built and torn down without a terminal.
type editSession struct {
	model   editor.Model
	menu    *menu.Orchestrator
	dir     *directory.Directory
	seeds   []string
	watch   bool
	cleanup []func()
}

func (s *editSession) Close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
	s.cleanup = nil
}

// newEditSession builds the editor model for document id ("" for a new
// document).
func (a *App) newEditSession(ctx context.Context, id string, f editFlags) (*editSession, error) {
	s := &editSession{}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	ed, err := a.newEditor()
	if err != nil {
		return nil, err
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	var doc *storage.StoredDocument
	if id != "" {
		doc, err = store.Load(id)
		if err != nil {
			return nil, NewCommandError("edit", "open", id, err)
		}
		state, err := doc.Restore(ed)
		if err != nil {
			return nil, NewCommandError("edit", "open", id, err)
		}
		ed.SetState(state)
	}

	var search menu.SearchFunc
	if a.cfg.Directory.Path != "" {
		dir, err := a.openDirectory(a.cfg.Directory.Path)
		if err != nil {
			return nil, err
		}
		s.dir = dir
		s.cleanup = append(s.cleanup, func() { _ = dir.Close() })

		s.seeds = a.cfg.Directory.Seeds
		s.watch = a.cfg.Directory.Watch && !f.noWatch
		if len(s.seeds) > 0 {
			if n, err := dir.Seed(ctx, s.seeds...); err != nil {
				a.log.Warn("directory seed failed", logging.Err(err))
			} else {
				a.log.Info("directory seeded", logging.F("entries", n))
			}
		}

		search = dir.Search
		if a.cfg.Directory.RateLimit > 0 {
			search = menu.WithRateLimit(search, rate.Limit(a.cfg.Directory.RateLimit), a.cfg.Directory.RateBurst)
		}
	}

	orch, err := menu.New(ed, a.cfg.MenuOptions(search), a.log)
	if err != nil {
		return nil, NewCommandError("edit", "start", "invalid mention settings", err)
	}
	s.menu = orch
	s.cleanup = append(s.cleanup, orch.Close)

	table, err := a.cfg.ThemeTable()
	if err != nil {
		return nil, NewCommandError("edit", "start", "invalid theme", err)
	}

	s.model, err = editor.New(editor.Config{
		Editor:    ed,
		Menu:      orch,
		Table:     table,
		Store:     store,
		Document:  doc,
		Title:     f.title,
		Directory: s.dir != nil,
		Logger:    a.log,
	})
	if err != nil {
		return nil, err
	}
	ok = true
	return s, nil
}

// runEdit runs the editor program until the user quits.
func (a *App) runEdit(ctx context.Context, id string, f editFlags) error {
	// The program owns the screen; logs go to the configured file only.
	if a.cfg.Logging.File == "" {
		a.log = logging.NewNopLogger()
	}

	s, err := a.newEditSession(ctx, id, f)
	if err != nil {
		return err
	}
	defer s.Close()

	p := tea.NewProgram(s.model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	if s.watch && len(s.seeds) > 0 {
		w, err := directory.NewWatcher(s.dir, s.seeds, 0, func(path string, count int, err error) {
			p.Send(editor.SeededMsg{Path: path, Count: count, Err: err})
		})
		if err != nil {
			a.log.Warn("seed watcher unavailable", logging.Err(err))
		} else {
			defer w.Close()
		}
	}

	if a.configPath != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			err := config.Watch(watchCtx, a.configPath, a.log, func(*config.Config) {
				p.Send(editor.NoticeMsg{Text: "config changed; restart to apply"})
			})
			if err != nil && watchCtx.Err() == nil {
				a.log.Warn("config watcher stopped", logging.Err(err))
			}
		}()
	}

	start := time.Now()
	final, err := p.Run()
	if err != nil {
		return NewCommandError("edit", "run", "editor failed", err)
	}
	if m, ok := final.(editor.Model); ok && m.Dirty() {
		a.log.Warn("quit with unsaved changes", logging.F("document", m.DocumentID()))
	}
	a.log.Debug("editor closed", logging.F("duration", time.Since(start).String()))
	return nil
}
