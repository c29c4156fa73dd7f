// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/mentions-tui/internal/logging"
)

// =============================================================================
// SEED WATCHER
// =============================================================================

// DefaultDebounce is used when NewWatcher is given no debounce.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reseeds a directory when one of its seed files changes.
type Watcher struct {
	dir      *Directory
	watcher  *fsnotify.Watcher
	debounce time.Duration
	seeds    map[string]bool
	onSeed   func(path string, count int, err error)

	mu      sync.Mutex
	pending map[string]time.Time // seed path -> last change time
	ctx     context.Context
	cancel  context.CancelFunc
	done    sync.WaitGroup
}

// NewWatcher watches seeds for changes. onSeed, when set, observes every
// reseed attempt.
func NewWatcher(dir *Directory, seeds []string, debounce time.Duration, onSeed func(path string, count int, err error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:      dir,
		watcher:  fw,
		debounce: debounce,
		seeds:    make(map[string]bool, len(seeds)),
		onSeed:   onSeed,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}

	// Watch parent directories so that editors which save by renaming
	// are still seen.
	dirs := make(map[string]bool)
	for _, s := range seeds {
		path := filepath.Clean(s)
		w.seeds[path] = true
		dirs[filepath.Dir(path)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			cancel()
			fw.Close()
			return nil, err
		}
	}

	w.done.Add(2)
	go w.processEvents()
	go w.processPending()
	return w, nil
}

// processEvents records changes to watched seed files.
func (w *Watcher) processEvents() {
	defer w.done.Done()
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			if !w.seeds[path] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.mu.Lock()
				w.pending[path] = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.dir.log.Warn("seed watcher error", logging.Err(err))
		}
	}
}

// processPending reseeds files whose last change is older than the
// debounce window.
func (w *Watcher) processPending() {
	defer w.done.Done()
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var toProcess []string
			for path, changed := range w.pending {
				if now.Sub(changed) >= w.debounce {
					toProcess = append(toProcess, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range toProcess {
				n, err := w.dir.Seed(w.ctx, path)
				if err != nil {
					w.dir.log.Warn("reseed failed", logging.F("path", path), logging.Err(err))
				}
				if w.onSeed != nil {
					w.onSeed(path, n, err)
				}
			}
		}
	}
}

// Close stops watching and waits for the worker goroutines.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.done.Wait()
	return err
}
