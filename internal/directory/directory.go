// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package directory is a SQLite-backed store of mention candidates. Its
// Search method is a menu.SearchFunc, so a directory can back the async
// lookup of the suggestion menu.
package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/menu"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseError = errors.New("database error")
	ErrInvalidEntry  = errors.New("invalid entry")
	ErrClosed        = errors.New("directory closed")
)

// =============================================================================
// DIRECTORY
// =============================================================================

// Entry is one stored candidate.
type Entry struct {
	Trigger string       `json:"trigger" yaml:"trigger" toml:"trigger"`
	Value   string       `json:"value" yaml:"value" toml:"value"`
	Data    mention.Data `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
	Source  string       `json:"source,omitempty" yaml:"-" toml:"-"`
}

// Config holds directory configuration.
type Config struct {
	// DatabasePath is where to store the SQLite database. ":memory:" keeps
	// it in memory.
	DatabasePath string

	// MaxResults caps a single search. Zero means DefaultMaxResults.
	MaxResults int

	Logger logging.Logger
}

// DefaultMaxResults bounds a search when the menu applies its own limit.
const DefaultMaxResults = 50

// Directory stores candidates per trigger.
type Directory struct {
	db     *sql.DB
	config Config
	log    logging.Logger

	mu       sync.RWMutex
	closed   bool
	lastSeed time.Time
}

// Open opens or creates a directory.
func Open(config Config) (*Directory, error) {
	if config.DatabasePath == "" {
		return nil, errors.New("database path cannot be empty")
	}
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultMaxResults
	}

	if config.DatabasePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.DatabasePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// This also keeps a :memory: database on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	d := &Directory{
		db:     db,
		config: config,
		log:    logging.OrNop(config.Logger).With(logging.F("component", "directory")),
	}
	if err := d.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := d.loadStats(); err != nil {
		d.log.Debug("failed to load directory stats", logging.Err(err))
	}
	return d, nil
}

func (d *Directory) initSchema() error {
	if _, err := d.db.Exec(Schema); err != nil {
		return err
	}
	_, err := d.db.Exec(InitMetadata)
	return err
}

func (d *Directory) loadStats() error {
	var lastSeed int64
	if err := d.db.QueryRow("SELECT value FROM metadata WHERE key = 'last_seed'").Scan(&lastSeed); err != nil {
		return err
	}
	if lastSeed > 0 {
		d.lastSeed = time.Unix(lastSeed, 0)
	}
	return nil
}

// Close closes the database.
func (d *Directory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// Add inserts or updates entries.
func (d *Directory) Add(ctx context.Context, entries ...Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []Entry) error {
	now := time.Now().Unix()
	for _, e := range entries {
		if e.Trigger == "" || e.Value == "" {
			return fmt.Errorf("%w: trigger and value are required", ErrInvalidEntry)
		}
		if err := mention.ValidateData(e.Data); err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidEntry, e.Trigger, e.Value, err)
		}

		var data sql.NullString
		if len(e.Data) > 0 {
			raw, err := json.Marshal(e.Data)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
			}
			data = sql.NullString{String: string(raw), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries (trigger_key, value, data, source, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(trigger_key, value) DO UPDATE SET data = excluded.data, source = excluded.source
		`, e.Trigger, e.Value, data, e.Source, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}
	return nil
}

// Remove deletes an entry and reports whether it existed.
func (d *Directory) Remove(ctx context.Context, trigger, value string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false, ErrClosed
	}

	res, err := d.db.ExecContext(ctx, "DELETE FROM entries WHERE trigger_key = ? AND value = ?", trigger, value)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// =============================================================================
// READS
// =============================================================================

// Search returns the entries for trigger whose value contains query,
// ignoring case. Values starting with the query come first. It satisfies
// menu.SearchFunc.
func (d *Directory) Search(ctx context.Context, trigger, query string) ([]menu.SourceItem, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}

	pattern := escapeLike(query)
	rows, err := d.db.QueryContext(ctx, `
		SELECT value, data FROM entries
		WHERE trigger_key = ? AND value LIKE ? ESCAPE '\'
		ORDER BY CASE WHEN value LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, value COLLATE NOCASE, id
		LIMIT ?
	`, trigger, "%"+pattern+"%", pattern+"%", d.config.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var items []menu.SourceItem
	for rows.Next() {
		var value string
		var data sql.NullString
		if err := rows.Scan(&value, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		item := menu.SourceItem{Value: value}
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &item.Data); err != nil {
				d.log.Warn("dropping unreadable entry data",
					logging.F("trigger", trigger), logging.F("value", value), logging.Err(err))
				item.Data = nil
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	d.log.Debug("directory search",
		logging.F("trigger", trigger), logging.F("query", query), logging.F("results", len(items)))
	return items, nil
}

// escapeLike escapes LIKE wildcards in s.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Triggers lists the triggers that have entries.
func (d *Directory) Triggers(ctx context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}

	rows, err := d.db.QueryContext(ctx, "SELECT DISTINCT trigger_key FROM entries ORDER BY trigger_key")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats describes the directory contents.
type Stats struct {
	EntryCount   int
	TriggerCount int
	LastSeed     time.Time
	DatabaseSize int64
}

// Stats returns current statistics.
func (d *Directory) Stats(ctx context.Context) (Stats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return Stats{}, ErrClosed
	}

	var s Stats
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(DISTINCT trigger_key) FROM entries").
		Scan(&s.EntryCount, &s.TriggerCount)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	s.LastSeed = d.lastSeed
	if info, err := os.Stat(d.config.DatabasePath); err == nil {
		s.DatabaseSize = info.Size()
	}
	return s, nil
}
