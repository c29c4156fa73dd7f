// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/mention"
)

// =============================================================================
// SEED FILES
// =============================================================================

// A seed file maps each trigger to its values. A value is a plain string
// or a table with value and data:
//
//	"@" = ["John", { value = "Jane", data = { id = 2 } }]
//	"#" = ["urgent", "later"]
//
// YAML and JSON files use the same shape.

type seedValue struct {
	Value string
	Data  mention.Data
}

func (v *seedValue) set(raw any) error {
	switch raw := raw.(type) {
	case string:
		*v = seedValue{Value: raw}
	case map[string]any:
		value, _ := raw["value"].(string)
		if value == "" {
			return fmt.Errorf("%w: table without value", ErrInvalidEntry)
		}
		*v = seedValue{Value: value}
		if d, ok := raw["data"]; ok && d != nil {
			m, ok := d.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: data of %q must be a table", ErrInvalidEntry, value)
			}
			v.Data = normalizeSeedData(m)
		}
	default:
		return fmt.Errorf("%w: unsupported value %T", ErrInvalidEntry, raw)
	}
	return nil
}

// normalizeSeedData converts integer types decoders produce to float64 so
// the data matches what JSON round trips yield.
func normalizeSeedData(m map[string]any) mention.Data {
	out := make(mention.Data, len(m))
	for k, v := range m {
		switch n := v.(type) {
		case int:
			out[k] = float64(n)
		case int64:
			out[k] = float64(n)
		default:
			out[k] = v
		}
	}
	return out
}

func (v *seedValue) UnmarshalTOML(raw any) error { return v.set(raw) }

func (v *seedValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return v.set(raw)
}

func (v *seedValue) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return v.set(raw)
}

// ParseSeed decodes seed data; the format follows the file name's
// extension, defaulting to TOML.
func ParseSeed(name string, data []byte) ([]Entry, error) {
	var file map[string][]seedValue
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".json":
		err = json.Unmarshal(data, &file)
	default:
		_, err = toml.Decode(string(data), &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed %s: %w", name, err)
	}

	triggers := make([]string, 0, len(file))
	for t := range file {
		triggers = append(triggers, t)
	}
	sort.Strings(triggers)

	var entries []Entry
	for _, t := range triggers {
		for _, v := range file[t] {
			entries = append(entries, Entry{Trigger: t, Value: v.Value, Data: v.Data})
		}
	}
	return entries, nil
}

// Seed loads seed files. Entries previously loaded from the same file are
// replaced, so reseeding after an edit drops removed values.
func (d *Directory) Seed(ctx context.Context, paths ...string) (int, error) {
	type loaded struct {
		path    string
		entries []Entry
	}
	var files []loaded
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("failed to read seed: %w", err)
		}
		entries, err := ParseSeed(path, data)
		if err != nil {
			return 0, err
		}
		files = append(files, loaded{path: path, entries: entries})
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	count := 0
	for _, f := range files {
		if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE source = ?", f.path); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		for i := range f.entries {
			f.entries[i].Source = f.path
		}
		if err := insertEntries(ctx, tx, f.entries); err != nil {
			return 0, fmt.Errorf("seed %s: %w", f.path, err)
		}
		count += len(f.entries)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, "UPDATE metadata SET value = ? WHERE key = 'last_seed'", now.Unix()); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	d.lastSeed = now

	d.log.Info("directory seeded", logging.F("files", len(files)), logging.F("entries", count))
	return count, nil
}
