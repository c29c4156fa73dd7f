// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema is the SQLite schema for the candidate directory.
const Schema = `
-- Metadata table for schema version and seed state
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Entries table: one suggestion per trigger and value
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    trigger_key TEXT NOT NULL,
    value TEXT NOT NULL,
    data TEXT,                  -- JSON object of scalar values
    source TEXT NOT NULL DEFAULT '',  -- Seed file path, empty for manual entries
    created_at INTEGER NOT NULL,      -- Unix timestamp
    UNIQUE(trigger_key, value)
);

CREATE INDEX IF NOT EXISTS idx_entries_trigger ON entries(trigger_key);
CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source);
`

// InitMetadata initializes the metadata table with default values
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
INSERT OR IGNORE INTO metadata (key, value) VALUES ('last_seed', '0');
`
