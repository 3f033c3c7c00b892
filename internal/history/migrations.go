package history

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ran_at TEXT NOT NULL,
    evaluated_for TEXT NOT NULL,
    fetched INTEGER DEFAULT 0,
    kept INTEGER DEFAULT 0,
    total INTEGER DEFAULT 0,
    new_items INTEGER DEFAULT 0,
    refreshed INTEGER DEFAULT 0,
    retained INTEGER DEFAULT 0,
    dropped_malformed INTEGER DEFAULT 0,
    dropped_bad_title INTEGER DEFAULT 0,
    dropped_expired INTEGER DEFAULT 0,
    duplicates INTEGER DEFAULT 0,
    sources_ok INTEGER DEFAULT 0,
    sources_failed TEXT DEFAULT '',
    wrote INTEGER DEFAULT 0,
    duration_ms INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_ran_at ON runs(ran_at);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version.
func latestVersion() int {
	latest := 0
	for _, m := range migrations {
		if m.Version > latest {
			latest = m.Version
		}
	}
	return latest
}
