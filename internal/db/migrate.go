package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id         TEXT PRIMARY KEY,
		label      TEXT NOT NULL DEFAULT '',
		jql        TEXT NOT NULL,
		taken_at   TEXT NOT NULL,
		issues     TEXT NOT NULL,
		issue_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_label ON snapshots(label)`,
}
