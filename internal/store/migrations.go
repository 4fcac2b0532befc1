package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the DDL for the run archive. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL DEFAULT '',
		durations          TEXT NOT NULL,
		processors         INTEGER NOT NULL,
		mode               TEXT NOT NULL,
		makespan           INTEGER NOT NULL,
		heuristic_makespan INTEGER NOT NULL DEFAULT 0,
		lower_bound        INTEGER NOT NULL,
		utilization        REAL NOT NULL,
		proven             INTEGER NOT NULL DEFAULT 0,
		nodes              INTEGER NOT NULL DEFAULT 0,
		elapsed_ns         INTEGER NOT NULL DEFAULT 0,
		assignments        TEXT NOT NULL,
		created_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
