package journal

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		pipeline    TEXT NOT NULL,
		sample      TEXT NOT NULL,
		state       TEXT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		started_at  TEXT NOT NULL,
		finished_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS stage_events (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id    TEXT NOT NULL REFERENCES runs(id),
		stage     TEXT NOT NULL,
		state     TEXT NOT NULL,
		exit_code INTEGER NOT NULL DEFAULT 0,
		at        TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stage_events_run ON stage_events(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_sample ON runs(sample)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
