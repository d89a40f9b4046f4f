// Package journal persists run and stage history to a SQLite database at
// the output root. It implements the runner's Observer; journal failures are
// logged and swallowed so persistence problems can never fail a pipeline run.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/varpipe/pkg/model"

	_ "modernc.org/sqlite"
)

// DefaultFilename is the journal database name inside an output root.
const DefaultFilename = ".varpipe.db"

// Run is one recorded pipeline run.
type Run struct {
	ID         string
	Pipeline   model.PipelineKind
	Sample     string
	State      model.RunState
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// StageEvent is one recorded stage state change.
type StageEvent struct {
	RunID    string
	Stage    string
	State    model.StageState
	ExitCode int
	At       time.Time
}

// Journal is the SQLite-backed run history.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the journal database at dbPath and applies
// migrations. Use ":memory:" for an in-memory database in tests.
func Open(dbPath string, logger *slog.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", dbPath, err)
	}

	// WAL keeps readers (the runs command) from blocking a writer mid-run.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{
		db:     db,
		logger: logger.With("component", "journal"),
	}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RunStarted records a new run in PENDING->RUNNING shape.
func (j *Journal) RunStarted(runID string, kind model.PipelineKind, sampleID string) {
	_, err := j.db.Exec(
		`INSERT INTO runs (id, pipeline, sample, state, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, string(kind), sampleID, string(model.RunStateRunning), now(),
	)
	if err != nil {
		j.logger.Warn("record run start", "run_id", runID, "error", err)
	}
}

// StageChanged records a stage state transition.
func (j *Journal) StageChanged(runID, stage string, state model.StageState, exitCode int) {
	_, err := j.db.Exec(
		`INSERT INTO stage_events (run_id, stage, state, exit_code, at) VALUES (?, ?, ?, ?, ?)`,
		runID, stage, string(state), exitCode, now(),
	)
	if err != nil {
		j.logger.Warn("record stage event", "run_id", runID, "stage", stage, "error", err)
	}
}

// RunFinished records the terminal state of a run.
func (j *Journal) RunFinished(runID string, state model.RunState, errMsg string) {
	_, err := j.db.Exec(
		`UPDATE runs SET state = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(state), errMsg, now(), runID,
	)
	if err != nil {
		j.logger.Warn("record run finish", "run_id", runID, "error", err)
	}
}

// ListRuns returns the most recent runs, newest first.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, pipeline, sample, state, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var pipeline, state, startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&r.ID, &pipeline, &r.Sample, &state, &r.Error, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		r.Pipeline = model.PipelineKind(pipeline)
		r.State = model.RunState(state)
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			t, _ := time.Parse(time.RFC3339Nano, finishedAt.String)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// StageEvents returns the recorded events for one run in insertion order.
func (j *Journal) StageEvents(ctx context.Context, runID string) ([]StageEvent, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, stage, state, exit_code, at FROM stage_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var e StageEvent
		var state, at string
		if err := rows.Scan(&e.RunID, &e.Stage, &state, &e.ExitCode, &at); err != nil {
			return nil, err
		}
		e.State = model.StageState(state)
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		events = append(events, e)
	}
	return events, rows.Err()
}

func now() string {
	return time.Now().Format(time.RFC3339Nano)
}
