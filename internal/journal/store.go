package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old databases are rejected rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginRun inserts a new run row and returns it.
func (s *Store) BeginRun(ctx context.Context) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at) VALUES (?, ?)",
		run.ID, run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stamps a run with its completion time and summary counts.
func (s *Store) FinishRun(ctx context.Context, runID string, total, failed int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, resources_total = ?, resources_failed = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339Nano), total, failed, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// RecordOutcome appends one resource outcome to a run.
func (s *Store) RecordOutcome(ctx context.Context, runID string, outcome Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resource_outcomes (
            run_id, resource, outcome, cached_version, latest_version,
            pages, bytes, duration_ms, detail, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		outcome.Resource,
		outcome.Result,
		outcome.CachedVersion,
		outcome.LatestVersion,
		outcome.Pages,
		outcome.Bytes,
		outcome.Duration.Milliseconds(),
		nullableString(outcome.Detail),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, resources_total, resources_failed
         FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.ResourcesTotal, &run.ResourcesFailed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			run.FinishedAt = parseTimestamp(finishedAt.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// OutcomesForRun returns the outcomes of one run in insertion order.
func (s *Store) OutcomesForRun(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT resource, outcome, cached_version, latest_version, pages, bytes, duration_ms, detail
         FROM resource_outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var outcome Outcome
		var durationMS int64
		var detail sql.NullString
		if err := rows.Scan(
			&outcome.Resource, &outcome.Result, &outcome.CachedVersion, &outcome.LatestVersion,
			&outcome.Pages, &outcome.Bytes, &durationMS, &detail,
		); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcome.Duration = time.Duration(durationMS) * time.Millisecond
		if detail.Valid {
			outcome.Detail = detail.String
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
