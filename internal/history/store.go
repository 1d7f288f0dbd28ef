// Package history persists pipeline run records in a local SQLite database
// so past compile and doc-test outcomes can be inspected with the history
// subcommands. Recording is best-effort: a storage failure never changes
// the result of the run that produced it.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// RunRecord is one row of pipeline run history.
type RunRecord struct {
	ID             int64
	RunID          string // UUID assigned by the pipeline
	SourceUnit     string
	CrateName      string
	State          string // Terminal pipeline state
	ExitCode       int
	Passed         int
	Failed         int
	CompileTime    time.Duration
	DocTestTime    time.Duration
	TotalTime      time.Duration
	CleanupWarning string // Empty when cleanup was silent
	CreatedAt      time.Time
}

// Stats aggregates run history across all recorded invocations.
type Stats struct {
	TotalRuns      int
	Succeeded      int
	CompileFailed  int
	DocTestFailed  int
	ExamplesPassed int
	ExamplesFailed int
}

// Store manages the SQLite database holding run history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if necessary) the history database at dbPath
// and ensures the schema exists.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of
	// failing when two runs touch the same database
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on
// "database is locked" errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts one run record.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	query := `INSERT INTO runs
		(run_id, source_unit, crate_name, state, exit_code, passed, failed,
		 compile_secs, doctest_secs, total_secs, cleanup_warning)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.RunID,
		rec.SourceUnit,
		rec.CrateName,
		rec.State,
		rec.ExitCode,
		rec.Passed,
		rec.Failed,
		rec.CompileTime.Seconds(),
		rec.DocTestTime.Seconds(),
		rec.TotalTime.Seconds(),
		rec.CleanupWarning,
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// Runs returns the most recent run records, newest first. A limit of 0
// returns everything.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT id, run_id, source_unit, crate_name, state, exit_code,
		passed, failed, compile_secs, doctest_secs, total_secs,
		cleanup_warning, created_at
		FROM runs ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var compileSecs, doctestSecs, totalSecs float64
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.SourceUnit, &rec.CrateName, &rec.State,
			&rec.ExitCode, &rec.Passed, &rec.Failed,
			&compileSecs, &doctestSecs, &totalSecs,
			&rec.CleanupWarning, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.CompileTime = time.Duration(compileSecs * float64(time.Second))
		rec.DocTestTime = time.Duration(doctestSecs * float64(time.Second))
		rec.TotalTime = time.Duration(totalSecs * float64(time.Second))
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetStats aggregates counts across the whole history.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN exit_code = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN state = 'compile-failed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN exit_code != 0 AND state != 'compile-failed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(passed), 0),
		COALESCE(SUM(failed), 0)
		FROM runs`

	stats := &Stats{}
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalRuns,
		&stats.Succeeded,
		&stats.CompileFailed,
		&stats.DocTestFailed,
		&stats.ExamplesPassed,
		&stats.ExamplesFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return stats, nil
}

// Prune removes the oldest records beyond keep. A keep of 0 disables pruning.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	query := `DELETE FROM runs WHERE id NOT IN
		(SELECT id FROM runs ORDER BY id DESC LIMIT ?)`
	if _, err := s.db.ExecContext(ctx, query, keep); err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}

// Clear deletes all run history.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs")
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count cleared runs: %w", err)
	}
	return n, nil
}
