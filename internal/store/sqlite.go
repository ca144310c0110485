package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	mode TEXT NOT NULL,
	output_path TEXT NOT NULL,
	scanned INTEGER NOT NULL DEFAULT 0,
	succeeded INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	merged INTEGER NOT NULL DEFAULT 0,
	merged_size INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	finished_at TEXT
);

CREATE TABLE IF NOT EXISTS run_files (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	source_path TEXT NOT NULL,
	output_path TEXT,
	success INTEGER NOT NULL DEFAULT 0,
	error TEXT DEFAULT '',
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL,
	applied_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the run-history database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL keeps the file usable if a reader (e.g. -list-runs in another
	// terminal) overlaps a run
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("insert schema version: %w", err)
		}
	} else if err != nil {
		db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// SaveRun inserts or updates a run by ID.
func (s *SQLiteStore) SaveRun(run *Run) error {
	finished := ""
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (id, mode, output_path, scanned, succeeded, failed, merged, merged_size, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode = excluded.mode,
			output_path = excluded.output_path,
			scanned = excluded.scanned,
			succeeded = excluded.succeeded,
			failed = excluded.failed,
			merged = excluded.merged,
			merged_size = excluded.merged_size,
			finished_at = excluded.finished_at`,
		run.ID, run.Mode, run.OutputPath,
		run.Scanned, run.Succeeded, run.Failed,
		boolToInt(run.Merged), run.MergedSize,
		run.StartedAt.UTC().Format(time.RFC3339Nano), finished,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// SaveFileResult records one per-file outcome.
func (s *SQLiteStore) SaveFileResult(res *FileResult) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO run_files (run_id, position, source_path, output_path, success, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Position, res.SourcePath, res.OutputPath,
		boolToInt(res.Success), res.Error,
	)
	if err != nil {
		return fmt.Errorf("save file result: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil if not found.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, mode, output_path, scanned, succeeded, failed, merged, merged_size, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, mode, output_path, scanned, succeeded, failed, merged, merged_size, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FileResults returns a run's file outcomes in processing order.
func (s *SQLiteStore) FileResults(runID string) ([]*FileResult, error) {
	rows, err := s.db.Query(`
		SELECT run_id, position, source_path, output_path, success, error
		FROM run_files WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var results []*FileResult
	for rows.Next() {
		res := &FileResult{}
		var success int
		var output sql.NullString
		if err := rows.Scan(&res.RunID, &res.Position, &res.SourcePath, &output, &success, &res.Error); err != nil {
			return nil, fmt.Errorf("scan file result: %w", err)
		}
		res.OutputPath = output.String
		res.Success = success != 0
		results = append(results, res)
	}
	return results, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var merged int
	var started, finished sql.NullString
	if err := row.Scan(&run.ID, &run.Mode, &run.OutputPath,
		&run.Scanned, &run.Succeeded, &run.Failed,
		&merged, &run.MergedSize, &started, &finished); err != nil {
		return nil, err
	}
	run.Merged = merged != 0
	if started.Valid {
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started.String)
	}
	if finished.Valid && finished.String != "" {
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
