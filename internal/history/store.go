// Package history persists cleanup runs in a SQLite ledger so an operator
// can audit what scour matched and removed, and when. Aggregation runs are
// not recorded; only the destructive mode leaves a trail.
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

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded cleanup scan.
type Run struct {
	ID           string
	Root         string
	Force        bool
	StartedAt    time.Time
	Duration     time.Duration
	Matched      int
	Removed      int
	Failed       int
	BytesMatched int64
	BytesFreed   int64

	// Folders holds per-candidate outcomes. RecentRuns leaves it empty;
	// RunByPrefix loads it.
	Folders []Folder
}

// Folder is one candidate outcome within a run.
type Folder struct {
	Path        string
	Folder      string
	Description string
	Size        int64
	Removed     bool
	Error       string
}

// Store manages the SQLite ledger.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if necessary) the ledger at dbPath and applies
// the schema.
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

	// busy_timeout first, so the remaining pragmas wait on locks held by
	// a concurrent scour process instead of failing.
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
// lock errors.
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

// RecordRun inserts a run and its folder outcomes atomically. A missing ID
// or start time is filled in.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, root, force, started_at, duration_ms, matched, removed, failed, bytes_matched, bytes_freed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Root,
		run.Force,
		run.StartedAt,
		run.Duration.Milliseconds(),
		run.Matched,
		run.Removed,
		run.Failed,
		run.BytesMatched,
		run.BytesFreed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(run.Folders) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_folders
			(run_id, path, folder, description, size, removed, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare folder statement: %w", err)
		}
		defer stmt.Close()

		for _, f := range run.Folders {
			_, err := stmt.ExecContext(ctx, run.ID, f.Path, f.Folder, f.Description, f.Size, f.Removed, f.Error)
			if err != nil {
				return fmt.Errorf("insert run folder: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs, most recent first. A non-positive
// limit selects 20.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
		id, root, force, started_at, duration_ms, matched, removed, failed, bytes_matched, bytes_freed
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// RunByPrefix returns the most recent run whose ID starts with prefix,
// with folder outcomes loaded. sql.ErrNoRows is wrapped when nothing
// matches.
func (s *Store) RunByPrefix(ctx context.Context, prefix string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT
		id, root, force, started_at, duration_ms, matched, removed, failed, bytes_matched, bytes_freed
		FROM runs WHERE id LIKE ? ORDER BY started_at DESC LIMIT 1`, prefix+"%")

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %q: %w", prefix, err)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
		path, folder, description, size, removed, error
		FROM run_folders WHERE run_id = ? ORDER BY id`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("query run folders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f Folder
		var description, errMsg sql.NullString
		if err := rows.Scan(&f.Path, &f.Folder, &description, &f.Size, &f.Removed, &errMsg); err != nil {
			return nil, fmt.Errorf("scan folder row: %w", err)
		}
		f.Description = description.String
		f.Error = errMsg.String
		run.Folders = append(run.Folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder rows: %w", err)
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var durationMS int64
	err := row.Scan(
		&run.ID,
		&run.Root,
		&run.Force,
		&run.StartedAt,
		&durationMS,
		&run.Matched,
		&run.Removed,
		&run.Failed,
		&run.BytesMatched,
		&run.BytesFreed,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan run row: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}
