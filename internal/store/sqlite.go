package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/utkarsh5026/makespan/internal/retry"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	writes retry.Policy
}

// isBusy reports whether err is SQLite refusing a write because another
// connection holds the lock.
func isBusy(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// a second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	st := &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
	// other processes may archive into the same file
	st.writes = retry.Policy{
		Attempts:  5,
		Backoff:   retry.NewBackoff(retry.Jittered, 10*time.Millisecond, 500*time.Millisecond, 0.2),
		Retryable: st.retryable,
	}
	return st, nil
}

func (s *SQLiteStore) retryable(err error) bool {
	if !isBusy(err) {
		return false
	}
	s.logger.Warn("database busy, retrying", "error", err)
	return true
}

// exec runs a write statement, retrying while the database is busy.
func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retry.Do(ctx, s.writes, func() error {
		var err error
		res, err = s.db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	durationsJSON, err := json.Marshal(run.Durations)
	if err != nil {
		return fmt.Errorf("marshal durations: %w", err)
	}
	assignmentsJSON, err := json.Marshal(run.Assignments)
	if err != nil {
		return fmt.Errorf("marshal assignments: %w", err)
	}

	_, err = s.exec(ctx,
		`INSERT INTO runs (id, name, durations, processors, mode, makespan, heuristic_makespan, lower_bound,
		                   utilization, proven, nodes, elapsed_ns, assignments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, string(durationsJSON), run.Processors, run.Mode, run.Makespan,
		run.HeuristicMakespan, run.LowerBound, run.Utilization, run.Proven, run.Nodes,
		int64(run.Elapsed), string(assignmentsJSON), run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

const runColumns = `id, name, durations, processors, mode, makespan, heuristic_makespan, lower_bound,
	utilization, proven, nodes, elapsed_ns, assignments, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var durationsJSON, assignmentsJSON, createdAt string
	var elapsed int64

	if err := row.Scan(&run.ID, &run.Name, &durationsJSON, &run.Processors, &run.Mode, &run.Makespan,
		&run.HeuristicMakespan, &run.LowerBound, &run.Utilization, &run.Proven, &run.Nodes,
		&elapsed, &assignmentsJSON, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(durationsJSON), &run.Durations); err != nil {
		return nil, fmt.Errorf("unmarshal durations: %w", err)
	}
	if err := json.Unmarshal([]byte(assignmentsJSON), &run.Assignments); err != nil {
		return nil, fmt.Errorf("unmarshal assignments: %w", err)
	}
	run.Elapsed = time.Duration(elapsed)
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	run.CreatedAt = ts

	return &run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns a page of runs, newest first, and the total count.
func (s *SQLiteStore) ListRuns(ctx context.Context, opts ListOptions) ([]*Run, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "id", id)

	res, err := s.exec(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
