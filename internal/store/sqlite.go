package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS generations (
	id               TEXT PRIMARY KEY,
	project_slug     TEXT NOT NULL,
	status           TEXT NOT NULL,
	phase            INTEGER NOT NULL DEFAULT 0,
	phase_name       TEXT NOT NULL DEFAULT '',
	success          INTEGER NOT NULL DEFAULT 0,
	composite        REAL NOT NULL DEFAULT 0,
	verdict          TEXT NOT NULL DEFAULT '',
	meets_thresholds INTEGER NOT NULL DEFAULT 0,
	iterations       INTEGER NOT NULL DEFAULT 0,
	output_dir       TEXT NOT NULL DEFAULT '',
	deployment_url   TEXT NOT NULL DEFAULT '',
	errors           TEXT NOT NULL DEFAULT '[]',
	started_at       TEXT NOT NULL,
	finished_at      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_generations_started ON generations(started_at);
`

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite is a repository backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path. ":memory:" keeps
// it in process.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Create(ctx context.Context, r *Record) error {
	args, err := recordArgs(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO generations
		(id, project_slug, status, phase, phase_name, success, composite, verdict,
		 meets_thresholds, iterations, output_dir, deployment_url, errors, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("inserting generation %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLite) Update(ctx context.Context, r *Record) error {
	args, err := recordArgs(r)
	if err != nil {
		return err
	}
	// id moves to the WHERE clause.
	args = append(args[1:], r.ID)
	res, err := s.db.ExecContext(ctx, `UPDATE generations SET
		project_slug = ?, status = ?, phase = ?, phase_name = ?, success = ?, composite = ?,
		verdict = ?, meets_thresholds = ?, iterations = ?, output_dir = ?, deployment_url = ?,
		errors = ?, started_at = ?, finished_at = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating generation %s: %w", r.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}
	return nil
}

const selectColumns = `SELECT id, project_slug, status, phase, phase_name, success, composite, verdict,
	meets_thresholds, iterations, output_dir, deployment_url, errors, started_at, finished_at
	FROM generations`

func (s *SQLite) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

func (s *SQLite) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY started_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing generations: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM generations`)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }

func recordArgs(r *Record) ([]any, error) {
	errs, err := json.Marshal(nonNil(r.Errors))
	if err != nil {
		return nil, fmt.Errorf("encoding errors: %w", err)
	}
	return []any{
		r.ID, r.ProjectSlug, string(r.Status), r.Phase, r.PhaseName, r.Success, r.Composite, r.Verdict,
		r.MeetsThresholds, r.Iterations, r.OutputDir, r.DeploymentURL, string(errs),
		formatTime(r.StartedAt), formatTime(r.FinishedAt),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		r                 Record
		status, errs      string
		started, finished string
	)
	err := sc.Scan(&r.ID, &r.ProjectSlug, &status, &r.Phase, &r.PhaseName, &r.Success, &r.Composite,
		&r.Verdict, &r.MeetsThresholds, &r.Iterations, &r.OutputDir, &r.DeploymentURL, &errs, &started, &finished)
	if err != nil {
		return nil, err
	}
	r.Status = Status(status)
	if err := json.Unmarshal([]byte(errs), &r.Errors); err != nil {
		return nil, fmt.Errorf("decoding errors of %s: %w", r.ID, err)
	}
	if len(r.Errors) == 0 {
		r.Errors = nil
	}
	if r.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if r.FinishedAt, err = parseTime(finished); err != nil {
		return nil, err
	}
	return &r, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
