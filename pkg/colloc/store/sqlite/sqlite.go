package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/colloc/pkg/colloc/internalerr"
	"github.com/cognicore/colloc/pkg/colloc/report"
	"github.com/cognicore/colloc/pkg/colloc/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// Pragmas are per connection; a single connection keeps them in force
	// and lets ":memory:" databases work.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	keyword TEXT NOT NULL,
	window_size INTEGER NOT NULL,
	policy TEXT NOT NULL,
	corpus_dir TEXT NOT NULL DEFAULT '',
	n INTEGER NOT NULL,
	r1 INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_keyword ON runs(keyword);

CREATE TABLE IF NOT EXISTS run_rows (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	first_seen INTEGER NOT NULL,
	collocate TEXT NOT NULL,
	raw_frequency INTEGER NOT NULL,
	mi TEXT NOT NULL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts a run and its rows in one transaction
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) (string, error) {
	r = store.Prepare(r, s.now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	const runStmt = `
INSERT INTO runs (id, keyword, window_size, policy, corpus_dir, n, r1, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`
	if _, err := tx.ExecContext(ctx, runStmt,
		r.ID,
		r.Keyword,
		r.WindowSize,
		r.Policy,
		r.CorpusDir,
		r.N,
		r.R1,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_rows (run_id, position, first_seen, collocate, raw_frequency, mi)
VALUES (?, ?, ?, ?, ?, ?);
`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, row := range r.Rows {
		if _, err := stmt.ExecContext(ctx, r.ID, i, row.Index, row.Collocate, row.RawFrequency, encodeMI(row.MI)); err != nil {
			return "", fmt.Errorf("insert row %q: %w", row.Collocate, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return r.ID, nil
}

// GetRun loads a run with all of its rows
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	const stmt = `
SELECT id, keyword, window_size, policy, corpus_dir, n, r1, created_at
FROM runs WHERE id = ?;
`
	run, err := scanRun(s.db.QueryRowContext(ctx, stmt, id))
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT first_seen, collocate, raw_frequency, mi
FROM run_rows WHERE run_id = ?
ORDER BY position ASC;
`, id)
	if err != nil {
		return store.Run{}, err
	}
	defer rows.Close()

	run.Rows = []report.Row{}
	for rows.Next() {
		var (
			row report.Row
			mi  string
		)
		if err := rows.Scan(&row.Index, &row.Collocate, &row.RawFrequency, &mi); err != nil {
			return store.Run{}, err
		}
		row.MI, err = decodeMI(mi)
		if err != nil {
			return store.Run{}, fmt.Errorf("run %s collocate %q: %w", id, row.Collocate, err)
		}
		run.Rows = append(run.Rows, row)
	}
	return run, rows.Err()
}

// ListRuns returns run headers, newest first
func (s *sqliteStore) ListRuns(ctx context.Context, keyword string, limit int) ([]store.Run, error) {
	query := `
SELECT id, keyword, window_size, policy, corpus_dir, n, r1, created_at
FROM runs WHERE (? = '' OR keyword = ?)
ORDER BY id DESC`
	args := []any{keyword, keyword}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// DeleteRun removes a run; its rows go with it
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		run     store.Run
		created string
	)
	if err := sc.Scan(&run.ID, &run.Keyword, &run.WindowSize, &run.Policy, &run.CorpusDir, &run.N, &run.R1, &created); err != nil {
		return store.Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return store.Run{}, fmt.Errorf("run %s created_at: %w", run.ID, err)
	}
	run.CreatedAt = t
	return run, nil
}

// MI is kept as text so that -Inf and NaN survive the round trip.
func encodeMI(mi float64) string {
	if math.IsNaN(mi) {
		return "nan"
	}
	return report.FormatMI(mi)
}

func decodeMI(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
