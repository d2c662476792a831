package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists build runs backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Outcome carries the terminal state of a run.
type Outcome struct {
	Status   Status
	Counters Counters
	Outputs  []string
	Error    string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
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

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a new running build.
func (s *Store) Begin(ctx context.Context, id string, definitions []string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("run id is required")
	}
	if definitions == nil {
		definitions = []string{}
	}
	payload, err := json.Marshal(definitions)
	if err != nil {
		return fmt.Errorf("marshal definitions: %w", err)
	}
	started := time.Now().UTC().Format(timeLayout)
	if err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, status, definitions_json, started_at) VALUES (?, ?, ?, ?)`,
		id, StatusRunning, string(payload), started,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish stamps the terminal outcome of a run and records its outputs.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	if !outcome.Status.IsTerminal() {
		return fmt.Errorf("status %q does not finish a run", outcome.Status)
	}
	ctx = ensureContext(ctx)
	finished := time.Now().UTC().Format(timeLayout)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin finish tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		c := outcome.Counters
		res, err := tx.ExecContext(ctx,
			`UPDATE runs
             SET status = ?, containers = ?, archives = ?, documents = ?, edits = ?,
                 created = ?, updated = ?, misses = ?, error_message = ?, finished_at = ?
             WHERE id = ?`,
			outcome.Status, c.Containers, c.Archives, c.Documents, c.Edits,
			c.Created, c.Updated, c.Misses, nullableString(outcome.Error), finished, id,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("run %s not found", id)
		}
		for i, output := range outcome.Outputs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO run_outputs (run_id, position, path) VALUES (?, ?, ?)`,
				id, i, output,
			); err != nil {
				return fmt.Errorf("insert output: %w", err)
			}
		}
		return tx.Commit()
	})
}

// Get returns a run by id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if err := s.loadOutputs(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
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
		return nil, err
	}
	for _, run := range runs {
		if err := s.loadOutputs(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Prune deletes finished runs that started before cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM runs WHERE started_at < ? AND status != ?`,
			cutoff.UTC().Format(timeLayout), StatusRunning,
		)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

func (s *Store) loadOutputs(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT path FROM run_outputs WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return err
		}
		run.Outputs = append(run.Outputs, path)
	}
	return rows.Err()
}
