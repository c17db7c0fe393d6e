package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// ErrNotFound is returned when a run id (or prefix) matches nothing.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguous is returned when a run id prefix matches several runs.
var ErrAmbiguous = errors.New("run id prefix is ambiguous")

// RunRecord is one journaled pipeline run.
type RunRecord struct {
	ID          string
	Target      string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Status      string
	Warnings    int
	Errors      int
	Relocations int
}

// Relocation is one file moved into trash.
type Relocation struct {
	ID          int64
	RunID       string
	Source      string
	Destination string
	RelocatedAt time.Time
	RestoredAt  *time.Time
}

// Store manages the relocation journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
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

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, id, target string, started time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, target, started_at, status) VALUES (?, ?, ?, ?)`,
		id, target, started.UTC().Format(time.RFC3339Nano), StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the run's outcome.
func (s *Store) FinishRun(ctx context.Context, id, status string, warnings, errorCount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, warnings = ?, errors = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), status, warnings, errorCount, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordRelocation journals one move into trash.
func (s *Store) RecordRelocation(ctx context.Context, runID, source, destination string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO relocations (run_id, source, destination, relocated_at) VALUES (?, ?, ?, ?)`,
		runID, source, destination, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert relocation: %w", err)
	}
	return nil
}

// MarkRestored records that a relocation was moved back.
func (s *Store) MarkRestored(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE relocations SET restored_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("mark restored: %w", err)
	}
	return nil
}

const runColumns = `r.id, r.target, r.started_at, r.finished_at, r.status, r.warnings, r.errors,
	(SELECT COUNT(1) FROM relocations l WHERE l.run_id = r.id)`

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r ORDER BY r.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindRun resolves a full run id or a unique prefix of one.
func (s *Store) FindRun(ctx context.Context, idOrPrefix string) (RunRecord, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return RunRecord{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r WHERE r.id = ? OR r.id LIKE ? ORDER BY r.started_at DESC LIMIT 2`,
		idOrPrefix, stripLikeWildcards(idOrPrefix)+"%")
	if err != nil {
		return RunRecord{}, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var matches []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return RunRecord{}, err
		}
		if run.ID == idOrPrefix {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return RunRecord{}, err
	}
	switch len(matches) {
	case 0:
		return RunRecord{}, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return RunRecord{}, fmt.Errorf("%w: %s", ErrAmbiguous, idOrPrefix)
	}
}

// Relocations returns a run's relocations in the order they happened.
func (s *Store) Relocations(ctx context.Context, runID string) ([]Relocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, source, destination, relocated_at, restored_at
		 FROM relocations WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list relocations: %w", err)
	}
	defer rows.Close()

	var out []Relocation
	for rows.Next() {
		var (
			rel        Relocation
			relocated  string
			restoredAt sql.NullString
		)
		if err := rows.Scan(&rel.ID, &rel.RunID, &rel.Source, &rel.Destination, &relocated, &restoredAt); err != nil {
			return nil, fmt.Errorf("scan relocation: %w", err)
		}
		rel.RelocatedAt = parseTime(relocated)
		rel.RestoredAt = parseNullableTime(restoredAt)
		out = append(out, rel)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		run      RunRecord
		started  string
		finished sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Target, &started, &finished, &run.Status, &run.Warnings, &run.Errors, &run.Relocations); err != nil {
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseNullableTime(finished)
	return run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullableTime(value sql.NullString) *time.Time {
	if !value.Valid || value.String == "" {
		return nil
	}
	t := parseTime(value.String)
	return &t
}

func stripLikeWildcards(value string) string {
	replacer := strings.NewReplacer(`%`, ``, `_`, ``)
	return replacer.Replace(value)
}
