// Package store provides SQLite-backed run history for taskgov.
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

	"github.com/fentz26/taskgov/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = errors.New("run not found")

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 20

// Store provides access to the history database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL lets `serve` read while `report` writes.
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		generated_at DATETIME NOT NULL,
		snapshot_path TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		reported_total INTEGER NOT NULL,
		processed INTEGER NOT NULL,
		counts TEXT NOT NULL,
		violations TEXT NOT NULL,
		output_path TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Run Operations ---

// SaveRun inserts a run record, assigning an ID when it has none.
func (s *Store) SaveRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Now()
	}

	countsJSON, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}
	violations := run.Violations
	if violations == nil {
		violations = []string{}
	}
	violationsJSON, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("marshal violations: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, generated_at, snapshot_path, inputs_hash, reported_total, processed, counts, violations, output_path) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.GeneratedAt.UTC(), run.SnapshotPath, run.InputsHash, run.ReportedTotal, run.Processed,
		string(countsJSON), string(violationsJSON), run.OutputPath,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = `id, generated_at, snapshot_path, inputs_hash, reported_total, processed, counts, violations, output_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run            models.Run
		countsJSON     string
		violationsJSON string
	)
	if err := row.Scan(&run.ID, &run.GeneratedAt, &run.SnapshotPath, &run.InputsHash,
		&run.ReportedTotal, &run.Processed, &countsJSON, &violationsJSON, &run.OutputPath); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(countsJSON), &run.Counts); err != nil {
		return nil, fmt.Errorf("decode counts: %w", err)
	}
	if err := json.Unmarshal([]byte(violationsJSON), &run.Violations); err != nil {
		return nil, fmt.Errorf("decode violations: %w", err)
	}
	return &run, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*models.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recent run, or nil when history is empty.
func (s *Store) LatestRun(ctx context.Context) (*models.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY generated_at DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// --- Decision Operations ---

// WriteDecision inserts an audit record.
func (s *Store) WriteDecision(ctx context.Context, action, inputsHash, outcome, details string) (*models.Decision, error) {
	d := &models.Decision{
		ID:         uuid.New().String(),
		Action:     action,
		InputsHash: inputsHash,
		Outcome:    outcome,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (id, action, inputs_hash, outcome, details, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Action, d.InputsHash, d.Outcome, d.Details, d.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert decision: %w", err)
	}
	return d, nil
}

// ListDecisions returns up to limit audit records, newest first.
func (s *Store) ListDecisions(ctx context.Context, limit int) ([]models.Decision, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, inputs_hash, outcome, details, timestamp FROM decisions ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []models.Decision
	for rows.Next() {
		var d models.Decision
		var details sql.NullString
		if err := rows.Scan(&d.ID, &d.Action, &d.InputsHash, &d.Outcome, &details, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Details = details.String
		out = append(out, d)
	}
	return out, rows.Err()
}
