// Package journal records completed advisory calls in a local SQLite
// database.
//
// The journal is opt-in. It stores call metadata only (tool, tier, model,
// outcome, sizes and timing), never prompt or response text, so it can be
// left on without keeping a copy of the user's code.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Outcome classifies a completed call.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeTimeout Outcome = "timeout"
	OutcomeFailed  Outcome = "failed"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Entry is one recorded tool call.
type Entry struct {
	ID            string    `json:"id"`
	Tool          string    `json:"tool"`
	Tier          string    `json:"tier"`
	Model         string    `json:"model,omitempty"`
	Outcome       Outcome   `json:"outcome"`
	Error         string    `json:"error,omitempty"`
	InputBytes    int       `json:"input_bytes"`
	ResponseBytes int       `json:"response_bytes"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
}

// ToolStats aggregates the entries of one tool.
type ToolStats struct {
	Tool          string  `json:"tool"`
	Calls         int     `json:"calls"`
	Failures      int     `json:"failures"`
	Timeouts      int     `json:"timeouts"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// Stats holds aggregate journal statistics.
type Stats struct {
	TotalCalls int         `json:"total_calls"`
	Tools      []ToolStats `json:"tools"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds journal configuration.
type Config struct {
	// Path is the SQLite database file.
	Path string
}

// DefaultConfig returns the default journal location under the user's
// home directory.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{Path: filepath.Join(home, ".gemini-advisor", "journal.db")}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the journal backed by SQLite. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the journal database at cfg.Path and
// runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg = DefaultConfig()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("journal: create data dir: %w", err)
	}

	db, err := openDB("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them applied
	// and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS calls (
			id             TEXT    PRIMARY KEY,
			tool           TEXT    NOT NULL,
			tier           TEXT    NOT NULL,
			model          TEXT    NOT NULL DEFAULT '',
			outcome        TEXT    NOT NULL,
			error          TEXT    NOT NULL DEFAULT '',
			input_bytes    INTEGER NOT NULL DEFAULT 0,
			response_bytes INTEGER NOT NULL DEFAULT 0,
			started_at     TEXT    NOT NULL,
			duration_ms    INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_calls_started ON calls(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_calls_tool ON calls(tool);
	`)
	return err
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// Record appends e. An empty ID is replaced by a fresh UUID and a zero
// StartedAt by the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	if e.Tool == "" || e.Outcome == "" {
		return fmt.Errorf("journal: entry needs a tool and an outcome")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (id, tool, tier, model, outcome, error, input_bytes, response_bytes, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Tool, e.Tier, e.Model, string(e.Outcome), e.Error,
		e.InputBytes, e.ResponseBytes, formatTime(e.StartedAt), e.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", e.Tool, err)
	}
	return nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// Recent returns up to limit entries, newest first. A non-positive limit
// defaults to 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, tier, model, outcome, error, input_bytes, response_bytes, started_at, duration_ms
		 FROM calls ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			outcome string
			started string
		)
		if err := rows.Scan(
			&e.ID, &e.Tool, &e.Tier, &e.Model, &outcome, &e.Error,
			&e.InputBytes, &e.ResponseBytes, &started, &e.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Outcome = Outcome(outcome)
		if e.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("journal: entry %s: bad timestamp %q: %w", e.ID, started, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns per-tool aggregates ordered by tool name.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tool,
		       COUNT(*),
		       SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'timeout' THEN 1 ELSE 0 END),
		       AVG(duration_ms)
		FROM calls GROUP BY tool ORDER BY tool`)
	if err != nil {
		return nil, fmt.Errorf("journal: stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &Stats{}
	for rows.Next() {
		var ts ToolStats
		if err := rows.Scan(&ts.Tool, &ts.Calls, &ts.Failures, &ts.Timeouts, &ts.AvgDurationMS); err != nil {
			return nil, fmt.Errorf("journal: scan stats: %w", err)
		}
		stats.TotalCalls += ts.Calls
		stats.Tools = append(stats.Tools, ts)
	}
	return stats, rows.Err()
}

// formatTime renders t in UTC with fixed-width fractional seconds so that
// lexical order on the column matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
