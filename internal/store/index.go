package store

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go driver; no cgo, so the CLI stays a static binary

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/logging"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	success          INTEGER NOT NULL,
	total_iterations INTEGER NOT NULL,
	started_at       TEXT,
	ended_at         TEXT
);`

// RunIndex is a queryable index of run metadata backed by a single
// runs.db SQLite file at the artifact store root (§4.7 "Run index"). It is
// advisory: every write failure is logged and never propagated, since the
// flat per-run directories remain the sole source of truth.
type RunIndex struct {
	db *sql.DB
}

// OpenRunIndex opens (creating if absent) <storeRoot>/runs.db.
func OpenRunIndex(storeRoot string) (*RunIndex, error) {
	path := filepath.Join(storeRoot, "runs.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open run index: %w", err)
	}
	if _, err := db.Exec(createRunsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create runs table: %w", err)
	}
	return &RunIndex{db: db}, nil
}

// Close releases the underlying SQLite handle.
func (idx *RunIndex) Close() error {
	if idx == nil || idx.db == nil {
		return nil
	}
	return idx.db.Close()
}

// Record inserts or replaces the index row for summary.RunID. Failure is
// logged at CategoryStore and never returned — the index write happens
// after summary.json is durably on disk, so a failed index write can never
// make a run's outcome unrecoverable.
func (idx *RunIndex) Record(summary *domain.RunSummary) {
	if idx == nil || idx.db == nil || summary == nil {
		return
	}
	_, err := idx.db.Exec(
		`INSERT OR REPLACE INTO runs (run_id, success, total_iterations, started_at, ended_at) VALUES (?, ?, ?, ?, ?)`,
		summary.RunID, boolToInt(summary.Success), summary.TotalIterations,
		summary.Timestamp.Format("2006-01-02T15:04:05Z07:00"), summary.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Warn("run index write failed for %s: %v", summary.RunID, err)
	}
}

// RunRow is one row from the run index, used by the CLI's `runs` subcommand.
type RunRow struct {
	RunID           string
	Success         bool
	TotalIterations int
	StartedAt       string
	EndedAt         string
}

// List returns the most recent limit rows, newest first.
func (idx *RunIndex) List(limit int) ([]RunRow, error) {
	if idx == nil || idx.db == nil {
		return nil, nil
	}
	rows, err := idx.db.Query(`SELECT run_id, success, total_iterations, started_at, ended_at FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var success int
		if err := rows.Scan(&r.RunID, &success, &r.TotalIterations, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, fmt.Errorf("store: scan run row: %w", err)
		}
		r.Success = success != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
