// Package history records solve runs in a small SQLite database, so
// repeated experiments on the same instances can be compared later.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded solve.
type Run struct {
	ID           int64
	InstanceFile string
	StartedAt    time.Time
	StockWidth   int
	StockLength  int
	ItemTypes    int
	Plates       int
	Objective    float64
	RootLB       float64
	Gap          float64
	Nodes        int
	TimedOut     bool
	Elapsed      time.Duration
}

// Store is an open history database.
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		instance_file  TEXT NOT NULL,
		started_at     TEXT NOT NULL,
		stock_width    INTEGER NOT NULL,
		stock_length   INTEGER NOT NULL,
		item_types     INTEGER NOT NULL,
		plates         INTEGER NOT NULL,
		objective      REAL NOT NULL,
		root_lb        REAL NOT NULL,
		gap            REAL NOT NULL,
		nodes          INTEGER NOT NULL,
		timed_out      INTEGER NOT NULL,
		elapsed_ms     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_instance ON runs(instance_file)`,
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init history schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one run.
func (s *Store) Record(r Run) error {
	timedOut := 0
	if r.TimedOut {
		timedOut = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (instance_file, started_at, stock_width, stock_length,
			item_types, plates, objective, root_lb, gap, nodes, timed_out, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.InstanceFile, r.StartedAt.UTC().Format(time.RFC3339),
		r.StockWidth, r.StockLength, r.ItemTypes, r.Plates,
		r.Objective, r.RootLB, r.Gap, r.Nodes, timedOut, r.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the newest runs, most recent first.
func (s *Store) Recent(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, instance_file, started_at, stock_width, stock_length,
			item_types, plates, objective, root_lb, gap, nodes, timed_out, elapsed_ms
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			startedAt string
			timedOut  int
			elapsedMS int64
		)
		if err := rows.Scan(&r.ID, &r.InstanceFile, &startedAt, &r.StockWidth, &r.StockLength,
			&r.ItemTypes, &r.Plates, &r.Objective, &r.RootLB, &r.Gap, &r.Nodes, &timedOut, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, startedAt); err == nil {
			r.StartedAt = ts
		}
		r.TimedOut = timedOut != 0
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
