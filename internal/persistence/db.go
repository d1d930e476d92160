// Package persistence provides SQLite-backed storage for runs, committed
// snapshots, and the event stream, plus compressed snapshot archives. It is
// a boundary adapter: the core reaches it only through the observer
// contract, and the core performs no I/O of its own.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/hydrate"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		config_yaml TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		state_json TEXT NOT NULL,
		digest TEXT NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		payload_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);

	CREATE TABLE IF NOT EXISTS outcomes (
		run_id TEXT PRIMARY KEY,
		outcome TEXT NOT NULL,
		tick INTEGER NOT NULL,
		digest TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateRun records a run's identity, seed, and config.
func (db *DB) CreateRun(runID string, seed int64, configYAML string) error {
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, seed, config_yaml, created_at) VALUES (?, ?, ?, ?)`,
		runID, seed, configYAML, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// SaveSnapshot stores a committed snapshot.
func (db *DB) SaveSnapshot(runID string, st *world.State) error {
	raw, err := hydrate.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO snapshots (run_id, tick, state_json, digest) VALUES (?, ?, ?, ?)`,
		runID, st.Tick, string(raw), st.Digest(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores the snapshot for a run and tick.
func (db *DB) LoadSnapshot(runID string, tick uint64) (*world.State, error) {
	var raw string
	err := db.conn.Get(&raw,
		`SELECT state_json FROM snapshots WHERE run_id = ? AND tick = ?`, runID, tick)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return hydrate.Unmarshal([]byte(raw))
}

// SaveEvents appends one committed tick's events in order.
func (db *DB) SaveEvents(runID string, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	for seq, ev := range events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal payload: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO events (run_id, tick, seq, kind, payload_json) VALUES (?, ?, ?, ?, ?)`,
			runID, ev.Tick, seq, ev.Kind.String(), string(payload),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("save event: %w", err)
		}
	}
	return tx.Commit()
}

// SaveOutcome records the single terminal outcome of a run.
func (db *DB) SaveOutcome(runID, outcome string, tick uint64, digest string) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO outcomes (run_id, outcome, tick, digest) VALUES (?, ?, ?, ?)`,
		runID, outcome, tick, digest,
	)
	if err != nil {
		return fmt.Errorf("save outcome: %w", err)
	}
	return nil
}

// RunSummary is what inspect reports per persisted run.
type RunSummary struct {
	ID        string `db:"id" json:"id"`
	Seed      int64  `db:"seed" json:"seed"`
	CreatedAt string `db:"created_at" json:"created_at"`
	LastTick  uint64 `db:"last_tick" json:"last_tick"`
	Events    int    `db:"events" json:"events"`
	Outcome   string `db:"outcome" json:"outcome"`
}

// ListRuns summarizes persisted runs, newest first.
func (db *DB) ListRuns() ([]RunSummary, error) {
	var runs []RunSummary
	err := db.conn.Select(&runs, `
		SELECT r.id, r.seed, r.created_at,
			COALESCE((SELECT MAX(tick) FROM events e WHERE e.run_id = r.id), 0) AS last_tick,
			COALESCE((SELECT COUNT(*) FROM events e WHERE e.run_id = r.id), 0) AS events,
			COALESCE((SELECT outcome FROM outcomes o WHERE o.run_id = r.id), '') AS outcome
		FROM runs r ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
