// Package persistence provides SQLite-based storage for simulation runs
// and their trade ledgers.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/skylane/skymarket/internal/auction"
)

// DB wraps a SQLite connection for run and trade storage.
type DB struct {
	conn *sqlx.DB
}

// Trade is one persisted trade row.
type Trade struct {
	RunID  string  `db:"run_id"`
	Tick   uint64  `db:"tick"`
	Seller int64   `db:"seller"` // -1 when the permit had never been owned
	Buyer  int64   `db:"buyer"`
	Region string  `db:"region"`
	T      uint64  `db:"t"`
	Price  float64 `db:"price"`
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
		started_at TEXT NOT NULL,
		finished_at TEXT,
		final_tick INTEGER
	);

	CREATE TABLE IF NOT EXISTS trades (
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		seller INTEGER NOT NULL,
		buyer INTEGER NOT NULL,
		region TEXT NOT NULL,
		t INTEGER NOT NULL,
		price REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
	CREATE INDEX IF NOT EXISTS idx_trades_tick ON trades(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun registers a new simulation run and returns its identifier.
func (db *DB) BeginRun(seed int64) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)`,
		id, seed, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	slog.Info("run registered", "run_id", id, "seed", seed)
	return id, nil
}

// FinishRun stamps a run with its end time and final tick.
func (db *DB) FinishRun(runID string, finalTick uint64) error {
	_, err := db.conn.Exec(
		`UPDATE runs SET finished_at = ?, final_tick = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), finalTick, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// RecordTrade appends one settled trade to the run's ledger.
func (db *DB) RecordTrade(runID string, rec auction.TradeRecord) error {
	_, err := db.conn.Exec(
		`INSERT INTO trades (run_id, tick, seller, buyer, region, t, price)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Tick, int64(rec.Seller), int64(rec.Buyer),
		rec.Region.String(), rec.Time, float64(rec.Price),
	)
	if err != nil {
		return fmt.Errorf("record trade: %w", err)
	}
	return nil
}

// Trades loads a run's trades in settlement order.
func (db *DB) Trades(runID string) ([]Trade, error) {
	var out []Trade
	err := db.conn.Select(&out,
		`SELECT run_id, tick, seller, buyer, region, t, price
		 FROM trades WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("load trades for %s: %w", runID, err)
	}
	return out, nil
}

// TradeCount returns the number of trades recorded for a run.
func (db *DB) TradeCount(runID string) (int, error) {
	var n int
	err := db.conn.Get(&n, `SELECT COUNT(*) FROM trades WHERE run_id = ?`, runID)
	if err != nil {
		return 0, fmt.Errorf("count trades for %s: %w", runID, err)
	}
	return n, nil
}
