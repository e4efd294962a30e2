// Package sqlite persists daily bars and the last reported signal in a
// single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultBarLimit is roughly three months of trading days, the history the
// bot always evaluated over.
const DefaultBarLimit = 63

// Config configures the SQLite store.
type Config struct {
	DBPath   string // path to SQLite database file, e.g. "data/signals.db"
	BarLimit int    // bars returned by ReadBars; <= 0 means DefaultBarLimit
}

// Store reads and writes bars and signals. Safe for concurrent use; SQLite
// serialises writers through the single open connection.
type Store struct {
	db       *sql.DB
	barLimit int
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Open opens (or creates) the database with WAL mode and ensures the schema.
func Open(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Set connection pool for single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	limit := cfg.BarLimit
	if limit <= 0 {
		limit = DefaultBarLimit
	}

	slog.Info("[sqlite] opened database", slog.String("path", cfg.DBPath))
	return &Store{db: db, barLimit: limit}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bars_daily (
			instrument TEXT    NOT NULL,
			date       TEXT    NOT NULL,
			open       REAL    NOT NULL,
			high       REAL    NOT NULL,
			low        REAL    NOT NULL,
			close      REAL    NOT NULL,
			volume     REAL,
			PRIMARY KEY (instrument, date)
		);

		CREATE TABLE IF NOT EXISTS last_signal (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			instrument TEXT    NOT NULL,
			signal     TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_last_signal_instrument ON last_signal (instrument, id);
	`)
	return err
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
