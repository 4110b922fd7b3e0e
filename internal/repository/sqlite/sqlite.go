// Package sqlite implements the repository interfaces on top of SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs
// no C toolchain. The database file is shared by the HTTP handlers and the
// chat bot; every status change is a single guarded UPDATE, which makes the
// file itself the only synchronization point between them.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so that ORDER BY on the TEXT column sorts
// chronologically. All stored times are UTC.
const timeLayout = "2006-01-02 15:04:05.000000000"

const busyTimeout = 5 * time.Second

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and creates the schema if needed.
//
// dbPath examples:
//   - "data/market.db" → file-based database (persistent)
//   - ":memory:"       → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	memory := dbPath == ":memory:"

	dsn := dbPath
	if !memory {
		// Pragmas in the DSN are applied to every pooled connection, not just
		// the first one.
		q := url.Values{}
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
		q.Add("_pragma", "journal_mode(WAL)")
		dsn = "file:" + dbPath + "?" + q.Encode()
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" is a separate empty database, so the
	// pool must never grow past one.
	if memory {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates both tables. It runs on every start.
//
// advertisements.user_id has no REFERENCES clause; listings may belong to
// users that never opened the mini-app.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id           TEXT PRIMARY KEY,
			name              TEXT NOT NULL DEFAULT '',
			surname           TEXT NOT NULL DEFAULT '',
			username          TEXT NOT NULL DEFAULT '',
			numofdeals        INTEGER NOT NULL DEFAULT 0 CHECK (numofdeals >= 0),
			wallet            TEXT NOT NULL DEFAULT '',
			pos               INTEGER NOT NULL DEFAULT 0 CHECK (pos >= 0),
			neg               INTEGER NOT NULL DEFAULT 0 CHECK (neg >= 0),
			volume            TEXT NOT NULL DEFAULT '0',
			registration_date TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS advertisements (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			username   TEXT NOT NULL DEFAULT '',
			collection TEXT NOT NULL,
			model      TEXT NOT NULL,
			number     TEXT NOT NULL,
			price      TEXT NOT NULL,
			currency   TEXT NOT NULL,
			created_at TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'sold', 'deleted'))
		);
		CREATE INDEX IF NOT EXISTS idx_ads_status_created ON advertisements(status, created_at);
		CREATE INDEX IF NOT EXISTS idx_ads_user_id ON advertisements(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating advertisements table: %w", err)
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}
