// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure-Go driver, so the binary stays CGo-free
// and cross-compiles anywhere. The database runs in WAL mode (concurrent
// reads during a write) with foreign keys enabled; request rows cascade
// away with their donation.
//
// Uniqueness rules live here as UNIQUE indexes, not as application-level
// read-then-write checks: users(email) and requests(donation_id, user_id).
// Constraint violations surface to services as apperror.ErrConflict.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the connection pool. The per-entity repositories share it and
// are reached through Users(), Donations() and Requests().
type DB struct {
	conn *sql.DB
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserRepo { return &UserRepo{conn: db.conn} }

// Donations returns the donation repository backed by this database.
func (db *DB) Donations() *DonationRepo { return &DonationRepo{conn: db.conn} }

// Requests returns the request repository backed by this database.
func (db *DB) Requests() *RequestRepo { return &RequestRepo{conn: db.conn} }

// New opens (or creates) the database at dbPath and runs migrations.
// Avoid ":memory:": each pooled connection would get its own database.
func New(dbPath string) (*DB, error) {
	// foreign_keys is per-connection state, so it must go in the DSN:
	// the driver then replays it on every connection the pool opens.
	// A plain Exec would only reach whichever connection ran it.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
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

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			google_id     TEXT NOT NULL DEFAULT '',
			image         TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS donations (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			images      TEXT NOT NULL DEFAULT '[]',
			user_id     TEXT REFERENCES users(id),
			state       TEXT NOT NULL DEFAULT 'Activo',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_donations_state_created ON donations(state, created_at);
		CREATE INDEX IF NOT EXISTS idx_donations_user_id ON donations(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating donations table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS requests (
			id              TEXT PRIMARY KEY,
			donation_id     TEXT NOT NULL REFERENCES donations(id) ON DELETE CASCADE,
			user_id         TEXT NOT NULL REFERENCES users(id),
			requester_name  TEXT NOT NULL DEFAULT '',
			requester_email TEXT NOT NULL DEFAULT '',
			justification   TEXT NOT NULL,
			phone           TEXT NOT NULL,
			state           TEXT NOT NULL DEFAULT 'pendiente',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(donation_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_requests_user_id ON requests(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating requests table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The pure-Go driver exposes it only through the message text
// ("UNIQUE constraint failed: ..."), so we match on that.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
