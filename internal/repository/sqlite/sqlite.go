// Package sqlite implements the repository interfaces on top of SQLite.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 needs CGo and a C toolchain. modernc.org/sqlite is a pure Go
// translation of SQLite, so the binary cross-compiles like any other Go code.
//
// ONE CONNECTION:
// database/sql hands out pooled connections. PRAGMAs are per connection, and
// every connection to ":memory:" gets its own empty database. Capping the pool
// at one connection keeps the pragmas and the in-memory schema visible to
// every query. SQLite serialises writers anyway, so the cap costs little.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB owns the connection and hands out the per-table stores.
type DB struct {
	conn  *sql.DB
	blogs *BlogDB
	users *UserDB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
//   - "data/bloglist.db" → file-based database
//   - ":memory:"         → in-memory database, gone on Close
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight.
	// ":memory:" silently stays in "memory" journal mode.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	db.blogs = &BlogDB{conn: conn}
	db.users = &UserDB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Blogs returns the blog store.
func (db *DB) Blogs() *BlogDB { return db.blogs }

// Users returns the user store.
func (db *DB) Users() *UserDB { return db.users }

// Ping checks that the database is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Every statement is idempotent.
//
// user_blogs is the ordered per-user index of blog ids. It is written after
// the blog row, in a separate statement, so a blog may exist without an index
// entry. The reverse cannot happen: deleting a blog cascades to its entry.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS blogs (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			author     TEXT NOT NULL DEFAULT '',
			url        TEXT NOT NULL,
			likes      INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_blogs_user_id ON blogs(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating blogs table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_blogs (
			seq     INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			blog_id TEXT NOT NULL REFERENCES blogs(id) ON DELETE CASCADE,
			UNIQUE (user_id, blog_id)
		);
		CREATE INDEX IF NOT EXISTS idx_user_blogs_blog_id ON user_blogs(blog_id);
	`)
	if err != nil {
		return fmt.Errorf("creating user_blogs table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// extended result codes are off on this connection
			return strings.Contains(se.Error(), "UNIQUE constraint failed")
		}
		return false
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
