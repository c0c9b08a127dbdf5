package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
	"todobin/backend"
)

// schemaVersion is bumped whenever initSchema changes the kv table.
const schemaVersion = 1

// Backend implements backend.Store using SQLite
type Backend struct {
	db   *sql.DB
	path string
}

func init() {
	backend.RegisterWithPriority("sqlite", func(opts backend.Options) (backend.Store, error) {
		return New(opts.Path)
	}, 10)
}

// New opens (or creates) the database at path and initializes the schema.
// ":memory:" gives a private in-memory database.
func New(path string) (*Backend, error) {
	if path == "" {
		return nil, errors.New("sqlite backend requires a database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single writer; also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	b := &Backend{db: db, path: path}
	if err := b.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return b, nil
}

// initSchema creates the database tables if they don't exist
func (b *Backend) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			modified TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		);
	`

	if _, err := b.db.Exec(schema); err != nil {
		return err
	}

	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := b.db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the value stored under key.
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set overwrites the value stored under key.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, modified) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, modified = excluded.modified`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

// Keys returns all stored keys in lexical order.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}

	if keys == nil {
		keys = []string{}
	}
	return keys, rows.Err()
}

// Modified returns when key was last written.
func (b *Backend) Modified(ctx context.Context, key string) (time.Time, bool, error) {
	var s string
	err := b.db.QueryRowContext(ctx, "SELECT modified FROM kv WHERE key = ?", key).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t, true, nil
}

// Location returns the database path.
func (b *Backend) Location() string {
	if b.path == ":memory:" {
		return ""
	}
	return b.path
}

// Close closes the database connection
func (b *Backend) Close() error {
	return b.db.Close()
}

// Verify interface compliance at compile time
var (
	_ backend.Store    = (*Backend)(nil)
	_ backend.Lister   = (*Backend)(nil)
	_ backend.Modifier = (*Backend)(nil)
	_ backend.Locator  = (*Backend)(nil)
)
