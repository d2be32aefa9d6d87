// Package sqlite is the file-backed on-device Store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/utafrali/ScentGo/internal/storage"
	"github.com/utafrali/ScentGo/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`

// Store keeps key-value pairs in a single SQLite table.
type Store struct {
	db *sqlx.DB
}

// Open opens (and creates if needed) the database at dsn. Use ":memory:" for
// an in-process database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// One connection: SQLite serializes writers anyway, and ":memory:" is
	// per-connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", dsn, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure kv schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the value stored at key, or storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (value string, err error) {
	const q = `SELECT value FROM kv WHERE key = ?`
	ctx, end := database.TraceQuery(ctx, "sqlite", "KVGet", q)
	defer func() { end(err) }()

	if err = s.db.GetContext(ctx, &value, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts key and refreshes its updated_at stamp.
func (s *Store) Set(ctx context.Context, key, value string) (err error) {
	const q = `
INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	ctx, end := database.TraceQuery(ctx, "sqlite", "KVSet", q)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, q, key, value, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys lists every key starting with prefix, sorted ascending.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	// substr instead of LIKE so '_' and '%' in prefixes match literally.
	keys := []string{}
	err := s.db.SelectContext(ctx, &keys,
		`SELECT key FROM kv WHERE substr(key, 1, length(?)) = ? ORDER BY key`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys %q: %w", prefix, err)
	}
	return keys, nil
}

type kvRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// MultiGet fetches keys in one query. Missing keys are absent from the
// returned map.
func (s *Store) MultiGet(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	q, args, err := sqlx.In(`SELECT key, value FROM kv WHERE key IN (?)`, keys)
	if err != nil {
		return nil, fmt.Errorf("build multi-get: %w", err)
	}
	var rows []kvRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("multi-get %d keys: %w", len(keys), err)
	}
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// Ping checks the database handle is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.Store = (*Store)(nil)
