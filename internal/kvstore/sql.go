package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dialect selects the placeholder style for SQL backends
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type sqlQueries struct {
	get    string
	upsert string
	delete string
}

var queriesByDialect = map[Dialect]sqlQueries{
	DialectPostgres: {
		get: `SELECT entry_value FROM kv_entries WHERE entry_key = $1`,
		upsert: `
			INSERT INTO kv_entries (entry_key, entry_value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (entry_key) DO UPDATE
			SET entry_value = EXCLUDED.entry_value, updated_at = EXCLUDED.updated_at
		`,
		delete: `DELETE FROM kv_entries WHERE entry_key = $1`,
	},
	DialectSQLite: {
		get: `SELECT entry_value FROM kv_entries WHERE entry_key = ?`,
		upsert: `
			INSERT INTO kv_entries (entry_key, entry_value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (entry_key) DO UPDATE
			SET entry_value = excluded.entry_value, updated_at = excluded.updated_at
		`,
		delete: `DELETE FROM kv_entries WHERE entry_key = ?`,
	},
}

type sqlStore struct {
	db *sql.DB
	q  sqlQueries
}

// NewSQLStore creates a Store over the kv_entries table.
// The table is created by the database package migrations.
func NewSQLStore(db *sql.DB, dialect Dialect) (Store, error) {
	q, ok := queriesByDialect[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return &sqlStore{db: db, q: q}, nil
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return []byte(value), nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.q.upsert, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.q.delete, key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
