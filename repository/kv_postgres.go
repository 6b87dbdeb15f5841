package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresKVStore stores values in the kv_store table
type PostgresKVStore struct {
	db *sql.DB
}

// Ensure PostgresKVStore implements KVStore
var _ KVStore = (*PostgresKVStore)(nil)

// NewPostgresKVStore wraps an open connection. The schema must exist (see db.EnsureSchema).
func NewPostgresKVStore(conn *sql.DB) *PostgresKVStore {
	return &PostgresKVStore{db: conn}
}

// Get reads a value by key
func (s *PostgresKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts a value
func (s *PostgresKVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (s *PostgresKVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *PostgresKVStore) Close() error {
	return s.db.Close()
}
