package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect holds the SQL text that differs between drivers.
type Dialect struct {
	Name   string
	Schema string
	Get    string
	Upsert string
	Delete string
}

var (
	DialectSQLite = Dialect{
		Name: "sqlite",
		Schema: `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		Get: `SELECT value FROM kv_entries WHERE key = ?`,
		Upsert: `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		Delete: `DELETE FROM kv_entries WHERE key = ?`,
	}

	DialectPostgres = Dialect{
		Name: "postgres",
		Schema: `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		Get: `SELECT value FROM kv_entries WHERE key = $1`,
		Upsert: `
		INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		Delete: `DELETE FROM kv_entries WHERE key = $1`,
	}
)

var _ KV = (*SQLKV)(nil)

// SQLKV stores every key as one row of kv_entries.
type SQLKV struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLKV creates the table if needed.
func NewSQLKV(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLKV, error) {
	if _, err := db.ExecContext(ctx, dialect.Schema); err != nil {
		return nil, fmt.Errorf("%s migrate: %w", dialect.Name, err)
	}
	return &SQLKV{db: db, dialect: dialect}, nil
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.Get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Upsert, key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Delete, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Healthy(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

func (s *SQLKV) Close() error { return s.db.Close() }
