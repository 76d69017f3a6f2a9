package store

import (
	"context"
	"errors"
	"fmt"
)

// KV is the durable key-value store the application state is mirrored to.
// Values are opaque bytes; Get reports found=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Healthy(ctx context.Context) bool
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options selects and configures a KV backend.
type Options struct {
	Backend     string
	SQLitePath  string
	DatabaseURL string
	RedisAddr   string
	RedisPrefix string
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite, "":
		db, err := NewSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return openSQLKV(ctx, db, DialectSQLite)
	case BackendPostgres:
		db, err := NewDB(opts.DatabaseURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return openSQLKV(ctx, db, DialectPostgres)
	case BackendRedis:
		r := NewRedis(opts.RedisAddr)
		if !r.Healthy(ctx) {
			_ = r.Client.Close()
			return nil, errors.New("redis: ping failed at " + opts.RedisAddr)
		}
		return NewRedisKV(r.Client, opts.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

// openSQLKV takes ownership of db: it is closed when the schema step fails.
func openSQLKV(ctx context.Context, db *DB, dialect Dialect) (KV, error) {
	kv, err := NewSQLKV(ctx, db.Client, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv, nil
}
