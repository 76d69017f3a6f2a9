// Package app assembles the pieces every binary needs from the config.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"absensi/internal/attendance"
	"absensi/internal/config"
	"absensi/internal/queue"
	"absensi/internal/store"
)

// StoreOptions maps the config onto the KV backend options.
func StoreOptions(cfg config.App) store.Options {
	return store.Options{
		Backend:     cfg.StoreBackend,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
	}
}

// OpenState connects the KV backend and loads the application state from it.
// The caller owns the returned KV and must close it.
func OpenState(ctx context.Context, cfg config.App, log *zap.Logger) (*attendance.Store, store.KV, error) {
	kv, err := store.Open(ctx, StoreOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	state, err := attendance.NewStore(ctx, kv,
		attendance.WithOrg(cfg.OrgCode),
		attendance.WithLocation(cfg.Location()),
		attendance.WithDailyGuard(cfg.DailyGuard),
		attendance.WithLogger(log.Named("state")),
	)
	if err != nil {
		_ = kv.Close()
		return nil, nil, err
	}
	log.Info("state store ready",
		zap.String("backend", cfg.StoreBackend),
		zap.String("org", state.Org()),
		zap.Bool("daily_guard", cfg.DailyGuard))
	return state, kv, nil
}

// OpenQueue returns the check-in queue and a close func for its connection.
func OpenQueue(cfg config.App) (queue.Queue, func() error) {
	if cfg.QueueBackend == "redis" {
		r := store.NewRedis(cfg.RedisAddr)
		return queue.NewRedisQueue(r.Client, cfg.QueueKey), r.Client.Close
	}
	return queue.NewInMemory(64), func() error { return nil }
}
