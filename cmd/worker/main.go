package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"absensi/internal/app"
	"absensi/internal/config"
	"absensi/internal/logging"
	"absensi/internal/notify"
)

// Worker consumes check-in messages from the shared queue and forwards them
// to the notification gateway.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.QueueBackend != "redis" {
		logger.Fatal("worker needs QUEUE_BACKEND=redis; the memory queue is drained by the api process",
			zap.String("queue_backend", cfg.QueueBackend))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	q, closeQueue := app.OpenQueue(cfg)
	defer func() { _ = closeQueue() }()

	client := notify.New(cfg.NotifyURL, cfg.NotifySkip)
	if client.Skip {
		logger.Warn("notification delivery disabled, messages will only be logged")
	}

	d := notify.NewDispatcher(client, logger.Named("notify"))
	logger.Info("worker started, waiting for messages", zap.String("queue", cfg.QueueKey))
	if err := d.Run(ctx, q); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
	logger.Info("worker stopped")
}
