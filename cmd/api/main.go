package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"absensi/internal/api"
	"absensi/internal/app"
	"absensi/internal/config"
	"absensi/internal/logging"
	"absensi/internal/notify"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, kv, err := app.OpenState(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer kv.Close()

	q, closeQueue := app.OpenQueue(cfg)
	defer func() { _ = closeQueue() }()

	// The memory queue has no other consumer, so notifications go out from here.
	if cfg.QueueBackend != "redis" {
		d := notify.NewDispatcher(notify.New(cfg.NotifyURL, cfg.NotifySkip), logger.Named("notify"))
		go func() {
			if err := d.Run(ctx, q); err != nil {
				logger.Error("dispatcher stopped", zap.Error(err))
			}
		}()
	}

	h := api.New(state, kv, q, api.TokenConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		TTL:        cfg.AccessTTL,
	}, logger.Named("api"))
	r := api.NewRouter(h, api.RouterOptions{RateLimitPerMin: cfg.RateLimitPerMin})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}
