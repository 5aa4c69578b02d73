package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"translate-gateway/config"
	"translate-gateway/logger"
	"translate-gateway/middleware/requestid"
	"translate-gateway/redisconn"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisconn.Connect(ctx, redisconn.Config{
			URL:            cfg.RedisURL,
			RetryAttempts:  cfg.RedisRetryAttempts,
			RetryInterval:  cfg.RedisRetryInterval,
			ConnectTimeout: cfg.RedisConnectTimeout,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
	}

	app, err := newApp(ctx, cfg, log, rdb)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("gateway listening",
		"addr", cfg.Addr(),
		"provider_configured", cfg.ProviderConfigured(),
		"source_lang", cfg.SourceLang,
		"allowed_origins", cfg.AllowedOrigins,
	)
	log.Info("rate limit",
		"limit", cfg.RateLimit,
		"window", cfg.RateWindow,
		"store", app.storeKind,
		"key_header", cfg.RateKeyHeader,
		"trust_xff", cfg.TrustXFF,
		"stats_redis", cfg.RateStatsEnabled,
	)
	log.Info("concurrency", "max", cfg.ConcurrencyMax, "acquire_timeout", cfg.ConcurrencyTimeout)
	if !cfg.ProviderConfigured() {
		log.Warn("DEEPL_API_KEY is not set, /api/translate will answer 500")
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("gateway stopped")
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.AppEnv, "translate-gateway"),
		logger.WithContextExtractors(requestid.LogAttr),
	}
	if cfg.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(cfg.LogFormat)))
	}
	if cfg.LogLevel != "" {
		if lvl, err := logger.ParseLevel(cfg.LogLevel); err == nil {
			opts = append(opts, logger.WithLevel(lvl))
		}
	}
	return logger.New(opts...)
}
