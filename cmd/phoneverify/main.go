// Command phoneverify serves the phone OTP verification API.
//
// Configuration is read from .env and the environment; see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MrEthical07/phoneverify"
	"github.com/MrEthical07/phoneverify/gateway/console"
	"github.com/MrEthical07/phoneverify/gateway/smslocal"
	"github.com/MrEthical07/phoneverify/gateway/twilio"
	"github.com/MrEthical07/phoneverify/httpapi"
	"github.com/MrEthical07/phoneverify/internal/config"
	"github.com/MrEthical07/phoneverify/metrics/export/prometheus"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "phoneverify: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	builder := phoneverify.New().
		WithConfig(cfg.Engine()).
		WithRedis(rdb).
		WithGateway(newGateway(cfg)).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true)
	if cfg.AuditLog {
		builder = builder.WithAuditSink(phoneverify.NewSlogSink(logger.With("component", "audit")))
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := engine.Ping(pingCtx); err != nil {
		logger.Warn("redis not reachable at startup", "addr", cfg.RedisAddr(), "error", err)
	}
	cancel()

	srv := &http.Server{
		Addr: cfg.ListenAddr(),
		Handler: httpapi.NewHandler(engine, httpapi.Options{
			Logger:     logger,
			Metrics:    prometheus.NewExporter(engine).Handler(),
			TrustProxy: cfg.TrustProxy,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "provider", cfg.MessagingProvider, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

func newGateway(cfg *config.Config) phoneverify.MessagingGateway {
	switch cfg.MessagingProvider {
	case config.ProviderSMSLocal:
		return smslocal.NewClient(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
	case config.ProviderConsole:
		return console.New(os.Stdout)
	default:
		return twilio.NewClient(cfg.TwilioSID, cfg.TwilioAuth)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
