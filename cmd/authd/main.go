package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/altonlabs/authd/internal/account"
	"github.com/altonlabs/authd/internal/auth"
	"github.com/altonlabs/authd/internal/config"
	"github.com/altonlabs/authd/internal/logger"
	"github.com/altonlabs/authd/internal/metrics"
	"github.com/altonlabs/authd/internal/notify"
	"github.com/altonlabs/authd/internal/password"
	"github.com/altonlabs/authd/internal/server"
	"github.com/altonlabs/authd/internal/session"
	"github.com/altonlabs/authd/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	appLogger := logger.NewDefault(cfg.App.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		appLogger.Error("redis ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cost := cfg.Security.PasswordCost
	hasher, err := password.NewHasher(password.Config{
		Memory:      cost.Memory,
		Time:        cost.Time,
		Parallelism: cost.Parallelism,
		SaltLength:  cost.SaltLength,
		KeyLength:   cost.KeyLength,
	})
	if err != nil {
		appLogger.Error("init hasher failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	codec, err := token.NewCodec(cfg.Security.JWTSecret, cfg.Security.SessionTTL)
	if err != nil {
		appLogger.Error("init token codec failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := account.NewStore(rdb, "")
	mailer := notify.NewSMTPMailer(&cfg.Email, appLogger)
	m := metrics.New()

	svc := auth.NewService(store, hasher, codec, mailer, m, appLogger, auth.Config{
		ClientURL: cfg.App.ClientURL,
		VerifyTTL: cfg.Security.VerifyTTL,
		ResetTTL:  cfg.Security.ResetTTL,
	})
	issuer := session.NewIssuer(codec, cfg.Security.SessionTTL, cfg.Security.Hardened)

	srv := server.NewServer(cfg, appLogger, svc, issuer, rdb, m)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTPAddr,
		Handler: srv.Router(),
	}

	go func() {
		appLogger.Info("auth server listening", slog.String("addr", cfg.App.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server run failed", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down auth server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	if err := rdb.Close(); err != nil {
		appLogger.Error("close redis failed", slog.String("error", err.Error()))
	}
}
