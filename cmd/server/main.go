package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Skotchmaster/account_service/internal/cache"
	"github.com/Skotchmaster/account_service/internal/config"
	"github.com/Skotchmaster/account_service/internal/db"
	"github.com/Skotchmaster/account_service/internal/events"
	"github.com/Skotchmaster/account_service/internal/hash"
	"github.com/Skotchmaster/account_service/internal/health"
	"github.com/Skotchmaster/account_service/internal/logging"
	"github.com/Skotchmaster/account_service/internal/repo"
	"github.com/Skotchmaster/account_service/internal/service"
	"github.com/Skotchmaster/account_service/internal/tokens"
	httpserver "github.com/Skotchmaster/account_service/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "account_service", "env", cfg.Environment)
	slog.SetDefault(logger)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	gdb, err := db.Open(startCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database_connect_failed", "error", err)
		os.Exit(1)
	}
	store := repo.New(gdb)
	if err := store.Migrate(startCtx); err != nil {
		logger.Error("database_migrate_failed", "error", err)
		os.Exit(1)
	}

	rc, err := cache.New(startCtx, cache.OptionsFromConfig(cfg))
	if err != nil {
		logger.Error("redis_connect_failed", "addr", cfg.Redis.Addr(), "error", err)
		os.Exit(1)
	}

	prod := events.New(cfg.Kafka.Brokers)
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("events_disabled", "reason", "KAFKA_BROKERS not set")
	}

	signer := &tokens.Signer{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	}
	sessions := &service.SessionService{
		Tokens: store, Users: store, Signer: signer,
		Events: prod, Topic: cfg.Kafka.Topic,
	}
	authSvc := &service.AuthService{
		Users: store, Hasher: hash.NewHasher(cfg.BcryptCost), Sessions: sessions,
		Events: prod, Topic: cfg.Kafka.Topic,
	}

	e := httpserver.New(&httpserver.Deps{
		Logger:       logger,
		FrontendURL:  cfg.FrontendURL,
		BodyLimit:    cfg.BodyLimit,
		IsProduction: cfg.IsProduction(),
		Signer:       signer,
		Auth: &httpserver.AuthHTTP{
			Svc:      authSvc,
			Sessions: sessions,
			Cookies:  httpserver.Cookies{Secure: cfg.IsProduction()},
		},
		Health: &httpserver.HealthHTTP{Checker: health.NewChecker(store, rc, cfg.Environment)},
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server_started", "addr", srv.Addr, "backend_url", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting_down", "signal", sig.String())

	go func() {
		<-quit
		logger.Warn("force_exit")
		os.Exit(1)
	}()

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if err := rc.Close(); err != nil {
		logger.Error("redis_close_error", "error", err)
	}
	if err := prod.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
