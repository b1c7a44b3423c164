package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/escolaplus/importer/internal/config"
	"github.com/escolaplus/importer/internal/importer"
	"github.com/escolaplus/importer/internal/logging"
	"github.com/escolaplus/importer/internal/notify"
	"github.com/escolaplus/importer/internal/storage"
	"github.com/escolaplus/importer/internal/web"
)

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"mode", cfg.Import.Mode,
		"default_city", cfg.Import.DefaultCity,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	importer.MaxRows = cfg.Import.MaxRows

	mode, err := importer.ParseMode(cfg.Import.Mode)
	if err != nil {
		slog.Error("invalid import mode", "error", err)
		os.Exit(1)
	}

	service := importer.NewService(
		storage.NewStudentStore(pool),
		notify.NewConsoleNotifier(),
		importer.Options{
			Mode:             mode,
			DefaultCity:      cfg.Import.DefaultCity,
			DefaultState:     cfg.Import.DefaultState,
			DefaultBirthDate: cfg.Import.DefaultBirthDate,
		},
	)

	server := web.NewServer(service, cfg)

	// Graceful shutdown on SIGINT/SIGTERM.
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Addr())
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
