package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rpggio/tabsync/internal/config"
	"github.com/rpggio/tabsync/internal/domain/record"
	"github.com/rpggio/tabsync/internal/domain/tab"
	"github.com/rpggio/tabsync/internal/logging"
	"github.com/rpggio/tabsync/internal/repository"
	"github.com/rpggio/tabsync/internal/sqlite"
	"github.com/rpggio/tabsync/internal/transport"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(sqlite.SchemaServer); err != nil {
		return err
	}

	tabRepo := sqlite.NewTabRepository(db)
	recordRepo := sqlite.NewRecordRepository(db)
	keys := sqlite.NewAPIKeyRepository(db)

	var auth func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		if err := bootstrapKey(cfg.Auth, keys, logger); err != nil {
			return err
		}
		auth = transport.AuthMiddleware(keys)
	}

	handler := transport.NewServer(transport.Services{
		Tabs:    tab.NewService(tabRepo, logger),
		Records: record.NewService(recordRepo, tabRepo, logger),
	}, auth, logger)

	addr := cfg.Server.Addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
	return nil
}

// bootstrapKey registers the configured token so a fresh database is usable.
func bootstrapKey(cfg config.AuthConfig, keys *sqlite.APIKeyRepository, logger *slog.Logger) error {
	if cfg.BootstrapToken == "" {
		return nil
	}
	if cfg.BootstrapOwner == "" {
		return fmt.Errorf("auth.bootstrap_owner is required with a bootstrap token")
	}
	err := keys.AddKey(context.Background(), cfg.BootstrapToken, cfg.BootstrapOwner, "bootstrap")
	if errors.Is(err, repository.ErrConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("register bootstrap key: %w", err)
	}
	logger.Info("bootstrap api key registered", "owner", cfg.BootstrapOwner)
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
