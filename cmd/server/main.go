// Command server runs the gift marketplace: the HTTP API, the mini-app page
// and, when BOT_TOKEN is set, the Telegram chat bot.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/giftmarket/internal/config"
	"github.com/sakif/giftmarket/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Parse already rejected unknown levels.
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if !cfg.BotEnabled() {
		logger.Warn("BOT_TOKEN not set, init data signatures are not verified")
	}

	// === 3. DATABASE DIRECTORY ===
	// os.MkdirAll is a no-op when the directory exists.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
