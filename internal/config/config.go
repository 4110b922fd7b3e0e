// Package config loads the server configuration from the environment.
//
// Values come from real environment variables first; a .env file in the
// working directory, if present, fills in the ones that are unset.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	DBPath   string `env:"DB_PATH" envDefault:"data/market.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DefaultCurrency prices listings submitted without a currency.
	DefaultCurrency string `env:"DEFAULT_CURRENCY" envDefault:"TON"`

	Telegram struct {
		// BotToken enables the chat bot and init data signature checks.
		// Leave it empty to run the HTTP server alone.
		BotToken   string        `env:"BOT_TOKEN"`
		WebAppURL  string        `env:"WEBAPP_URL"`
		InitMaxAge time.Duration `env:"INIT_DATA_MAX_AGE" envDefault:"24h"`
	}

	Manifest struct {
		AppURL  string `env:"MANIFEST_APP_URL"`
		Name    string `env:"MANIFEST_NAME" envDefault:"Gift Market"`
		IconURL string `env:"MANIFEST_ICON_URL"`
	}
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: PORT %d out of range", cfg.Port)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BotEnabled reports whether a bot token is configured.
func (c *Config) BotEnabled() bool {
	return c.Telegram.BotToken != ""
}

// ParseLevel maps LOG_LEVEL to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
	}
	return level, nil
}
