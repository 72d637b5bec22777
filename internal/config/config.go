package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"

	IDSchemeSequential = "sequential"
	IDSchemeUUID       = "uuid"
)

type Config struct {
	Environment    string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string `env:"LOG_FILE" envDefault:"location-creator.log"`
	LocationsFile  string `env:"LOCATIONS_FILE" envDefault:"locations.json"`
	ImageDir       string `env:"IMAGE_DIR" envDefault:"images"`
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	RedisURL       string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisKey       string `env:"REDIS_KEY" envDefault:"locations"`
	IDScheme       string `env:"ID_SCHEME" envDefault:"sequential"`

	LogLevel slog.Level
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	cfg.StorageBackend = strings.ToLower(cfg.StorageBackend)
	cfg.IDScheme = strings.ToLower(cfg.IDScheme)

	switch cfg.StorageBackend {
	case BackendFile, BackendRedis:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q (supported: %s, %s)", cfg.StorageBackend, BackendFile, BackendRedis)
	}

	switch cfg.IDScheme {
	case IDSchemeSequential, IDSchemeUUID:
	default:
		return nil, fmt.Errorf("invalid ID_SCHEME %q (supported: %s, %s)", cfg.IDScheme, IDSchemeSequential, IDSchemeUUID)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
