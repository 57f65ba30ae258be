package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr    string     `env:"HTTP_ADDR" envDefault:":8000"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	CatalogFile string     `env:"CATALOG_FILE"`
	SPADir      string     `env:"SPA_DIR"`

	AnnounceMaxBytes int64 `env:"ANNOUNCE_MAX_BYTES" envDefault:"8388608"`

	// RedisURL switches announcements to a shared Pub/Sub channel so several
	// instances serve one audience. Empty keeps everything in-process.
	RedisURL     string `env:"REDIS_URL"`
	RedisChannel string `env:"REDIS_CHANNEL" envDefault:"resultboard:announce"`

	ViewerQueueSize    int           `env:"VIEWER_QUEUE_SIZE" envDefault:"16"`
	ViewerWriteTimeout time.Duration `env:"VIEWER_WRITE_TIMEOUT" envDefault:"5s"`
	ViewerPingInterval time.Duration `env:"VIEWER_PING_INTERVAL" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.ViewerQueueSize < 1 {
		return nil, fmt.Errorf("VIEWER_QUEUE_SIZE must be at least 1, got %d", cfg.ViewerQueueSize)
	}
	if cfg.AnnounceMaxBytes < 1 {
		return nil, fmt.Errorf("ANNOUNCE_MAX_BYTES must be at least 1, got %d", cfg.AnnounceMaxBytes)
	}
	return &cfg, nil
}
