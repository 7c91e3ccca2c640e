package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ListenAddr      string        `envconfig:"LISTEN_ADDR" default:":8080"`
	DBPath          string        `envconfig:"DB_PATH" default:"poscore.db"`
	PlatformBaseURL string        `envconfig:"PLATFORM_BASE_URL" default:"http://localhost:9090"`
	PlatformAPIKey  string        `envconfig:"PLATFORM_API_KEY" default:""`
	SubmitTimeout   time.Duration `envconfig:"SUBMIT_TIMEOUT" default:"10s"`
	SyncInterval    time.Duration `envconfig:"SYNC_INTERVAL" default:"15s"`
	BackoffBase     time.Duration `envconfig:"BACKOFF_BASE" default:"2s"`
	BackoffMax      time.Duration `envconfig:"BACKOFF_MAX" default:"5m"`
	MaxSyncAttempts int           `envconfig:"MAX_SYNC_ATTEMPTS" default:"8"`
	SyncWorkers     int           `envconfig:"SYNC_WORKERS" default:"4"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
