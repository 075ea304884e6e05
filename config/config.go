package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App struct {
		Host string
		Port int
	}
	Backend struct {
		// BaseURL is the REST API root, e.g. http://localhost:3001/api.
		BaseURL string
		// MediaOrigin prefixes relative media paths, e.g. http://localhost:3001.
		MediaOrigin string
		// TimeoutSeconds bounds every outbound request.
		TimeoutSeconds int
	}
	Session struct {
		// Path of the sqlite file holding the session store.
		Path          string
		LifetimeHours int
	}
	Telegram struct {
		// Token enables the bot when non-empty.
		Token string
	}
	Sentry struct {
		DSN string
	}
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if cfg.App.Host == "" {
		cfg.App.Host = "0.0.0.0"
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 3000
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:3001/api"
	}
	if cfg.Backend.MediaOrigin == "" {
		cfg.Backend.MediaOrigin = "http://localhost:3001"
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = 30
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = "sessions.db"
	}
	if cfg.Session.LifetimeHours == 0 {
		cfg.Session.LifetimeHours = 24
	}

	return &cfg, nil
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.Session.LifetimeHours) * time.Hour
}
