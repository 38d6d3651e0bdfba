package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Config is the YAML file read by --config. Durations accept day and week
// units as well ("1d12h").
type Config struct {
	Redis struct {
		URL      string `yaml:"url"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`
	AcquireTimeout string `yaml:"acquire_timeout"`
	MaxArchiveSize int    `yaml:"max_archive_size"`
	LogLevel       string `yaml:"log_level"`

	acquireTimeout time.Duration
}

func defaultConfig() Config {
	var c Config
	c.Redis.URL = "redis://localhost:6379/0"
	c.LogLevel = "info"
	return c
}

// loadConfig reads path on top of the defaults; an empty path keeps the
// defaults.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(buf, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return c, c.resolve()
}

func (c *Config) resolve() error {
	if c.Redis.URL == "" {
		return errors.New("config: redis.url is required")
	}
	if c.Redis.PoolSize < 0 {
		return fmt.Errorf("config: redis.pool_size must be >= 0, got %d", c.Redis.PoolSize)
	}
	c.acquireTimeout = 0
	if c.AcquireTimeout != "" {
		d, err := str2duration.ParseDuration(c.AcquireTimeout)
		if err != nil {
			return fmt.Errorf("config: acquire_timeout %q: %w", c.AcquireTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("config: acquire_timeout must be >= 0, got %s", c.AcquireTimeout)
		}
		c.acquireTimeout = d
	}
	return nil
}
