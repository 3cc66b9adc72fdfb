package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API   APIConfig   `yaml:"api" json:"api"`
	Cache CacheConfig `yaml:"cache" json:"cache"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url" json:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

type CacheConfig struct {
	StaleAfterSeconds int `yaml:"stale_after_seconds" json:"stale_after_seconds"`
	EvictAfterSeconds int `yaml:"evict_after_seconds" json:"evict_after_seconds"`
}

func Default() *Config {
	return &Config{
		API:   APIConfig{BaseURL: "http://localhost:8080", TimeoutSeconds: 15},
		Cache: CacheConfig{StaleAfterSeconds: 30, EvictAfterSeconds: 600},
	}
}

// Load reads a yaml config file, falling back to defaults when the file is
// absent, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FromEnv(cfg), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return FromEnv(cfg), nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url cannot be empty")
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) StaleAfter() time.Duration {
	if c.Cache.StaleAfterSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Cache.StaleAfterSeconds) * time.Second
}

func (c *Config) EvictAfter() time.Duration {
	if c.Cache.EvictAfterSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Cache.EvictAfterSeconds) * time.Second
}
