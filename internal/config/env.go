package config

import (
	"os"
	"strconv"
)

// FromEnv applies environment overrides on top of cfg.
// Falls back to the given values if variables are not set.
func FromEnv(cfg *Config) *Config {
	if v := os.Getenv("FARMDESK_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getEnvInt("FARMDESK_API_TIMEOUT_SECONDS"); v > 0 {
		cfg.API.TimeoutSeconds = v
	}
	if v := getEnvInt("FARMDESK_CACHE_STALE_SECONDS"); v > 0 {
		cfg.Cache.StaleAfterSeconds = v
	}
	if v := getEnvInt("FARMDESK_CACHE_EVICT_SECONDS"); v > 0 {
		cfg.Cache.EvictAfterSeconds = v
	}
	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
