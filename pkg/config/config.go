package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mperativ/agentdir/pkg/cache"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Control plane
	CatalogBaseURL   string
	CatalogEventsURL string // websocket change-notification stream; empty disables the watcher
	CatalogTimeout   time.Duration
	CatalogRPS       float64 // client-side rate limit; 0 disables
	CatalogBurst     int

	// Caching
	CacheCapacity int
	CacheTTL      time.Duration
	ItemCacheTTL  time.Duration
	ItemCacheSize int64

	// Directory
	ListLimit int

	// Cache warming
	WarmInterval time.Duration // 0 disables the background warmer

	// Watch reconnect
	WatchDialTimeout      time.Duration
	WatchReconnectInitial time.Duration
	WatchReconnectMax     time.Duration
	WatchReconnectMult    float64
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Control plane defaults
		CatalogBaseURL:   getEnvOrDefault("CATALOG_BASE_URL", "http://localhost:9090"),
		CatalogEventsURL: os.Getenv("CATALOG_EVENTS_URL"),
		CatalogTimeout:   getDurationOrDefault("CATALOG_TIMEOUT", 30*time.Second),
		CatalogRPS:       getFloat64OrDefault("CATALOG_REQUESTS_PER_SECOND", 10.0),
		CatalogBurst:     getIntOrDefault("CATALOG_BURST", 5),

		// Caching defaults
		CacheCapacity: getIntOrDefault("CACHE_CAPACITY", cache.DefaultCapacity),
		CacheTTL:      getDurationOrDefault("CACHE_TTL", cache.DefaultTTL),
		ItemCacheTTL:  getDurationOrDefault("ITEM_CACHE_TTL", cache.DefaultTTL),
		ItemCacheSize: int64(getIntOrDefault("ITEM_CACHE_SIZE", 1000)),

		// Directory defaults
		ListLimit: getIntOrDefault("LIST_LIMIT", 50),

		// Warmer defaults
		WarmInterval: getDurationOrDefault("WARM_INTERVAL", 0),

		// Watch defaults
		WatchDialTimeout:      getDurationOrDefault("WATCH_DIAL_TIMEOUT", 10*time.Second),
		WatchReconnectInitial: getDurationOrDefault("WATCH_RECONNECT_INITIAL_DELAY", 1*time.Second),
		WatchReconnectMax:     getDurationOrDefault("WATCH_RECONNECT_MAX_DELAY", 30*time.Second),
		WatchReconnectMult:    getFloat64OrDefault("WATCH_RECONNECT_BACKOFF_MULTIPLIER", 2.0),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.CatalogBaseURL == "" {
		return fmt.Errorf("CATALOG_BASE_URL cannot be empty")
	}

	if c.CacheCapacity <= 0 {
		return fmt.Errorf("CACHE_CAPACITY must be positive, got %d", c.CacheCapacity)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must be non-negative, got %v", c.CacheTTL)
	}

	if c.ListLimit <= 0 {
		return fmt.Errorf("LIST_LIMIT must be positive, got %d", c.ListLimit)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
