// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
// Registry credentials are injected through these interfaces; clients never
// read ambient global state at call time.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsDatabaseEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// BAGConfig provides settings for the Kadaster BAG Individuele Bevragingen API.
type BAGConfig interface {
	GetBAGAPIURL() string
	GetBAGAPIKey() string
	IsBAGEnabled() bool
}

// WalkScoreConfig provides settings for the WalkScore scoring API.
type WalkScoreConfig interface {
	GetWalkScoreAPIURL() string
	GetWalkScoreAPIKey() string
	IsWalkScoreEnabled() bool
}

// RedisConfig provides settings for the Redis lookup cache.
type RedisConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetGeodataCacheTTL() time.Duration
	IsRedisEnabled() bool
}

// AggregationConfig provides settings for the geodata aggregation fan-out.
type AggregationConfig interface {
	GetFanOutTimeout() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	CORSAllowAll    bool
	CORSOrigins     []string
	CORSAllowCreds  bool
	BAGAPIURL       string
	BAGAPIKey       string
	WalkScoreAPIURL string
	WalkScoreAPIKey string
	RedisAddr       string
	RedisPassword   string
	GeodataCacheTTL time.Duration
	FanOutTimeout   time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }
func (c *Config) IsDatabaseEnabled() bool {
	return c.DatabaseURL != ""
}

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// BAGConfig implementation
func (c *Config) GetBAGAPIURL() string { return c.BAGAPIURL }
func (c *Config) GetBAGAPIKey() string { return c.BAGAPIKey }
func (c *Config) IsBAGEnabled() bool   { return c.BAGAPIKey != "" }

// WalkScoreConfig implementation
func (c *Config) GetWalkScoreAPIURL() string { return c.WalkScoreAPIURL }
func (c *Config) GetWalkScoreAPIKey() string { return c.WalkScoreAPIKey }
func (c *Config) IsWalkScoreEnabled() bool   { return c.WalkScoreAPIKey != "" }

// RedisConfig implementation
func (c *Config) GetRedisAddr() string              { return c.RedisAddr }
func (c *Config) GetRedisPassword() string          { return c.RedisPassword }
func (c *Config) GetGeodataCacheTTL() time.Duration { return c.GeodataCacheTTL }
func (c *Config) IsRedisEnabled() bool              { return c.RedisAddr != "" }

// AggregationConfig implementation
func (c *Config) GetFanOutTimeout() time.Duration { return c.FanOutTimeout }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CORSAllowAll:    corsAllowAll,
		CORSOrigins:     corsOrigins,
		CORSAllowCreds:  strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		BAGAPIURL:       getEnv("BAG_API_URL", "https://api.bag.kadaster.nl/lvbag/individuelebevragingen/v2"),
		BAGAPIKey:       getEnv("BAG_API_KEY", ""),
		WalkScoreAPIURL: getEnv("WALKSCORE_API_URL", "https://api.walkscore.com/score"),
		WalkScoreAPIKey: getEnv("WALKSCORE_API_KEY", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		GeodataCacheTTL: mustDuration(getEnv("GEODATA_CACHE_TTL", "24h")),
		FanOutTimeout:   mustDuration(getEnv("GEODATA_FANOUT_TIMEOUT", "45s")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if c.FanOutTimeout <= 0 {
		return fmt.Errorf("GEODATA_FANOUT_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("invalid duration %q: %v", value, err))
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
