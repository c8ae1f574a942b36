// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
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
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// AggregationConfig provides tuning knobs for the contact aggregation engine.
// Kept as its own least-privilege interface so the scheduler and matcher
// never need the whole Config struct, following the same per-concern
// config interface split as DatabaseConfig and HTTPConfig.
type AggregationConfig interface {
	GetAggregationDelay() time.Duration
	GetScoreThresholdPrimary() int
	GetScoreThresholdSecondary() int
	GetScoreThresholdSuggest() int
	GetSuggestionMax() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env         string
	HTTPAddr    string
	DatabaseURL string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	// Aggregation tuning: score thresholds and the background pass delay.
	AggregationDelay       time.Duration
	ScoreThresholdPrimary  int
	ScoreThresholdSecondary int
	ScoreThresholdSuggest  int
	SuggestionMax          int
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// AggregationConfig implementation
func (c *Config) GetAggregationDelay() time.Duration  { return c.AggregationDelay }
func (c *Config) GetScoreThresholdPrimary() int       { return c.ScoreThresholdPrimary }
func (c *Config) GetScoreThresholdSecondary() int     { return c.ScoreThresholdSecondary }
func (c *Config) GetScoreThresholdSuggest() int       { return c.ScoreThresholdSuggest }
func (c *Config) GetSuggestionMax() int               { return c.SuggestionMax }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		AggregationDelay:        mustDuration(getEnv("AGGREGATION_DELAY", "4s")),
		ScoreThresholdPrimary:   mustInt(getEnv("AGGREGATION_SCORE_THRESHOLD_PRIMARY", "28")),
		ScoreThresholdSecondary: mustInt(getEnv("AGGREGATION_SCORE_THRESHOLD_SECONDARY", "20")),
		ScoreThresholdSuggest:   mustInt(getEnv("AGGREGATION_SCORE_THRESHOLD_SUGGEST", "10")),
		SuggestionMax:           mustInt(getEnv("AGGREGATION_SUGGESTION_MAX", "3")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
