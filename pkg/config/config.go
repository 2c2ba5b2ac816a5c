// Package config loads process settings from the environment. Domain inputs
// (benchmarks, sites, tables) are files read by the loader, not settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Config holds application configuration
type Config struct {
	Port        string
	DatabaseURL string // empty disables run persistence
	LogLevel    string
	DataDir     string // attrition and seasonality tables
	Environment string
	Concurrency int
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DataDir:     getEnv("DATA_DIR", "data"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	n, err := strconv.Atoi(getEnv("CONCURRENCY", "4"))
	if err != nil || n < 1 {
		return nil, fmt.Errorf("CONCURRENCY must be a positive integer, got %q", os.Getenv("CONCURRENCY"))
	}
	cfg.Concurrency = n

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NewLogger builds the JSON logger every entry point uses.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
