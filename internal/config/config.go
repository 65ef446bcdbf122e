// Package config holds the process configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roomportal/backend/internal/storage"
)

// Config is the server configuration assembled from flags and environment.
type Config struct {
	// Addr is the HTTP listen address
	Addr string

	// DataDir holds the SQLite database
	DataDir string

	// StaticDir holds the built frontend
	StaticDir string

	// Version is reported by /api/health
	Version string

	// RedisAddr enables the cross-instance change bus when set
	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	// Timezone used for cleaning dates
	Timezone string

	LogLevel  string
	LogFormat string
}

// Defaults for settings that are not flags.
const (
	DefaultTimezone  = "Europe/Madrid"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// FromEnv returns the configuration read from environment variables.
// Flag-backed fields are left for the caller to fill in.
func FromEnv() Config {
	return Config{
		Version:       getEnv("VERSION", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisChannel:  getEnv("REDIS_CHANNEL", ""),
		Timezone:      getEnv("PORTAL_TIMEZONE", DefaultTimezone),
		LogLevel:      getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:     getEnv("LOG_FORMAT", DefaultLogFormat),
	}
}

// getEnv returns an environment variable value or a default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// DatabasePath returns the SQLite file inside DataDir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, storage.DatabaseFile)
}

// UseRedis returns true if a Redis address is configured.
func (c Config) UseRedis() bool {
	return c.RedisAddr != ""
}

// Location loads the configured time zone.
func (c Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", name, err)
	}
	return loc, nil
}
