// Package config reads hearth's settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the client settings.
type Config struct {
	// DBPath is the local SQLite database file.
	DBPath string
	// RemoteURL is the hearth-syncd base URL. Empty disables group features.
	RemoteURL string
	Debounce  time.Duration
	LogLevel  string
	// LogFormat is "human" or "json". Empty picks by terminal detection.
	LogFormat string
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DBPath:   filepath.Join(home, ".hearth", "hearth.db"),
		Debounce: 500 * time.Millisecond,
		LogLevel: "warn",
	}
}

// Load reads client configuration from environment variables,
// falling back to defaults for any unset values.
func Load() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("HEARTH_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("HEARTH_REMOTE_URL"); v != "" {
		cfg.RemoteURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("HEARTH_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Debounce = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("HEARTH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogFormat = os.Getenv("LOG_FORMAT")

	return cfg
}

// GroupsEnabled reports whether a shared store is configured.
func (c Config) GroupsEnabled() bool {
	return c.RemoteURL != ""
}

// ServerConfig holds the hearth-syncd settings.
type ServerConfig struct {
	Addr   string
	DBPath string
	// CORSAllowOrigins is empty unless CORS_ALLOW_ORIGINS is set.
	CORSAllowOrigins []string
	EnablePprof      bool
	GinMode          string
	LogLevel         string
	LogFormat        string
}

// LoadServer reads hearth-syncd configuration from environment variables.
// gin runs in release mode unless GIN_MODE says otherwise.
func LoadServer() ServerConfig {
	cfg := ServerConfig{
		Addr:     ":8080",
		DBPath:   filepath.Join("data", "syncd.db"),
		GinMode:  "release",
		LogLevel: "info",
	}

	if v := os.Getenv("HEARTH_SYNCD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("HEARTH_SYNCD_DB"); v != "" {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("CORS_ALLOW_ORIGINS"); ok {
		cfg.CORSAllowOrigins = strings.Fields(v)
	}
	if v := os.Getenv("ENABLE_PPROF"); v != "" {
		cfg.EnablePprof, _ = strconv.ParseBool(v)
	}
	if v, ok := os.LookupEnv("GIN_MODE"); ok {
		cfg.GinMode = v
	}
	if v := os.Getenv("HEARTH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogFormat = os.Getenv("LOG_FORMAT")

	return cfg
}
