package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	// API Configuration
	API APIConfig `json:"api"`

	// WebSocket Configuration
	Socket SocketConfig `json:"socket"`

	// Local cache database configuration
	Database DatabaseConfig `json:"database"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// APIConfig contains REST backend configuration
type APIConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SocketConfig contains the realtime connection configuration
type SocketConfig struct {
	URL                  string `json:"url"`
	MaxReconnectAttempts int    `json:"max_reconnect_attempts"`
	ReconnectBaseMillis  int    `json:"reconnect_base_millis"`
}

// DatabaseConfig contains the local sqlite cache configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, console
}

// Load builds a Config from environment variables with defaults
// suitable for local development.
func Load() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        getEnvOrDefault("CHATLINK_API_BASE_URL", "http://localhost:5000"),
			TimeoutSeconds: getEnvIntOrDefault("CHATLINK_API_TIMEOUT_SECONDS", 30),
		},
		Socket: SocketConfig{
			URL:                  getEnvOrDefault("CHATLINK_WS_URL", "ws://localhost:8080"),
			MaxReconnectAttempts: getEnvIntOrDefault("CHATLINK_WS_MAX_RECONNECTS", 5),
			ReconnectBaseMillis:  getEnvIntOrDefault("CHATLINK_WS_RECONNECT_BASE_MS", 1000),
		},
		Database: DatabaseConfig{
			Path: getEnvOrDefault("CHATLINK_DB_PATH", defaultDBPath()),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("CHATLINK_LOG_LEVEL", "info"),
			Format: getEnvOrDefault("CHATLINK_LOG_FORMAT", "console"),
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chatlink.db"
	}
	return filepath.Join(home, ".chatlink", "chatlink.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
