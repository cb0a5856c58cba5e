package config

import (
	"os"
	"strconv"

	"chemviz/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ops      OpsConfig
	Data     DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory dataset store.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// OpsConfig holds the health/pprof listener settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// DataConfig holds dataset processing limits
type DataConfig struct {
	MaxUploadBytes int64
	MaxHistory     int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8000"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Ops: OpsConfig{
			Port:    getEnvOrDefault("OPS_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("OPS_ENABLED", true),
		},
		Data: DataConfig{
			MaxUploadBytes: getEnvInt64OrDefault("MAX_UPLOAD_BYTES", 10<<20),
			MaxHistory:     getEnvIntOrDefault("MAX_DATASETS_HISTORY", 5),
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validate(c *Config) error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	if c.Data.MaxHistory < 1 {
		return errors.ConfigInvalid("MAX_DATASETS_HISTORY must be at least 1")
	}
	if c.Data.MaxUploadBytes < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if c.Ops.Enabled && c.Ops.Port == "" {
		return errors.ConfigInvalid("OPS_PORT cannot be empty when the ops server is enabled")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64OrDefault(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
