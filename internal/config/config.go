// Package config provides configuration management for Ludex.
// It loads settings from environment variables with the LUDEX_ prefix
// and provides sensible defaults for all configuration options.
//
// Naming rules (the alias table and franchise prefix list used by the
// canonicalizer) are loaded separately from a YAML file; see naming.go.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration settings for the Ludex application.
type Config struct {
	Server    ServerConfig
	Warehouse WarehouseConfig
	IGDB      IGDBConfig
	Bucket    BucketConfig
	Pipeline  PipelineConfig
	Security  SecurityConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 8686)
	Host string // Server host (default: 127.0.0.1)
}

// WarehouseConfig contains warehouse backend configuration.
type WarehouseConfig struct {
	Engine      string // Warehouse engine: sqlite, postgres (default: sqlite)
	DataPath    string // Path to the sqlite data directory (default: ./data)
	PostgresDSN string // Postgres connection string (used when Engine is postgres)
}

// IGDBConfig contains upstream catalog API configuration.
type IGDBConfig struct {
	ClientID     string  // Twitch/IGDB client ID
	ClientSecret string  // Twitch/IGDB client secret
	RateLimit    float64 // Maximum requests per second (default: 4.0)
	BatchSize    int     // Records fetched per request (default: 500)
}

// BucketConfig contains object-storage configuration for raw and cleaned
// snapshot files.
type BucketConfig struct {
	Provider      string // Bucket provider: local, gcs (default: local)
	GCSBucket     string // GCS bucket name (used when Provider is gcs)
	LocalPath     string // Local directory standing in for a bucket (default: ./data/bucket)
	RawPrefix     string // Object prefix for raw fetch batches (default: raw_data)
	CleanedPrefix string // Object prefix for cleaned snapshots (default: cleaned_data)
}

// PipelineConfig contains cleaning-pipeline configuration.
type PipelineConfig struct {
	NamingRulesPath string // Path to a naming rules YAML file ("" = compiled defaults)
}

// SecurityConfig contains API authentication settings.
type SecurityConfig struct {
	APIToken string // Bearer token required by the web API ("" = auth disabled)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the LUDEX_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("LUDEX_PORT", 8686),
			Host: getEnv("LUDEX_HOST", "127.0.0.1"),
		},
		Warehouse: WarehouseConfig{
			Engine:      getEnv("LUDEX_WAREHOUSE_ENGINE", "sqlite"),
			DataPath:    getEnv("LUDEX_DATA_PATH", "./data"),
			PostgresDSN: getEnv("LUDEX_POSTGRES_DSN", ""),
		},
		IGDB: IGDBConfig{
			ClientID:     getEnv("LUDEX_IGDB_CLIENT_ID", ""),
			ClientSecret: getEnv("LUDEX_IGDB_CLIENT_SECRET", ""),
			RateLimit:    getEnvFloat("LUDEX_IGDB_RATE_LIMIT", 4.0),
			BatchSize:    getEnvInt("LUDEX_IGDB_BATCH_SIZE", 500),
		},
		Bucket: BucketConfig{
			Provider:      getEnv("LUDEX_BUCKET_PROVIDER", "local"),
			GCSBucket:     getEnv("LUDEX_GCS_BUCKET", ""),
			LocalPath:     getEnv("LUDEX_BUCKET_PATH", "./data/bucket"),
			RawPrefix:     getEnv("LUDEX_BUCKET_RAW_PREFIX", "raw_data"),
			CleanedPrefix: getEnv("LUDEX_BUCKET_CLEANED_PREFIX", "cleaned_data"),
		},
		Pipeline: PipelineConfig{
			NamingRulesPath: getEnv("LUDEX_NAMING_RULES", ""),
		},
		Security: SecurityConfig{
			APIToken: getEnv("LUDEX_API_TOKEN", ""),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as an
// integer, it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value when the variable is unset or unparseable.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
