package config

import (
	"os"
	"strconv"
	"time"

	"gorqa/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
	Analysis AnalysisConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings. URL may be empty:
// result persistence is optional.
type DatabaseConfig struct {
	URL string
}

// DataConfig holds data-file settings for the ingestion adapter
type DataConfig struct {
	File        string
	TimeColumn  string
	ValueColumn string
}

// AnalysisConfig holds the default RQA parameters
type AnalysisConfig struct {
	EmbeddingDim      int
	Delay             int
	ThresholdQuantile float64
	StartMonth        time.Month
	EndMonth          time.Month
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Data: DataConfig{
			File:        getEnvOrDefault("DATA_FILE", ""),
			TimeColumn:  getEnvOrDefault("TIME_COL", "date"),
			ValueColumn: getEnvOrDefault("VALUE_COL", "value"),
		},
		Analysis: AnalysisConfig{
			EmbeddingDim:      getEnvIntOrDefault("RQA_M", 3),
			Delay:             getEnvIntOrDefault("RQA_TAU", 1),
			ThresholdQuantile: getEnvFloatOrDefault("RQA_QUANTILE", 0.10),
			StartMonth:        time.Month(getEnvIntOrDefault("SEASON_START_MONTH", 6)),
			EndMonth:          time.Month(getEnvIntOrDefault("SEASON_END_MONTH", 9)),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Analysis.EmbeddingDim < 1 {
		return errors.ConfigInvalid("RQA_M must be >= 1")
	}
	if config.Analysis.Delay < 1 {
		return errors.ConfigInvalid("RQA_TAU must be >= 1")
	}
	if q := config.Analysis.ThresholdQuantile; q < 0 || q > 1 {
		return errors.ConfigInvalid("RQA_QUANTILE must be in [0,1]")
	}
	if m := config.Analysis.StartMonth; m < time.January || m > time.December {
		return errors.ConfigInvalid("SEASON_START_MONTH must be 1-12")
	}
	if m := config.Analysis.EndMonth; m < time.January || m > time.December {
		return errors.ConfigInvalid("SEASON_END_MONTH must be 1-12")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
