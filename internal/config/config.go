// Package config carries the analyzer's runtime settings: an environment
// snapshot taken at startup plus live threshold updates over NATS.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for the tunable settings.
const (
	DefaultHTTPAddr             = ":8088"
	DefaultNATSURL              = "nats://localhost:4222"
	DefaultMaxReports           = 1000
	DefaultUnusualPortThreshold = 5
	DefaultBatchSize            = 500
	DefaultBatchIntervalSeconds = 30
	DefaultHistoryRetentionHrs  = 24
	DefaultSchemaPath           = "schemas/event.json"
)

// Config is the analyzer's startup configuration.
type Config struct {
	HTTPAddr             string
	NATSURL              string
	MaxReports           int
	UnusualPortThreshold int
	BatchSize            int
	BatchInterval        time.Duration
	HistoryRetention     time.Duration
	SignaturesDir        string
	ModelPath            string
	ArchivePath          string
	SchemaPath           string
	IntelPath            string
	LogLevel             string
}

// FromEnv snapshots the configuration from ANALYZER_* environment variables,
// falling back to defaults.
func FromEnv() Config {
	return Config{
		HTTPAddr:             getEnv("ANALYZER_HTTP_ADDR", DefaultHTTPAddr),
		NATSURL:              getEnv("ANALYZER_NATS_URL", DefaultNATSURL),
		MaxReports:           getEnvInt("ANALYZER_MAX_REPORTS", DefaultMaxReports),
		UnusualPortThreshold: getEnvInt("ANALYZER_UNUSUAL_PORT_THRESHOLD", DefaultUnusualPortThreshold),
		BatchSize:            getEnvInt("ANALYZER_BATCH_SIZE", DefaultBatchSize),
		BatchInterval:        time.Duration(getEnvInt("ANALYZER_BATCH_INTERVAL_SECONDS", DefaultBatchIntervalSeconds)) * time.Second,
		HistoryRetention:     time.Duration(getEnvInt("ANALYZER_HISTORY_RETENTION_HOURS", DefaultHistoryRetentionHrs)) * time.Hour,
		SignaturesDir:        getEnv("ANALYZER_SIGNATURES_DIR", ""),
		ModelPath:            getEnv("ANALYZER_MODEL_PATH", ""),
		ArchivePath:          getEnv("ANALYZER_ARCHIVE_PATH", ""),
		SchemaPath:           getEnv("ANALYZER_SCHEMA_PATH", DefaultSchemaPath),
		IntelPath:            getEnv("ANALYZER_INTEL_PATH", ""),
		LogLevel:             getEnv("ANALYZER_LOG_LEVEL", "info"),
	}
}

// SlogLevel maps the configured log level onto slog's levels; unknown values
// fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
