// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
)

// Config holds all application configuration.
type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    string

	// Embedding provider selection: "openai" or "google".
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingDimensions int
	OpenAIAPIKey        string
	GoogleAIAPIKey      string

	// Per-call deadlines for the provider call and the store query.
	EmbedTimeout time.Duration
	QueryTimeout time.Duration

	// "otlp" enables metric export; empty disables metrics.
	OtelMetricsExporter string
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration retrieves an environment variable as a duration (e.g. "5s") or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// Load reads configuration from environment variables, loading a .env file
// first when one exists. Missing required values (DATABASE_URL, and the API
// key of the selected embedding provider) are configuration errors surfaced
// immediately; they are never retried or defaulted.
func Load() (*Config, error) {
	// Load .env if present. Absence is normal (e.g. env from a secret store).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required but not set")
	}

	provider := getEnv("EMBEDDING_PROVIDER", ProviderOpenAI)

	openAIKey := os.Getenv("OPENAI_API_KEY")
	googleKey := os.Getenv("GOOGLEAI_API_KEY")

	switch provider {
	case ProviderOpenAI:
		if openAIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
	case ProviderGoogle:
		if googleKey == "" {
			return nil, errors.New("GOOGLEAI_API_KEY is required when EMBEDDING_PROVIDER=google")
		}
	default:
		return nil, fmt.Errorf("unsupported EMBEDDING_PROVIDER %q (want openai or google)", provider)
	}

	dimensions := getEnvAsInt("EMBEDDING_DIMENSIONS", 1536)
	if dimensions <= 0 {
		return nil, errors.New("EMBEDDING_DIMENSIONS must be a positive integer")
	}

	cfg := &Config{
		DatabaseURL: databaseURL,
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		EmbeddingProvider:   provider,
		EmbeddingModel:      os.Getenv("EMBEDDING_MODEL"),
		EmbeddingDimensions: dimensions,
		OpenAIAPIKey:        openAIKey,
		GoogleAIAPIKey:      googleKey,

		EmbedTimeout: getEnvAsDuration("EMBED_TIMEOUT", 10*time.Second),
		QueryTimeout: getEnvAsDuration("QUERY_TIMEOUT", 5*time.Second),

		OtelMetricsExporter: os.Getenv("OTEL_METRICS_EXPORTER"),
	}

	return cfg, nil
}
