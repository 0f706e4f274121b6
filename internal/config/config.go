// Package config loads runtime settings from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Storage settings
	DatabaseURL string

	// Broker settings
	RedisURL string

	// Telegram settings
	TelegramToken  string
	TelegramChatID string

	// Gemini settings
	GeminiAPIKey string

	// Source settings
	FeedsConfigPath   string
	MaxFetchPerSource int

	// Relevance settings
	Keywords            []string
	SimilarityThreshold float64

	// Scheduler settings
	IngestInterval  time.Duration
	PublishInterval time.Duration
	PingInterval    time.Duration

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	HTTPAddr       string
}

// defaultKeywords mirrors the channel topic; override with NEWS_KEYWORDS.
var defaultKeywords = []string{
	"python",
	"ai", "artificial intelligence",
	"machine learning", "ml",
	"data science", "datascience",
	"deep learning",
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		DatabaseURL:         "postgres://localhost:5432/newsbot?sslmode=disable",
		RedisURL:            "redis://127.0.0.1:6379/0",
		FeedsConfigPath:     "configs/feeds.yaml",
		MaxFetchPerSource:   20,
		Keywords:            defaultKeywords,
		SimilarityThreshold: 0.35,
		IngestInterval:      time.Hour,
		PublishInterval:     20 * time.Minute,
		PingInterval:        time.Minute,
		RequestTimeout:      10 * time.Second,
		RetryAttempts:       3,
		RetryDelay:          2 * time.Second,
		HTTPAddr:            ":8080",
	}

	// Load from environment
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.MaxFetchPerSource = getEnvIntOrDefault("MAX_FETCH_PER_SOURCE", cfg.MaxFetchPerSource)
	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", cfg.HTTPAddr)

	if v := os.Getenv("NEWS_KEYWORDS"); v != "" {
		cfg.Keywords = splitKeywords(v)
	}
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 && val < 1 {
			cfg.SimilarityThreshold = val
		}
	}

	cfg.IngestInterval = getEnvDurationOrDefault("INGEST_INTERVAL", cfg.IngestInterval)
	cfg.PublishInterval = getEnvDurationOrDefault("PUBLISH_INTERVAL", cfg.PublishInterval)
	cfg.PingInterval = getEnvDurationOrDefault("PING_INTERVAL", cfg.PingInterval)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.RetryDelay = getEnvDurationOrDefault("RETRY_DELAY", cfg.RetryDelay)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}
