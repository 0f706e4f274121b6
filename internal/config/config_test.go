package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "@channel")
	t.Setenv("GEMINI_API_KEY", "key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.MaxFetchPerSource != 20 {
		t.Errorf("MaxFetchPerSource = %d, want 20", cfg.MaxFetchPerSource)
	}
	if cfg.SimilarityThreshold != 0.35 {
		t.Errorf("SimilarityThreshold = %v, want 0.35", cfg.SimilarityThreshold)
	}
	if cfg.IngestInterval != time.Hour {
		t.Errorf("IngestInterval = %v, want 1h", cfg.IngestInterval)
	}
	if cfg.PublishInterval != 20*time.Minute {
		t.Errorf("PublishInterval = %v, want 20m", cfg.PublishInterval)
	}
	if len(cfg.Keywords) == 0 {
		t.Errorf("default keyword list must not be empty")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INGEST_INTERVAL", "30m")
	t.Setenv("SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("NEWS_KEYWORDS", "Rust, golang , ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.IngestInterval != 30*time.Minute {
		t.Errorf("IngestInterval = %v, want 30m", cfg.IngestInterval)
	}
	if cfg.SimilarityThreshold != 0.5 {
		t.Errorf("SimilarityThreshold = %v, want 0.5", cfg.SimilarityThreshold)
	}

	want := []string{"rust", "golang"}
	if len(cfg.Keywords) != len(want) {
		t.Fatalf("Keywords = %v, want %v", cfg.Keywords, want)
	}
	for i := range want {
		if cfg.Keywords[i] != want[i] {
			t.Errorf("Keywords[%d] = %q, want %q", i, cfg.Keywords[i], want[i])
		}
	}
}

func TestLoadIgnoresInvalidThreshold(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SIMILARITY_THRESHOLD", "1.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SimilarityThreshold != 0.35 {
		t.Errorf("out-of-range threshold must keep the default, got %v", cfg.SimilarityThreshold)
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	cases := []struct {
		name  string
		unset string
	}{
		{"telegram token", "TELEGRAM_TOKEN"},
		{"telegram chat id", "TELEGRAM_CHAT_ID"},
		{"gemini api key", "GEMINI_API_KEY"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.unset, "")

			if _, err := Load(); err == nil {
				t.Fatalf("expected error when %s is missing", tc.unset)
			}
		})
	}
}
