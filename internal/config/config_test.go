package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/prospects")
	t.Setenv("LLM_PROVIDER", "rules")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port, got %q", cfg.HTTPPort)
	}
	if cfg.LLMTimeout() != 30*time.Second {
		t.Fatalf("expected 30s llm timeout, got %v", cfg.LLMTimeout())
	}
	if cfg.GenerationRateLimit != 30 {
		t.Fatalf("expected default rate limit 30, got %d", cfg.GenerationRateLimit)
	}
}

func TestLoadConfig_RequiresKeyForRemoteProvider(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/prospects")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("LLM_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without api key")
	}

	t.Setenv("LLM_API_KEY", "k")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LLMProvider != LLMProviderGemini {
		t.Fatalf("expected normalized provider, got %q", cfg.LLMProvider)
	}
}

func TestLoadConfig_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/prospects")
	t.Setenv("LLM_PROVIDER", "telepathy")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestLoadConfig_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LLM_PROVIDER", "rules")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected required DATABASE_URL error")
	}
}
