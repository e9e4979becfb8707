package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GROQ_API_KEY", "GROQ_MODEL", "GROQ_BASE_URL", "RANDOM_SEED", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "8000")
	t.Setenv("GROQ_MODEL", DefaultGroqModel)
	t.Setenv("GROQ_BASE_URL", DefaultGroqURL)
	t.Setenv("ALLOWED_ORIGINS", " , ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AIEnabled() {
		t.Error("expected AI to be disabled without GROQ_API_KEY")
	}
	if cfg.RandomSeed != 0 {
		t.Errorf("expected zero seed for empty RANDOM_SEED, got %d", cfg.RandomSeed)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadReadsCredentialAndSeed(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "  secret ")
	t.Setenv("GROQ_MODEL", "custom-model")
	t.Setenv("GROQ_BASE_URL", DefaultGroqURL)
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.AIEnabled() || cfg.LLM.APIKey != "secret" {
		t.Errorf("expected trimmed credential, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "custom-model" || cfg.RandomSeed != 42 || cfg.Port != "9000" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestValidateRejectsEmptyPort(t *testing.T) {
	t.Parallel()

	cfg := &Config{LLM: LLMConfig{Model: "m", BaseURL: "u"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty port")
	}
}

func TestAPIURLStripsTrailingSlash(t *testing.T) {
	t.Setenv("API_URL", "http://backend:8000/")
	if got := APIURL(); got != "http://backend:8000" {
		t.Errorf("APIURL() = %q", got)
	}

	t.Setenv("API_URL", "")
	if got := APIURL(); got != DefaultAPIURL {
		t.Errorf("APIURL() = %q, want default", got)
	}
}

func TestLoadDashboard(t *testing.T) {
	t.Setenv("DASHBOARD_PORT", "8600")
	t.Setenv("DASHBOARD_SESSION_TTL", "30m")
	t.Setenv("DASHBOARD_LIVE_INTERVAL", "not-a-duration")
	t.Setenv("API_URL", "")

	cfg, err := LoadDashboard()
	if err != nil {
		t.Fatalf("LoadDashboard failed: %v", err)
	}
	if cfg.Port != "8600" || cfg.SessionTTL != 30*time.Minute {
		t.Errorf("unexpected dashboard config: %+v", cfg)
	}
	if cfg.LiveInterval != 5*time.Second {
		t.Errorf("expected fallback live interval, got %v", cfg.LiveInterval)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("unexpected API URL: %q", cfg.APIURL)
	}
}
