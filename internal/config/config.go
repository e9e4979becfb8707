// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults shared by the service and its clients.
const (
	DefaultAPIURL    = "http://127.0.0.1:8000"
	DefaultGroqURL   = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "llama-3.1-8b-instant"
)

// Config holds the NeuroLens service configuration.
type Config struct {
	Port           string
	AllowedOrigins []string
	RandomSeed     uint64
	LLM            LLMConfig
}

// LLMConfig controls the remote assistant. An empty APIKey is valid and
// means every chat endpoint answers from local heuristics.
type LLMConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// DashboardConfig holds the web dashboard configuration.
type DashboardConfig struct {
	Port         string
	APIURL       string
	SessionTTL   time.Duration
	LiveInterval time.Duration
	SecureCookie bool
}

// Load reads the service configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8000"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		RandomSeed:     getEnvUint("RANDOM_SEED", 0),
		LLM: LLMConfig{
			APIKey:  strings.TrimSpace(getEnv("GROQ_API_KEY", "")),
			Model:   getEnv("GROQ_MODEL", DefaultGroqModel),
			BaseURL: getEnv("GROQ_BASE_URL", DefaultGroqURL),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("GROQ_MODEL cannot be empty")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("GROQ_BASE_URL cannot be empty")
	}
	return nil
}

// AIEnabled reports whether a model credential is configured.
func (c *Config) AIEnabled() bool {
	return c.LLM.APIKey != ""
}

// LoadDashboard reads the dashboard configuration from environment variables.
func LoadDashboard() (*DashboardConfig, error) {
	cfg := &DashboardConfig{
		Port:         getEnv("DASHBOARD_PORT", "8501"),
		APIURL:       APIURL(),
		SessionTTL:   getEnvDuration("DASHBOARD_SESSION_TTL", 2*time.Hour),
		LiveInterval: getEnvDuration("DASHBOARD_LIVE_INTERVAL", 5*time.Second),
		SecureCookie: getEnvBool("DASHBOARD_SECURE_COOKIE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *DashboardConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("DASHBOARD_PORT cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("DASHBOARD_SESSION_TTL must be > 0")
	}
	if c.LiveInterval <= 0 {
		return fmt.Errorf("DASHBOARD_LIVE_INTERVAL must be > 0")
	}
	return nil
}

// APIURL returns the backend base URL without a trailing slash.
func APIURL() string {
	url := strings.TrimSpace(getEnv("API_URL", ""))
	if url == "" {
		url = DefaultAPIURL
	}
	return strings.TrimRight(url, "/")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvUint(key string, fallback uint64) uint64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
