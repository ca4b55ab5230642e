package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jeeves-ai/jeeves/pkg/models"
	"gopkg.in/yaml.v3"
)

// Config holds all Jeeves configuration. It is loaded once at startup and
// treated as immutable for the process lifetime.
type Config struct {
	Listen      string            `yaml:"listen"`
	DBPath      string            `yaml:"db_path"`
	Backend     BackendConfig     `yaml:"backend"`
	Retry       RetryConfig       `yaml:"retry"`
	Cache       CacheConfig       `yaml:"cache"`
	Fallback    FallbackConfig    `yaml:"fallback"`
	Translation TranslationConfig `yaml:"translation"`
	Budget      BudgetConfig      `yaml:"budget"`
}

// BackendConfig defines the upstream LLM backend.
// Type is "openai" (default, also covers OpenAI-compatible local servers)
// or "ollama".
type BackendConfig struct {
	Type        string        `yaml:"type"`
	URL         string        `yaml:"url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RetryConfig controls retries and the global call throttle.
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	RateLimitDelay time.Duration `yaml:"rate_limit_delay"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	ExpireTime time.Duration `yaml:"expire_time"`
}

// FallbackConfig controls fallback answers on backend failure.
type FallbackConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TranslationConfig controls fallback localization. URL points at a
// LibreTranslate-compatible service.
type TranslationConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// BudgetConfig caps outbound backend calls per period.
type BudgetConfig struct {
	Enabled  bool                `yaml:"enabled"`
	MaxCalls int64               `yaml:"max_calls"`
	Period   models.BudgetPeriod `yaml:"period"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "jeeves.db",
		Backend: BackendConfig{
			Type:        "openai",
			URL:         "https://api.openai.com",
			Model:       "gpt-3.5-turbo",
			MaxTokens:   1000,
			Temperature: 0.7,
			Timeout:     60 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			RetryDelay:     2 * time.Second,
			RateLimitDelay: time.Second,
		},
		Cache: CacheConfig{
			Enabled:    true,
			ExpireTime: time.Hour,
		},
		Fallback: FallbackConfig{
			Enabled: true,
		},
		Translation: TranslationConfig{
			Enabled: false,
			Timeout: 10 * time.Second,
		},
		Budget: BudgetConfig{
			Enabled: false,
			Period:  models.BudgetDaily,
		},
	}
}

// Load reads a YAML config file, expands environment variables, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values instead of silently clamping them.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("config: backend.url is required")
	}
	switch c.Backend.Type {
	case "openai", "ollama":
	default:
		return fmt.Errorf("config: unknown backend.type %q", c.Backend.Type)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("config: retry.max_retries must not be negative")
	}
	if c.Retry.RetryDelay < 0 {
		return fmt.Errorf("config: retry.retry_delay must not be negative")
	}
	if c.Retry.RateLimitDelay < 0 {
		return fmt.Errorf("config: retry.rate_limit_delay must not be negative")
	}
	if c.Cache.Enabled && c.Cache.ExpireTime <= 0 {
		return fmt.Errorf("config: cache.expire_time must be positive when cache is enabled")
	}
	if c.Translation.Enabled && c.Translation.URL == "" {
		return fmt.Errorf("config: translation.url is required when translation is enabled")
	}
	if c.Budget.Enabled {
		if c.Budget.MaxCalls <= 0 {
			return fmt.Errorf("config: budget.max_calls must be positive when budget is enabled")
		}
		switch c.Budget.Period {
		case models.BudgetDaily, models.BudgetMonthly:
		default:
			return fmt.Errorf("config: unknown budget.period %q", c.Budget.Period)
		}
	}
	return nil
}
