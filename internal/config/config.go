// Package config provides environment-based configuration for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings. Loaded once at process start and passed
// by reference; core logic never reads the environment directly.
type Config struct {
	// API
	Port int

	// Backing services
	DatabaseURL string
	RedisURL    string

	// LLM
	GeminiAPIKey string

	// Target-site credentials
	LinkedInEmail    string
	LinkedInPassword string

	// Rate limiting
	MaxProfilesPerDay  int
	RateLimitWindow    time.Duration
	ExtractionDelay    time.Duration
	MinRequiredProfile int

	// Browser
	BrowserHeadless bool
	BrowserProxyURL string
	UserAgent       string
	NavTimeout      time.Duration
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// Load reads configuration from the environment, applying defaults for
// everything optional.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               envInt("PORT", 8000),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		LinkedInEmail:      os.Getenv("LINKEDIN_EMAIL"),
		LinkedInPassword:   os.Getenv("LINKEDIN_PASSWORD"),
		MaxProfilesPerDay:  envInt("MAX_PROFILES_PER_DAY", 100),
		RateLimitWindow:    envDuration("RATE_LIMIT_WINDOW", 24*time.Hour),
		ExtractionDelay:    envDuration("EXTRACTION_DELAY", 2500*time.Millisecond),
		MinRequiredProfile: envInt("MIN_REQUIRED_PROFILES", 5),
		BrowserHeadless:    envBool("BROWSER_HEADLESS", true),
		BrowserProxyURL:    os.Getenv("BROWSER_PROXY_URL"),
		UserAgent:          envString("USER_AGENT", defaultUserAgent),
		NavTimeout:         envDuration("BROWSER_NAV_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT must be in 1..65535, got %d", c.Port)
	}
	if c.MaxProfilesPerDay <= 0 {
		return fmt.Errorf("config error: MAX_PROFILES_PER_DAY must be positive, got %d", c.MaxProfilesPerDay)
	}
	if c.MinRequiredProfile <= 0 {
		return fmt.Errorf("config error: MIN_REQUIRED_PROFILES must be positive, got %d", c.MinRequiredProfile)
	}
	if c.ExtractionDelay < 0 {
		return fmt.Errorf("config error: EXTRACTION_DELAY must be non-negative")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
