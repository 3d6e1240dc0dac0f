// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/career-compass/internal/llm"
)

// ServerConfig is the HTTP service configuration.
type ServerConfig struct {
	Port         int
	DatabaseURL  string
	GeminiAPIKey string
	Models       map[llm.ModelTier]string // tier overrides from GEMINI_MODEL_<TIER>
	AppBaseURL   string                   // used to build links in emails
	CORSOrigin   string
	FetchTimeout time.Duration
	UseBrowser   bool // allow chromedp fallback for JS-rendered job pages
}

// LoadServerConfig reads PORT (default 8080), DATABASE_URL, GEMINI_API_KEY,
// GEMINI_MODEL_LITE/STANDARD/ADVANCED, APP_BASE_URL (default
// http://localhost:<port>), CORS_ORIGIN (default *), FETCH_TIMEOUT_SECONDS
// (default 20) and USE_BROWSER.
func LoadServerConfig() (*ServerConfig, error) {
	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	fetchSecs, err := intEnv("FETCH_TIMEOUT_SECONDS", 20)
	if err != nil {
		return nil, err
	}
	useBrowser, err := boolEnv("USE_BROWSER", false)
	if err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		Port:         port,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Models:       make(map[llm.ModelTier]string),
		AppBaseURL:   strings.TrimRight(os.Getenv("APP_BASE_URL"), "/"),
		CORSOrigin:   os.Getenv("CORS_ORIGIN"),
		FetchTimeout: time.Duration(fetchSecs) * time.Second,
		UseBrowser:   useBrowser,
	}
	for _, tier := range []llm.ModelTier{llm.TierLite, llm.TierStandard, llm.TierAdvanced} {
		if m := os.Getenv("GEMINI_MODEL_" + strings.ToUpper(string(tier))); m != "" {
			cfg.Models[tier] = m
		}
	}
	if cfg.AppBaseURL == "" {
		cfg.AppBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT out of range: %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	u, err := url.Parse(c.AppBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config error: APP_BASE_URL must be an absolute http(s) URL, got %q", c.AppBaseURL)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("config error: FETCH_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// LLMConfig builds the model client configuration with any tier overrides applied.
func (c *ServerConfig) LLMConfig() *llm.Config {
	cfg := llm.DefaultGeminiConfig()
	for tier, model := range c.Models {
		cfg = cfg.WithModel(tier, model)
	}
	return cfg
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}
