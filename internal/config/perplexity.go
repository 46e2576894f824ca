package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

type PerplexityConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

var (
	perplexityConfig *PerplexityConfig
	perplexityOnce   sync.Once
)

func LoadPerplexityConfig() *PerplexityConfig {
	perplexityOnce.Do(func() {
		baseURL := os.Getenv("PERPLEXITY_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.perplexity.ai"
		}
		model := os.Getenv("PERPLEXITY_MODEL")
		if model == "" {
			model = "sonar-pro"
		}
		timeout := 90 * time.Second
		if raw := os.Getenv("PERPLEXITY_TIMEOUT"); raw != "" {
			if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
				timeout = time.Duration(secs) * time.Second
			}
		}
		perplexityConfig = &PerplexityConfig{
			APIKey:  os.Getenv("PERPLEXITY_API_KEY"),
			BaseURL: baseURL,
			Model:   model,
			Timeout: timeout,
		}
	})
	return perplexityConfig
}
