package config

import (
	"os"
	"sync"
)

type AnalysisConfig struct {
	Provider   string // "perplexity" (default) or "gemini"
	BestEffort bool
}

var (
	analysisConfig *AnalysisConfig
	analysisOnce   sync.Once
)

func LoadAnalysisConfig() *AnalysisConfig {
	analysisOnce.Do(func() {
		provider := os.Getenv("ANALYSIS_PROVIDER")
		if provider == "" {
			provider = "perplexity"
		}
		analysisConfig = &AnalysisConfig{
			Provider:   provider,
			BestEffort: os.Getenv("ANALYSIS_BEST_EFFORT") == "true",
		}
	})
	return analysisConfig
}
