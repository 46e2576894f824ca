package config

import (
	"os"
	"sync"
)

type PolarConfig struct {
	// EnrichPolicy controls what happens when a payment event matches a
	// report that already carries a market analysis: "always" re-runs the
	// analysis, "skip-existing" keeps the stored one.
	EnrichPolicy string
}

var (
	polarConfig *PolarConfig
	polarOnce   sync.Once
)

func LoadPolarConfig() *PolarConfig {
	polarOnce.Do(func() {
		policy := os.Getenv("ENRICH_POLICY")
		if policy == "" {
			policy = "always"
		}
		polarConfig = &PolarConfig{
			EnrichPolicy: policy,
		}
	})
	return polarConfig
}
