package service

import (
	"context"
	"fmt"
	"log"

	"github.com/go-resty/resty/v2"
	"github.com/salarymap/backend/internal/config"
	"github.com/salarymap/backend/internal/model"
	"github.com/tidwall/gjson"
)

type PerplexityService struct {
	client     *resty.Client
	apiKey     string
	baseURL    string
	model      string
	bestEffort bool
}

func NewPerplexityService() (*PerplexityService, error) {
	cfg := config.LoadPerplexityConfig()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PERPLEXITY_API_KEY not set")
	}
	return &PerplexityService{
		client:     resty.New().SetTimeout(cfg.Timeout),
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		bestEffort: config.LoadAnalysisConfig().BestEffort,
	}, nil
}

func (s *PerplexityService) Analyze(ctx context.Context, req AnalysisRequest) (*model.MarketAnalysis, error) {
	prompt := buildAnalysisPrompt(req)

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model":       s.model,
			"messages":    []map[string]string{{"role": "user", "content": prompt}},
			"temperature": 0.1,
		}).
		Post(s.baseURL + "/chat/completions")
	if err != nil {
		// resty surfaces timeouts and connection failures here
		return nil, &UpstreamError{Body: err.Error()}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	content := gjson.Get(resp.String(), "choices.0.message.content").String()
	if content == "" {
		if s.bestEffort {
			log.Println("best-effort fallback: empty completion")
			return baselineAnalysis(), nil
		}
		return nil, fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}

	analysis, err := parseMarketAnalysis(content)
	if err != nil {
		if s.bestEffort {
			log.Printf("best-effort fallback: %v", err)
			return baselineAnalysis(), nil
		}
		return nil, err
	}
	return analysis, nil
}
