package model

// MarketAnalysis is the structured result returned by the analysis provider.
// After FillDefaults every key is present, so consumers never need nil checks
// below the top level.
type MarketAnalysis struct {
	MarketTarget    MoneyPair   `json:"marketTarget"`
	SalaryRange     SalaryRange `json:"salaryRange"`
	PremiumsNote    string      `json:"premiumsNote"`
	DemandNotes     []string    `json:"demandNotes"`
	RegionalNotes   []string    `json:"regionalNotes"`
	MacroNotes      []string    `json:"macroNotes"`
	HiringNotes     []string    `json:"hiringNotes"`
	Citations       []Citation  `json:"citations"`
	HighDemand      bool        `json:"highDemand"`
	LocationPremium bool        `json:"locationPremium"`
}

type MoneyPair struct {
	Local float64 `json:"local"`
	USD   float64 `json:"usd"`
}

type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type RangeDetail struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	USD   Bounds  `json:"usd"`
	Local Bounds  `json:"local"`
}

type SalaryRange struct {
	Monthly RangeDetail `json:"monthly"`
	Annual  RangeDetail `json:"annual"`
}

type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FillDefaults replaces absent optional fields with empty values.
func (m *MarketAnalysis) FillDefaults() {
	if m.DemandNotes == nil {
		m.DemandNotes = []string{}
	}
	if m.RegionalNotes == nil {
		m.RegionalNotes = []string{}
	}
	if m.MacroNotes == nil {
		m.MacroNotes = []string{}
	}
	if m.HiringNotes == nil {
		m.HiringNotes = []string{}
	}
	if m.Citations == nil {
		m.Citations = []Citation{}
	}
}
