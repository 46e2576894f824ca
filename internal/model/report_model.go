package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// Report is one paid market-report request. SessionID is the identifier the
// payment provider refers to, which is not the same thing as the primary key.
type Report struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID      string    `gorm:"type:varchar(255);uniqueIndex" json:"session_id"`
	ReportData     string    `gorm:"type:jsonb" json:"report_data"` // submitted profile, immutable after creation
	PaymentStatus  string    `gorm:"type:varchar(50);default:pending" json:"payment_status"`
	MarketAnalysis *string   `gorm:"type:jsonb" json:"market_analysis"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r *Report) TableName() string {
	return "reports"
}

func (r *Report) Profile() (ReportProfile, error) {
	var profile ReportProfile
	err := json.Unmarshal([]byte(r.ReportData), &profile)
	return profile, err
}

// ReportProfile is the form submission the report was created from.
type ReportProfile struct {
	JobTitle        string `json:"jobTitle"`
	Industry        string `json:"industry"` // numeric code, "other", or an already-resolved label
	CustomIndustry  string `json:"customIndustry,omitempty"`
	Location        string `json:"location"`
	YearsExperience string `json:"yearsExperience"`
	CurrentSalary   string `json:"currentSalary,omitempty"`
	CompanyName     string `json:"companyName,omitempty"`
	Achievement     string `json:"achievement,omitempty"`
	CandidateName   string `json:"candidateName,omitempty"`
}
