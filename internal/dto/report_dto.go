package dto

import (
	"time"

	"github.com/google/uuid"
)

type ReportDTO struct {
	ID            uuid.UUID `json:"id"`
	SessionID     string    `json:"session_id"`
	PaymentStatus string    `json:"payment_status"` // "pending" or "completed"
	HasAnalysis   bool      `json:"has_analysis"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
