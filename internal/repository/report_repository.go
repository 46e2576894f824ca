package repository

import (
	"time"

	"github.com/salarymap/backend/internal/model"
	"gorm.io/gorm"
)

type ReportRepositoryInterface interface {
	CreateReport(report *model.Report) error
	FindReportBySessionID(sessionID string) (*model.Report, error)
	MarkPaymentCompleted(sessionID string) (bool, error)
	SaveMarketAnalysis(sessionID string, analysis string) error
	GetReports(page, pageSize int) ([]model.Report, int64, error)
	Ping() error
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db}
}

func (r *ReportRepository) CreateReport(report *model.Report) error {
	return r.db.Create(report).Error
}

func (r *ReportRepository) FindReportBySessionID(sessionID string) (*model.Report, error) {
	var report model.Report
	err := r.db.First(&report, "session_id = ?", sessionID).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// MarkPaymentCompleted transitions the report to completed only if it is
// still pending, so replaying the same payment event is a no-op. Returns
// whether a row actually transitioned.
func (r *ReportRepository) MarkPaymentCompleted(sessionID string) (bool, error) {
	result := r.db.Model(&model.Report{}).
		Where("session_id = ? AND payment_status = ?", sessionID, model.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status": model.PaymentStatusCompleted,
			"updated_at":     time.Now(),
		})
	return result.RowsAffected > 0, result.Error
}

func (r *ReportRepository) SaveMarketAnalysis(sessionID string, analysis string) error {
	return r.db.Model(&model.Report{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{
			"market_analysis": analysis,
			"updated_at":      time.Now(),
		}).Error
}

func (r *ReportRepository) GetReports(page, pageSize int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	if err := r.db.Model(&model.Report{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reports).Error
	return reports, total, err
}

func (r *ReportRepository) Ping() error {
	var sessionIDs []string
	return r.db.Model(&model.Report{}).
		Select("session_id").
		Limit(1).
		Find(&sessionIDs).Error
}
