package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/salarymap/backend/internal/cache"
	"github.com/salarymap/backend/internal/dto"
	"github.com/salarymap/backend/internal/model"
	"github.com/salarymap/backend/internal/repository"
	"github.com/salarymap/backend/internal/response"
	"github.com/salarymap/backend/internal/service"
	"github.com/salarymap/backend/internal/util"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

const (
	EnrichPolicyAlways       = "always"
	EnrichPolicySkipExisting = "skip-existing"
)

// acceptedEventTypes are the Polar event types that signal a completed
// payment. Everything else is acknowledged and ignored.
var acceptedEventTypes = map[string]bool{
	"checkout.completed": true,
	"order.created":      true,
	"order.paid":         true,
}

// candidateIDPaths are the payload fields that may reference the report,
// most specific first. Polar is inconsistent about which one it populates
// per event type, so each is tried in order.
var candidateIDPaths = []string{
	"data.checkout_id",
	"data.id",
	"data.checkout.id",
	"data.metadata.checkout_id",
}

// WebhookAck is what the webhook endpoint reports back to Polar. SessionID
// is set only when the event was matched to a report.
type WebhookAck struct {
	Received  bool
	SessionID string
}

type ReportUsecase struct {
	reportRepo   repository.ReportRepositoryInterface
	pending      *cache.PendingSubmissionCache
	analysis     service.AnalysisServiceInterface
	enrichPolicy string
}

func NewReportUsecase(reportRepo repository.ReportRepositoryInterface, pending *cache.PendingSubmissionCache, analysis service.AnalysisServiceInterface, enrichPolicy string) *ReportUsecase {
	if enrichPolicy == "" {
		enrichPolicy = EnrichPolicyAlways
	}
	return &ReportUsecase{reportRepo: reportRepo, pending: pending, analysis: analysis, enrichPolicy: enrichPolicy}
}

// SubmitReport starts a payment flow. With a provider session id the report
// row is created immediately; without one the profile is parked in the
// pending cache under a provisional payment id until the first payment event
// arrives.
func (uc *ReportUsecase) SubmitReport(profile model.ReportProfile, sessionID string) (string, bool, error) {
	if sessionID == "" {
		provisionalID := "pending_" + uuid.NewString()
		uc.pending.Put(provisionalID, profile)
		return provisionalID, true, nil
	}

	report, err := uc.createReport(sessionID, profile)
	if err != nil {
		return "", false, err
	}
	return report.SessionID, false, nil
}

func (uc *ReportUsecase) createReport(sessionID string, profile model.ReportProfile) (*model.Report, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	now := time.Now()
	report := &model.Report{
		ID:            uuid.New(),
		SessionID:     sessionID,
		ReportData:    string(data),
		PaymentStatus: model.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.reportRepo.CreateReport(report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

// HandlePaymentEvent reconciles one inbound payment event against the report
// store. It never returns an error: Polar delivers at least once and must
// not be told a delivery failed, so every internal failure is logged and the
// event acknowledged anyway.
func (uc *ReportUsecase) HandlePaymentEvent(raw []byte) WebhookAck {
	eventType := gjson.GetBytes(raw, "type").String()
	if !acceptedEventTypes[eventType] {
		return WebhookAck{Received: true}
	}

	log.Printf("Payment event received: %s", eventType)

	report := uc.resolveReport(raw)
	if report == nil {
		// Providers retry deliveries and send test events; an unmatched
		// event is acknowledged, not failed.
		log.Printf("No report matched payment event %s", eventType)
		return WebhookAck{Received: true}
	}

	transitioned, err := uc.reportRepo.MarkPaymentCompleted(report.SessionID)
	if err != nil {
		log.Printf("Failed to update payment status for %s: %v", report.SessionID, err)
	} else if transitioned {
		log.Printf("Payment completed for session %s", report.SessionID)
	}

	if uc.enrichPolicy == EnrichPolicySkipExisting && report.MarketAnalysis != nil {
		return WebhookAck{Received: true, SessionID: report.SessionID}
	}

	if _, err := uc.EnrichReport(context.Background(), report); err != nil {
		// A completed report without an analysis is a valid state; a later
		// event or a manual retry can fill it in.
		log.Printf("Enrichment failed for session %s: %v", report.SessionID, err)
	}

	return WebhookAck{Received: true, SessionID: report.SessionID}
}

// resolveReport tries each candidate identifier against the store, then
// against the pending-submission cache. A cache hit materializes the report
// row on the spot.
func (uc *ReportUsecase) resolveReport(raw []byte) *model.Report {
	candidates := make([]string, 0, len(candidateIDPaths))
	for _, path := range candidateIDPaths {
		id := gjson.GetBytes(raw, path).String()
		if id != "" {
			candidates = append(candidates, id)
		}
	}

	for _, id := range candidates {
		report, err := uc.reportRepo.FindReportBySessionID(id)
		if err == nil {
			return report
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Lookup failed for candidate %s: %v", id, err)
		}
	}

	for _, id := range candidates {
		profile, ok := uc.pending.Take(id)
		if !ok {
			continue
		}
		report, err := uc.createReport(id, profile)
		if err != nil {
			log.Printf("Failed to materialize pending submission %s: %v", id, err)
			return nil
		}
		log.Printf("Materialized report for pending submission %s", id)
		return report
	}

	return nil
}

// EnrichReport computes and persists a market analysis for the report. The
// profile is re-read from the report row so the stored analysis always
// corresponds to it.
func (uc *ReportUsecase) EnrichReport(ctx context.Context, report *model.Report) (*model.MarketAnalysis, error) {
	profile, err := report.Profile()
	if err != nil {
		return nil, fmt.Errorf("parse report data: %w", err)
	}

	req := service.AnalysisRequest{
		JobTitle:        profile.JobTitle,
		Industry:        util.ResolveIndustry(profile.Industry, profile.CustomIndustry),
		Location:        profile.Location,
		YearsExperience: profile.YearsExperience,
	}

	analysis, err := uc.analysis.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}
	if err := uc.reportRepo.SaveMarketAnalysis(report.SessionID, string(payload)); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	log.Printf("Analysis saved for session %s", report.SessionID)
	return analysis, nil
}

func (uc *ReportUsecase) GetReport(sessionID string) (*model.Report, error) {
	return uc.reportRepo.FindReportBySessionID(sessionID)
}

func (uc *ReportUsecase) AnalyzeDirect(ctx context.Context, req service.AnalysisRequest) (*model.MarketAnalysis, error) {
	return uc.analysis.Analyze(ctx, req)
}

func (uc *ReportUsecase) GetReports(page, pageSize int) ([]dto.ReportDTO, *response.Pagination, error) {
	reports, total, err := uc.reportRepo.GetReports(page, pageSize)
	if err != nil {
		return nil, nil, err
	}

	items := make([]dto.ReportDTO, 0, len(reports))
	for _, r := range reports {
		items = append(items, dto.ReportDTO{
			ID:            r.ID,
			SessionID:     r.SessionID,
			PaymentStatus: r.PaymentStatus,
			HasAnalysis:   r.MarketAnalysis != nil,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		})
	}

	from := 0
	to := 0
	if len(items) > 0 {
		from = (page-1)*pageSize + 1
		to = from + len(items) - 1
	}
	totalPages := int64(math.Ceil(float64(total) / float64(pageSize)))
	pagination := &response.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(page) < totalPages,
		From:       from,
		To:         to,
	}
	return items, pagination, nil
}

func (uc *ReportUsecase) PingStore() error {
	return uc.reportRepo.Ping()
}
