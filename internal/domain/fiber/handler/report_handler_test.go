package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/salarymap/backend/internal/cache"
	"github.com/salarymap/backend/internal/model"
	"github.com/salarymap/backend/internal/service"
	"github.com/salarymap/backend/internal/usecase"
	"gorm.io/gorm"
)

type stubRepo struct {
	reports map[string]*model.Report
}

func (s *stubRepo) CreateReport(report *model.Report) error {
	s.reports[report.SessionID] = report
	return nil
}

func (s *stubRepo) FindReportBySessionID(sessionID string) (*model.Report, error) {
	report, ok := s.reports[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return report, nil
}

func (s *stubRepo) MarkPaymentCompleted(sessionID string) (bool, error) {
	report, ok := s.reports[sessionID]
	if !ok || report.PaymentStatus != model.PaymentStatusPending {
		return false, nil
	}
	report.PaymentStatus = model.PaymentStatusCompleted
	return true, nil
}

func (s *stubRepo) SaveMarketAnalysis(sessionID string, analysis string) error {
	if report, ok := s.reports[sessionID]; ok {
		report.MarketAnalysis = &analysis
	}
	return nil
}

func (s *stubRepo) GetReports(page, pageSize int) ([]model.Report, int64, error) {
	var out []model.Report
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (s *stubRepo) Ping() error { return nil }

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, req service.AnalysisRequest) (*model.MarketAnalysis, error) {
	analysis := &model.MarketAnalysis{MarketTarget: model.MoneyPair{Local: 80000, USD: 80000}}
	analysis.FillDefaults()
	return analysis, nil
}

func newTestApp(repo *stubRepo) *fiber.App {
	uc := usecase.NewReportUsecase(repo, cache.NewPendingSubmissionCache(time.Minute), stubAnalyzer{}, "")
	app := fiber.New()
	NewReportHandler(uc).RegisterRoutes(app)
	return app
}

func seedReport(repo *stubRepo, sessionID string) *model.Report {
	report := &model.Report{
		ID:            uuid.New(),
		SessionID:     sessionID,
		ReportData:    `{"jobTitle":"Backend Engineer","industry":"42","location":"Berlin","yearsExperience":"6"}`,
		PaymentStatus: model.PaymentStatusPending,
		CreatedAt:     time.Now(),
	}
	repo.reports[sessionID] = report
	return report
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return body
}

func TestWebhookUnmatchedEventStillOK(t *testing.T) {
	app := newTestApp(&stubRepo{reports: map[string]*model.Report{}})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/polar",
		strings.NewReader(`{"type": "checkout.completed", "data": {"id": "sess_unknown"}}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook must always answer 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["received"] != true {
		t.Fatalf("expected received ack, got %v", body)
	}
}

func TestWebhookMatchedEventAck(t *testing.T) {
	repo := &stubRepo{reports: map[string]*model.Report{}}
	seedReport(repo, "sess_1")
	app := newTestApp(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/polar",
		strings.NewReader(`{"type": "order.paid", "data": {"id": "sess_1"}}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != true || body["sessionId"] != "sess_1" {
		t.Fatalf("unexpected ack body: %v", body)
	}
	if repo.reports["sess_1"].PaymentStatus != model.PaymentStatusCompleted {
		t.Fatal("report should be completed")
	}
}

func TestWebhookMalformedBodyStillOK(t *testing.T) {
	app := newTestApp(&stubRepo{reports: map[string]*model.Report{}})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/polar", strings.NewReader("not json at all"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook must swallow malformed payloads, got %d", resp.StatusCode)
	}
}

func TestUserDataNotFound(t *testing.T) {
	app := newTestApp(&stubRepo{reports: map[string]*model.Report{}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/user-data/nope", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Report not found" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestUserDataMergedResponse(t *testing.T) {
	repo := &stubRepo{reports: map[string]*model.Report{}}
	report := seedReport(repo, "sess_1")
	report.PaymentStatus = model.PaymentStatusCompleted
	analysis := `{"marketTarget": {"local": 90000, "usd": 90000}}`
	report.MarketAnalysis = &analysis
	app := newTestApp(repo)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/user-data/sess_1", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["jobTitle"] != "Backend Engineer" {
		t.Fatalf("profile fields must be merged at the top level, got %v", body)
	}
	if body["payment_status"] != model.PaymentStatusCompleted {
		t.Fatalf("expected payment_status, got %v", body)
	}
	ma, ok := body["marketAnalysis"].(map[string]any)
	if !ok {
		t.Fatalf("expected marketAnalysis object, got %v", body["marketAnalysis"])
	}
	if _, ok := ma["marketTarget"]; !ok {
		t.Fatalf("expected marketTarget in analysis, got %v", ma)
	}
}

func TestUserDataWithoutAnalysis(t *testing.T) {
	repo := &stubRepo{reports: map[string]*model.Report{}}
	seedReport(repo, "sess_1")
	app := newTestApp(repo)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/user-data/sess_1", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body := decodeBody(t, resp)
	if body["marketAnalysis"] != nil {
		t.Fatalf("expected null marketAnalysis, got %v", body["marketAnalysis"])
	}
}

func TestCreateReportValidation(t *testing.T) {
	app := newTestApp(&stubRepo{reports: map[string]*model.Report{}})

	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(`{"jobTitle": ""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateReportProvisional(t *testing.T) {
	repo := &stubRepo{reports: map[string]*model.Report{}}
	app := newTestApp(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/reports",
		strings.NewReader(`{"jobTitle": "Backend Engineer", "location": "Berlin", "yearsExperience": "6", "industry": "42"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	if data["provisional"] != true {
		t.Fatalf("submission without sessionId must be provisional, got %v", data)
	}
	id, _ := data["id"].(string)
	if !strings.HasPrefix(id, "pending_") {
		t.Fatalf("expected provisional payment id, got %q", id)
	}
	if len(repo.reports) != 0 {
		t.Fatal("no report row should exist before the payment event")
	}
}

func TestEnrichEndpointNotFound(t *testing.T) {
	app := newTestApp(&stubRepo{reports: map[string]*model.Report{}})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/reports/nope/enrich", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestEnrichEndpointPopulatesAnalysis(t *testing.T) {
	repo := &stubRepo{reports: map[string]*model.Report{}}
	report := seedReport(repo, "sess_1")
	report.PaymentStatus = model.PaymentStatusCompleted
	app := newTestApp(repo)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/reports/sess_1/enrich", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if repo.reports["sess_1"].MarketAnalysis == nil {
		t.Fatal("enrich endpoint should persist the analysis")
	}
	if repo.reports["sess_1"].PaymentStatus != model.PaymentStatusCompleted {
		t.Fatal("enrich endpoint must not touch payment status")
	}
}
