package handler

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/salarymap/backend/internal/middleware"
	"github.com/salarymap/backend/internal/model"
	"github.com/salarymap/backend/internal/service"
	"github.com/salarymap/backend/internal/usecase"
	"github.com/salarymap/backend/internal/util"
)

type ReportHandler struct {
	uc *usecase.ReportUsecase
}

func NewReportHandler(uc *usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func (h *ReportHandler) RegisterRoutes(app *fiber.App) {
	// no extra limiter on the webhook: Polar retries aggressively
	app.Post("/api/webhooks/polar", h.PolarWebhook)
	app.Post("/api/perplexity-analysis", middleware.RateLimiter(1, 4*time.Second), h.DirectAnalysis)
	app.Get("/api/user-data/:id", h.UserData)
	app.Post("/api/reports", h.CreateReport)
	app.Post("/api/reports/:id/enrich", h.EnrichReport)
	app.Get("/api/reports", h.ListReports)
	app.Get("/api/test-db", h.TestDB)
}

// PolarWebhook always answers 200. Polar delivers at least once; a non-2xx
// here only buys duplicate deliveries of an event we already could not use.
func (h *ReportHandler) PolarWebhook(c *fiber.Ctx) error {
	ack := h.uc.HandlePaymentEvent(c.Body())
	if ack.SessionID != "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success":   true,
			"sessionId": ack.SessionID,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

func (h *ReportHandler) DirectAnalysis(c *fiber.Ctx) error {
	var req service.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	analysis, err := h.uc.AnalyzeDirect(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get market analysis"})
	}
	return c.JSON(analysis)
}

// UserData returns the merged report page payload: profile fields at the top
// level plus marketAnalysis, payment_status and created_at.
func (h *ReportHandler) UserData(c *fiber.Ctx) error {
	report, err := h.uc.GetReport(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
	}

	resp := map[string]any{}
	if err := json.Unmarshal([]byte(report.ReportData), &resp); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load report"})
	}

	var analysis any
	if report.MarketAnalysis != nil {
		if err := json.Unmarshal([]byte(*report.MarketAnalysis), &analysis); err != nil {
			analysis = nil
		}
	}
	resp["marketAnalysis"] = analysis
	resp["payment_status"] = report.PaymentStatus
	resp["created_at"] = report.CreatedAt

	return c.JSON(resp)
}

func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	var body struct {
		model.ReportProfile
		SessionID string `json:"sessionId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	missing := map[string]string{}
	if body.JobTitle == "" {
		missing["jobTitle"] = "required"
	}
	if body.Location == "" {
		missing["location"] = "required"
	}
	if body.YearsExperience == "" {
		missing["yearsExperience"] = "required"
	}
	if len(missing) > 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "missing required fields",
			Details: missing,
		})
	}

	id, provisional, err := h.uc.SubmitReport(body.ReportProfile, body.SessionID)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create report",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Report submission accepted",
		Data: fiber.Map{
			"id":             id,
			"provisional":    provisional,
			"payment_status": model.PaymentStatusPending,
		},
	})
}

// EnrichReport re-runs the analysis for an existing report without touching
// its payment status. Used to retry after an upstream failure.
func (h *ReportHandler) EnrichReport(c *fiber.Ctx) error {
	report, err := h.uc.GetReport(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "report not found",
		}, err)
	}

	analysis, err := h.uc.EnrichReport(c.Context(), report)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadGateway,
			Message: "failed to get market analysis",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success enrich report",
		Data:    analysis,
	})
}

func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, pagination, err := h.uc.GetReports(page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list reports",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:       fiber.StatusOK,
		Message:    "Success get reports",
		Data:       items,
		Pagination: pagination,
	})
}

func (h *ReportHandler) TestDB(c *fiber.Ctx) error {
	if err := h.uc.PingStore(); err != nil {
		return c.JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}
