package handlers

import (
	"strconv"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/http/dto"
	"github.com/civic-reports/backend/internal/models"
	"github.com/civic-reports/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *services.ReportService
	log           *zap.Logger
}

func NewReportHandler(reportService *services.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, log: log}
}

// CreateReport accepts a citizen submission. No auth: reporting a pothole
// must not require an account.
func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	rep, err := h.reportService.Create(c.Context(), services.CreateReportInput{
		Type:        req.Type,
		Description: req.Description,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: rep})
}

func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	detail, err := h.reportService.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: detail})
}

func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	filter := models.ReportFilter{
		State:      c.Query("state"),
		Department: c.Query("department"),
		Type:       c.Query("type"),
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	reports, err := h.reportService.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: reports})
}

func (h *ReportHandler) GetHistory(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	history, err := h.reportService.History(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: history})
}

// reportID parses the :id route param shared by all report-scoped routes.
func reportID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid report id")
	}
	return id, nil
}
