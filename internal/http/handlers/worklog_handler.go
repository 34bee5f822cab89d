package handlers

import (
	"strconv"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/http/dto"
	"github.com/civic-reports/backend/internal/middleware"
	"github.com/civic-reports/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type WorkLogHandler struct {
	worklogService *services.WorkLogService
	log            *zap.Logger
}

func NewWorkLogHandler(worklogService *services.WorkLogService, log *zap.Logger) *WorkLogHandler {
	return &WorkLogHandler{worklogService: worklogService, log: log}
}

func (h *WorkLogHandler) ListNotes(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	var authorID *int64
	if v := c.Query("author_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return apperr.Validation("invalid author_id")
		}
		authorID = &n
	}
	var category *string
	if v := c.Query("category"); v != "" {
		category = &v
	}

	notes, err := h.worklogService.List(c.Context(), id, authorID, category)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: notes})
}

func (h *WorkLogHandler) AddNote(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	var req dto.AddWorkNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	entry, err := h.worklogService.AddNote(c.Context(), id, middleware.GetStaffID(c), req.Content, req.Category, req.Metadata, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: entry})
}

func (h *WorkLogHandler) DeleteNote(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}
	noteID, err := strconv.ParseInt(c.Params("noteId"), 10, 64)
	if err != nil || noteID <= 0 {
		return apperr.Validation("invalid note id")
	}
	return h.worklogService.DeleteNote(c.Context(), id, noteID)
}

func (h *WorkLogHandler) GetSummary(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	summary, err := h.worklogService.Summary(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: summary})
}

func (h *WorkLogHandler) GetDraft(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	draft, err := h.worklogService.GetDraft(c.Context(), id, middleware.GetStaffID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: draft})
}

func (h *WorkLogHandler) SaveDraft(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	var req dto.SaveDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	draft, err := h.worklogService.SaveDraft(c.Context(), id, middleware.GetStaffID(c), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: draft})
}
