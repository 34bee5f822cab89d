package handlers

import (
	"context"
	"strconv"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/http/dto"
	"github.com/civic-reports/backend/internal/middleware"
	"github.com/civic-reports/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ClosureHandler struct {
	closureService *services.ClosureService
	log            *zap.Logger
}

func NewClosureHandler(closureService *services.ClosureService, log *zap.Logger) *ClosureHandler {
	return &ClosureHandler{closureService: closureService, log: log}
}

func (h *ClosureHandler) RequestClosure(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	var req dto.RequestClosureRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	pc, err := h.closureService.Request(c.Context(), services.ClosureRequestInput{
		ReportID:       id,
		RequesterID:    middleware.GetStaffID(c),
		Department:     middleware.GetDepartment(c),
		ClosureNotes:   req.ClosureNotes,
		Signature:      req.Signature,
		EvidencePhotos: req.EvidencePhotos,
		Meta:           middleware.RequestMeta(c),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: pc})
}

func (h *ClosureHandler) ListPending(c *fiber.Ctx) error {
	closures, err := h.closureService.ListPending(c.Context(), middleware.GetRole(c), middleware.GetDepartment(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: closures})
}

func (h *ClosureHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.closureService.Approve)
}

func (h *ClosureHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.closureService.Reject)
}

func (h *ClosureHandler) decide(c *fiber.Ctx, fn func(context.Context, services.ClosureDecisionInput) error) error {
	closureID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || closureID <= 0 {
		return apperr.Validation("invalid closure id")
	}

	var req dto.DecideClosureRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := fn(c.Context(), services.ClosureDecisionInput{
		ClosureID:       closureID,
		ReviewerID:      middleware.GetStaffID(c),
		ReviewerRole:    middleware.GetRole(c),
		ReviewerDept:    middleware.GetDepartment(c),
		SupervisorNotes: req.SupervisorNotes,
		Meta:            middleware.RequestMeta(c),
	}); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
