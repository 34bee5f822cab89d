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

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
	log               *zap.Logger
}

func NewAssignmentHandler(assignmentService *services.AssignmentService, log *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService, log: log}
}

func (h *AssignmentHandler) ListAssignments(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	assignments, err := h.assignmentService.List(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: assignments})
}

func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.StaffID == 0 {
		return apperr.Validation("staff_id is required")
	}

	assignment, err := h.assignmentService.Assign(c.Context(), id, req.StaffID, middleware.GetStaffID(c), req.Note, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: assignment})
}

func (h *AssignmentHandler) Unassign(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}
	staffID, err := staffIDParam(c)
	if err != nil {
		return err
	}

	if err := h.assignmentService.Unassign(c.Context(), id, staffID, middleware.GetStaffID(c), middleware.RequestMeta(c)); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// UpdateNote edits the caller's own assignment note.
func (h *AssignmentHandler) UpdateNote(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateAssignmentNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	detail, err := h.assignmentService.UpdateNote(c.Context(), id, middleware.GetStaffID(c), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: detail})
}

func (h *AssignmentHandler) Reassign(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}

	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	res, err := h.assignmentService.Reassign(c.Context(), services.ReassignInput{
		ReportID:      id,
		NewStaffID:    req.StaffID,
		ActorID:       middleware.GetStaffID(c),
		Reason:        req.Reason,
		SuggestedType: req.SuggestedType,
		KeepType:      req.KeepType,
		Meta:          middleware.RequestMeta(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}

func staffIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("staffId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid staff id")
	}
	return id, nil
}
