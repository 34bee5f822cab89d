package handlers

import (
	"sort"

	"github.com/civic-reports/backend/internal/http/dto"
	"github.com/civic-reports/backend/internal/models"
	"github.com/civic-reports/backend/internal/taxonomy"
	"github.com/gofiber/fiber/v2"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

func (h *MetaHandler) GetTaxonomy(c *fiber.Ctx) error {
	departments := taxonomy.Departments()
	sort.Strings(departments)

	out := make([]dto.TaxonomyDepartment, 0, len(departments))
	for _, dept := range departments {
		out = append(out, dto.TaxonomyDepartment{ID: dept, Types: taxonomy.TypesOf(dept)})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: out})
}

func (h *MetaHandler) GetNoteCategories(c *fiber.Ctx) error {
	categories := []string{
		models.NoteObservation,
		models.NoteProgress,
		models.NoteIncident,
		models.NoteResolution,
		models.NoteCorrection,
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: categories})
}
