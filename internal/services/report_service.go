package services

import (
	"context"
	"strings"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/models"
	"github.com/civic-reports/backend/internal/taxonomy"
	"go.uber.org/zap"
)

// Report priority levels
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ReportService covers citizen submissions and read access to reports, their
// assignments and their change history.
type ReportService struct {
	reports     ReportStore
	assignments AssignmentStore
	audit       AuditStore
	log         *zap.Logger
}

func NewReportService(reports ReportStore, assignments AssignmentStore, audit AuditStore, log *zap.Logger) *ReportService {
	return &ReportService{reports: reports, assignments: assignments, audit: audit, log: log}
}

type CreateReportInput struct {
	Type        string
	Description string
	Lat         float64
	Lng         float64
	Priority    string
}

// Create registers a citizen report. The type is resolved through the
// taxonomy and the owning department is derived from it, never supplied by
// the caller.
func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("description is required")
	}
	if in.Lat < -90 || in.Lat > 90 || in.Lng < -180 || in.Lng > 180 {
		return nil, apperr.Validation("coordinates out of range")
	}

	reportType := taxonomy.Canonical(in.Type)
	department := taxonomy.DepartmentOf(reportType)
	if department == "" {
		return nil, apperr.Validation("unknown report type %q", in.Type)
	}

	priority := in.Priority
	switch priority {
	case "":
		priority = PriorityMedium
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return nil, apperr.Validation("invalid priority %q", in.Priority)
	}

	rep := &models.Report{
		Type:        reportType,
		Description: in.Description,
		Lat:         in.Lat,
		Lng:         in.Lng,
		State:       models.ReportStateOpen,
		Department:  department,
		Priority:    priority,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}

	s.log.Info("report created",
		zap.Int64("report_id", rep.ID),
		zap.String("type", rep.Type),
		zap.String("department", rep.Department),
	)
	return rep, nil
}

// ReportDetail is a report together with its current assignments.
type ReportDetail struct {
	models.Report
	Assignments []models.AssignmentDetail `json:"assignments"`
}

func (s *ReportService) Get(ctx context.Context, id int64) (*ReportDetail, error) {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByReport(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ReportDetail{Report: *rep, Assignments: assignments}, nil
}

func (s *ReportService) List(ctx context.Context, f models.ReportFilter) ([]models.Report, error) {
	if f.Type != "" {
		f.Type = taxonomy.Canonical(f.Type)
	}
	return s.reports.List(ctx, f)
}

// History returns the report's audit trail, newest first.
func (s *ReportService) History(ctx context.Context, reportID int64) ([]models.AuditEntryDetail, error) {
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		return nil, err
	}
	return s.audit.HistoryByReport(ctx, reportID)
}
