package services

import (
	"context"
	"strings"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/events"
	"github.com/civic-reports/backend/internal/models"
	"go.uber.org/zap"
)

// AssignmentService owns the report<->staff assignment relation and the state
// effects that follow from it: the first assignment moves a report from open
// to assigned, and removing the last one moves it back.
type AssignmentService struct {
	stores    Stores
	tx        TxManager
	publisher events.Publisher
	log       *zap.Logger
}

func NewAssignmentService(stores Stores, tx TxManager, publisher events.Publisher, log *zap.Logger) *AssignmentService {
	return &AssignmentService{stores: stores, tx: tx, publisher: publisher, log: log}
}

func (s *AssignmentService) List(ctx context.Context, reportID int64) ([]models.AssignmentDetail, error) {
	if _, err := s.stores.Reports.GetByID(ctx, reportID); err != nil {
		return nil, err
	}
	return s.stores.Assignments.ListByReport(ctx, reportID)
}

// Assign inserts a (report, staff) pair. A duplicate pair is a Conflict; the
// unique constraint turns concurrent duplicate attempts into the same answer.
func (s *AssignmentService) Assign(ctx context.Context, reportID, staffID, assignerID int64, note *string, meta map[string]any) (*models.Assignment, error) {
	report, err := s.stores.Reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	assignee, err := s.stores.Staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}

	var assignedBy *int64
	var assignerName *string
	if assignerID != 0 {
		assigner, err := s.stores.Staff.GetByID(ctx, assignerID)
		if err != nil {
			return nil, apperr.Validation("assigner does not exist")
		}
		assignedBy = &assigner.ID
		assignerName = &assigner.Name
	}

	assignment := &models.Assignment{
		ReportID:   reportID,
		StaffID:    staffID,
		AssignedBy: assignedBy,
		Note:       note,
	}
	if err := s.stores.Assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}

	reason := "report assigned"
	if note != nil && strings.TrimSpace(*note) != "" {
		reason = *note
	}
	auditMeta := mergeMeta(meta, map[string]any{"department": assignee.Department})
	if assignerName != nil {
		auditMeta["assigned_by_name"] = *assignerName
	}
	s.record(ctx, s.stores.Audit, &models.AuditEntry{
		Entity:     models.EntityReport,
		EntityID:   reportID,
		ActorID:    actorOr(assignedBy, staffID),
		ChangeKind: models.ChangeAssign,
		Field:      "assigned_staff",
		NewValue:   ptr(assignee.DisplayIdentity()),
		Reason:     reason,
		Metadata:   auditMeta,
	})

	if report.State == models.ReportStateOpen {
		s.markAssigned(ctx, s.stores, report)
	}

	_ = s.publisher.Publish(ctx, events.StreamReport, events.Event{
		Type: events.EventReportAssigned,
		Payload: map[string]any{
			"report_id":  reportID,
			"staff_id":   staffID,
			"department": assignee.Department,
		},
	})

	return assignment, nil
}

// Unassign deletes the pair and reverts the report to open when no assignees
// remain. The assignee's identity is captured before the delete so the audit
// entry still names a person.
func (s *AssignmentService) Unassign(ctx context.Context, reportID, staffID, actorID int64, meta map[string]any) error {
	if _, err := s.stores.Reports.GetByID(ctx, reportID); err != nil {
		return err
	}

	detail, err := s.stores.Assignments.GetDetail(ctx, reportID, staffID)
	if err != nil {
		return err
	}

	if err := s.stores.Assignments.Delete(ctx, reportID, staffID); err != nil {
		return err
	}

	if actorID == 0 {
		actorID = staffID
	}
	// The deletion already succeeded; from here on failures are logged, not
	// surfaced.
	s.record(ctx, s.stores.Audit, &models.AuditEntry{
		Entity:     models.EntityReport,
		EntityID:   reportID,
		ActorID:    actorID,
		ChangeKind: models.ChangeUnassign,
		Field:      "assigned_staff",
		OldValue:   ptr(detail.StaffIdentity()),
		Reason:     "staff member unassigned",
		Metadata:   mergeMeta(meta, map[string]any{"department": detail.StaffDepartment}),
	})

	remaining, err := s.stores.Assignments.Count(ctx, reportID)
	if err != nil {
		s.log.Error("count assignments after unassign", zap.Int64("report_id", reportID), zap.Error(err))
		return nil
	}
	// The unassign audit row covers the change; the implied revert to open is
	// not recorded separately.
	if remaining == 0 {
		if _, err := s.stores.Reports.RevertToOpen(ctx, reportID); err != nil {
			s.log.Error("revert report to open", zap.Int64("report_id", reportID), zap.Error(err))
		}
	}

	_ = s.publisher.Publish(ctx, events.StreamReport, events.Event{
		Type: events.EventReportUnassigned,
		Payload: map[string]any{
			"report_id": reportID,
			"staff_id":  staffID,
		},
	})

	return nil
}

// UpdateNote replaces the caller's own assignment note. Only the assigned
// staff member can edit it.
func (s *AssignmentService) UpdateNote(ctx context.Context, reportID, staffID int64, note string) (*models.AssignmentDetail, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperr.Validation("note must not be empty")
	}
	if _, err := s.stores.Reports.GetByID(ctx, reportID); err != nil {
		return nil, err
	}
	if err := s.stores.Assignments.UpdateNote(ctx, reportID, staffID, note); err != nil {
		return nil, err
	}
	return s.stores.Assignments.GetDetail(ctx, reportID, staffID)
}

// markAssigned transitions open -> assigned after a successful first
// assignment. The assign audit row already covers the change, so no separate
// state_change row is written here; failures are logged only.
func (s *AssignmentService) markAssigned(ctx context.Context, stores Stores, report *models.Report) {
	if _, err := stores.Reports.UpdateState(ctx, report.ID, models.ReportStateOpen, models.ReportStateAssigned); err != nil {
		s.log.Error("transition report to assigned", zap.Int64("report_id", report.ID), zap.Error(err))
	}
}

// record writes one audit entry, logging instead of failing: the triggering
// mutation has already been applied.
func (s *AssignmentService) record(ctx context.Context, audit AuditStore, e *models.AuditEntry) {
	if err := audit.Record(ctx, e); err != nil {
		s.log.Error("audit write failed",
			zap.String("change_kind", e.ChangeKind),
			zap.Int64("report_id", e.EntityID),
			zap.Error(err),
		)
	}
}

func mergeMeta(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func actorOr(id *int64, fallback int64) int64 {
	if id != nil {
		return *id
	}
	return fallback
}

func ptr(s string) *string {
	return &s
}
