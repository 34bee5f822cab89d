package services

import (
	"context"
	"strings"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/events"
	"github.com/civic-reports/backend/internal/models"
	"go.uber.org/zap"
)

// ClosureService drives the closure review workflow. It is the only path into
// and out of the closure_pending state: a request freezes the report, and the
// supervisor decision either closes it or sends it back to the state it came
// from. Signature and evidence are stored opaquely; validating them is the
// closure frontend's concern.
type ClosureService struct {
	reports     ReportStore
	staff       StaffStore
	assignments AssignmentStore
	closures    ClosureStore
	audit       AuditStore
	publisher   events.Publisher
	log         *zap.Logger
}

func NewClosureService(reports ReportStore, staff StaffStore, assignments AssignmentStore, closures ClosureStore, audit AuditStore, publisher events.Publisher, log *zap.Logger) *ClosureService {
	return &ClosureService{
		reports:     reports,
		staff:       staff,
		assignments: assignments,
		closures:    closures,
		audit:       audit,
		publisher:   publisher,
		log:         log,
	}
}

type ClosureRequestInput struct {
	ReportID       int64
	RequesterID    int64
	Department     string
	ClosureNotes   string
	Signature      string
	EvidencePhotos []string
	Meta           map[string]any
}

func (s *ClosureService) Request(ctx context.Context, in ClosureRequestInput) (*models.PendingClosure, error) {
	if strings.TrimSpace(in.ClosureNotes) == "" || strings.TrimSpace(in.Signature) == "" {
		return nil, apperr.Validation("closure_notes and signature are required")
	}

	report, err := s.reports.GetByID(ctx, in.ReportID)
	if err != nil {
		return nil, err
	}

	// Only an assignee can ask to close the report.
	assigned, err := s.assignments.Exists(ctx, in.ReportID, in.RequesterID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, apperr.Forbidden("you must be assigned to this report to request its closure")
	}

	switch report.State {
	case models.ReportStateClosed:
		return nil, apperr.Validation("report is already closed")
	case models.ReportStateClosurePending:
		return nil, apperr.Validation("a closure request is already pending")
	}
	if !models.IsValidTransition(report.State, models.ReportStateClosurePending) {
		return nil, apperr.Validation("report state %q does not allow closure", report.State)
	}

	// The requester's own supervisor reviews, even when the report belongs to
	// another department.
	supervisor, err := s.staff.GetSupervisorByDepartment(ctx, in.Department)
	if err != nil {
		return nil, apperr.Internal("no supervisor available for department %s", in.Department)
	}

	pc := &models.PendingClosure{
		ReportID:       in.ReportID,
		RequesterID:    in.RequesterID,
		ClosureNotes:   in.ClosureNotes,
		Signature:      in.Signature,
		EvidencePhotos: in.EvidencePhotos,
		PriorState:     report.State,
		Decision:       models.ClosureDecisionPending,
	}
	if err := s.closures.Create(ctx, pc); err != nil {
		return nil, err
	}

	if _, err := s.reports.UpdateState(ctx, in.ReportID, report.State, models.ReportStateClosurePending); err != nil {
		return nil, err
	}

	s.record(ctx, &models.AuditEntry{
		Entity:     models.EntityReport,
		EntityID:   in.ReportID,
		ActorID:    in.RequesterID,
		ChangeKind: models.ChangeStateChange,
		Field:      "state",
		OldValue:   ptr(report.State),
		NewValue:   ptr(models.ReportStateClosurePending),
		Reason:     "closure requested",
		Metadata:   mergeMeta(in.Meta, map[string]any{"closure_id": pc.ID}),
	})

	_ = s.publisher.Publish(ctx, events.StreamReport, events.Event{
		Type: events.EventClosureRequested,
		Payload: map[string]any{
			"report_id":     in.ReportID,
			"closure_id":    pc.ID,
			"supervisor_id": supervisor.ID,
		},
	})

	return pc, nil
}

// ListPending returns the closure queue for a reviewer: admins see all,
// supervisors see requests from their own department's staff.
func (s *ClosureService) ListPending(ctx context.Context, role, department string) ([]models.PendingClosureDetail, error) {
	if role == models.RoleAdmin {
		return s.closures.ListPending(ctx, "")
	}
	return s.closures.ListPending(ctx, department)
}

type ClosureDecisionInput struct {
	ClosureID       int64
	ReviewerID      int64
	ReviewerRole    string
	ReviewerDept    string
	SupervisorNotes string
	Meta            map[string]any
}

func (s *ClosureService) Approve(ctx context.Context, in ClosureDecisionInput) error {
	closure, err := s.reviewableClosure(ctx, in)
	if err != nil {
		return err
	}

	var notes *string
	if strings.TrimSpace(in.SupervisorNotes) != "" {
		notes = &in.SupervisorNotes
	}
	if err := s.closures.Decide(ctx, in.ClosureID, models.ClosureDecisionApproved, notes, in.ReviewerID); err != nil {
		return err
	}

	changed, err := s.reports.UpdateState(ctx, closure.ReportID, models.ReportStateClosurePending, models.ReportStateClosed)
	if err != nil {
		return err
	}
	if !changed {
		s.log.Warn("closure approved but report was not in closure_pending",
			zap.Int64("report_id", closure.ReportID),
			zap.Int64("closure_id", in.ClosureID),
		)
	}

	s.record(ctx, &models.AuditEntry{
		Entity:     models.EntityReport,
		EntityID:   closure.ReportID,
		ActorID:    in.ReviewerID,
		ChangeKind: models.ChangeStateChange,
		Field:      "state",
		OldValue:   ptr(models.ReportStateClosurePending),
		NewValue:   ptr(models.ReportStateClosed),
		Reason:     "closure approved",
		Metadata:   mergeMeta(in.Meta, map[string]any{"closure_id": in.ClosureID}),
	})

	_ = s.publisher.Publish(ctx, events.StreamReport, events.Event{
		Type:    events.EventClosureApproved,
		Payload: map[string]any{"report_id": closure.ReportID, "closure_id": in.ClosureID},
	})
	return nil
}

// Reject sends the report back to the active state it held before the
// closure request.
func (s *ClosureService) Reject(ctx context.Context, in ClosureDecisionInput) error {
	if strings.TrimSpace(in.SupervisorNotes) == "" {
		return apperr.Validation("supervisor_notes are required when rejecting")
	}

	closure, err := s.reviewableClosure(ctx, in)
	if err != nil {
		return err
	}

	if err := s.closures.Decide(ctx, in.ClosureID, models.ClosureDecisionRejected, &in.SupervisorNotes, in.ReviewerID); err != nil {
		return err
	}

	priorState := closure.PriorState
	if !models.IsValidTransition(models.ReportStateClosurePending, priorState) {
		priorState = models.ReportStateAssigned
	}
	if _, err := s.reports.UpdateState(ctx, closure.ReportID, models.ReportStateClosurePending, priorState); err != nil {
		return err
	}

	s.record(ctx, &models.AuditEntry{
		Entity:     models.EntityReport,
		EntityID:   closure.ReportID,
		ActorID:    in.ReviewerID,
		ChangeKind: models.ChangeStateChange,
		Field:      "state",
		OldValue:   ptr(models.ReportStateClosurePending),
		NewValue:   ptr(priorState),
		Reason:     "closure rejected: " + in.SupervisorNotes,
		Metadata:   mergeMeta(in.Meta, map[string]any{"closure_id": in.ClosureID}),
	})

	_ = s.publisher.Publish(ctx, events.StreamReport, events.Event{
		Type:    events.EventClosureRejected,
		Payload: map[string]any{"report_id": closure.ReportID, "closure_id": in.ClosureID},
	})
	return nil
}

func (s *ClosureService) reviewableClosure(ctx context.Context, in ClosureDecisionInput) (*models.PendingClosureDetail, error) {
	closure, err := s.closures.GetPending(ctx, in.ClosureID)
	if err != nil {
		return nil, err
	}
	if in.ReviewerRole != models.RoleAdmin && in.ReviewerDept != closure.RequesterDepartment {
		return nil, apperr.Forbidden("you can only review closures from your own department")
	}
	return closure, nil
}

func (s *ClosureService) record(ctx context.Context, e *models.AuditEntry) {
	if err := s.audit.Record(ctx, e); err != nil {
		s.log.Error("audit write failed",
			zap.String("change_kind", e.ChangeKind),
			zap.Int64("report_id", e.EntityID),
			zap.Error(err),
		)
	}
}
