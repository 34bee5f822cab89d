package services

import (
	"context"
	"strings"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/events"
	"github.com/civic-reports/backend/internal/models"
	"github.com/civic-reports/backend/internal/taxonomy"
)

const minReassignReasonLen = 10

type ReassignInput struct {
	ReportID      int64
	NewStaffID    int64
	ActorID       int64
	Reason        string
	SuggestedType string
	KeepType      bool
	Meta          map[string]any
}

type ReassignResult struct {
	TypeChanged        bool    `json:"type_changed"`
	PreviousType       string  `json:"previous_type"`
	NewType            string  `json:"new_type"`
	PreviousDepartment string  `json:"previous_department"`
	NewDepartment      string  `json:"new_department"`
	RemovedStaff       []int64 `json:"removed_staff"`
	NewStaffID         int64   `json:"new_staff_id"`
	NewStaffName       string  `json:"new_staff_name"`
	StateChanged       bool    `json:"state_changed"`
}

// Reassign atomically replaces a report's assignees with one new staff
// member, remapping the report type when the move crosses departments. All
// mutations run in one transaction; validation failures are detected before
// any mutation begins. Audit writes inside the transaction are best-effort:
// their errors are logged and swallowed rather than aborting the commit.
func (s *AssignmentService) Reassign(ctx context.Context, in ReassignInput) (*ReassignResult, error) {
	if in.NewStaffID == 0 {
		return nil, apperr.Validation("staff_id is required")
	}
	if len(strings.TrimSpace(in.Reason)) < minReassignReasonLen {
		return nil, apperr.Validation("reason is required (minimum %d characters)", minReassignReasonLen)
	}

	report, err := s.stores.Reports.GetByID(ctx, in.ReportID)
	if err != nil {
		return nil, err
	}
	target, err := s.stores.Staff.GetActiveStaff(ctx, in.NewStaffID)
	if err != nil {
		return nil, err
	}
	var (
		current []models.AssignmentDetail
		plan    reassignPlan
	)
	err = s.tx.WithinTx(ctx, func(tx Stores) error {
		// Snapshot the assignees inside the transaction so the unassign
		// audit rows describe the same set the delete removes.
		var err error
		current, err = tx.Assignments.ListByReport(ctx, in.ReportID)
		if err != nil {
			return err
		}
		plan = buildReassignPlan(report, target, current, in)

		if len(current) > 0 {
			if _, err := tx.Assignments.DeleteAllByReport(ctx, in.ReportID); err != nil {
				return err
			}
		}
		for i := range plan.unassignAudits {
			s.record(ctx, tx.Audit, &plan.unassignAudits[i])
		}

		note := "Reassigned: " + in.Reason
		if err := tx.Assignments.Create(ctx, &models.Assignment{
			ReportID:   in.ReportID,
			StaffID:    in.NewStaffID,
			AssignedBy: &in.ActorID,
			Note:       &note,
		}); err != nil {
			return err
		}
		s.record(ctx, tx.Audit, &plan.assignAudit)

		if plan.typeChanged {
			if err := tx.Reports.UpdateType(ctx, in.ReportID, plan.finalType); err != nil {
				return err
			}
			s.record(ctx, tx.Audit, plan.typeAudit)
		}

		if report.State == models.ReportStateOpen {
			if _, err := tx.Reports.UpdateState(ctx, in.ReportID, models.ReportStateOpen, models.ReportStateAssigned); err != nil {
				return err
			}
			s.record(ctx, tx.Audit, plan.stateAudit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamReport, events.Event{
		Type: events.EventReportReassigned,
		Payload: map[string]any{
			"report_id":      in.ReportID,
			"staff_id":       in.NewStaffID,
			"department":     plan.targetDept,
			"type_changed":   plan.typeChanged,
			"cross_division": plan.crossDepartment,
		},
	})

	removed := make([]int64, 0, len(current))
	for _, a := range current {
		removed = append(removed, a.StaffID)
	}
	return &ReassignResult{
		TypeChanged:        plan.typeChanged,
		PreviousType:       report.Type,
		NewType:            plan.finalType,
		PreviousDepartment: plan.currentDept,
		NewDepartment:      plan.targetDept,
		RemovedStaff:       removed,
		NewStaffID:         in.NewStaffID,
		NewStaffName:       target.Name,
		StateChanged:       report.State == models.ReportStateOpen,
	}, nil
}

// reassignPlan is the precomputed outcome of a reassignment: the final type
// and the ordered audit entries. Building it in one step keeps the rest of
// the transactional section to plain sequential statements.
type reassignPlan struct {
	finalType       string
	typeChanged     bool
	currentDept     string
	targetDept      string
	crossDepartment bool

	unassignAudits []models.AuditEntry
	assignAudit    models.AuditEntry
	typeAudit      *models.AuditEntry
	stateAudit     *models.AuditEntry
}

func buildReassignPlan(report *models.Report, target *models.StaffUser, current []models.AssignmentDetail, in ReassignInput) reassignPlan {
	p := reassignPlan{
		finalType:   report.Type,
		currentDept: taxonomy.DepartmentOf(report.Type),
		targetDept:  target.Department,
	}
	p.crossDepartment = p.currentDept != p.targetDept

	if p.crossDepartment && !in.KeepType {
		suggested := taxonomy.Canonical(in.SuggestedType)
		if in.SuggestedType != "" && taxonomy.IsValidFor(suggested, p.targetDept) {
			p.finalType = suggested
		} else {
			p.finalType = taxonomy.SuggestType(report.Type, p.targetDept)
		}
		p.typeChanged = p.finalType != report.Type
	}

	for _, a := range current {
		p.unassignAudits = append(p.unassignAudits, models.AuditEntry{
			Entity:     models.EntityReport,
			EntityID:   report.ID,
			ActorID:    in.ActorID,
			ChangeKind: models.ChangeUnassign,
			Field:      "assigned_staff",
			OldValue:   ptr(a.StaffIdentity()),
			Reason:     "unassigned during reassignment: " + in.Reason,
			Metadata: mergeMeta(in.Meta, map[string]any{
				"previous_staff_id":   a.StaffID,
				"previous_department": a.StaffDepartment,
				"cause":               "reassignment",
			}),
		})
	}

	previous := "unassigned"
	if len(current) > 0 {
		names := make([]string, 0, len(current))
		for _, a := range current {
			names = append(names, a.StaffName)
		}
		previous = strings.Join(names, ", ")
	}
	p.assignAudit = models.AuditEntry{
		Entity:     models.EntityReport,
		EntityID:   report.ID,
		ActorID:    in.ActorID,
		ChangeKind: models.ChangeAssign,
		Field:      "assigned_staff",
		OldValue:   ptr(previous),
		NewValue:   ptr(target.DisplayIdentity()),
		Reason:     in.Reason,
		Metadata: mergeMeta(in.Meta, map[string]any{
			"new_staff_id":        target.ID,
			"new_department":      p.targetDept,
			"previous_department": p.currentDept,
			"cross_department":    p.crossDepartment,
		}),
	}

	if p.typeChanged {
		p.typeAudit = &models.AuditEntry{
			Entity:     models.EntityReport,
			EntityID:   report.ID,
			ActorID:    in.ActorID,
			ChangeKind: models.ChangeTypeChange,
			Field:      "type",
			OldValue:   ptr(report.Type),
			NewValue:   ptr(p.finalType),
			Reason:     "automatic remap after reassignment to " + p.targetDept,
			Metadata: map[string]any{
				"previous_department": p.currentDept,
				"new_department":      p.targetDept,
				"original_reason":     in.Reason,
				"automatic":           true,
			},
		}
	}

	if report.State == models.ReportStateOpen {
		p.stateAudit = &models.AuditEntry{
			Entity:     models.EntityReport,
			EntityID:   report.ID,
			ActorID:    in.ActorID,
			ChangeKind: models.ChangeStateChange,
			Field:      "state",
			OldValue:   ptr(models.ReportStateOpen),
			NewValue:   ptr(models.ReportStateAssigned),
			Reason:     "first assignment created",
			Metadata:   map[string]any{"automatic": true},
		}
	}

	return p
}
