package services

import (
	"context"
	"strings"
	"testing"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/models"
)

func TestReassignCrossDepartmentRemapsType(t *testing.T) {
	rep := openReport()
	rep.State = models.ReportStateInProgress
	f := newAssignmentFixture(rep)
	f.assigns.add(10, 1)

	res, err := f.svc.Reassign(context.Background(), ReassignInput{
		ReportID:   10,
		NewStaffID: 2,
		ActorID:    3,
		Reason:     "crew reports an underground water leak, not pavement damage",
	})
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}

	if !res.TypeChanged {
		t.Error("TypeChanged = false, want true")
	}
	if res.NewType != "water_leak" {
		t.Errorf("NewType = %q, want water_leak", res.NewType)
	}
	if res.PreviousDepartment != "public_works" || res.NewDepartment != "public_services" {
		t.Errorf("departments = %q -> %q", res.PreviousDepartment, res.NewDepartment)
	}
	if len(res.RemovedStaff) != 1 || res.RemovedStaff[0] != 1 {
		t.Errorf("RemovedStaff = %v", res.RemovedStaff)
	}

	rep2, _ := f.reports.GetByID(context.Background(), 10)
	if rep2.Type != "water_leak" || rep2.Department != "public_services" {
		t.Errorf("report = type %q dept %q", rep2.Type, rep2.Department)
	}
	if rep2.State != models.ReportStateInProgress {
		t.Errorf("state = %q, want unchanged in_progress", rep2.State)
	}

	kinds := f.audit.kinds()
	want := []string{models.ChangeUnassign, models.ChangeAssign, models.ChangeTypeChange}
	if len(kinds) != len(want) {
		t.Fatalf("audit kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("audit[%d] = %q, want %q", i, kinds[i], want[i])
		}
	}

	assigns, _ := f.assigns.ListByReport(context.Background(), 10)
	if len(assigns) != 1 || assigns[0].StaffID != 2 {
		t.Fatalf("assignments = %+v", assigns)
	}
	if assigns[0].Note == nil || !strings.HasPrefix(*assigns[0].Note, "Reassigned: ") {
		t.Errorf("assignment note = %v", assigns[0].Note)
	}

	if f.pub.lastType() != "report_reassigned" {
		t.Errorf("published event = %q", f.pub.lastType())
	}
}

func TestReassignSameDepartmentKeepsType(t *testing.T) {
	rep := openReport()
	rep.State = models.ReportStateAssigned
	f := newAssignmentFixture(rep)
	f.assigns.add(10, 1)

	// Staff 5 shares the report's department.
	f.staff.users[5] = &models.StaffUser{ID: 5, Name: "Pedro Ruiz", Email: "pedro@city.gov", Role: models.RoleStaff, Department: "public_works", Active: true}

	res, err := f.svc.Reassign(context.Background(), ReassignInput{
		ReportID:   10,
		NewStaffID: 5,
		ActorID:    3,
		Reason:     "workload balancing across the crew",
	})
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if res.TypeChanged {
		t.Error("TypeChanged = true for same-department reassignment")
	}
	if res.NewType != "pothole" {
		t.Errorf("NewType = %q, want pothole", res.NewType)
	}
	for _, k := range f.audit.kinds() {
		if k == models.ChangeTypeChange {
			t.Error("unexpected type_change audit entry")
		}
	}
}

func TestReassignValidSuggestedTypeWins(t *testing.T) {
	rep := openReport()
	rep.State = models.ReportStateAssigned
	f := newAssignmentFixture(rep)
	f.assigns.add(10, 1)

	res, err := f.svc.Reassign(context.Background(), ReassignInput{
		ReportID:      10,
		NewStaffID:    2,
		ActorID:       3,
		Reason:        "street light out, not a pavement issue",
		SuggestedType: "street_light",
	})
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if res.NewType != "street_light" {
		t.Errorf("NewType = %q, want street_light", res.NewType)
	}
}

func TestReassignInvalidSuggestedTypeFallsBackToDefault(t *testing.T) {
	rep := openReport()
	rep.State = models.ReportStateAssigned
	f := newAssignmentFixture(rep)
	f.assigns.add(10, 1)

	res, err := f.svc.Reassign(context.Background(), ReassignInput{
		ReportID:      10,
		NewStaffID:    2,
		ActorID:       3,
		Reason:        "belongs to the services crew after inspection",
		SuggestedType: "fallen_tree",
	})
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if res.NewType != "water_leak" {
		t.Errorf("NewType = %q, want department default water_leak", res.NewType)
	}
}

func TestReassignKeepType(t *testing.T) {
	rep := openReport()
	rep.State = models.ReportStateAssigned
	f := newAssignmentFixture(rep)
	f.assigns.add(10, 1)

	res, err := f.svc.Reassign(context.Background(), ReassignInput{
		ReportID:   10,
		NewStaffID: 2,
		ActorID:    3,
		Reason:     "services crew will patch it with works oversight",
		KeepType:   true,
	})
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if res.TypeChanged || res.NewType != "pothole" {
		t.Errorf("result = %+v, want type kept", res)
	}
}

func TestReassignOpenReportBecomesAssigned(t *testing.T) {
	f := newAssignmentFixture(openReport())

	res, err := f.svc.Reassign(context.Background(), ReassignInput{
		ReportID:   10,
		NewStaffID: 1,
		ActorID:    3,
		Reason:     "direct dispatch from the supervisor queue",
	})
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if !res.StateChanged {
		t.Error("StateChanged = false, want true")
	}

	rep, _ := f.reports.GetByID(context.Background(), 10)
	if rep.State != models.ReportStateAssigned {
		t.Errorf("state = %q, want assigned", rep.State)
	}

	// With no prior assignees there is nothing to unassign.
	kinds := f.audit.kinds()
	want := []string{models.ChangeAssign, models.ChangeStateChange}
	if len(kinds) != len(want) {
		t.Fatalf("audit kinds = %v, want %v", kinds, want)
	}
	if f.audit.entries[0].OldValue == nil || *f.audit.entries[0].OldValue != "unassigned" {
		t.Errorf("assign audit old_value = %v, want unassigned", f.audit.entries[0].OldValue)
	}
}

func TestReassignValidationsRunBeforeMutations(t *testing.T) {
	rep := openReport()
	rep.State = models.ReportStateAssigned
	f := newAssignmentFixture(rep)
	f.assigns.add(10, 1)

	tests := []struct {
		name     string
		input    ReassignInput
		wantType apperr.Type
	}{
		{
			name:     "short reason",
			input:    ReassignInput{ReportID: 10, NewStaffID: 2, ActorID: 3, Reason: "because"},
			wantType: apperr.TypeValidation,
		},
		{
			name:     "missing staff id",
			input:    ReassignInput{ReportID: 10, ActorID: 3, Reason: "a perfectly valid reason"},
			wantType: apperr.TypeValidation,
		},
		{
			name:     "inactive target staff",
			input:    ReassignInput{ReportID: 10, NewStaffID: 4, ActorID: 3, Reason: "a perfectly valid reason"},
			wantType: apperr.TypeNotFound,
		},
		{
			name:     "unknown report",
			input:    ReassignInput{ReportID: 77, NewStaffID: 2, ActorID: 3, Reason: "a perfectly valid reason"},
			wantType: apperr.TypeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Reassign(context.Background(), tt.input)
			if !apperr.IsType(err, tt.wantType) {
				t.Errorf("err = %v, want %s", err, tt.wantType)
			}
		})
	}

	// Nothing mutated across all the failed attempts.
	assigns, _ := f.assigns.ListByReport(context.Background(), 10)
	if len(assigns) != 1 || assigns[0].StaffID != 1 {
		t.Errorf("assignments = %+v, want original intact", assigns)
	}
	if len(f.audit.entries) != 0 {
		t.Errorf("audit entries = %d, want 0", len(f.audit.entries))
	}
}

func TestReassignRollsBackOnTxFailure(t *testing.T) {
	rep := openReport()
	rep.State = models.ReportStateAssigned
	f := newAssignmentFixture(rep)
	f.assigns.add(10, 1)

	failing := &fakeTxManager{err: apperr.Internal("tx begin failed")}
	svc := NewAssignmentService(Stores{Reports: f.reports, Staff: f.staff, Assignments: f.assigns, Audit: f.audit}, failing, f.pub, f.svc.log)

	_, err := svc.Reassign(context.Background(), ReassignInput{
		ReportID:   10,
		NewStaffID: 2,
		ActorID:    3,
		Reason:     "a perfectly valid reason",
	})
	if err == nil {
		t.Fatal("Reassign succeeded despite tx failure")
	}
	if len(f.pub.published) != 0 {
		t.Errorf("event published despite tx failure: %+v", f.pub.published)
	}
}

func TestBuildReassignPlanMultipleAssignees(t *testing.T) {
	report := &models.Report{ID: 10, Type: "pothole", State: models.ReportStateInProgress}
	target := &models.StaffUser{ID: 2, Name: "Luis Vega", Email: "luis@city.gov", Department: "public_services"}
	current := []models.AssignmentDetail{
		{Assignment: models.Assignment{ReportID: 10, StaffID: 1}, StaffName: "Ana Torres", StaffEmail: "ana@city.gov", StaffDepartment: "public_works"},
		{Assignment: models.Assignment{ReportID: 10, StaffID: 7}, StaffName: "Ben Cruz", StaffEmail: "ben@city.gov", StaffDepartment: "public_works"},
	}

	p := buildReassignPlan(report, target, current, ReassignInput{
		ReportID:   10,
		NewStaffID: 2,
		ActorID:    3,
		Reason:     "moved after on-site inspection",
	})

	if len(p.unassignAudits) != 2 {
		t.Fatalf("unassign audits = %d, want 2", len(p.unassignAudits))
	}
	if p.assignAudit.OldValue == nil || *p.assignAudit.OldValue != "Ana Torres, Ben Cruz" {
		t.Errorf("assign audit old_value = %v", p.assignAudit.OldValue)
	}
	if p.typeAudit == nil {
		t.Error("typeAudit = nil, want type_change entry")
	}
	if p.stateAudit != nil {
		t.Error("stateAudit set for a report that is not open")
	}
	if !p.crossDepartment {
		t.Error("crossDepartment = false")
	}
}
