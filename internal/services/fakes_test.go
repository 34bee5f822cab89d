package services

import (
	"context"
	"errors"
	"time"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/events"
	"github.com/civic-reports/backend/internal/models"
	"github.com/civic-reports/backend/internal/taxonomy"
)

// In-memory store implementations backing the service tests.

type fakeReportStore struct {
	reports map[int64]*models.Report
	nextID  int64
}

func newFakeReportStore(reports ...*models.Report) *fakeReportStore {
	s := &fakeReportStore{reports: map[int64]*models.Report{}, nextID: 1}
	for _, r := range reports {
		if r.ID == 0 {
			r.ID = s.nextID
		}
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
		s.reports[r.ID] = r
	}
	return s
}

func (s *fakeReportStore) Create(_ context.Context, rep *models.Report) error {
	rep.ID = s.nextID
	s.nextID++
	rep.CreatedAt = time.Now()
	cp := *rep
	s.reports[rep.ID] = &cp
	return nil
}

func (s *fakeReportStore) GetByID(_ context.Context, id int64) (*models.Report, error) {
	rep, ok := s.reports[id]
	if !ok {
		return nil, apperr.NotFound("report not found")
	}
	cp := *rep
	return &cp, nil
}

func (s *fakeReportStore) List(_ context.Context, f models.ReportFilter) ([]models.Report, error) {
	var out []models.Report
	for _, rep := range s.reports {
		if f.State != "" && rep.State != f.State {
			continue
		}
		if f.Department != "" && rep.Department != f.Department {
			continue
		}
		if f.Type != "" && rep.Type != f.Type {
			continue
		}
		out = append(out, *rep)
	}
	return out, nil
}

func (s *fakeReportStore) UpdateType(_ context.Context, id int64, reportType string) error {
	rep, ok := s.reports[id]
	if !ok {
		return apperr.NotFound("report not found")
	}
	rep.Type = reportType
	rep.Department = taxonomy.DepartmentOf(reportType)
	return nil
}

func (s *fakeReportStore) UpdateState(_ context.Context, id int64, from, to string) (bool, error) {
	rep, ok := s.reports[id]
	if !ok || rep.State != from {
		return false, nil
	}
	rep.State = to
	return true, nil
}

func (s *fakeReportStore) RevertToOpen(_ context.Context, id int64) (bool, error) {
	rep, ok := s.reports[id]
	if !ok {
		return false, nil
	}
	if rep.State != models.ReportStateAssigned && rep.State != models.ReportStateInProgress {
		return false, nil
	}
	rep.State = models.ReportStateOpen
	return true, nil
}

type fakeStaffStore struct {
	users map[int64]*models.StaffUser
}

func newFakeStaffStore(users ...*models.StaffUser) *fakeStaffStore {
	s := &fakeStaffStore{users: map[int64]*models.StaffUser{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStaffStore) GetByID(_ context.Context, id int64) (*models.StaffUser, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("staff user not found")
	}
	return u, nil
}

func (s *fakeStaffStore) GetActiveStaff(_ context.Context, id int64) (*models.StaffUser, error) {
	u, ok := s.users[id]
	if !ok || !u.Active || u.Role != models.RoleStaff {
		return nil, apperr.NotFound("staff member not found or inactive")
	}
	return u, nil
}

func (s *fakeStaffStore) GetSupervisorByDepartment(_ context.Context, department string) (*models.StaffUser, error) {
	for _, u := range s.users {
		if u.Department == department && u.Role == models.RoleSupervisor && u.Active {
			return u, nil
		}
	}
	return nil, apperr.NotFound("no supervisor for department %s", department)
}

type fakeAssignmentStore struct {
	assignments []models.AssignmentDetail
	staff       *fakeStaffStore
	nextID      int64
}

func newFakeAssignmentStore(staff *fakeStaffStore) *fakeAssignmentStore {
	return &fakeAssignmentStore{staff: staff, nextID: 1}
}

func (s *fakeAssignmentStore) add(reportID, staffID int64) {
	u := s.staff.users[staffID]
	s.assignments = append(s.assignments, models.AssignmentDetail{
		Assignment: models.Assignment{
			ID:       s.nextID,
			ReportID: reportID,
			StaffID:  staffID,
		},
		StaffName:       u.Name,
		StaffEmail:      u.Email,
		StaffDepartment: u.Department,
	})
	s.nextID++
}

func (s *fakeAssignmentStore) ListByReport(_ context.Context, reportID int64) ([]models.AssignmentDetail, error) {
	var out []models.AssignmentDetail
	for _, a := range s.assignments {
		if a.ReportID == reportID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAssignmentStore) GetDetail(_ context.Context, reportID, staffID int64) (*models.AssignmentDetail, error) {
	for _, a := range s.assignments {
		if a.ReportID == reportID && a.StaffID == staffID {
			cp := a
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("assignment not found")
}

func (s *fakeAssignmentStore) Create(_ context.Context, a *models.Assignment) error {
	for _, existing := range s.assignments {
		if existing.ReportID == a.ReportID && existing.StaffID == a.StaffID {
			return apperr.Conflict("staff member is already assigned to this report")
		}
	}
	a.ID = s.nextID
	s.nextID++
	u := s.staff.users[a.StaffID]
	detail := models.AssignmentDetail{Assignment: *a}
	if u != nil {
		detail.StaffName = u.Name
		detail.StaffEmail = u.Email
		detail.StaffDepartment = u.Department
	}
	s.assignments = append(s.assignments, detail)
	return nil
}

func (s *fakeAssignmentStore) Delete(_ context.Context, reportID, staffID int64) error {
	for i, a := range s.assignments {
		if a.ReportID == reportID && a.StaffID == staffID {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("assignment not found")
}

func (s *fakeAssignmentStore) DeleteAllByReport(_ context.Context, reportID int64) (int, error) {
	kept := s.assignments[:0]
	removed := 0
	for _, a := range s.assignments {
		if a.ReportID == reportID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.assignments = kept
	return removed, nil
}

func (s *fakeAssignmentStore) Count(_ context.Context, reportID int64) (int, error) {
	n := 0
	for _, a := range s.assignments {
		if a.ReportID == reportID {
			n++
		}
	}
	return n, nil
}

func (s *fakeAssignmentStore) Exists(_ context.Context, reportID, staffID int64) (bool, error) {
	for _, a := range s.assignments {
		if a.ReportID == reportID && a.StaffID == staffID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeAssignmentStore) UpdateNote(_ context.Context, reportID, staffID int64, note string) error {
	for i, a := range s.assignments {
		if a.ReportID == reportID && a.StaffID == staffID {
			s.assignments[i].Note = &note
			return nil
		}
	}
	return apperr.Forbidden("you are not assigned to this report")
}

type fakeAuditStore struct {
	entries  []models.AuditEntry
	failNext bool
}

func (s *fakeAuditStore) Record(_ context.Context, e *models.AuditEntry) error {
	if s.failNext {
		s.failNext = false
		return errors.New("audit insert failed")
	}
	s.entries = append(s.entries, *e)
	return nil
}

func (s *fakeAuditStore) HistoryByReport(_ context.Context, reportID int64) ([]models.AuditEntryDetail, error) {
	var out []models.AuditEntryDetail
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].EntityID == reportID {
			out = append(out, models.AuditEntryDetail{AuditEntry: s.entries[i]})
		}
	}
	return out, nil
}

// kinds returns the recorded change kinds in insertion order.
func (s *fakeAuditStore) kinds() []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.ChangeKind)
	}
	return out
}

type fakeWorkLogStore struct {
	entries []models.WorkLogEntry
	nextID  int64
}

func (s *fakeWorkLogStore) Create(_ context.Context, e *models.WorkLogEntry) error {
	s.nextID++
	e.ID = s.nextID
	e.CreatedAt = time.Now()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *fakeWorkLogStore) ListByReport(_ context.Context, reportID int64, authorID *int64, category *string) ([]models.WorkLogEntryDetail, error) {
	var out []models.WorkLogEntryDetail
	for _, e := range s.entries {
		if e.ReportID != reportID {
			continue
		}
		if authorID != nil && e.AuthorID != *authorID {
			continue
		}
		if category != nil && e.Category != *category {
			continue
		}
		out = append(out, models.WorkLogEntryDetail{WorkLogEntry: e})
	}
	return out, nil
}

func (s *fakeWorkLogStore) Summary(_ context.Context, reportID int64) (*models.WorkLogSummary, error) {
	sum := &models.WorkLogSummary{}
	byCat := map[string]int{}
	for _, e := range s.entries {
		if e.ReportID != reportID {
			continue
		}
		sum.TotalNotes++
		byCat[e.Category]++
	}
	for cat, n := range byCat {
		sum.ByCategory = append(sum.ByCategory, models.WorkLogCategoryCount{Category: cat, Count: n})
	}
	return sum, nil
}

type fakeDraftStore struct {
	drafts map[[2]int64]*models.DraftNote
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: map[[2]int64]*models.DraftNote{}}
}

func (s *fakeDraftStore) Upsert(_ context.Context, d *models.DraftNote) error {
	key := [2]int64{d.ReportID, d.AuthorID}
	if existing, ok := s.drafts[key]; ok {
		existing.Content = d.Content
		existing.UpdatedAt = time.Now()
		*d = *existing
		return nil
	}
	d.ID = int64(len(s.drafts) + 1)
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	s.drafts[key] = &cp
	return nil
}

func (s *fakeDraftStore) Get(_ context.Context, reportID, authorID int64) (*models.DraftNote, error) {
	d, ok := s.drafts[[2]int64{reportID, authorID}]
	if !ok {
		return nil, apperr.NotFound("no draft found")
	}
	cp := *d
	return &cp, nil
}

type fakeClosureStore struct {
	closures map[int64]*models.PendingClosureDetail
	staff    *fakeStaffStore
	nextID   int64
}

func newFakeClosureStore(staff *fakeStaffStore) *fakeClosureStore {
	return &fakeClosureStore{closures: map[int64]*models.PendingClosureDetail{}, staff: staff, nextID: 1}
}

func (s *fakeClosureStore) Create(_ context.Context, pc *models.PendingClosure) error {
	pc.ID = s.nextID
	s.nextID++
	pc.CreatedAt = time.Now()
	detail := &models.PendingClosureDetail{PendingClosure: *pc}
	if u := s.staff.users[pc.RequesterID]; u != nil {
		detail.RequesterName = u.Name
		detail.RequesterEmail = u.Email
		detail.RequesterDepartment = u.Department
	}
	s.closures[pc.ID] = detail
	return nil
}

func (s *fakeClosureStore) GetPending(_ context.Context, id int64) (*models.PendingClosureDetail, error) {
	pc, ok := s.closures[id]
	if !ok || pc.Decision != models.ClosureDecisionPending {
		return nil, apperr.NotFound("pending closure not found")
	}
	cp := *pc
	return &cp, nil
}

func (s *fakeClosureStore) ListPending(_ context.Context, department string) ([]models.PendingClosureDetail, error) {
	var out []models.PendingClosureDetail
	for _, pc := range s.closures {
		if pc.Decision != models.ClosureDecisionPending {
			continue
		}
		if department != "" && pc.RequesterDepartment != department {
			continue
		}
		out = append(out, *pc)
	}
	return out, nil
}

func (s *fakeClosureStore) Decide(_ context.Context, id int64, decision string, supervisorNotes *string, reviewedBy int64) error {
	pc, ok := s.closures[id]
	if !ok || pc.Decision != models.ClosureDecisionPending {
		return apperr.NotFound("pending closure not found")
	}
	now := time.Now()
	pc.Decision = decision
	pc.SupervisorNotes = supervisorNotes
	pc.ReviewedBy = &reviewedBy
	pc.ReviewedAt = &now
	return nil
}

// fakeTxManager runs the callback against the same stores; a non-nil err
// short-circuits without invoking it.
type fakeTxManager struct {
	stores Stores
	err    error
}

func (m *fakeTxManager) WithinTx(_ context.Context, fn func(Stores) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(m.stores)
}

type fakePublisher struct {
	published []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, _ string, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) lastType() string {
	if len(p.published) == 0 {
		return ""
	}
	return p.published[len(p.published)-1].Type
}
