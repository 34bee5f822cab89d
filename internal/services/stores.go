package services

import (
	"context"

	"github.com/civic-reports/backend/internal/models"
)

// Store interfaces implemented by internal/repositories. Services depend on
// these so the transition rules can be exercised against in-memory fakes.

type ReportStore interface {
	Create(ctx context.Context, rep *models.Report) error
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	List(ctx context.Context, f models.ReportFilter) ([]models.Report, error)
	UpdateType(ctx context.Context, id int64, reportType string) error
	// UpdateState moves the report from one state to another; it reports
	// false when the report was not in the expected from state.
	UpdateState(ctx context.Context, id int64, from, to string) (bool, error)
	// RevertToOpen sets an assigned or in_progress report back to open.
	RevertToOpen(ctx context.Context, id int64) (bool, error)
}

type StaffStore interface {
	GetByID(ctx context.Context, id int64) (*models.StaffUser, error)
	// GetActiveStaff returns the user only when active with the staff role.
	GetActiveStaff(ctx context.Context, id int64) (*models.StaffUser, error)
	GetSupervisorByDepartment(ctx context.Context, department string) (*models.StaffUser, error)
}

type AssignmentStore interface {
	ListByReport(ctx context.Context, reportID int64) ([]models.AssignmentDetail, error)
	GetDetail(ctx context.Context, reportID, staffID int64) (*models.AssignmentDetail, error)
	Create(ctx context.Context, a *models.Assignment) error
	Delete(ctx context.Context, reportID, staffID int64) error
	DeleteAllByReport(ctx context.Context, reportID int64) (int, error)
	Count(ctx context.Context, reportID int64) (int, error)
	Exists(ctx context.Context, reportID, staffID int64) (bool, error)
	UpdateNote(ctx context.Context, reportID, staffID int64, note string) error
}

type AuditStore interface {
	Record(ctx context.Context, e *models.AuditEntry) error
	HistoryByReport(ctx context.Context, reportID int64) ([]models.AuditEntryDetail, error)
}

type WorkLogStore interface {
	Create(ctx context.Context, e *models.WorkLogEntry) error
	ListByReport(ctx context.Context, reportID int64, authorID *int64, category *string) ([]models.WorkLogEntryDetail, error)
	Summary(ctx context.Context, reportID int64) (*models.WorkLogSummary, error)
}

type DraftStore interface {
	Upsert(ctx context.Context, d *models.DraftNote) error
	Get(ctx context.Context, reportID, authorID int64) (*models.DraftNote, error)
}

type ClosureStore interface {
	Create(ctx context.Context, pc *models.PendingClosure) error
	GetPending(ctx context.Context, id int64) (*models.PendingClosureDetail, error)
	ListPending(ctx context.Context, department string) ([]models.PendingClosureDetail, error)
	Decide(ctx context.Context, id int64, decision string, supervisorNotes *string, reviewedBy int64) error
}

// Stores bundles the stores that participate in the reassignment transaction.
type Stores struct {
	Reports     ReportStore
	Staff       StaffStore
	Assignments AssignmentStore
	Audit       AuditStore
}

// TxManager runs fn inside a single database transaction; the Stores handed
// to fn are bound to that transaction. Any error from fn rolls everything
// back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(Stores) error) error
}
