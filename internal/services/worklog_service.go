package services

import (
	"context"
	"strings"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/events"
	"github.com/civic-reports/backend/internal/models"
	"go.uber.org/zap"
)

// auditPreviewLen bounds how much note content is copied into the ledger.
const auditPreviewLen = 100

// WorkLogService manages the append-only work log and the per-author draft
// notes. Published notes are immutable; drafts are the only mutable record.
type WorkLogService struct {
	reports     ReportStore
	assignments AssignmentStore
	worklog     WorkLogStore
	drafts      DraftStore
	audit       AuditStore
	publisher   events.Publisher
	log         *zap.Logger
}

func NewWorkLogService(reports ReportStore, assignments AssignmentStore, worklog WorkLogStore, drafts DraftStore, audit AuditStore, publisher events.Publisher, log *zap.Logger) *WorkLogService {
	return &WorkLogService{
		reports:     reports,
		assignments: assignments,
		worklog:     worklog,
		drafts:      drafts,
		audit:       audit,
		publisher:   publisher,
		log:         log,
	}
}

func (s *WorkLogService) List(ctx context.Context, reportID int64, authorID *int64, category *string) ([]models.WorkLogEntryDetail, error) {
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		return nil, err
	}
	return s.worklog.ListByReport(ctx, reportID, authorID, category)
}

func (s *WorkLogService) Summary(ctx context.Context, reportID int64) (*models.WorkLogSummary, error) {
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		return nil, err
	}
	return s.worklog.Summary(ctx, reportID)
}

// AddNote appends one immutable work log entry. Only currently assigned staff
// may write, and not while the report is under closure review or closed.
//
// The assignment check and the insert are separate statements; a concurrent
// unassignment can slip between them. Accepted limitation.
func (s *WorkLogService) AddNote(ctx context.Context, reportID, authorID int64, content, category string, noteMeta, reqMeta map[string]any) (*models.WorkLogEntry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	if category == "" {
		category = models.NoteObservation
	}
	if !models.IsValidNoteCategory(category) {
		return nil, apperr.Validation("invalid category %q", category)
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	assigned, err := s.assignments.Exists(ctx, reportID, authorID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, apperr.Forbidden("only assigned staff can add work log notes")
	}

	switch report.State {
	case models.ReportStateClosurePending:
		return nil, apperr.Conflict("work log is frozen while the report is under closure review")
	case models.ReportStateClosed:
		return nil, apperr.Conflict("cannot add notes to a closed report")
	}

	entry := &models.WorkLogEntry{
		ReportID: reportID,
		AuthorID: authorID,
		Content:  content,
		Category: category,
		Metadata: noteMeta,
	}
	if err := s.worklog.Create(ctx, entry); err != nil {
		return nil, err
	}

	// Ledger write is best-effort: the note itself is already durable.
	auditErr := s.audit.Record(ctx, &models.AuditEntry{
		Entity:     models.EntityReport,
		EntityID:   reportID,
		ActorID:    authorID,
		ChangeKind: models.ChangeNoteAdded,
		Field:      "work_log",
		NewValue:   ptr(notePreview(category, content)),
		Reason:     "work log note of category " + category,
		Metadata: mergeMeta(reqMeta, map[string]any{
			"note_id":        entry.ID,
			"category":       category,
			"content_length": len(content),
		}),
	})
	if auditErr != nil {
		s.log.Error("audit write failed for work log note",
			zap.Int64("report_id", reportID),
			zap.Int64("note_id", entry.ID),
			zap.Error(auditErr),
		)
	}

	_ = s.publisher.Publish(ctx, events.StreamReport, events.Event{
		Type: events.EventWorkNoteAdded,
		Payload: map[string]any{
			"report_id": reportID,
			"author_id": authorID,
			"category":  category,
		},
	})

	return entry, nil
}

// DeleteNote is rejected unconditionally. History is corrected by appending a
// correction note, never by removing entries.
func (s *WorkLogService) DeleteNote(ctx context.Context, reportID, noteID int64) error {
	return apperr.MethodNotAllowed("work log notes are immutable; append a %q note instead", models.NoteCorrection)
}

func (s *WorkLogService) SaveDraft(ctx context.Context, reportID, authorID int64, content string) (*models.DraftNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	if err := s.requireAssignment(ctx, reportID, authorID); err != nil {
		return nil, err
	}

	draft := &models.DraftNote{ReportID: reportID, AuthorID: authorID, Content: content}
	if err := s.drafts.Upsert(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *WorkLogService) GetDraft(ctx context.Context, reportID, authorID int64) (*models.DraftNote, error) {
	if err := s.requireAssignment(ctx, reportID, authorID); err != nil {
		return nil, err
	}
	return s.drafts.Get(ctx, reportID, authorID)
}

func (s *WorkLogService) requireAssignment(ctx context.Context, reportID, authorID int64) error {
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		return err
	}
	assigned, err := s.assignments.Exists(ctx, reportID, authorID)
	if err != nil {
		return err
	}
	if !assigned {
		return apperr.Forbidden("you are not assigned to this report")
	}
	return nil
}

// notePreview renders the audit-ledger summary of a note: its category tag
// and a truncated slice of the content.
func notePreview(category, content string) string {
	preview := content
	if len(preview) > auditPreviewLen {
		preview = preview[:auditPreviewLen] + "..."
	}
	return "[" + strings.ToUpper(category) + "] " + preview
}
