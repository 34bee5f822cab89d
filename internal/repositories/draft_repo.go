package repositories

import (
	"context"

	"github.com/civic-reports/backend/internal/models"
)

// DraftRepo holds per-(report, author) draft notes, the one mutable record in
// the core: saving a draft again replaces the previous text.
type DraftRepo struct {
	db DBTX
}

func NewDraftRepo(db DBTX) *DraftRepo {
	return &DraftRepo{db: db}
}

func (r *DraftRepo) Upsert(ctx context.Context, d *models.DraftNote) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO draft_notes (report_id, author_id, content, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (report_id, author_id)
		DO UPDATE SET content = EXCLUDED.content, updated_at = now()
		RETURNING id, created_at, updated_at
	`, d.ReportID, d.AuthorID, d.Content).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DraftRepo) Get(ctx context.Context, reportID, authorID int64) (*models.DraftNote, error) {
	var d models.DraftNote
	err := r.db.QueryRow(ctx, `
		SELECT id, report_id, author_id, content, created_at, updated_at
		FROM draft_notes WHERE report_id = $1 AND author_id = $2
	`, reportID, authorID).Scan(&d.ID, &d.ReportID, &d.AuthorID, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "draft not found")
	}
	return &d, nil
}
