package repositories

import (
	"context"
	"encoding/json"

	"github.com/civic-reports/backend/internal/models"
)

// WorkLogRepo stores the append-only work log. There is deliberately no
// update or delete method.
type WorkLogRepo struct {
	db DBTX
}

func NewWorkLogRepo(db DBTX) *WorkLogRepo {
	return &WorkLogRepo{db: db}
}

func (r *WorkLogRepo) Create(ctx context.Context, e *models.WorkLogEntry) error {
	var meta []byte
	if e.Metadata != nil {
		var err error
		meta, err = json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO work_log_entries (report_id, author_id, content, category, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, e.ReportID, e.AuthorID, e.Content, e.Category, meta).Scan(&e.ID, &e.CreatedAt)
}

func (r *WorkLogRepo) ListByReport(ctx context.Context, reportID int64, authorID *int64, category *string) ([]models.WorkLogEntryDetail, error) {
	sql := `
		SELECT n.id, n.report_id, n.author_id, n.content, n.category, n.metadata, n.created_at,
		       u.name, u.email, u.department
		FROM work_log_entries n
		JOIN staff_users u ON n.author_id = u.id
		WHERE n.report_id = $1
	`
	args := []any{reportID}

	if authorID != nil {
		args = append(args, *authorID)
		sql += ` AND n.author_id = $2`
	}
	if category != nil {
		args = append(args, *category)
		if authorID != nil {
			sql += ` AND n.category = $3`
		} else {
			sql += ` AND n.category = $2`
		}
	}
	sql += ` ORDER BY n.created_at DESC`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.WorkLogEntryDetail
	for rows.Next() {
		var d models.WorkLogEntryDetail
		var meta []byte
		if err := rows.Scan(&d.ID, &d.ReportID, &d.AuthorID, &d.Content, &d.Category, &meta, &d.CreatedAt,
			&d.AuthorName, &d.AuthorEmail, &d.AuthorDepartment); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &d.Metadata)
		}
		entries = append(entries, d)
	}
	return entries, rows.Err()
}

func (r *WorkLogRepo) Summary(ctx context.Context, reportID int64) (*models.WorkLogSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*), COUNT(DISTINCT author_id), MIN(created_at), MAX(created_at)
		FROM work_log_entries
		WHERE report_id = $1
		GROUP BY category
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &models.WorkLogSummary{}
	for rows.Next() {
		var c models.WorkLogCategoryCount
		if err := rows.Scan(&c.Category, &c.Count, &c.Authors, &c.FirstNote, &c.LastNote); err != nil {
			return nil, err
		}
		summary.TotalNotes += c.Count
		summary.ByCategory = append(summary.ByCategory, c)
	}
	return summary, rows.Err()
}
