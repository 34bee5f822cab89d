package repositories

import (
	"context"
	"fmt"

	"github.com/civic-reports/backend/internal/models"
	"github.com/civic-reports/backend/internal/taxonomy"
)

type ReportRepo struct {
	db DBTX
}

func NewReportRepo(db DBTX) *ReportRepo {
	return &ReportRepo{db: db}
}

const reportColumns = `id, type, description, lat, lng, state, department, priority, locality, created_at`

func (r *ReportRepo) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	var rep models.Report
	err := r.db.QueryRow(ctx, `
		SELECT `+reportColumns+`
		FROM reports WHERE id = $1
	`, id).Scan(&rep.ID, &rep.Type, &rep.Description, &rep.Lat, &rep.Lng,
		&rep.State, &rep.Department, &rep.Priority, &rep.Locality, &rep.CreatedAt)
	if err != nil {
		return nil, notFound(err, "report not found")
	}
	return &rep, nil
}

func (r *ReportRepo) Create(ctx context.Context, rep *models.Report) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO reports (type, description, lat, lng, state, department, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, rep.Type, rep.Description, rep.Lat, rep.Lng, rep.State, rep.Department, rep.Priority).
		Scan(&rep.ID, &rep.CreatedAt)
}

func (r *ReportRepo) List(ctx context.Context, f models.ReportFilter) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE 1=1`
	args := []any{}

	if f.State != "" {
		args = append(args, f.State)
		query += fmt.Sprintf(" AND state = $%d", len(args))
	}
	if f.Department != "" {
		args = append(args, f.Department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}

	query += " ORDER BY created_at DESC, id DESC"

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.Type, &rep.Description, &rep.Lat, &rep.Lng,
			&rep.State, &rep.Department, &rep.Priority, &rep.Locality, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// UpdateType changes a report's type and refreshes the derived department.
func (r *ReportRepo) UpdateType(ctx context.Context, id int64, reportType string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE reports SET type = $1, department = $2 WHERE id = $3
	`, reportType, taxonomy.DepartmentOf(reportType), id)
	return err
}

func (r *ReportRepo) UpdateState(ctx context.Context, id int64, from, to string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE reports SET state = $1 WHERE id = $2 AND state = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ReportRepo) RevertToOpen(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE reports SET state = 'open' WHERE id = $1 AND state IN ('assigned', 'in_progress')
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListMissingLocality returns reports still lacking reverse-geocoded locality
// data, oldest first. Used by the enrichment worker.
func (r *ReportRepo) ListMissingLocality(ctx context.Context, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+reportColumns+`
		FROM reports WHERE locality IS NULL
		ORDER BY created_at ASC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.Type, &rep.Description, &rep.Lat, &rep.Lng,
			&rep.State, &rep.Department, &rep.Priority, &rep.Locality, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *ReportRepo) UpdateLocality(ctx context.Context, id int64, locality string) error {
	_, err := r.db.Exec(ctx, `UPDATE reports SET locality = $1 WHERE id = $2`, locality, id)
	return err
}
