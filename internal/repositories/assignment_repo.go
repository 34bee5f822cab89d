package repositories

import (
	"context"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/models"
)

type AssignmentRepo struct {
	db DBTX
}

func NewAssignmentRepo(db DBTX) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

const assignmentDetailQuery = `
	SELECT a.id, a.report_id, a.staff_id, a.assigned_by, a.note, a.created_at,
	       u.name, u.email, u.department,
	       assigner.name
	FROM assignments a
	JOIN staff_users u ON a.staff_id = u.id
	LEFT JOIN staff_users assigner ON a.assigned_by = assigner.id
`

func scanAssignmentDetail(row interface{ Scan(...any) error }) (*models.AssignmentDetail, error) {
	var d models.AssignmentDetail
	err := row.Scan(&d.ID, &d.ReportID, &d.StaffID, &d.AssignedBy, &d.Note, &d.CreatedAt,
		&d.StaffName, &d.StaffEmail, &d.StaffDepartment, &d.AssignedByName)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *AssignmentRepo) ListByReport(ctx context.Context, reportID int64) ([]models.AssignmentDetail, error) {
	rows, err := r.db.Query(ctx, assignmentDetailQuery+`
		WHERE a.report_id = $1
		ORDER BY a.created_at ASC
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []models.AssignmentDetail
	for rows.Next() {
		d, err := scanAssignmentDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, rows.Err()
}

func (r *AssignmentRepo) GetDetail(ctx context.Context, reportID, staffID int64) (*models.AssignmentDetail, error) {
	row := r.db.QueryRow(ctx, assignmentDetailQuery+`
		WHERE a.report_id = $1 AND a.staff_id = $2
	`, reportID, staffID)
	d, err := scanAssignmentDetail(row)
	if err != nil {
		return nil, notFound(err, "assignment not found")
	}
	return d, nil
}

func (r *AssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO assignments (report_id, staff_id, assigned_by, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, a.ReportID, a.StaffID, a.AssignedBy, a.Note).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("staff member is already assigned to this report")
	}
	return err
}

func (r *AssignmentRepo) Delete(ctx context.Context, reportID, staffID int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM assignments WHERE report_id = $1 AND staff_id = $2
	`, reportID, staffID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("assignment not found")
	}
	return nil
}

func (r *AssignmentRepo) DeleteAllByReport(ctx context.Context, reportID int64) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM assignments WHERE report_id = $1`, reportID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *AssignmentRepo) Count(ctx context.Context, reportID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM assignments WHERE report_id = $1`, reportID).Scan(&n)
	return n, err
}

func (r *AssignmentRepo) Exists(ctx context.Context, reportID, staffID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM assignments WHERE report_id = $1 AND staff_id = $2)
	`, reportID, staffID).Scan(&exists)
	return exists, err
}

func (r *AssignmentRepo) UpdateNote(ctx context.Context, reportID, staffID int64, note string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE assignments SET note = $1 WHERE report_id = $2 AND staff_id = $3
	`, note, reportID, staffID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Forbidden("you are not assigned to this report")
	}
	return nil
}
