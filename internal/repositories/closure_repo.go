package repositories

import (
	"context"
	"encoding/json"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/models"
)

type ClosureRepo struct {
	db DBTX
}

func NewClosureRepo(db DBTX) *ClosureRepo {
	return &ClosureRepo{db: db}
}

func (r *ClosureRepo) Create(ctx context.Context, pc *models.PendingClosure) error {
	var evidence []byte
	if pc.EvidencePhotos != nil {
		var err error
		evidence, err = json.Marshal(pc.EvidencePhotos)
		if err != nil {
			return err
		}
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO pending_closures (report_id, requester_id, closure_notes, signature, evidence_photos, prior_state, decision)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, created_at
	`, pc.ReportID, pc.RequesterID, pc.ClosureNotes, pc.Signature, evidence, pc.PriorState).
		Scan(&pc.ID, &pc.CreatedAt)
}

const pendingClosureDetailQuery = `
	SELECT pc.id, pc.report_id, pc.requester_id, pc.closure_notes, pc.signature,
	       pc.evidence_photos, pc.prior_state, pc.decision, pc.supervisor_notes,
	       pc.reviewed_by, pc.reviewed_at, pc.created_at,
	       r.type, r.description,
	       u.name, u.email, u.department
	FROM pending_closures pc
	JOIN reports r ON pc.report_id = r.id
	JOIN staff_users u ON pc.requester_id = u.id
`

func scanPendingClosureDetail(row interface{ Scan(...any) error }) (*models.PendingClosureDetail, error) {
	var d models.PendingClosureDetail
	var evidence []byte
	err := row.Scan(&d.ID, &d.ReportID, &d.RequesterID, &d.ClosureNotes, &d.Signature,
		&evidence, &d.PriorState, &d.Decision, &d.SupervisorNotes,
		&d.ReviewedBy, &d.ReviewedAt, &d.CreatedAt,
		&d.ReportType, &d.ReportDescription,
		&d.RequesterName, &d.RequesterEmail, &d.RequesterDepartment)
	if err != nil {
		return nil, err
	}
	if len(evidence) > 0 {
		_ = json.Unmarshal(evidence, &d.EvidencePhotos)
	}
	return &d, nil
}

// GetPending returns the closure request only while it is still undecided.
func (r *ClosureRepo) GetPending(ctx context.Context, id int64) (*models.PendingClosureDetail, error) {
	row := r.db.QueryRow(ctx, pendingClosureDetailQuery+`
		WHERE pc.id = $1 AND pc.decision = 'pending'
	`, id)
	d, err := scanPendingClosureDetail(row)
	if err != nil {
		return nil, notFound(err, "closure request not found or already decided")
	}
	return d, nil
}

// ListPending returns undecided closure requests. An empty department lists
// all of them (admin view); otherwise only requests from staff of that
// department.
func (r *ClosureRepo) ListPending(ctx context.Context, department string) ([]models.PendingClosureDetail, error) {
	sql := pendingClosureDetailQuery + ` WHERE pc.decision = 'pending'`
	args := []any{}
	if department != "" {
		sql += ` AND u.department = $1`
		args = append(args, department)
	}
	sql += ` ORDER BY pc.created_at DESC`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PendingClosureDetail
	for rows.Next() {
		d, err := scanPendingClosureDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *ClosureRepo) Decide(ctx context.Context, id int64, decision string, supervisorNotes *string, reviewedBy int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE pending_closures
		SET decision = $1, supervisor_notes = $2, reviewed_by = $3, reviewed_at = now()
		WHERE id = $4 AND decision = 'pending'
	`, decision, supervisorNotes, reviewedBy, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("closure request not found or already decided")
	}
	return nil
}
