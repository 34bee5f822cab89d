package repositories

import (
	"context"
	"encoding/json"

	"github.com/civic-reports/backend/internal/models"
)

// AuditRepo is the append-only change ledger. Rows are inserted exactly once
// per semantic change and never updated or deleted.
type AuditRepo struct {
	db DBTX
}

func NewAuditRepo(db DBTX) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Record(ctx context.Context, e *models.AuditEntry) error {
	var meta []byte
	if e.Metadata != nil {
		var err error
		meta, err = json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO audit_entries (entity, entity_id, actor_id, change_kind, field, old_value, new_value, reason, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, e.Entity, e.EntityID, e.ActorID, e.ChangeKind, e.Field,
		e.OldValue, e.NewValue, e.Reason, meta).Scan(&e.ID, &e.CreatedAt)
}

func (r *AuditRepo) HistoryByReport(ctx context.Context, reportID int64) ([]models.AuditEntryDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT h.id, h.entity, h.entity_id, h.actor_id, h.change_kind, h.field,
		       h.old_value, h.new_value, h.reason, h.metadata, h.created_at,
		       u.name, u.email, u.role, u.department
		FROM audit_entries h
		JOIN staff_users u ON h.actor_id = u.id
		WHERE h.entity = $1 AND h.entity_id = $2
		ORDER BY h.created_at DESC, h.id DESC
	`, models.EntityReport, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntryDetail
	for rows.Next() {
		var d models.AuditEntryDetail
		var meta []byte
		if err := rows.Scan(&d.ID, &d.Entity, &d.EntityID, &d.ActorID, &d.ChangeKind, &d.Field,
			&d.OldValue, &d.NewValue, &d.Reason, &meta, &d.CreatedAt,
			&d.ActorName, &d.ActorEmail, &d.ActorRole, &d.ActorDepartment); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &d.Metadata)
		}
		entries = append(entries, d)
	}
	return entries, rows.Err()
}
