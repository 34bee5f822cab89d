package repositories

import (
	"context"
	"fmt"

	"github.com/civic-reports/backend/internal/services"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager implements services.TxManager over a pgx pool. The stores handed
// to fn are bound to one transaction; an error from fn rolls everything back,
// otherwise the transaction is committed.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(services.Stores) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stores := services.Stores{
		Reports:     NewReportRepo(tx),
		Staff:       NewStaffRepo(tx),
		Assignments: NewAssignmentRepo(tx),
		Audit:       NewAuditRepo(tx),
	}
	if err := fn(stores); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
