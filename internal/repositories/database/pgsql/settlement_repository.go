package pgsql

import (
	"context"
	"fmt"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/consignet/consignment_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

type PgxSettlementRepository struct {
	db DBTX
}

func newPgxSettlementRepository(db DBTX) portsrepo.SettlementRepositoryFacade {
	return &PgxSettlementRepository{db: db}
}

var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

const settlementColumns = `settlement_id, supplier_id, period_start, period_end, item_count, total_sales_amount,
	credit_percentage_in_store, cash_redemption_percentage, store_credit_amount, cash_redemption_amount,
	net_amount_to_supplier, store_commission_amount, status, notes, paid_on, paid_by, store_credit_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanSettlement(row pgx.Row) (domain.Settlement, error) {
	var s domain.Settlement
	err := row.Scan(
		&s.SettlementID,
		&s.SupplierID,
		&s.PeriodStart,
		&s.PeriodEnd,
		&s.ItemCount,
		&s.TotalSalesAmount,
		&s.CreditPercentageInStore,
		&s.CashRedemptionPercentage,
		&s.StoreCreditAmount,
		&s.CashRedemptionAmount,
		&s.NetAmountToSupplier,
		&s.StoreCommissionAmount,
		&s.Status,
		&s.Notes,
		&s.PaidOn,
		&s.PaidBy,
		&s.StoreCreditID,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	return s, err
}

// SaveSettlement inserts a new settlement.
func (r *PgxSettlementRepository) SaveSettlement(ctx context.Context, s domain.Settlement) error {
	query := `
		INSERT INTO settlements (` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := r.db.Exec(ctx, query,
		s.SettlementID, s.SupplierID, s.PeriodStart, s.PeriodEnd, s.ItemCount, s.TotalSalesAmount,
		s.CreditPercentageInStore, s.CashRedemptionPercentage, s.StoreCreditAmount, s.CashRedemptionAmount,
		s.NetAmountToSupplier, s.StoreCommissionAmount, s.Status, s.Notes, s.PaidOn, s.PaidBy, s.StoreCreditID,
		s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy,
	)
	return mapWriteError(err, "settlement "+s.SettlementID)
}

// FindSettlementByID retrieves a settlement by its ID.
func (r *PgxSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE settlement_id = $1;`
	s, err := scanSettlement(r.db.QueryRow(ctx, query, settlementID))
	if err != nil {
		return nil, mapReadError(err, "settlement "+settlementID)
	}
	return &s, nil
}

// UpdateSettlementStatus persists the lifecycle fields of a settlement.
func (r *PgxSettlementRepository) UpdateSettlementStatus(ctx context.Context, s domain.Settlement) error {
	query := `
		UPDATE settlements
		SET status = $2, paid_on = $3, paid_by = $4, store_credit_id = $5, last_updated_at = $6, last_updated_by = $7
		WHERE settlement_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, s.SettlementID, s.Status, s.PaidOn, s.PaidBy, s.StoreCreditID, s.LastUpdatedAt, s.LastUpdatedBy)
	if err != nil {
		return mapWriteError(err, "settlement "+s.SettlementID)
	}
	if tag.RowsAffected() == 0 {
		return mapReadError(pgx.ErrNoRows, "settlement "+s.SettlementID)
	}
	return nil
}

// ListSettlementsBySupplier pages through a supplier's settlements, newest first.
func (r *PgxSettlementRepository) ListSettlementsBySupplier(ctx context.Context, supplierID string, limit int, nextToken *string) ([]domain.Settlement, *string, error) {
	limit = pagination.ClampLimit(limit)
	args := []any{supplierID, limit + 1}
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE supplier_id = $1`
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, settlement_id) < ($3, $4)`
		args = append(args, createdAt, id)
	}
	query += ` ORDER BY created_at DESC, settlement_id DESC LIMIT $2;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var settlements []domain.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan settlement row: %w", err)
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating settlement rows: %w", err)
	}

	if len(settlements) <= limit {
		return settlements, nil, nil
	}
	settlements = settlements[:limit]
	last := settlements[len(settlements)-1]
	token := pagination.EncodeToken(last.CreatedAt, last.SettlementID)
	return settlements, &token, nil
}
