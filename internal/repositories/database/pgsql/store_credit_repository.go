package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxStoreCreditRepository struct {
	db DBTX
}

func newPgxStoreCreditRepository(db DBTX) portsrepo.StoreCreditRepositoryFacade {
	return &PgxStoreCreditRepository{db: db}
}

var _ portsrepo.StoreCreditRepositoryFacade = (*PgxStoreCreditRepository)(nil)

// storeCreditSelect derives balance and sequence from the latest ledger row.
const storeCreditSelect = `
	SELECT c.store_credit_id, c.supplier_id, c.source_settlement_id, c.original_amount,
	       COALESCE(t.balance_after, c.original_amount), COALESCE(t.sequence, 0),
	       c.issued_on, c.expires_on, c.status, c.notes,
	       c.created_at, c.created_by, c.last_updated_at, c.last_updated_by
	FROM store_credits c
	LEFT JOIN LATERAL (
		SELECT balance_after, sequence
		FROM store_credit_transactions
		WHERE store_credit_id = c.store_credit_id
		ORDER BY sequence DESC
		LIMIT 1
	) t ON TRUE`

func scanStoreCredit(row pgx.Row) (domain.StoreCredit, error) {
	var c domain.StoreCredit
	err := row.Scan(
		&c.StoreCreditID,
		&c.SupplierID,
		&c.SourceSettlementID,
		&c.OriginalAmount,
		&c.CurrentBalance,
		&c.LastSequence,
		&c.IssuedOn,
		&c.ExpiresOn,
		&c.Status,
		&c.Notes,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	return c, err
}

func (r *PgxStoreCreditRepository) queryCredits(ctx context.Context, query string, args ...any) ([]domain.StoreCredit, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query store credits: %w", err)
	}
	defer rows.Close()

	var credits []domain.StoreCredit
	for rows.Next() {
		c, err := scanStoreCredit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store credit row: %w", err)
		}
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating store credit rows: %w", err)
	}
	return credits, nil
}

// SaveStoreCredit inserts the grant header.
func (r *PgxStoreCreditRepository) SaveStoreCredit(ctx context.Context, c domain.StoreCredit) error {
	query := `
		INSERT INTO store_credits (store_credit_id, supplier_id, source_settlement_id, original_amount, issued_on, expires_on,
			status, notes, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		c.StoreCreditID, c.SupplierID, c.SourceSettlementID, c.OriginalAmount, c.IssuedOn, c.ExpiresOn,
		c.Status, c.Notes, c.CreatedAt, c.CreatedBy, c.LastUpdatedAt, c.LastUpdatedBy,
	)
	return mapWriteError(err, "store credit "+c.StoreCreditID)
}

// UpdateStoreCreditStatus sets the status of a grant.
func (r *PgxStoreCreditRepository) UpdateStoreCreditStatus(ctx context.Context, storeCreditID string, status domain.StoreCreditStatus, userID string, now time.Time) error {
	query := `
		UPDATE store_credits SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE store_credit_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, storeCreditID, status, now, userID)
	if err != nil {
		return mapWriteError(err, "store credit "+storeCreditID)
	}
	if tag.RowsAffected() == 0 {
		return mapReadError(pgx.ErrNoRows, "store credit "+storeCreditID)
	}
	return nil
}

// FindStoreCreditByID retrieves a grant with its derived balance.
func (r *PgxStoreCreditRepository) FindStoreCreditByID(ctx context.Context, storeCreditID string) (*domain.StoreCredit, error) {
	c, err := scanStoreCredit(r.db.QueryRow(ctx, storeCreditSelect+` WHERE c.store_credit_id = $1;`, storeCreditID))
	if err != nil {
		return nil, mapReadError(err, "store credit "+storeCreditID)
	}
	return &c, nil
}

// ListStoreCreditsBySupplier lists grants oldest-issued first, ties in insertion order.
func (r *PgxStoreCreditRepository) ListStoreCreditsBySupplier(ctx context.Context, supplierID string, activeOnly bool) ([]domain.StoreCredit, error) {
	query := storeCreditSelect + ` WHERE c.supplier_id = $1 AND ($2 = FALSE OR c.status = 'ACTIVE')
		ORDER BY c.issued_on, c.issue_order;`
	return r.queryCredits(ctx, query, supplierID, activeOnly)
}

// ListActiveStoreCreditsExpiringBefore lists active grants due for expiry.
func (r *PgxStoreCreditRepository) ListActiveStoreCreditsExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.StoreCredit, error) {
	query := storeCreditSelect + ` WHERE c.status = 'ACTIVE' AND c.expires_on IS NOT NULL AND c.expires_on <= $1
		ORDER BY c.expires_on, c.store_credit_id;`
	return r.queryCredits(ctx, query, cutoff)
}

// AppendStoreCreditTransaction inserts a ledger row. UNIQUE (store_credit_id, sequence) rejects a racing writer.
func (r *PgxStoreCreditRepository) AppendStoreCreditTransaction(ctx context.Context, t domain.StoreCreditTransaction) error {
	query := `
		INSERT INTO store_credit_transactions (transaction_id, store_credit_id, sequence, amount, balance_after,
			transaction_type, sale_id, notes, transaction_date, processed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		t.TransactionID, t.StoreCreditID, t.Sequence, t.Amount, t.BalanceAfter,
		t.TransactionType, t.SaleID, t.Notes, t.TransactionDate, t.ProcessedBy,
	)
	return mapWriteError(err, fmt.Sprintf("store credit %s row %d", t.StoreCreditID, t.Sequence))
}

// ListStoreCreditTransactions returns a grant's ledger in sequence order.
func (r *PgxStoreCreditRepository) ListStoreCreditTransactions(ctx context.Context, storeCreditID string) ([]domain.StoreCreditTransaction, error) {
	query := `
		SELECT transaction_id, store_credit_id, sequence, amount, balance_after, transaction_type, sale_id, notes,
		       transaction_date, processed_by
		FROM store_credit_transactions
		WHERE store_credit_id = $1
		ORDER BY sequence;
	`
	rows, err := r.db.Query(ctx, query, storeCreditID)
	if err != nil {
		return nil, fmt.Errorf("failed to query store credit transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.StoreCreditTransaction
	for rows.Next() {
		var t domain.StoreCreditTransaction
		if err := rows.Scan(
			&t.TransactionID, &t.StoreCreditID, &t.Sequence, &t.Amount, &t.BalanceAfter,
			&t.TransactionType, &t.SaleID, &t.Notes, &t.TransactionDate, &t.ProcessedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan store credit transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating store credit transaction rows: %w", err)
	}
	return txns, nil
}
