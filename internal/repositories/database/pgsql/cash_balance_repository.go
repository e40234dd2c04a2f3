package pgsql

import (
	"context"
	"fmt"

	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
)

type PgxCashBalanceRepository struct {
	db DBTX
}

func newPgxCashBalanceRepository(db DBTX) portsrepo.CashBalanceRepositoryFacade {
	return &PgxCashBalanceRepository{db: db}
}

var _ portsrepo.CashBalanceRepositoryFacade = (*PgxCashBalanceRepository)(nil)

// GetCashLedgerHead sums the supplier's rows; there is no cached balance column.
func (r *PgxCashBalanceRepository) GetCashLedgerHead(ctx context.Context, supplierID string) (domain.CashLedgerHead, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0), COALESCE(MAX(sequence), 0)
		FROM supplier_cash_balance_transactions
		WHERE supplier_id = $1;
	`
	var head domain.CashLedgerHead
	if err := r.db.QueryRow(ctx, query, supplierID).Scan(&head.Balance, &head.LastSequence); err != nil {
		return domain.CashLedgerHead{}, fmt.Errorf("failed to sum cash ledger of supplier %s: %w", supplierID, err)
	}
	return head, nil
}

// AppendCashTransaction inserts a ledger row. UNIQUE (supplier_id, sequence) rejects a racing writer.
func (r *PgxCashBalanceRepository) AppendCashTransaction(ctx context.Context, t domain.SupplierCashBalanceTransaction) error {
	query := `
		INSERT INTO supplier_cash_balance_transactions (transaction_id, supplier_id, sequence, amount, transaction_type,
			settlement_id, transaction_date, processed_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		t.TransactionID, t.SupplierID, t.Sequence, t.Amount, t.TransactionType,
		t.SettlementID, t.TransactionDate, t.ProcessedBy, t.Notes,
	)
	return mapWriteError(err, fmt.Sprintf("cash ledger of supplier %s row %d", t.SupplierID, t.Sequence))
}

// ListCashTransactions returns the supplier's rows in sequence order.
func (r *PgxCashBalanceRepository) ListCashTransactions(ctx context.Context, supplierID string) ([]domain.SupplierCashBalanceTransaction, error) {
	query := `
		SELECT transaction_id, supplier_id, sequence, amount, transaction_type, settlement_id, transaction_date,
		       processed_by, notes
		FROM supplier_cash_balance_transactions
		WHERE supplier_id = $1
		ORDER BY sequence;
	`
	rows, err := r.db.Query(ctx, query, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.SupplierCashBalanceTransaction
	for rows.Next() {
		var t domain.SupplierCashBalanceTransaction
		if err := rows.Scan(
			&t.TransactionID, &t.SupplierID, &t.Sequence, &t.Amount, &t.TransactionType,
			&t.SettlementID, &t.TransactionDate, &t.ProcessedBy, &t.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cash transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash transaction rows: %w", err)
	}
	return txns, nil
}
