package repositories

import (
	"context"

	"github.com/consignet/consignment_backend/internal/core/domain"
)

// CashBalanceRepositoryFacade is the append-only redeemable cash ledger.
type CashBalanceRepositoryFacade interface {
	// GetCashLedgerHead derives a supplier's balance and latest sequence from its rows.
	GetCashLedgerHead(ctx context.Context, supplierID string) (domain.CashLedgerHead, error)

	// AppendCashTransaction appends a row. A row whose sequence is already taken
	// fails with apperrors.ErrConflict.
	AppendCashTransaction(ctx context.Context, txn domain.SupplierCashBalanceTransaction) error

	// ListCashTransactions returns a supplier's rows ordered by sequence.
	ListCashTransactions(ctx context.Context, supplierID string) ([]domain.SupplierCashBalanceTransaction, error)
}
