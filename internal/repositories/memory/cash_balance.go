package memory

import (
	"context"
	"fmt"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
)

type cashBalanceRepo struct{ *session }

var _ portsrepo.CashBalanceRepositoryFacade = (*cashBalanceRepo)(nil)

func (r *cashBalanceRepo) GetCashLedgerHead(_ context.Context, supplierID string) (domain.CashLedgerHead, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return domain.FoldCashLedger(r.store.cashTxns[supplierID]), nil
}

func (r *cashBalanceRepo) AppendCashTransaction(_ context.Context, txn domain.SupplierCashBalanceTransaction) error {
	var err error
	r.write(func(record func(func())) {
		rows := r.store.cashTxns[txn.SupplierID]
		if txn.Sequence != int64(len(rows))+1 {
			err = fmt.Errorf("%w: supplier %s cash ledger already has sequence %d", apperrors.ErrConflict, txn.SupplierID, txn.Sequence)
			return
		}
		record(remember(r.store.cashTxns, txn.SupplierID))
		r.store.cashTxns[txn.SupplierID] = append(rows, txn)
	})
	return err
}

func (r *cashBalanceRepo) ListCashTransactions(_ context.Context, supplierID string) ([]domain.SupplierCashBalanceTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rows := r.store.cashTxns[supplierID]
	out := make([]domain.SupplierCashBalanceTransaction, len(rows))
	copy(out, rows)
	return out, nil
}
