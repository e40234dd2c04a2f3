package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
)

type storeCreditRepo struct{ *session }

var _ portsrepo.StoreCreditRepositoryFacade = (*storeCreditRepo)(nil)

func (r *storeCreditRepo) SaveStoreCredit(_ context.Context, credit domain.StoreCredit) error {
	var err error
	r.write(func(record func(func())) {
		if _, exists := r.store.credits[credit.StoreCreditID]; exists {
			err = fmt.Errorf("%w: store credit %s", apperrors.ErrDuplicate, credit.StoreCreditID)
			return
		}
		record(remember(r.store.credits, credit.StoreCreditID))
		record(remember(r.store.creditOrder, credit.StoreCreditID))
		r.store.creditSeq++
		r.store.credits[credit.StoreCreditID] = credit
		r.store.creditOrder[credit.StoreCreditID] = r.store.creditSeq
	})
	return err
}

func (r *storeCreditRepo) UpdateStoreCreditStatus(_ context.Context, storeCreditID string, status domain.StoreCreditStatus, userID string, now time.Time) error {
	var err error
	r.write(func(record func(func())) {
		credit, exists := r.store.credits[storeCreditID]
		if !exists {
			err = fmt.Errorf("%w: store credit %s", apperrors.ErrNotFound, storeCreditID)
			return
		}
		record(remember(r.store.credits, storeCreditID))
		credit.Status = status
		credit.Touch(userID, now)
		r.store.credits[storeCreditID] = credit
	})
	return err
}

func (r *storeCreditRepo) FindStoreCreditByID(_ context.Context, storeCreditID string) (*domain.StoreCredit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	credit, ok := r.store.credits[storeCreditID]
	if !ok {
		return nil, fmt.Errorf("%w: store credit %s", apperrors.ErrNotFound, storeCreditID)
	}
	derived := r.derive(credit)
	return &derived, nil
}

func (r *storeCreditRepo) ListStoreCreditsBySupplier(_ context.Context, supplierID string, activeOnly bool) ([]domain.StoreCredit, error) {
	return r.list(func(c domain.StoreCredit) bool {
		return c.SupplierID == supplierID && (!activeOnly || c.Status == domain.StoreCreditActive)
	}), nil
}

func (r *storeCreditRepo) ListActiveStoreCreditsExpiringBefore(_ context.Context, cutoff time.Time) ([]domain.StoreCredit, error) {
	return r.list(func(c domain.StoreCredit) bool {
		return c.Status == domain.StoreCreditActive && c.ExpiresOn != nil && !c.ExpiresOn.After(cutoff)
	}), nil
}

func (r *storeCreditRepo) AppendStoreCreditTransaction(_ context.Context, txn domain.StoreCreditTransaction) error {
	var err error
	r.write(func(record func(func())) {
		if _, exists := r.store.credits[txn.StoreCreditID]; !exists {
			err = fmt.Errorf("%w: store credit %s", apperrors.ErrNotFound, txn.StoreCreditID)
			return
		}
		rows := r.store.creditTxns[txn.StoreCreditID]
		if txn.Sequence != int64(len(rows))+1 {
			err = fmt.Errorf("%w: store credit %s already has sequence %d", apperrors.ErrConflict, txn.StoreCreditID, txn.Sequence)
			return
		}
		record(remember(r.store.creditTxns, txn.StoreCreditID))
		r.store.creditTxns[txn.StoreCreditID] = append(rows, txn)
	})
	return err
}

func (r *storeCreditRepo) ListStoreCreditTransactions(_ context.Context, storeCreditID string) ([]domain.StoreCreditTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if _, ok := r.store.credits[storeCreditID]; !ok {
		return nil, fmt.Errorf("%w: store credit %s", apperrors.ErrNotFound, storeCreditID)
	}
	rows := r.store.creditTxns[storeCreditID]
	out := make([]domain.StoreCreditTransaction, len(rows))
	copy(out, rows)
	return out, nil
}

func (r *storeCreditRepo) list(keep func(domain.StoreCredit) bool) []domain.StoreCredit {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.StoreCredit
	for _, credit := range r.store.credits {
		if keep(credit) {
			out = append(out, r.derive(credit))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedOn.Equal(out[j].IssuedOn) {
			return out[i].IssuedOn.Before(out[j].IssuedOn)
		}
		return r.store.creditOrder[out[i].StoreCreditID] < r.store.creditOrder[out[j].StoreCreditID]
	})
	return out
}

// derive fills the balance and sequence from the latest ledger row. Callers hold mu.
func (r *storeCreditRepo) derive(credit domain.StoreCredit) domain.StoreCredit {
	rows := r.store.creditTxns[credit.StoreCreditID]
	if len(rows) == 0 {
		credit.CurrentBalance = credit.OriginalAmount
		credit.LastSequence = 0
		return credit
	}
	last := rows[len(rows)-1]
	credit.CurrentBalance = last.BalanceAfter
	credit.LastSequence = last.Sequence
	return credit
}
