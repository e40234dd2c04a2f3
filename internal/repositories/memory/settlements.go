package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/consignet/consignment_backend/internal/utils/pagination"
)

type settlementRepo struct{ *session }

var _ portsrepo.SettlementRepositoryFacade = (*settlementRepo)(nil)

func (r *settlementRepo) SaveSettlement(_ context.Context, settlement domain.Settlement) error {
	var err error
	r.write(func(record func(func())) {
		if _, exists := r.store.settlements[settlement.SettlementID]; exists {
			err = fmt.Errorf("%w: settlement %s", apperrors.ErrDuplicate, settlement.SettlementID)
			return
		}
		record(remember(r.store.settlements, settlement.SettlementID))
		r.store.settlements[settlement.SettlementID] = settlement
	})
	return err
}

func (r *settlementRepo) FindSettlementByID(_ context.Context, settlementID string) (*domain.Settlement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	settlement, ok := r.store.settlements[settlementID]
	if !ok {
		return nil, fmt.Errorf("%w: settlement %s", apperrors.ErrNotFound, settlementID)
	}
	return &settlement, nil
}

func (r *settlementRepo) UpdateSettlementStatus(_ context.Context, settlement domain.Settlement) error {
	var err error
	r.write(func(record func(func())) {
		current, exists := r.store.settlements[settlement.SettlementID]
		if !exists {
			err = fmt.Errorf("%w: settlement %s", apperrors.ErrNotFound, settlement.SettlementID)
			return
		}
		record(remember(r.store.settlements, settlement.SettlementID))
		current.Status = settlement.Status
		current.PaidOn = settlement.PaidOn
		current.PaidBy = settlement.PaidBy
		current.StoreCreditID = settlement.StoreCreditID
		current.LastUpdatedAt = settlement.LastUpdatedAt
		current.LastUpdatedBy = settlement.LastUpdatedBy
		r.store.settlements[settlement.SettlementID] = current
	})
	return err
}

func (r *settlementRepo) ListSettlementsBySupplier(_ context.Context, supplierID string, limit int, nextToken *string) ([]domain.Settlement, *string, error) {
	var cursorSet bool
	var cursor domain.Settlement
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursorSet = true
		cursor.CreatedAt, cursor.SettlementID = createdAt, id
	}

	r.store.mu.RLock()
	var all []domain.Settlement
	for _, s := range r.store.settlements {
		if s.SupplierID == supplierID && (!cursorSet || newerFirst(cursor, s)) {
			all = append(all, s)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return newerFirst(all[i], all[j]) })
	limit = pagination.ClampLimit(limit)
	if len(all) <= limit {
		return all, nil, nil
	}
	page := all[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.CreatedAt, last.SettlementID)
	return page, &token, nil
}

// newerFirst orders settlements by creation time descending, then ID descending.
func newerFirst(a, b domain.Settlement) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.SettlementID > b.SettlementID
}
