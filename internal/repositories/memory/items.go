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

type itemRepo struct{ *session }

var _ portsrepo.ItemRepositoryFacade = (*itemRepo)(nil)

func (r *itemRepo) SaveItem(_ context.Context, item domain.Item) error {
	var err error
	r.write(func(record func(func())) {
		if _, exists := r.store.items[item.ItemID]; exists {
			err = fmt.Errorf("%w: item %s", apperrors.ErrDuplicate, item.ItemID)
			return
		}
		record(remember(r.store.items, item.ItemID))
		r.store.items[item.ItemID] = item
	})
	return err
}

func (r *itemRepo) FindItemByID(_ context.Context, itemID string) (*domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	item, ok := r.store.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", apperrors.ErrNotFound, itemID)
	}
	return &item, nil
}

func (r *itemRepo) FindItemsByIDs(_ context.Context, itemIDs []string) (map[string]domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	found := make(map[string]domain.Item, len(itemIDs))
	for _, id := range itemIDs {
		if item, ok := r.store.items[id]; ok {
			found[id] = item
		}
	}
	return found, nil
}

func (r *itemRepo) ListUnsettledSoldItems(_ context.Context, supplierID string, periodStart, periodEnd time.Time) ([]domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var items []domain.Item
	for _, item := range r.store.items {
		if item.SupplierID == supplierID && item.IsSettlementEligible(periodStart, periodEnd) {
			items = append(items, item)
		}
	}
	sortItems(items)
	return items, nil
}

func (r *itemRepo) ListItemsBySettlement(_ context.Context, settlementID string) ([]domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var items []domain.Item
	for _, item := range r.store.items {
		if item.SettlementID != nil && *item.SettlementID == settlementID {
			items = append(items, item)
		}
	}
	sortItems(items)
	return items, nil
}

func (r *itemRepo) MarkItemsSold(_ context.Context, itemIDs []string, saleID string, saleDate time.Time) error {
	var err error
	r.write(func(record func(func())) {
		for _, id := range itemIDs {
			item, ok := r.store.items[id]
			if !ok {
				err = fmt.Errorf("%w: item %s", apperrors.ErrNotFound, id)
				return
			}
			if item.Status != domain.ItemToSell {
				err = fmt.Errorf("%w: item %s is %s", apperrors.ErrConflict, id, item.Status)
				return
			}
		}
		for _, id := range itemIDs {
			record(remember(r.store.items, id))
			item := r.store.items[id]
			sid, day := saleID, saleDate
			item.Status = domain.ItemSold
			item.SaleID = &sid
			item.SaleDate = &day
			item.LastUpdatedAt = saleDate
			r.store.items[id] = item
		}
	})
	return err
}

func (r *itemRepo) AttachItemsToSettlement(_ context.Context, settlementID string, itemIDs []string) error {
	var err error
	r.write(func(record func(func())) {
		for _, id := range itemIDs {
			item, ok := r.store.items[id]
			if !ok || item.Status != domain.ItemSold || item.SettlementID != nil {
				err = fmt.Errorf("%w: item %s is no longer settleable", apperrors.ErrConflict, id)
				return
			}
		}
		for _, id := range itemIDs {
			record(remember(r.store.items, id))
			item := r.store.items[id]
			sid := settlementID
			item.SettlementID = &sid
			r.store.items[id] = item
		}
	})
	return err
}

func (r *itemRepo) DetachItemsFromSettlement(_ context.Context, settlementID string) error {
	r.write(func(record func(func())) {
		for id, item := range r.store.items {
			if item.SettlementID != nil && *item.SettlementID == settlementID {
				record(remember(r.store.items, id))
				item.SettlementID = nil
				r.store.items[id] = item
			}
		}
	})
	return nil
}

func sortItems(items []domain.Item) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.SaleDate != nil && b.SaleDate != nil && !a.SaleDate.Equal(*b.SaleDate) {
			return a.SaleDate.Before(*b.SaleDate)
		}
		return a.ItemID < b.ItemID
	})
}
