package repositories

import (
	"context"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
)

// ItemReader defines read operations for consigned items
type ItemReader interface {
	FindItemByID(ctx context.Context, itemID string) (*domain.Item, error)

	// FindItemsByIDs returns the items found, keyed by ID. Missing IDs are simply absent.
	FindItemsByIDs(ctx context.Context, itemIDs []string) (map[string]domain.Item, error)

	// ListUnsettledSoldItems returns the supplier's sold items not attached to any settlement
	// whose sale date falls in [periodStart, periodEnd] by calendar day.
	ListUnsettledSoldItems(ctx context.Context, supplierID string, periodStart, periodEnd time.Time) ([]domain.Item, error)

	ListItemsBySettlement(ctx context.Context, settlementID string) ([]domain.Item, error)
}

// ItemWriter defines write operations for consigned items
type ItemWriter interface {
	SaveItem(ctx context.Context, item domain.Item) error

	// MarkItemsSold moves TO_SELL items to SOLD. It fails with apperrors.ErrConflict
	// if any of them is no longer TO_SELL.
	MarkItemsSold(ctx context.Context, itemIDs []string, saleID string, saleDate time.Time) error

	// AttachItemsToSettlement links unsettled items to a settlement. It fails with
	// apperrors.ErrConflict if any of them was settled meanwhile.
	AttachItemsToSettlement(ctx context.Context, settlementID string, itemIDs []string) error

	// DetachItemsFromSettlement unlinks every item of a settlement.
	DetachItemsFromSettlement(ctx context.Context, settlementID string) error
}

// ItemRepositoryFacade combines all item-related repository interfaces
type ItemRepositoryFacade interface {
	ItemReader
	ItemWriter
}
