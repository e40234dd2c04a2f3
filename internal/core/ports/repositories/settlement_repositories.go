package repositories

import (
	"context"

	"github.com/consignet/consignment_backend/internal/core/domain"
)

// SettlementReader defines read operations for settlements
type SettlementReader interface {
	FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error)

	// ListSettlementsBySupplier retrieves a supplier's settlements newest first using token-based pagination.
	// It returns the settlements, a token for the next page, and an error.
	ListSettlementsBySupplier(ctx context.Context, supplierID string, limit int, nextToken *string) ([]domain.Settlement, *string, error)
}

// SettlementWriter defines write operations for settlements
type SettlementWriter interface {
	SaveSettlement(ctx context.Context, settlement domain.Settlement) error

	// UpdateSettlementStatus persists status, payment stamps and the issued credit link.
	UpdateSettlementStatus(ctx context.Context, settlement domain.Settlement) error
}

// SettlementRepositoryFacade combines all settlement-related repository interfaces
type SettlementRepositoryFacade interface {
	SettlementReader
	SettlementWriter
}
