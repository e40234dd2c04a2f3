package repositories

import (
	"context"

	"github.com/consignet/consignment_backend/internal/core/domain"
)

// SupplierReader defines read operations for supplier data
type SupplierReader interface {
	// FindSupplierByID retrieves a supplier by its unique identifier.
	FindSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error)
}

// SupplierWriter defines write operations for supplier data
type SupplierWriter interface {
	SaveSupplier(ctx context.Context, supplier domain.Supplier) error
	UpdateSupplier(ctx context.Context, supplier domain.Supplier) error
}

// SupplierTransactionSupport defines operations that only make sense inside a transaction.
type SupplierTransactionSupport interface {
	// LockSupplierForUpdate selects the supplier row and holds it until the transaction ends,
	// serializing every ledger write scoped to that supplier.
	LockSupplierForUpdate(ctx context.Context, supplierID string) (*domain.Supplier, error)
}

// SupplierRepositoryFacade combines all supplier-related repository interfaces
type SupplierRepositoryFacade interface {
	SupplierReader
	SupplierWriter
	SupplierTransactionSupport
}
