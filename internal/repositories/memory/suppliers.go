package memory

import (
	"context"
	"fmt"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
)

type supplierRepo struct{ *session }

var _ portsrepo.SupplierRepositoryFacade = (*supplierRepo)(nil)

func (r *supplierRepo) SaveSupplier(_ context.Context, supplier domain.Supplier) error {
	var err error
	r.write(func(record func(func())) {
		if _, exists := r.store.suppliers[supplier.SupplierID]; exists {
			err = fmt.Errorf("%w: supplier %s", apperrors.ErrDuplicate, supplier.SupplierID)
			return
		}
		record(remember(r.store.suppliers, supplier.SupplierID))
		r.store.suppliers[supplier.SupplierID] = supplier
	})
	return err
}

func (r *supplierRepo) FindSupplierByID(_ context.Context, supplierID string) (*domain.Supplier, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	supplier, ok := r.store.suppliers[supplierID]
	if !ok {
		return nil, fmt.Errorf("%w: supplier %s", apperrors.ErrNotFound, supplierID)
	}
	return &supplier, nil
}

func (r *supplierRepo) UpdateSupplier(_ context.Context, supplier domain.Supplier) error {
	var err error
	r.write(func(record func(func())) {
		if _, exists := r.store.suppliers[supplier.SupplierID]; !exists {
			err = fmt.Errorf("%w: supplier %s", apperrors.ErrNotFound, supplier.SupplierID)
			return
		}
		record(remember(r.store.suppliers, supplier.SupplierID))
		r.store.suppliers[supplier.SupplierID] = supplier
	})
	return err
}

// LockSupplierForUpdate is a plain read here; the store serializes transactions as a whole.
func (r *supplierRepo) LockSupplierForUpdate(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	return r.FindSupplierByID(ctx, supplierID)
}
