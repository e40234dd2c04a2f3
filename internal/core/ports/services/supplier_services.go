package services

import (
	"context"

	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/consignet/consignment_backend/internal/dto"
)

// SupplierSvcFacade manages consignors and their commission percentages.
type SupplierSvcFacade interface {
	CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest, operatorID string) (*domain.Supplier, error)
	GetSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error)

	// UpdateSupplierPercentages changes the percentages used by future settlements only.
	UpdateSupplierPercentages(ctx context.Context, supplierID string, req dto.UpdateSupplierPercentagesRequest, operatorID string) (*domain.Supplier, error)
}

// ItemSvcFacade manages the consigned items that sales and settlements refer to.
type ItemSvcFacade interface {
	CreateItem(ctx context.Context, req dto.CreateItemRequest, operatorID string) (*domain.Item, error)
	GetItemByID(ctx context.Context, itemID string) (*domain.Item, error)
}
