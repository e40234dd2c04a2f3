package repositories

import (
	"context"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
)

// SaleRepositoryFacade persists point-of-sale sales with their items and tender lines.
type SaleRepositoryFacade interface {
	SaveSale(ctx context.Context, sale domain.Sale) error

	// FindSaleByID returns the sale with its items and payments populated.
	FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error)

	// ListSalesByRegister returns the register's sales made at or after since, payments populated.
	ListSalesByRegister(ctx context.Context, registerID string, since time.Time) ([]domain.Sale, error)
}
