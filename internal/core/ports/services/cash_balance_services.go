package services

import (
	"context"

	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CashBalanceSvcFacade exposes a supplier's redeemable cash ledger.
type CashBalanceSvcFacade interface {
	// GetSupplierCashBalance derives the available balance from the supplier's rows.
	GetSupplierCashBalance(ctx context.Context, supplierID string) (decimal.Decimal, error)

	ListSupplierCashTransactions(ctx context.Context, supplierID string) ([]domain.SupplierCashBalanceTransaction, error)

	// RedeemSupplierCash pays out cash, appending a negative REDEMPTION row.
	RedeemSupplierCash(ctx context.Context, supplierID string, amount decimal.Decimal, notes string, operatorID string) (*domain.SupplierCashBalanceTransaction, error)
}
