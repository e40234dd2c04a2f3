package services

import (
	"context"

	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// SaleSvcFacade records multi-tender sales.
type SaleSvcFacade interface {
	// ProcessSale validates every tender line, then draws store credit and records the sale atomically.
	ProcessSale(ctx context.Context, registerID string, req dto.ProcessSaleRequest, operatorID string) (*domain.Sale, error)
	GetSale(ctx context.Context, saleID string) (*domain.Sale, error)
}

// CashRegisterSvcFacade manages till sessions.
type CashRegisterSvcFacade interface {
	OpenRegister(ctx context.Context, operator string, openingAmount decimal.Decimal, notes string) (*domain.CashRegister, error)

	// CloseRegister reconciles counted cash against the session's cash tender. It never
	// rejects a discrepancy.
	CloseRegister(ctx context.Context, registerID string, countedCash decimal.Decimal, notes string, operatorID string) (*domain.RegisterReconciliation, error)

	GetRegister(ctx context.Context, registerID string) (*domain.CashRegister, error)
	GetOpenRegister(ctx context.Context, operator string) (*domain.CashRegister, error)
}
