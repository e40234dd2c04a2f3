package services

import (
	"context"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/consignet/consignment_backend/internal/dto"
)

// SettlementReaderSvc defines read operations for settlements
type SettlementReaderSvc interface {
	// CalculateSettlement previews the breakdown for a supplier and period without persisting anything.
	CalculateSettlement(ctx context.Context, supplierID string, periodStart, periodEnd time.Time) (*domain.SettlementBreakdown, error)

	GetSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error)
	ListSettlements(ctx context.Context, supplierID string, params dto.ListSettlementsParams) (*dto.ListSettlementsResponse, error)
	GetSettlementItems(ctx context.Context, settlementID string) ([]domain.Item, error)
}

// SettlementWriterSvc defines the settlement lifecycle
type SettlementWriterSvc interface {
	// CreateSettlement recomputes the breakdown and persists it as PENDING, attaching its items.
	CreateSettlement(ctx context.Context, supplierID string, periodStart, periodEnd time.Time, notes string, operatorID string) (*domain.Settlement, error)

	// ProcessSettlementPayment issues the store credit and the cash payout of a PENDING settlement atomically.
	ProcessSettlementPayment(ctx context.Context, settlementID string, operatorID string) (*domain.Settlement, error)

	// CancelSettlement releases the items of a PENDING settlement.
	CancelSettlement(ctx context.Context, settlementID string, operatorID string) (*domain.Settlement, error)
}

// SettlementSvcFacade combines all settlement-related service interfaces
type SettlementSvcFacade interface {
	SettlementReaderSvc
	SettlementWriterSvc
}
