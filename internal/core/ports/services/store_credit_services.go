package services

import (
	"context"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// StoreCreditReaderSvc defines read operations for store credit
type StoreCreditReaderSvc interface {
	GetStoreCredit(ctx context.Context, storeCreditID string) (*domain.StoreCredit, error)
	ListStoreCredits(ctx context.Context, supplierID string, activeOnly bool) ([]domain.StoreCredit, error)
	ListStoreCreditTransactions(ctx context.Context, storeCreditID string) ([]domain.StoreCreditTransaction, error)

	// TotalActiveBalance sums the balances a supplier can spend right now.
	TotalActiveBalance(ctx context.Context, supplierID string) (decimal.Decimal, error)

	// VerifyStoreCredit replays a credit's ledger and compares it with the recorded balance.
	VerifyStoreCredit(ctx context.Context, storeCreditID string) (*dto.VerifyStoreCreditResponse, error)
}

// StoreCreditWriterSvc defines the store credit ledger mutations
type StoreCreditWriterSvc interface {
	IssueStoreCredit(ctx context.Context, req dto.IssueStoreCreditRequest, operatorID string) (*domain.StoreCredit, error)
	AdjustStoreCredit(ctx context.Context, storeCreditID string, delta decimal.Decimal, reason string, operatorID string) (*domain.StoreCredit, error)

	// ConsumeStoreCredit draws amount from a single credit on behalf of a sale.
	ConsumeStoreCredit(ctx context.Context, storeCreditID string, amount decimal.Decimal, saleID *string, operatorID string) (*domain.StoreCredit, error)

	CancelStoreCredit(ctx context.Context, storeCreditID string, notes string, operatorID string) (*domain.StoreCredit, error)
	ExpireStoreCredit(ctx context.Context, storeCreditID string, notes string, operatorID string) (*domain.StoreCredit, error)

	// ExpireDueStoreCredits expires every active credit whose expiry is at or before now.
	// It returns how many credits were expired.
	ExpireDueStoreCredits(ctx context.Context, now time.Time) (int, error)
}

// StoreCreditSvcFacade combines all store-credit-related service interfaces
type StoreCreditSvcFacade interface {
	StoreCreditReaderSvc
	StoreCreditWriterSvc
}
