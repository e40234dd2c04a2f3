package repositories

import (
	"context"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
)

// StoreCreditReader defines read operations for store credit grants.
// Every returned StoreCredit has CurrentBalance and LastSequence derived from its latest ledger row.
type StoreCreditReader interface {
	FindStoreCreditByID(ctx context.Context, storeCreditID string) (*domain.StoreCredit, error)

	// ListStoreCreditsBySupplier returns grants oldest-issued first (ties broken by ID).
	ListStoreCreditsBySupplier(ctx context.Context, supplierID string, activeOnly bool) ([]domain.StoreCredit, error)

	// ListActiveStoreCreditsExpiringBefore returns ACTIVE grants whose expiry is at or before cutoff.
	ListActiveStoreCreditsExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.StoreCredit, error)
}

// StoreCreditWriter defines write operations for store credit grants
type StoreCreditWriter interface {
	// SaveStoreCredit inserts the grant header. Its balance comes from the ISSUANCE row appended next.
	SaveStoreCredit(ctx context.Context, credit domain.StoreCredit) error

	UpdateStoreCreditStatus(ctx context.Context, storeCreditID string, status domain.StoreCreditStatus, userID string, now time.Time) error
}

// StoreCreditLedger defines the append-only ledger of a grant
type StoreCreditLedger interface {
	// AppendStoreCreditTransaction appends a row. A row whose sequence is already taken
	// fails with apperrors.ErrConflict.
	AppendStoreCreditTransaction(ctx context.Context, txn domain.StoreCreditTransaction) error

	// ListStoreCreditTransactions returns a grant's rows ordered by sequence.
	ListStoreCreditTransactions(ctx context.Context, storeCreditID string) ([]domain.StoreCreditTransaction, error)
}

// StoreCreditRepositoryFacade combines all store-credit-related repository interfaces
type StoreCreditRepositoryFacade interface {
	StoreCreditReader
	StoreCreditWriter
	StoreCreditLedger
}
