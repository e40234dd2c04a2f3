package dto

import (
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// IssueStoreCreditRequest defines a manual store credit grant.
type IssueStoreCreditRequest struct {
	SupplierID string          `json:"supplierID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"dgt0,money"`
	ExpiresOn  *time.Time      `json:"expiresOn"`
	Notes      string          `json:"notes"`
}

// AdjustStoreCreditRequest moves a credit balance by a signed delta.
type AdjustStoreCreditRequest struct {
	Delta  decimal.Decimal `json:"delta" binding:"money"`
	Reason string          `json:"reason"`
}

// StoreCreditActionRequest carries the optional note of a cancel or expire.
type StoreCreditActionRequest struct {
	Notes string `json:"notes"`
}

// ListStoreCreditsParams defines query parameters for listing a supplier's credits.
type ListStoreCreditsParams struct {
	ActiveOnly bool `form:"activeOnly"`
}

// StoreCreditBalanceResponse is the spendable total of a supplier's active credits.
type StoreCreditBalanceResponse struct {
	SupplierID         string          `json:"supplierID"`
	TotalActiveBalance decimal.Decimal `json:"totalActiveBalance"`
}

// StoreCreditTransactionsResponse lists a credit's ledger rows.
type StoreCreditTransactionsResponse struct {
	StoreCreditID string                          `json:"storeCreditID"`
	Transactions  []domain.StoreCreditTransaction `json:"transactions"`
}

// VerifyStoreCreditResponse is the outcome of replaying a credit's ledger.
type VerifyStoreCreditResponse struct {
	StoreCreditID    string          `json:"storeCreditID"`
	RecordedBalance  decimal.Decimal `json:"recordedBalance"`
	ReplayedBalance  decimal.Decimal `json:"replayedBalance"`
	TransactionCount int             `json:"transactionCount"`
	Consistent       bool            `json:"consistent"`
	Problem          string          `json:"problem,omitempty"`
}
