package dto

import (
	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RedeemCashRequest defines a cash payout against a supplier's redeemable balance.
type RedeemCashRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"dgt0,money"`
	Notes  string          `json:"notes"`
}

// CashBalanceResponse is a supplier's derived redeemable balance.
type CashBalanceResponse struct {
	SupplierID       string          `json:"supplierID"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
}

// CashTransactionsResponse lists a supplier's cash ledger rows.
type CashTransactionsResponse struct {
	SupplierID   string                                  `json:"supplierID"`
	Transactions []domain.SupplierCashBalanceTransaction `json:"transactions"`
}
