package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashBalanceTransactionType is the business reason for a cash balance row.
type CashBalanceTransactionType string

const (
	CashSettlementPayout CashBalanceTransactionType = "SETTLEMENT_PAYOUT"
	CashRedemption       CashBalanceTransactionType = "REDEMPTION"
)

// SupplierCashBalanceTransaction is an immutable row of a supplier's redeemable cash ledger.
// The available balance is the sum of a supplier's rows; nothing caches it.
type SupplierCashBalanceTransaction struct {
	TransactionID   string                     `json:"transactionID"`
	SupplierID      string                     `json:"supplierID"`
	Sequence        int64                      `json:"sequence"`
	Amount          decimal.Decimal            `json:"amount"` // Signed
	TransactionType CashBalanceTransactionType `json:"transactionType"`
	SettlementID    *string                    `json:"settlementID,omitempty"`
	TransactionDate time.Time                  `json:"transactionDate"`
	ProcessedBy     string                     `json:"processedBy"`
	Notes           string                     `json:"notes"`
}

// CashLedgerHead is the derived state of one supplier's cash ledger.
type CashLedgerHead struct {
	Balance      decimal.Decimal
	LastSequence int64
}

// FoldCashLedger sums rows into a ledger head.
func FoldCashLedger(rows []SupplierCashBalanceTransaction) CashLedgerHead {
	head := CashLedgerHead{Balance: decimal.Zero}
	for _, row := range rows {
		head.Balance = head.Balance.Add(row.Amount)
		if row.Sequence > head.LastSequence {
			head.LastSequence = row.Sequence
		}
	}
	return head
}
