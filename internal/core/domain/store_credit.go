package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StoreCreditStatus indicates the state of a store credit grant.
type StoreCreditStatus string

const (
	StoreCreditActive    StoreCreditStatus = "ACTIVE"
	StoreCreditUsed      StoreCreditStatus = "USED"
	StoreCreditCancelled StoreCreditStatus = "CANCELLED"
	StoreCreditExpired   StoreCreditStatus = "EXPIRED"
)

// StoreCreditTransactionType is the business reason for a store credit ledger row.
type StoreCreditTransactionType string

const (
	CreditIssuance     StoreCreditTransactionType = "ISSUANCE"
	CreditUsage        StoreCreditTransactionType = "USAGE"
	CreditAdjustment   StoreCreditTransactionType = "ADJUSTMENT"
	CreditExpiration   StoreCreditTransactionType = "EXPIRATION"
	CreditCancellation StoreCreditTransactionType = "CANCELLATION"
)

// ErrLedgerChainBroken is returned when replaying ledger rows does not reproduce their snapshots.
var ErrLedgerChainBroken = errors.New("ledger chain broken")

// StoreCredit is a grant a supplier can spend in store.
// CurrentBalance and LastSequence are derived from the grant's latest ledger row.
type StoreCredit struct {
	StoreCreditID      string            `json:"storeCreditID"`
	SupplierID         string            `json:"supplierID"`
	SourceSettlementID *string           `json:"sourceSettlementID,omitempty"`
	OriginalAmount     decimal.Decimal   `json:"originalAmount"`
	CurrentBalance     decimal.Decimal   `json:"currentBalance"`
	IssuedOn           time.Time         `json:"issuedOn"`
	ExpiresOn          *time.Time        `json:"expiresOn,omitempty"`
	Status             StoreCreditStatus `json:"status"`
	Notes              string            `json:"notes"`
	LastSequence       int64             `json:"lastSequence"`
	AuditFields
}

// StoreCreditTransaction is an immutable row of a store credit ledger.
type StoreCreditTransaction struct {
	TransactionID   string                     `json:"transactionID"`
	StoreCreditID   string                     `json:"storeCreditID"`
	Sequence        int64                      `json:"sequence"`
	Amount          decimal.Decimal            `json:"amount"` // Signed
	BalanceAfter    decimal.Decimal            `json:"balanceAfter"`
	TransactionType StoreCreditTransactionType `json:"transactionType"`
	SaleID          *string                    `json:"saleID,omitempty"`
	Notes           string                     `json:"notes"`
	TransactionDate time.Time                  `json:"transactionDate"`
	ProcessedBy     string                     `json:"processedBy"`
}

// IsTerminal reports whether no further ledger rows may be posted.
func (c StoreCredit) IsTerminal() bool {
	return c.Status == StoreCreditUsed || c.Status == StoreCreditCancelled || c.Status == StoreCreditExpired
}

// IsPastExpiry reports whether the credit has an expiry date at or before now.
func (c StoreCredit) IsPastExpiry(now time.Time) bool {
	return c.ExpiresOn != nil && !now.Before(*c.ExpiresOn)
}

// IsSpendable reports whether the credit can fund a sale at now.
func (c StoreCredit) IsSpendable(now time.Time) bool {
	return c.Status == StoreCreditActive && c.CurrentBalance.IsPositive() && !c.IsPastExpiry(now)
}

// NextRow builds the ledger row that moves the credit by amount.
// It does not validate the resulting balance.
func (c StoreCredit) NextRow(txnType StoreCreditTransactionType, amount decimal.Decimal) StoreCreditTransaction {
	return StoreCreditTransaction{
		StoreCreditID:   c.StoreCreditID,
		Sequence:        c.LastSequence + 1,
		Amount:          amount,
		BalanceAfter:    c.CurrentBalance.Add(amount),
		TransactionType: txnType,
	}
}

// Apply moves the credit to the state recorded by row. Terminal types force
// their status; otherwise a zero balance means Used.
func (c *StoreCredit) Apply(row StoreCreditTransaction) {
	c.CurrentBalance = row.BalanceAfter
	c.LastSequence = row.Sequence
	switch row.TransactionType {
	case CreditCancellation:
		c.Status = StoreCreditCancelled
	case CreditExpiration:
		c.Status = StoreCreditExpired
	default:
		if c.CurrentBalance.IsZero() {
			c.Status = StoreCreditUsed
		} else {
			c.Status = StoreCreditActive
		}
	}
}

// ReplayStoreCredit folds rows (ordered by sequence) into a balance, checking
// that sequences are gapless from 1, that the first row issues originalAmount,
// that every balanceAfter equals the previous one plus amount, and that no
// balance goes negative or above originalAmount.
func ReplayStoreCredit(originalAmount decimal.Decimal, rows []StoreCreditTransaction) (decimal.Decimal, error) {
	if len(rows) == 0 {
		return originalAmount, nil
	}
	balance := decimal.Zero
	for i, row := range rows {
		if row.Sequence != int64(i+1) {
			return decimal.Zero, fmt.Errorf("%w: expected sequence %d, found %d", ErrLedgerChainBroken, i+1, row.Sequence)
		}
		if i == 0 && (row.TransactionType != CreditIssuance || !row.Amount.Equal(originalAmount)) {
			return decimal.Zero, fmt.Errorf("%w: first row must issue %s", ErrLedgerChainBroken, originalAmount)
		}
		balance = balance.Add(row.Amount)
		if !balance.Equal(row.BalanceAfter) {
			return decimal.Zero, fmt.Errorf("%w: row %d records %s, replay gives %s", ErrLedgerChainBroken, row.Sequence, row.BalanceAfter, balance)
		}
		if balance.IsNegative() || balance.GreaterThan(originalAmount) {
			return decimal.Zero, fmt.Errorf("%w: row %d balance %s outside [0, %s]", ErrLedgerChainBroken, row.Sequence, balance, originalAmount)
		}
	}
	return balance, nil
}
