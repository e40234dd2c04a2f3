package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus indicates the state of a settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementPaid      SettlementStatus = "PAID"
	SettlementCancelled SettlementStatus = "CANCELLED"
)

// SettlementBreakdown is the commission split for one supplier over one period.
type SettlementBreakdown struct {
	SupplierID               string          `json:"supplierID"`
	PeriodStart              time.Time       `json:"periodStart"`
	PeriodEnd                time.Time       `json:"periodEnd"`
	ItemIDs                  []string        `json:"itemIDs"`
	TotalSalesAmount         decimal.Decimal `json:"totalSalesAmount"`
	CreditPercentageInStore  decimal.Decimal `json:"creditPercentageInStore"`
	CashRedemptionPercentage decimal.Decimal `json:"cashRedemptionPercentage"`
	StoreCreditAmount        decimal.Decimal `json:"storeCreditAmount"`
	CashRedemptionAmount     decimal.Decimal `json:"cashRedemptionAmount"`
	NetAmountToSupplier      decimal.Decimal `json:"netAmountToSupplier"`
	StoreCommissionAmount    decimal.Decimal `json:"storeCommissionAmount"`
}

// ItemCount is the number of items covered by the breakdown.
func (b SettlementBreakdown) ItemCount() int {
	return len(b.ItemIDs)
}

// Settlement is a persisted breakdown with its payout lifecycle.
// Percentages are the supplier's values at creation time.
type Settlement struct {
	SettlementID             string           `json:"settlementID"`
	SupplierID               string           `json:"supplierID"`
	PeriodStart              time.Time        `json:"periodStart"`
	PeriodEnd                time.Time        `json:"periodEnd"`
	ItemCount                int              `json:"itemCount"`
	TotalSalesAmount         decimal.Decimal  `json:"totalSalesAmount"`
	CreditPercentageInStore  decimal.Decimal  `json:"creditPercentageInStore"`
	CashRedemptionPercentage decimal.Decimal  `json:"cashRedemptionPercentage"`
	StoreCreditAmount        decimal.Decimal  `json:"storeCreditAmount"`
	CashRedemptionAmount     decimal.Decimal  `json:"cashRedemptionAmount"`
	NetAmountToSupplier      decimal.Decimal  `json:"netAmountToSupplier"`
	StoreCommissionAmount    decimal.Decimal  `json:"storeCommissionAmount"`
	Status                   SettlementStatus `json:"status"`
	Notes                    string           `json:"notes"`
	PaidOn                   *time.Time       `json:"paidOn,omitempty"`
	PaidBy                   *string          `json:"paidBy,omitempty"`
	StoreCreditID            *string          `json:"storeCreditID,omitempty"`
	AuditFields
}

// IsBalanced checks that credit, cash and commission add back up to total sales.
func (s Settlement) IsBalanced() bool {
	return s.StoreCreditAmount.Add(s.CashRedemptionAmount).Add(s.StoreCommissionAmount).Equal(s.TotalSalesAmount)
}
