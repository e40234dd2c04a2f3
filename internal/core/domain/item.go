package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is the lifecycle state of a consigned item.
type ItemStatus string

const (
	ItemToSell   ItemStatus = "TO_SELL"
	ItemSold     ItemStatus = "SOLD"
	ItemReturned ItemStatus = "RETURNED"
)

// Item is the subset of an intake record that the ledger cares about.
type Item struct {
	ItemID         string          `json:"itemID"`
	SupplierID     string          `json:"supplierID"`
	Description    string          `json:"description"`
	EvaluatedPrice decimal.Decimal `json:"evaluatedPrice"`
	Status         ItemStatus      `json:"status"`
	SaleID         *string         `json:"saleID,omitempty"`
	SaleDate       *time.Time      `json:"saleDate,omitempty"`
	SettlementID   *string         `json:"settlementID,omitempty"`
	AuditFields
}

// IsSettlementEligible reports whether the item is sold, not yet attached to a
// settlement, and was sold within [periodStart, periodEnd] comparing dates only.
func (i Item) IsSettlementEligible(periodStart, periodEnd time.Time) bool {
	if i.Status != ItemSold || i.SettlementID != nil || i.SaleDate == nil {
		return false
	}
	day := DateOnly(*i.SaleDate)
	return !day.Before(DateOnly(periodStart)) && !day.After(DateOnly(periodEnd))
}
