package dto

import (
	"github.com/shopspring/decimal"
)

// CreateSupplierRequest defines the data needed to register a consignor.
// Omitted percentages fall back to the configured defaults.
type CreateSupplierRequest struct {
	Name                     string           `json:"name" binding:"required"`
	Email                    string           `json:"email" binding:"omitempty,email"`
	CreditPercentageInStore  *decimal.Decimal `json:"creditPercentageInStore" binding:"omitempty,dgte0"`
	CashRedemptionPercentage *decimal.Decimal `json:"cashRedemptionPercentage" binding:"omitempty,dgte0"`
}

// UpdateSupplierPercentagesRequest replaces both commission percentages at once.
type UpdateSupplierPercentagesRequest struct {
	CreditPercentageInStore  decimal.Decimal `json:"creditPercentageInStore" binding:"dgte0"`
	CashRedemptionPercentage decimal.Decimal `json:"cashRedemptionPercentage" binding:"dgte0"`
}

// CreateItemRequest defines the data needed to take an item into consignment.
type CreateItemRequest struct {
	SupplierID     string          `json:"supplierID" binding:"required"`
	Description    string          `json:"description" binding:"required"`
	EvaluatedPrice decimal.Decimal `json:"evaluatedPrice" binding:"dgt0,money"`
}
