package domain

import "github.com/shopspring/decimal"

// Supplier is a consignor whose items are sold on commission.
// The two percentages are independent; whatever they leave of a sale is the
// store's commission.
type Supplier struct {
	SupplierID               string          `json:"supplierID"`
	Name                     string          `json:"name"`
	Email                    string          `json:"email"`
	CreditPercentageInStore  decimal.Decimal `json:"creditPercentageInStore"`
	CashRedemptionPercentage decimal.Decimal `json:"cashRedemptionPercentage"`
	IsActive                 bool            `json:"isActive"`
	AuditFields
}
