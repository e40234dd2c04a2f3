package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is a tender type accepted at the point of sale.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCard         PaymentMethod = "CARD"
	PaymentMobile       PaymentMethod = "MOBILE"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentStoreCredit  PaymentMethod = "STORE_CREDIT"
)

// PaymentMethods lists every accepted tender type.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentMobile, PaymentBankTransfer, PaymentStoreCredit}

// Sale is a completed point-of-sale transaction on one register.
type Sale struct {
	SaleID         string          `json:"saleID"`
	RegisterID     string          `json:"registerID"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	DiscountReason string          `json:"discountReason"`
	Total          decimal.Decimal `json:"total"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	ChangeAmount   decimal.Decimal `json:"changeAmount"`
	SaleDate       time.Time       `json:"saleDate"`
	Items          []SaleItem      `json:"items"`
	Payments       []SalePayment   `json:"payments"`
	AuditFields
}

// SaleItem is one consigned item sold in a sale.
type SaleItem struct {
	SaleID     string          `json:"saleID"`
	ItemID     string          `json:"itemID"`
	SupplierID string          `json:"supplierID"`
	Price      decimal.Decimal `json:"price"`
}

// SalePayment is one tender line of a sale.
type SalePayment struct {
	PaymentID     string          `json:"paymentID"`
	SaleID        string          `json:"saleID"`
	Method        PaymentMethod   `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	SupplierID    *string         `json:"supplierID,omitempty"`
	StoreCreditID *string         `json:"storeCreditID,omitempty"` // Set when the line drew on a single grant
}

// HasCashPayment reports whether any tender line is cash.
func (s Sale) HasCashPayment() bool {
	for _, p := range s.Payments {
		if p.Method == PaymentCash {
			return true
		}
	}
	return false
}
