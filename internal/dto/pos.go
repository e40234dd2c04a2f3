package dto

import (
	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenRegisterRequest starts a till session for the calling operator.
type OpenRegisterRequest struct {
	OpeningAmount decimal.Decimal `json:"openingAmount" binding:"dgte0,money"`
	Notes         string          `json:"notes"`
}

// CloseRegisterRequest ends a till session with the counted cash.
type CloseRegisterRequest struct {
	CountedAmount decimal.Decimal `json:"countedAmount" binding:"dgte0,money"`
	Notes         string          `json:"notes"`
}

// PaymentLineRequest is one tender line of a sale.
type PaymentLineRequest struct {
	Method     domain.PaymentMethod `json:"method" binding:"required,oneof=CASH CARD MOBILE BANK_TRANSFER STORE_CREDIT"`
	Amount     decimal.Decimal      `json:"amount" binding:"dgt0,money"`
	SupplierID *string              `json:"supplierID"` // Required for STORE_CREDIT
}

// ProcessSaleRequest defines a multi-tender sale on a register.
type ProcessSaleRequest struct {
	ItemIDs        []string             `json:"itemIDs" binding:"required,min=1,dive,required"`
	Payments       []PaymentLineRequest `json:"payments" binding:"required,min=1,dive"`
	DiscountAmount decimal.Decimal      `json:"discountAmount" binding:"dgte0,money"`
	DiscountReason string               `json:"discountReason"`
}

// ProcessSaleResponse is a completed sale plus the change owed.
type ProcessSaleResponse struct {
	Sale         domain.Sale     `json:"sale"`
	ChangeAmount decimal.Decimal `json:"changeAmount"`
}
