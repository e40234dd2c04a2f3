package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashRegisterStatus indicates whether a till session is running.
type CashRegisterStatus string

const (
	RegisterOpen   CashRegisterStatus = "OPEN"
	RegisterClosed CashRegisterStatus = "CLOSED"
)

// CashRegister is one till session of one operator.
type CashRegister struct {
	RegisterID     string             `json:"registerID"`
	Operator       string             `json:"operator"`
	OpeningAmount  decimal.Decimal    `json:"openingAmount"`
	OpenedAt       time.Time          `json:"openedAt"`
	Status         CashRegisterStatus `json:"status"`
	ClosedAt       *time.Time         `json:"closedAt,omitempty"`
	ClosingAmount  *decimal.Decimal   `json:"closingAmount,omitempty"`
	ExpectedAmount *decimal.Decimal   `json:"expectedAmount,omitempty"`
	Discrepancy    *decimal.Decimal   `json:"discrepancy,omitempty"`
	Notes          string             `json:"notes"`
	AuditFields
}

// RegisterReconciliation is the outcome of closing a register.
type RegisterReconciliation struct {
	Register       CashRegister                      `json:"register"`
	ExpectedAmount decimal.Decimal                   `json:"expectedAmount"`
	CountedAmount  decimal.Decimal                   `json:"countedAmount"`
	Discrepancy    decimal.Decimal                   `json:"discrepancy"`
	CashTendered   decimal.Decimal                   `json:"cashTendered"`
	ChangeGiven    decimal.Decimal                   `json:"changeGiven"`
	SaleCount      int                               `json:"saleCount"`
	Breakdown      map[PaymentMethod]decimal.Decimal `json:"breakdown"`
	TotalRevenue   decimal.Decimal                   `json:"totalRevenue"`
}
