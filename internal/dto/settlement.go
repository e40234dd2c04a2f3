package dto

import (
	"github.com/consignet/consignment_backend/internal/core/domain"
)

// SettlementPeriodParams are the query parameters of a settlement preview.
type SettlementPeriodParams struct {
	PeriodStart string `form:"periodStart" binding:"required,datetime=2006-01-02"`
	PeriodEnd   string `form:"periodEnd" binding:"required,datetime=2006-01-02"`
}

// CreateSettlementRequest defines the data needed to create a pending settlement.
type CreateSettlementRequest struct {
	SupplierID  string `json:"supplierID" binding:"required"`
	PeriodStart string `json:"periodStart" binding:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"periodEnd" binding:"required,datetime=2006-01-02"`
	Notes       string `json:"notes"`
}

// ListSettlementsParams defines query parameters for listing settlements.
type ListSettlementsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=0,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListSettlementsResponse wraps a page of settlements.
type ListSettlementsResponse struct {
	Settlements []domain.Settlement `json:"settlements"`
	NextToken   *string             `json:"nextToken,omitempty"`
}

// SettlementItemsResponse lists the items a settlement covers.
type SettlementItemsResponse struct {
	SettlementID string        `json:"settlementID"`
	Items        []domain.Item `json:"items"`
}
