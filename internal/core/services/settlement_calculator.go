package services

import (
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSettlementBreakdown splits the sales of the supplier's eligible items
// into store credit, redeemable cash and store commission. Items that are not
// sold, already settled, sold outside the period or owned by another supplier
// are ignored. An empty selection yields a zero breakdown.
//
// Credit and cash are rounded independently; commission is what they leave of
// the total, so it absorbs any rounding residue.
func CalculateSettlementBreakdown(supplier domain.Supplier, periodStart, periodEnd time.Time, items []domain.Item) domain.SettlementBreakdown {
	breakdown := domain.SettlementBreakdown{
		SupplierID:               supplier.SupplierID,
		PeriodStart:              domain.DateOnly(periodStart),
		PeriodEnd:                domain.DateOnly(periodEnd),
		ItemIDs:                  []string{},
		CreditPercentageInStore:  supplier.CreditPercentageInStore,
		CashRedemptionPercentage: supplier.CashRedemptionPercentage,
	}

	total := decimal.Zero
	for _, item := range items {
		if item.SupplierID != supplier.SupplierID || !item.IsSettlementEligible(periodStart, periodEnd) {
			continue
		}
		breakdown.ItemIDs = append(breakdown.ItemIDs, item.ItemID)
		total = total.Add(item.EvaluatedPrice)
	}

	breakdown.TotalSalesAmount = domain.RoundMoney(total)
	breakdown.StoreCreditAmount = domain.PercentOf(breakdown.TotalSalesAmount, supplier.CreditPercentageInStore)
	breakdown.CashRedemptionAmount = domain.PercentOf(breakdown.TotalSalesAmount, supplier.CashRedemptionPercentage)
	breakdown.NetAmountToSupplier = breakdown.StoreCreditAmount.Add(breakdown.CashRedemptionAmount)
	breakdown.StoreCommissionAmount = breakdown.TotalSalesAmount.Sub(breakdown.NetAmountToSupplier)
	return breakdown
}
