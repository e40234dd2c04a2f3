package services

import (
	"fmt"
	"sort"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// saleTotals is the money side of a sale once its tender covers it.
type saleTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Paid     decimal.Decimal
}

// priceSale checks the discount against the subtotal and the tender against the total.
func priceSale(subtotal, discount decimal.Decimal, payments []dto.PaymentLineRequest) (saleTotals, error) {
	if discount.GreaterThan(subtotal) {
		return saleTotals{}, fmt.Errorf("%w: discount %s exceeds subtotal %s", apperrors.ErrValidation,
			discount.StringFixed(2), subtotal.StringFixed(2))
	}
	totals := saleTotals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
		Paid:     decimal.Zero,
	}
	for _, p := range payments {
		totals.Paid = totals.Paid.Add(p.Amount)
	}
	if totals.Paid.LessThan(totals.Total) {
		return totals, &apperrors.UnderfundedError{
			Total:     totals.Total,
			Paid:      totals.Paid,
			Shortfall: totals.Total.Sub(totals.Paid),
		}
	}
	return totals, nil
}

// storeCreditDemand sums the STORE_CREDIT lines per supplier and returns the
// suppliers in sorted order. A line without supplier is rejected.
func storeCreditDemand(payments []dto.PaymentLineRequest) (map[string]decimal.Decimal, []string, error) {
	demand := make(map[string]decimal.Decimal)
	for i, p := range payments {
		if p.Method != domain.PaymentStoreCredit {
			continue
		}
		if p.SupplierID == nil || *p.SupplierID == "" {
			return nil, nil, fmt.Errorf("%w: payment line %d", apperrors.ErrMissingSupplier, i+1)
		}
		demand[*p.SupplierID] = demand[*p.SupplierID].Add(p.Amount)
	}
	suppliers := make([]string, 0, len(demand))
	for id := range demand {
		suppliers = append(suppliers, id)
	}
	sort.Strings(suppliers)
	return demand, suppliers, nil
}

// checkDiscountReason requires a reason once the discount exceeds thresholdPct of the subtotal.
func checkDiscountReason(subtotal, discount decimal.Decimal, reason string, thresholdPct decimal.Decimal) error {
	if !discount.IsPositive() || reason != "" {
		return nil
	}
	if domain.RatioPercent(discount, subtotal).GreaterThan(thresholdPct) {
		return fmt.Errorf("%w: a discount above %s%% of the subtotal needs a reason", apperrors.ErrValidation, thresholdPct.String())
	}
	return nil
}

// creditDraw is the part of one STORE_CREDIT line taken from one grant.
type creditDraw struct {
	PaymentIndex int
	SupplierID   string
	CreditIndex  int // Into the supplier's FIFO pool
	Amount       decimal.Decimal
}

// planCreditDraws spreads every STORE_CREDIT line over its supplier's pool,
// oldest grant first, exhausting a grant before touching the next. Lines of
// the same supplier continue where the previous one stopped.
func planCreditDraws(payments []dto.PaymentLineRequest, pools map[string][]domain.StoreCredit) ([]creditDraw, error) {
	remaining := make(map[string][]decimal.Decimal, len(pools))
	for supplierID, credits := range pools {
		balances := make([]decimal.Decimal, len(credits))
		for i, c := range credits {
			balances[i] = c.CurrentBalance
		}
		remaining[supplierID] = balances
	}

	var draws []creditDraw
	for i, p := range payments {
		if p.Method != domain.PaymentStoreCredit {
			continue
		}
		supplierID := *p.SupplierID
		need := p.Amount
		balances := remaining[supplierID]
		for j := 0; j < len(balances) && need.IsPositive(); j++ {
			if !balances[j].IsPositive() {
				continue
			}
			take := decimal.Min(need, balances[j])
			balances[j] = balances[j].Sub(take)
			need = need.Sub(take)
			draws = append(draws, creditDraw{PaymentIndex: i, SupplierID: supplierID, CreditIndex: j, Amount: take})
		}
		if need.IsPositive() {
			return nil, &apperrors.InsufficientBalanceError{SupplierID: supplierID, Requested: p.Amount, Available: p.Amount.Sub(need)}
		}
	}
	return draws, nil
}

// changeDue is the cash handed back: the overpayment, but never more than the
// cash tendered. Overpaying with a card or credit is not refunded here.
func changeDue(totals saleTotals, payments []dto.PaymentLineRequest) decimal.Decimal {
	cash := decimal.Zero
	for _, p := range payments {
		if p.Method == domain.PaymentCash {
			cash = cash.Add(p.Amount)
		}
	}
	over := totals.Paid.Sub(totals.Total)
	if !over.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(over, cash)
}
