package services

import (
	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconcileRegister compares counted cash with what the drawer should hold:
// the opening float plus cash tendered, less change handed back. Revenue per
// payment method counts cash net of change as well. A sale's change is capped
// at the cash it took in. It never fails; a
// discrepancy is reported, not rejected.
func ReconcileRegister(register domain.CashRegister, sales []domain.Sale, counted decimal.Decimal) domain.RegisterReconciliation {
	rec := domain.RegisterReconciliation{
		Register:      register,
		CountedAmount: counted,
		CashTendered:  decimal.Zero,
		ChangeGiven:   decimal.Zero,
		Breakdown:     make(map[domain.PaymentMethod]decimal.Decimal, len(domain.PaymentMethods)),
		TotalRevenue:  decimal.Zero,
	}
	for _, m := range domain.PaymentMethods {
		rec.Breakdown[m] = decimal.Zero
	}

	for _, sale := range sales {
		if sale.RegisterID != register.RegisterID || sale.SaleDate.Before(register.OpenedAt) {
			continue
		}
		rec.SaleCount++
		rec.TotalRevenue = rec.TotalRevenue.Add(sale.Total)
		saleCash := decimal.Zero
		for _, p := range sale.Payments {
			rec.Breakdown[p.Method] = rec.Breakdown[p.Method].Add(p.Amount)
			if p.Method == domain.PaymentCash {
				saleCash = saleCash.Add(p.Amount)
			}
		}
		rec.CashTendered = rec.CashTendered.Add(saleCash)
		// Change leaves the drawer, so it cannot exceed the cash that came in.
		rec.ChangeGiven = rec.ChangeGiven.Add(decimal.Min(sale.ChangeAmount, saleCash))
	}

	rec.Breakdown[domain.PaymentCash] = rec.Breakdown[domain.PaymentCash].Sub(rec.ChangeGiven)
	rec.ExpectedAmount = register.OpeningAmount.Add(rec.CashTendered).Sub(rec.ChangeGiven)
	rec.Discrepancy = counted.Sub(rec.ExpectedAmount)
	return rec
}
