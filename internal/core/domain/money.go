package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places of the currency's minor unit.
const MoneyPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds to the minor unit, half away from zero (half-up for the
// non-negative amounts this system deals in).
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// PercentOf returns pct percent of amount, rounded to the minor unit.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(pct).Div(hundred))
}

// RatioPercent returns part as a percentage of whole. A zero whole yields zero.
func RatioPercent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole)
}

// SumMoney adds all amounts.
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// HasMoreThanMoneyPlaces reports whether amount carries sub-cent precision.
func HasMoreThanMoneyPlaces(amount decimal.Decimal) bool {
	return !amount.Equal(amount.Truncate(MoneyPlaces))
}
