package services

import (
	"errors"
	"testing"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func scLine(supplierID, amount string) dto.PaymentLineRequest {
	return dto.PaymentLineRequest{Method: domain.PaymentStoreCredit, Amount: amt(amount), SupplierID: &supplierID}
}

func pool(balances ...string) []domain.StoreCredit {
	credits := make([]domain.StoreCredit, len(balances))
	for i, b := range balances {
		credits[i] = domain.StoreCredit{StoreCreditID: string(rune('a' + i)), CurrentBalance: amt(b), Status: domain.StoreCreditActive}
	}
	return credits
}

func TestPriceSale(t *testing.T) {
	payments := []dto.PaymentLineRequest{
		{Method: domain.PaymentCash, Amount: amt("50.00")},
		{Method: domain.PaymentCard, Amount: amt("30.00")},
	}

	totals, err := priceSale(amt("100.00"), amt("20.00"), payments)
	require.NoError(t, err)
	assert.True(t, totals.Total.Equal(amt("80.00")))
	assert.True(t, totals.Paid.Equal(amt("80.00")))

	_, err = priceSale(amt("100.00"), amt("10.00"), payments)
	var underfunded *apperrors.UnderfundedError
	require.True(t, errors.As(err, &underfunded))
	assert.True(t, underfunded.Shortfall.Equal(amt("10.00")))

	_, err = priceSale(amt("10.00"), amt("10.01"), payments)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestStoreCreditDemand(t *testing.T) {
	payments := []dto.PaymentLineRequest{
		scLine("sup-b", "5.00"),
		{Method: domain.PaymentCash, Amount: amt("1.00")},
		scLine("sup-a", "7.00"),
		scLine("sup-b", "3.00"),
	}

	demand, suppliers, err := storeCreditDemand(payments)
	require.NoError(t, err)
	assert.Equal(t, []string{"sup-a", "sup-b"}, suppliers)
	assert.True(t, demand["sup-b"].Equal(amt("8.00")))

	_, _, err = storeCreditDemand([]dto.PaymentLineRequest{{Method: domain.PaymentStoreCredit, Amount: amt("1.00")}})
	assert.ErrorIs(t, err, apperrors.ErrMissingSupplier)
}

func TestCheckDiscountReason(t *testing.T) {
	threshold := amt("10")
	cases := []struct {
		name     string
		discount string
		reason   string
		wantErr  bool
	}{
		{"no discount", "0", "", false},
		{"at threshold", "10.00", "", false},
		{"above threshold without reason", "10.01", "", true},
		{"above threshold with reason", "50.00", "damaged", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkDiscountReason(amt("100.00"), amt(tc.discount), tc.reason, threshold)
			if tc.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlanCreditDraws_OldestFirst(t *testing.T) {
	pools := map[string][]domain.StoreCredit{"sup-1": pool("30.00", "50.00")}

	draws, err := planCreditDraws([]dto.PaymentLineRequest{scLine("sup-1", "45.00")}, pools)

	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, 0, draws[0].CreditIndex)
	assert.True(t, draws[0].Amount.Equal(amt("30.00")))
	assert.Equal(t, 1, draws[1].CreditIndex)
	assert.True(t, draws[1].Amount.Equal(amt("15.00")))
}

func TestPlanCreditDraws_LinesShareSupplierCursor(t *testing.T) {
	pools := map[string][]domain.StoreCredit{"sup-1": pool("10.00", "10.00")}
	payments := []dto.PaymentLineRequest{scLine("sup-1", "6.00"), scLine("sup-1", "6.00")}

	draws, err := planCreditDraws(payments, pools)

	require.NoError(t, err)
	require.Len(t, draws, 3)
	assert.Equal(t, 0, draws[0].CreditIndex)
	assert.True(t, draws[0].Amount.Equal(amt("6.00")))
	assert.Equal(t, 1, draws[1].PaymentIndex)
	assert.True(t, draws[1].Amount.Equal(amt("4.00")))
	assert.Equal(t, 1, draws[2].CreditIndex)
	assert.True(t, draws[2].Amount.Equal(amt("2.00")))
	// The caller's pool is left untouched.
	assert.True(t, pools["sup-1"][0].CurrentBalance.Equal(amt("10.00")))
}

func TestPlanCreditDraws_Insufficient(t *testing.T) {
	pools := map[string][]domain.StoreCredit{"sup-1": pool("10.00")}

	_, err := planCreditDraws([]dto.PaymentLineRequest{scLine("sup-1", "12.00")}, pools)

	var insufficient *apperrors.InsufficientBalanceError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(amt("10.00")))
}

func TestChangeDue(t *testing.T) {
	totals := saleTotals{Total: amt("45.00"), Paid: amt("60.00")}

	withCash := changeDue(totals, []dto.PaymentLineRequest{{Method: domain.PaymentCash, Amount: amt("50.00")}, scLine("s", "10.00")})
	cardOnly := changeDue(totals, []dto.PaymentLineRequest{{Method: domain.PaymentCard, Amount: amt("60.00")}})

	assert.True(t, withCash.Equal(amt("15.00")))
	assert.True(t, cardOnly.IsZero())
}

func TestChangeDueIsCappedAtCashTendered(t *testing.T) {
	totals := saleTotals{Total: amt("50.00"), Paid: amt("110.00")}

	change := changeDue(totals, []dto.PaymentLineRequest{
		{Method: domain.PaymentCard, Amount: amt("100.00")},
		{Method: domain.PaymentCash, Amount: amt("10.00")},
	})

	assert.True(t, change.Equal(amt("10.00")), "got %s", change)
}
