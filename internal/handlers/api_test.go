package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
	"github.com/consignet/consignment_backend/internal/core/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/consignet/consignment_backend/internal/handlers"
	"github.com/consignet/consignment_backend/internal/platform/config"
	"github.com/consignet/consignment_backend/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

// APITestSuite drives the full route table against the in-memory store.
type APITestSuite struct {
	suite.Suite
	router *gin.Engine
	today  string
	start  string
	end    string
}

func (suite *APITestSuite) SetupTest() {
	cfg := &config.Config{
		DiscountReasonThresholdPercent: d("10"),
		DefaultCreditPercentage:        d("50"),
		DefaultCashPercentage:          d("40"),
	}
	store := memory.New()
	container := services.NewServiceContainer(cfg, store.Provider(), store)

	suite.router = newTestRouter()
	handlers.RegisterRoutes(suite.router, container, prometheus.NewRegistry())

	now := time.Now().UTC()
	suite.today = now.Format(dto.DateLayout)
	suite.start = now.AddDate(0, 0, -1).Format(dto.DateLayout)
	suite.end = now.AddDate(0, 0, 1).Format(dto.DateLayout)
}

func (suite *APITestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	return doJSON(suite.router, method, url, body, testOperator)
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder, status int, out any) {
	suite.Require().Equal(status, w.Code, w.Body.String())
	if out != nil {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out))
	}
}

func (suite *APITestSuite) createSupplier(name string) domain.Supplier {
	var supplier domain.Supplier
	suite.decode(suite.do(http.MethodPost, "/api/v1/suppliers", map[string]any{"name": name}), http.StatusCreated, &supplier)
	return supplier
}

func (suite *APITestSuite) createItem(supplierID, price string) domain.Item {
	var item domain.Item
	suite.decode(suite.do(http.MethodPost, "/api/v1/items", map[string]any{
		"supplierID":     supplierID,
		"description":    "wool coat",
		"evaluatedPrice": price,
	}), http.StatusCreated, &item)
	return item
}

func (suite *APITestSuite) TestHealthAndMetrics() {
	w := doJSON(suite.router, http.MethodGet, "/health", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"status":"ok"}`, w.Body.String())

	w = doJSON(suite.router, http.MethodGet, "/metrics", nil, "")
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestWritesRequireOperator() {
	w := doJSON(suite.router, http.MethodPost, "/api/v1/suppliers", map[string]any{"name": "Rosa"}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestSellSettleAndSpend() {
	supplier := suite.createSupplier("Rosa")
	suite.True(supplier.CreditPercentageInStore.Equal(d("50")))
	coat := suite.createItem(supplier.SupplierID, "100.00")
	scarf := suite.createItem(supplier.SupplierID, "60.00")

	var register domain.CashRegister
	suite.decode(suite.do(http.MethodPost, "/api/v1/registers/open", map[string]any{"openingAmount": "50.00"}), http.StatusCreated, &register)

	var sold dto.ProcessSaleResponse
	suite.decode(suite.do(http.MethodPost, "/api/v1/registers/"+register.RegisterID+"/sales", map[string]any{
		"itemIDs":  []string{coat.ItemID},
		"payments": []map[string]any{{"method": "CASH", "amount": "120.00"}},
	}), http.StatusCreated, &sold)
	suite.True(sold.ChangeAmount.Equal(d("20")))

	var preview domain.SettlementBreakdown
	suite.decode(suite.do(http.MethodGet, "/api/v1/suppliers/"+supplier.SupplierID+"/settlements/preview?periodStart="+suite.start+"&periodEnd="+suite.end, nil),
		http.StatusOK, &preview)
	suite.True(preview.StoreCreditAmount.Equal(d("50")))
	suite.True(preview.CashRedemptionAmount.Equal(d("40")))
	suite.True(preview.StoreCommissionAmount.Equal(d("10")))

	var settlement domain.Settlement
	suite.decode(suite.do(http.MethodPost, "/api/v1/settlements", map[string]any{
		"supplierID":  supplier.SupplierID,
		"periodStart": suite.start,
		"periodEnd":   suite.end,
	}), http.StatusCreated, &settlement)
	suite.Equal(domain.SettlementPending, settlement.Status)
	suite.Equal(1, settlement.ItemCount)

	var paid domain.Settlement
	suite.decode(suite.do(http.MethodPost, "/api/v1/settlements/"+settlement.SettlementID+"/pay", nil), http.StatusOK, &paid)
	suite.Equal(domain.SettlementPaid, paid.Status)
	suite.Require().NotNil(paid.StoreCreditID)

	w := suite.do(http.MethodPost, "/api/v1/settlements/"+settlement.SettlementID+"/pay", nil)
	suite.Equal(http.StatusConflict, w.Code)

	var balance dto.StoreCreditBalanceResponse
	suite.decode(suite.do(http.MethodGet, "/api/v1/suppliers/"+supplier.SupplierID+"/store-credit-balance", nil), http.StatusOK, &balance)
	suite.True(balance.TotalActiveBalance.Equal(d("50")))

	// Spend the whole credit plus a card top-up on the second item.
	suite.decode(suite.do(http.MethodPost, "/api/v1/registers/"+register.RegisterID+"/sales", map[string]any{
		"itemIDs": []string{scarf.ItemID},
		"payments": []map[string]any{
			{"method": "STORE_CREDIT", "amount": "50.00", "supplierID": supplier.SupplierID},
			{"method": "CARD", "amount": "10.00"},
		},
	}), http.StatusCreated, &sold)

	suite.decode(suite.do(http.MethodGet, "/api/v1/suppliers/"+supplier.SupplierID+"/store-credit-balance", nil), http.StatusOK, &balance)
	suite.True(balance.TotalActiveBalance.IsZero())

	var credit domain.StoreCredit
	suite.decode(suite.do(http.MethodGet, "/api/v1/store-credits/"+*paid.StoreCreditID, nil), http.StatusOK, &credit)
	suite.Equal(domain.StoreCreditUsed, credit.Status)

	var verify dto.VerifyStoreCreditResponse
	suite.decode(suite.do(http.MethodGet, "/api/v1/store-credits/"+*paid.StoreCreditID+"/verify", nil), http.StatusOK, &verify)
	suite.True(verify.Consistent)
	suite.Equal(2, verify.TransactionCount)

	var cash dto.CashBalanceResponse
	suite.decode(suite.do(http.MethodGet, "/api/v1/suppliers/"+supplier.SupplierID+"/cash-balance", nil), http.StatusOK, &cash)
	suite.True(cash.AvailableBalance.Equal(d("40")))

	w = suite.do(http.MethodPost, "/api/v1/suppliers/"+supplier.SupplierID+"/cash-redemptions", map[string]any{"amount": "40.01"})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var redemption domain.SupplierCashBalanceTransaction
	suite.decode(suite.do(http.MethodPost, "/api/v1/suppliers/"+supplier.SupplierID+"/cash-redemptions", map[string]any{"amount": "40.00"}),
		http.StatusCreated, &redemption)
	suite.Equal(int64(2), redemption.Sequence)

	var recon domain.RegisterReconciliation
	suite.decode(suite.do(http.MethodPost, "/api/v1/registers/"+register.RegisterID+"/close", map[string]any{"countedAmount": "150.00"}),
		http.StatusOK, &recon)
	suite.True(recon.ExpectedAmount.Equal(d("150")))
	suite.True(recon.Discrepancy.IsZero())
	suite.Equal(2, recon.SaleCount)

	w = suite.do(http.MethodPost, "/api/v1/registers/"+register.RegisterID+"/sales", map[string]any{
		"itemIDs":  []string{coat.ItemID},
		"payments": []map[string]any{{"method": "CASH", "amount": "100.00"}},
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *APITestSuite) TestSettlementWithoutSalesIsUnprocessable() {
	supplier := suite.createSupplier("Marta")
	suite.createItem(supplier.SupplierID, "25.00")

	w := suite.do(http.MethodPost, "/api/v1/settlements", map[string]any{
		"supplierID":  supplier.SupplierID,
		"periodStart": suite.today,
		"periodEnd":   suite.today,
	})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *APITestSuite) TestBadDatesAndMissingEntities() {
	supplier := suite.createSupplier("Ines")

	w := suite.do(http.MethodGet, "/api/v1/suppliers/"+supplier.SupplierID+"/settlements/preview?periodStart=03/01/2024&periodEnd="+suite.end, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/suppliers/"+supplier.SupplierID+"/settlements/preview?periodStart="+suite.end+"&periodEnd="+suite.start, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/settlements/does-not-exist", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/suppliers/does-not-exist", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/items", map[string]any{
		"supplierID":     "does-not-exist",
		"description":    "lamp",
		"evaluatedPrice": "10.00",
	})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestStoreCreditAdjustAndCancel() {
	supplier := suite.createSupplier("Lucia")

	var credit domain.StoreCredit
	suite.decode(suite.do(http.MethodPost, "/api/v1/store-credits", map[string]any{
		"supplierID": supplier.SupplierID,
		"amount":     "30.00",
	}), http.StatusCreated, &credit)

	w := suite.do(http.MethodPost, "/api/v1/store-credits/"+credit.StoreCreditID+"/adjust", map[string]any{"delta": "-31.00", "reason": "typo"})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	suite.decode(suite.do(http.MethodPost, "/api/v1/store-credits/"+credit.StoreCreditID+"/adjust", map[string]any{"delta": "-10.00", "reason": "damaged"}),
		http.StatusOK, &credit)
	suite.True(credit.CurrentBalance.Equal(d("20")))

	// Cancel takes an optional body.
	suite.decode(suite.do(http.MethodPost, "/api/v1/store-credits/"+credit.StoreCreditID+"/cancel", nil), http.StatusOK, &credit)
	suite.Equal(domain.StoreCreditCancelled, credit.Status)

	w = suite.do(http.MethodPost, "/api/v1/store-credits/"+credit.StoreCreditID+"/expire", nil)
	suite.Equal(http.StatusConflict, w.Code)

	var txns dto.StoreCreditTransactionsResponse
	suite.decode(suite.do(http.MethodGet, "/api/v1/store-credits/"+credit.StoreCreditID+"/transactions", nil), http.StatusOK, &txns)
	suite.Len(txns.Transactions, 3)

	var list []domain.StoreCredit
	suite.decode(suite.do(http.MethodGet, "/api/v1/suppliers/"+supplier.SupplierID+"/store-credits?activeOnly=true", nil), http.StatusOK, &list)
	suite.Empty(list)
}

func TestAPI(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
