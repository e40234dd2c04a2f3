package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// cashBalanceHandler handles HTTP requests for the supplier cash ledger.
type cashBalanceHandler struct {
	cashBalanceService portssvc.CashBalanceSvcFacade
}

// RegisterCashBalanceRoutes registers the cash ledger routes under a supplier. writes guards redemptions.
func RegisterCashBalanceRoutes(rg *gin.RouterGroup, writes gin.HandlerFunc, cashBalanceService portssvc.CashBalanceSvcFacade) {
	h := &cashBalanceHandler{cashBalanceService: cashBalanceService}

	suppliers := rg.Group("/suppliers/:id")
	{
		suppliers.GET("/cash-balance", h.getCashBalance)
		suppliers.GET("/cash-transactions", h.listCashTransactions)
		suppliers.POST("/cash-redemptions", writes, h.redeemCash)
	}
}

func (h *cashBalanceHandler) getCashBalance(c *gin.Context) {
	supplierID := c.Param("id")
	balance, err := h.cashBalanceService.GetSupplierCashBalance(c.Request.Context(), supplierID)
	if err != nil {
		respondError(c, err, "Failed to retrieve cash balance")
		return
	}
	c.JSON(http.StatusOK, dto.CashBalanceResponse{SupplierID: supplierID, AvailableBalance: balance})
}

func (h *cashBalanceHandler) listCashTransactions(c *gin.Context) {
	supplierID := c.Param("id")
	txns, err := h.cashBalanceService.ListSupplierCashTransactions(c.Request.Context(), supplierID)
	if err != nil {
		respondError(c, err, "Failed to list cash transactions")
		return
	}
	c.JSON(http.StatusOK, dto.CashTransactionsResponse{SupplierID: supplierID, Transactions: txns})
}

// redeemCash godoc
// @Summary Pay out part of a supplier's cash balance
// @Tags cash-balance
// @Accept  json
// @Produce  json
// @Param   id path string true "Supplier ID"
// @Param   redemption body dto.RedeemCashRequest true "Amount to pay out"
// @Success 201 {object} domain.SupplierCashBalanceTransaction
// @Failure 422 {object} map[string]string "Insufficient balance, with the available amount"
// @Router /suppliers/{id}/cash-redemptions [post]
func (h *cashBalanceHandler) redeemCash(c *gin.Context) {
	var req dto.RedeemCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	txn, err := h.cashBalanceService.RedeemSupplierCash(c.Request.Context(), c.Param("id"), req.Amount, req.Notes, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to redeem supplier cash")
		return
	}
	getLogger(c).Info("Supplier cash redeemed",
		slog.String("supplier_id", txn.SupplierID),
		slog.Int64("sequence", txn.Sequence))
	c.JSON(http.StatusCreated, txn)
}
