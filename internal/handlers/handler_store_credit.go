package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// storeCreditHandler handles HTTP requests for store credit grants.
type storeCreditHandler struct {
	storeCreditService portssvc.StoreCreditSvcFacade
}

// RegisterStoreCreditRoutes registers store credit routes. writes guards the mutating ones.
func RegisterStoreCreditRoutes(rg *gin.RouterGroup, writes gin.HandlerFunc, storeCreditService portssvc.StoreCreditSvcFacade) {
	h := &storeCreditHandler{storeCreditService: storeCreditService}

	rg.GET("/suppliers/:id/store-credits", h.listStoreCredits)
	rg.GET("/suppliers/:id/store-credit-balance", h.getBalance)

	credits := rg.Group("/store-credits")
	{
		credits.POST("", writes, h.issueStoreCredit)
		credits.GET("/:id", h.getStoreCredit)
		credits.GET("/:id/transactions", h.listTransactions)
		credits.GET("/:id/verify", h.verifyStoreCredit)
		credits.POST("/:id/adjust", writes, h.adjustStoreCredit)
		credits.POST("/:id/cancel", writes, h.cancelStoreCredit)
		credits.POST("/:id/expire", writes, h.expireStoreCredit)
	}
}

// bindOptionalJSON binds a body that may be omitted entirely.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// issueStoreCredit godoc
// @Summary Issue a manual store credit grant
// @Tags store-credits
// @Accept  json
// @Produce  json
// @Param   credit body dto.IssueStoreCreditRequest true "Grant details"
// @Success 201 {object} domain.StoreCredit
// @Router /store-credits [post]
func (h *storeCreditHandler) issueStoreCredit(c *gin.Context) {
	var req dto.IssueStoreCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	credit, err := h.storeCreditService.IssueStoreCredit(c.Request.Context(), req, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to issue store credit")
		return
	}
	getLogger(c).Info("Store credit issued",
		slog.String("store_credit_id", credit.StoreCreditID),
		slog.String("amount", credit.OriginalAmount.StringFixed(2)))
	c.JSON(http.StatusCreated, credit)
}

func (h *storeCreditHandler) getStoreCredit(c *gin.Context) {
	credit, err := h.storeCreditService.GetStoreCredit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve store credit")
		return
	}
	c.JSON(http.StatusOK, credit)
}

func (h *storeCreditHandler) listTransactions(c *gin.Context) {
	storeCreditID := c.Param("id")
	txns, err := h.storeCreditService.ListStoreCreditTransactions(c.Request.Context(), storeCreditID)
	if err != nil {
		respondError(c, err, "Failed to list store credit transactions")
		return
	}
	c.JSON(http.StatusOK, dto.StoreCreditTransactionsResponse{StoreCreditID: storeCreditID, Transactions: txns})
}

// verifyStoreCredit godoc
// @Summary Replay a store credit's ledger
// @Description Checks sequence continuity and that the replayed balance matches the recorded one.
// @Tags store-credits
// @Produce  json
// @Param   id path string true "Store credit ID"
// @Success 200 {object} dto.VerifyStoreCreditResponse
// @Router /store-credits/{id}/verify [get]
func (h *storeCreditHandler) verifyStoreCredit(c *gin.Context) {
	resp, err := h.storeCreditService.VerifyStoreCredit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to verify store credit")
		return
	}
	if !resp.Consistent {
		getLogger(c).Error("Store credit ledger inconsistent",
			slog.String("store_credit_id", resp.StoreCreditID),
			slog.String("problem", resp.Problem))
	}
	c.JSON(http.StatusOK, resp)
}

// adjustStoreCredit godoc
// @Summary Adjust a store credit balance
// @Description Delta may be negative. The balance stays within zero and the original amount.
// @Tags store-credits
// @Accept  json
// @Produce  json
// @Param   id path string true "Store credit ID"
// @Param   adjustment body dto.AdjustStoreCreditRequest true "Signed delta and reason"
// @Success 200 {object} domain.StoreCredit
// @Failure 422 {object} map[string]string "Balance would become negative"
// @Router /store-credits/{id}/adjust [post]
func (h *storeCreditHandler) adjustStoreCredit(c *gin.Context) {
	var req dto.AdjustStoreCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	credit, err := h.storeCreditService.AdjustStoreCredit(c.Request.Context(), c.Param("id"), req.Delta, req.Reason, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to adjust store credit")
		return
	}
	c.JSON(http.StatusOK, credit)
}

func (h *storeCreditHandler) cancelStoreCredit(c *gin.Context) {
	var req dto.StoreCreditActionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		bindError(c, err)
		return
	}

	credit, err := h.storeCreditService.CancelStoreCredit(c.Request.Context(), c.Param("id"), req.Notes, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to cancel store credit")
		return
	}
	c.JSON(http.StatusOK, credit)
}

func (h *storeCreditHandler) expireStoreCredit(c *gin.Context) {
	var req dto.StoreCreditActionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		bindError(c, err)
		return
	}

	credit, err := h.storeCreditService.ExpireStoreCredit(c.Request.Context(), c.Param("id"), req.Notes, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to expire store credit")
		return
	}
	c.JSON(http.StatusOK, credit)
}

func (h *storeCreditHandler) listStoreCredits(c *gin.Context) {
	var params dto.ListStoreCreditsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	credits, err := h.storeCreditService.ListStoreCredits(c.Request.Context(), c.Param("id"), params.ActiveOnly)
	if err != nil {
		respondError(c, err, "Failed to list store credits")
		return
	}
	c.JSON(http.StatusOK, credits)
}

// getBalance godoc
// @Summary Spendable store credit of a supplier
// @Description Sum of the balances of active, unexpired grants.
// @Tags store-credits
// @Produce  json
// @Param   id path string true "Supplier ID"
// @Success 200 {object} dto.StoreCreditBalanceResponse
// @Router /suppliers/{id}/store-credit-balance [get]
func (h *storeCreditHandler) getBalance(c *gin.Context) {
	supplierID := c.Param("id")
	total, err := h.storeCreditService.TotalActiveBalance(c.Request.Context(), supplierID)
	if err != nil {
		respondError(c, err, "Failed to retrieve store credit balance")
		return
	}
	c.JSON(http.StatusOK, dto.StoreCreditBalanceResponse{SupplierID: supplierID, TotalActiveBalance: total})
}
