package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/consignet/consignment_backend/internal/apperrors"
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// settlementHandler handles HTTP requests for supplier settlements.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

// RegisterSettlementRoutes registers settlement routes. writes guards the mutating ones.
func RegisterSettlementRoutes(rg *gin.RouterGroup, writes gin.HandlerFunc, settlementService portssvc.SettlementSvcFacade) {
	h := &settlementHandler{settlementService: settlementService}

	rg.GET("/suppliers/:id/settlements/preview", h.previewSettlement)
	rg.GET("/suppliers/:id/settlements", h.listSettlements)

	settlements := rg.Group("/settlements")
	{
		settlements.POST("", writes, h.createSettlement)
		settlements.GET("/:id", h.getSettlement)
		settlements.GET("/:id/items", h.getSettlementItems)
		settlements.POST("/:id/pay", writes, h.paySettlement)
		settlements.POST("/:id/cancel", writes, h.cancelSettlement)
	}
}

// parsePeriod turns two wire dates into UTC calendar dates.
func parsePeriod(start, end string) (time.Time, time.Time, error) {
	periodStart, err := dto.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: periodStart: %v", apperrors.ErrValidation, err)
	}
	periodEnd, err := dto.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: periodEnd: %v", apperrors.ErrValidation, err)
	}
	return periodStart, periodEnd, nil
}

// previewSettlement godoc
// @Summary Preview a settlement
// @Description Computes the breakdown of the supplier's unsettled sales in the period without saving anything.
// @Tags settlements
// @Produce  json
// @Param   id path string true "Supplier ID"
// @Param   periodStart query string true "First day (YYYY-MM-DD)"
// @Param   periodEnd query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} domain.SettlementBreakdown
// @Router /suppliers/{id}/settlements/preview [get]
func (h *settlementHandler) previewSettlement(c *gin.Context) {
	var params dto.SettlementPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	periodStart, periodEnd, err := parsePeriod(params.PeriodStart, params.PeriodEnd)
	if err != nil {
		respondError(c, err, "Failed to preview settlement")
		return
	}

	breakdown, err := h.settlementService.CalculateSettlement(c.Request.Context(), c.Param("id"), periodStart, periodEnd)
	if err != nil {
		respondError(c, err, "Failed to preview settlement")
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// createSettlement godoc
// @Summary Create a pending settlement
// @Description Recomputes the breakdown and attaches the supplier's unsettled items sold in the period.
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   settlement body dto.CreateSettlementRequest true "Supplier and period"
// @Success 201 {object} domain.Settlement
// @Failure 422 {object} map[string]string "No eligible items"
// @Router /settlements [post]
func (h *settlementHandler) createSettlement(c *gin.Context) {
	var req dto.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		respondError(c, err, "Failed to create settlement")
		return
	}

	settlement, err := h.settlementService.CreateSettlement(c.Request.Context(), req.SupplierID, periodStart, periodEnd, req.Notes, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to create settlement")
		return
	}
	c.JSON(http.StatusCreated, settlement)
}

func (h *settlementHandler) getSettlement(c *gin.Context) {
	settlement, err := h.settlementService.GetSettlementByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve settlement")
		return
	}
	c.JSON(http.StatusOK, settlement)
}

func (h *settlementHandler) getSettlementItems(c *gin.Context) {
	settlementID := c.Param("id")
	items, err := h.settlementService.GetSettlementItems(c.Request.Context(), settlementID)
	if err != nil {
		respondError(c, err, "Failed to retrieve settlement items")
		return
	}
	c.JSON(http.StatusOK, dto.SettlementItemsResponse{SettlementID: settlementID, Items: items})
}

// listSettlements godoc
// @Summary List a supplier's settlements, newest first
// @Tags settlements
// @Produce  json
// @Param   id path string true "Supplier ID"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListSettlementsResponse
// @Router /suppliers/{id}/settlements [get]
func (h *settlementHandler) listSettlements(c *gin.Context) {
	var params dto.ListSettlementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.settlementService.ListSettlements(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, err, "Failed to list settlements")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// paySettlement godoc
// @Summary Pay a pending settlement
// @Description Issues the store credit and posts the cash payout in one transaction.
// @Tags settlements
// @Produce  json
// @Param   id path string true "Settlement ID"
// @Success 200 {object} domain.Settlement
// @Failure 409 {object} map[string]string "Settlement is not pending"
// @Router /settlements/{id}/pay [post]
func (h *settlementHandler) paySettlement(c *gin.Context) {
	settlement, err := h.settlementService.ProcessSettlementPayment(c.Request.Context(), c.Param("id"), operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to pay settlement")
		return
	}
	c.JSON(http.StatusOK, settlement)
}

func (h *settlementHandler) cancelSettlement(c *gin.Context) {
	settlement, err := h.settlementService.CancelSettlement(c.Request.Context(), c.Param("id"), operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to cancel settlement")
		return
	}
	c.JSON(http.StatusOK, settlement)
}
