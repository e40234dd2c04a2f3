package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// posHandler handles HTTP requests for registers and sales.
type posHandler struct {
	registerService portssvc.CashRegisterSvcFacade
	saleService     portssvc.SaleSvcFacade
}

// RegisterPOSRoutes registers the point-of-sale routes. writes guards the mutating ones.
func RegisterPOSRoutes(rg *gin.RouterGroup, writes gin.HandlerFunc, registerService portssvc.CashRegisterSvcFacade, saleService portssvc.SaleSvcFacade) {
	h := &posHandler{registerService: registerService, saleService: saleService}

	registers := rg.Group("/registers")
	{
		registers.POST("/open", writes, h.openRegister)
		registers.GET("/current", writes, h.getCurrentRegister)
		registers.GET("/:id", h.getRegister)
		registers.POST("/:id/close", writes, h.closeRegister)
		registers.POST("/:id/sales", writes, h.processSale)
	}

	rg.GET("/sales/:id", h.getSale)
}

// openRegister godoc
// @Summary Open a register for the calling operator
// @Tags pos
// @Accept  json
// @Produce  json
// @Param   register body dto.OpenRegisterRequest true "Opening float"
// @Success 201 {object} domain.CashRegister
// @Failure 409 {object} map[string]string "Operator already has an open register"
// @Router /registers/open [post]
func (h *posHandler) openRegister(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	register, err := h.registerService.OpenRegister(c.Request.Context(), operatorID(c), req.OpeningAmount, req.Notes)
	if err != nil {
		respondError(c, err, "Failed to open register")
		return
	}
	getLogger(c).Info("Register opened", slog.String("register_id", register.RegisterID))
	c.JSON(http.StatusCreated, register)
}

func (h *posHandler) getCurrentRegister(c *gin.Context) {
	register, err := h.registerService.GetOpenRegister(c.Request.Context(), operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to retrieve open register")
		return
	}
	c.JSON(http.StatusOK, register)
}

func (h *posHandler) getRegister(c *gin.Context) {
	register, err := h.registerService.GetRegister(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve register")
		return
	}
	c.JSON(http.StatusOK, register)
}

// closeRegister godoc
// @Summary Close a register and reconcile its cash
// @Description Expected cash is the opening float plus cash tendered minus change given.
// @Tags pos
// @Accept  json
// @Produce  json
// @Param   id path string true "Register ID"
// @Param   close body dto.CloseRegisterRequest true "Counted cash"
// @Success 200 {object} domain.RegisterReconciliation
// @Router /registers/{id}/close [post]
func (h *posHandler) closeRegister(c *gin.Context) {
	var req dto.CloseRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	reconciliation, err := h.registerService.CloseRegister(c.Request.Context(), c.Param("id"), req.CountedAmount, req.Notes, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to close register")
		return
	}
	if !reconciliation.Discrepancy.IsZero() {
		getLogger(c).Warn("Register closed with discrepancy",
			slog.String("register_id", reconciliation.Register.RegisterID),
			slog.String("discrepancy", reconciliation.Discrepancy.StringFixed(2)))
	}
	c.JSON(http.StatusOK, reconciliation)
}

// processSale godoc
// @Summary Ring up a sale on an open register
// @Description Accepts several tender lines. STORE_CREDIT lines draw on the named supplier's grants, oldest first.
// @Tags pos
// @Accept  json
// @Produce  json
// @Param   id path string true "Register ID"
// @Param   sale body dto.ProcessSaleRequest true "Items and payments"
// @Success 201 {object} dto.ProcessSaleResponse
// @Failure 400 {object} map[string]string "Underfunded, with the shortfall"
// @Failure 422 {object} map[string]string "Insufficient store credit, with the available amount"
// @Router /registers/{id}/sales [post]
func (h *posHandler) processSale(c *gin.Context) {
	var req dto.ProcessSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sale, err := h.saleService.ProcessSale(c.Request.Context(), c.Param("id"), req, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to process sale")
		return
	}
	getLogger(c).Info("Sale processed",
		slog.String("sale_id", sale.SaleID),
		slog.String("total", sale.Total.StringFixed(2)))
	c.JSON(http.StatusCreated, dto.ProcessSaleResponse{Sale: *sale, ChangeAmount: sale.ChangeAmount})
}

func (h *posHandler) getSale(c *gin.Context) {
	sale, err := h.saleService.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve sale")
		return
	}
	c.JSON(http.StatusOK, sale)
}
