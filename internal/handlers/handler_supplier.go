package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// supplierHandler handles HTTP requests for consignors and their items.
type supplierHandler struct {
	supplierService portssvc.SupplierSvcFacade
	itemService     portssvc.ItemSvcFacade
}

// RegisterSupplierRoutes registers supplier and item routes. writes guards the mutating ones.
func RegisterSupplierRoutes(rg *gin.RouterGroup, writes gin.HandlerFunc, supplierService portssvc.SupplierSvcFacade, itemService portssvc.ItemSvcFacade) {
	h := &supplierHandler{supplierService: supplierService, itemService: itemService}

	suppliers := rg.Group("/suppliers")
	{
		suppliers.POST("", writes, h.createSupplier)
		suppliers.GET("/:id", h.getSupplier)
		suppliers.PUT("/:id/percentages", writes, h.updatePercentages)
	}

	items := rg.Group("/items")
	{
		items.POST("", writes, h.createItem)
		items.GET("/:id", h.getItem)
	}
}

// createSupplier godoc
// @Summary Register a consignor
// @Tags suppliers
// @Accept  json
// @Produce  json
// @Param   supplier body dto.CreateSupplierRequest true "Supplier details"
// @Success 201 {object} domain.Supplier
// @Failure 400 {object} map[string]string "Invalid input or percentages"
// @Router /suppliers [post]
func (h *supplierHandler) createSupplier(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	supplier, err := h.supplierService.CreateSupplier(c.Request.Context(), req, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to create supplier")
		return
	}
	getLogger(c).Info("Supplier created", slog.String("supplier_id", supplier.SupplierID))
	c.JSON(http.StatusCreated, supplier)
}

func (h *supplierHandler) getSupplier(c *gin.Context) {
	supplier, err := h.supplierService.GetSupplierByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve supplier")
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// updatePercentages godoc
// @Summary Change a supplier's commission percentages
// @Description Applies to settlements created afterwards; existing settlements keep their percentages.
// @Tags suppliers
// @Accept  json
// @Produce  json
// @Param   id path string true "Supplier ID"
// @Param   percentages body dto.UpdateSupplierPercentagesRequest true "New percentages"
// @Success 200 {object} domain.Supplier
// @Router /suppliers/{id}/percentages [put]
func (h *supplierHandler) updatePercentages(c *gin.Context) {
	var req dto.UpdateSupplierPercentagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	supplier, err := h.supplierService.UpdateSupplierPercentages(c.Request.Context(), c.Param("id"), req, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to update supplier percentages")
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// createItem godoc
// @Summary Take an item into consignment
// @Tags items
// @Accept  json
// @Produce  json
// @Param   item body dto.CreateItemRequest true "Item details"
// @Success 201 {object} domain.Item
// @Failure 404 {object} map[string]string "Supplier not found"
// @Router /items [post]
func (h *supplierHandler) createItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), req, operatorID(c))
	if err != nil {
		respondError(c, err, "Failed to create item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *supplierHandler) getItem(c *gin.Context) {
	item, err := h.itemService.GetItemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve item")
		return
	}
	c.JSON(http.StatusOK, item)
}
