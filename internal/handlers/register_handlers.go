package handlers

import (
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// gatherer may be nil, in which case /metrics is not served.
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	gatherer prometheus.Gatherer,
) {
	r.GET("/health", getHealth)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, services *portssvc.ServiceContainer) {
	v1 := r.Group("/api/v1")
	writes := middleware.RequireOperator()

	RegisterSupplierRoutes(v1, writes, services.Supplier, services.Item)
	RegisterSettlementRoutes(v1, writes, services.Settlement)
	RegisterStoreCreditRoutes(v1, writes, services.StoreCredit)
	RegisterCashBalanceRoutes(v1, writes, services.CashBalance)
	RegisterPOSRoutes(v1, writes, services.CashRegister, services.Sale)
}
