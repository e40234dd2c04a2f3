package handlers

import (
	"log/slog"
	"net/http"

	"github.com/consignet/consignment_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// getHealth reports that the server is up.
func getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getLogger returns the request logger set by the logging middleware.
func getLogger(c *gin.Context) *slog.Logger {
	return middleware.GetLoggerFromContext(c)
}

// operatorID returns the caller's operator ID. Routes that write are guarded by
// middleware.RequireOperator, so it is present there.
func operatorID(c *gin.Context) string {
	id, _ := middleware.GetOperatorIDFromContext(c)
	return id
}
