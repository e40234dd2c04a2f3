package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OperatorHeader names the staff member a request acts for.
const OperatorHeader = "X-Operator-ID"

// operatorIDKey is the key used to store the operator ID in the Gin context.
const operatorIDKey = contextKey("operatorID")

// OperatorIdentity copies the X-Operator-ID header into the context and the
// request logger. It does not authenticate; it only attributes ledger writes.
func OperatorIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := strings.TrimSpace(c.GetHeader(OperatorHeader))
		if operatorID != "" {
			c.Set(string(operatorIDKey), operatorID)
			c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), operatorIDKey, operatorID))
			setLogger(c, GetLoggerFromContext(c).With(slog.String("operator_id", operatorID)))
		}
		c.Next()
	}
}

// RequireOperator rejects requests that carry no operator ID.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetOperatorIDFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": OperatorHeader + " header is required"})
			return
		}
		c.Next()
	}
}

// GetOperatorIDFromContext retrieves the operator ID from the Gin context.
// It returns the operator ID and a boolean indicating if it was found.
func GetOperatorIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(operatorIDKey))
	if !exists {
		// check in the request context as well
		if v, ok := c.Request.Context().Value(operatorIDKey).(string); ok && v != "" {
			return v, true
		}
		return "", false
	}

	operatorID, ok := val.(string)
	return operatorID, ok && operatorID != ""
}
