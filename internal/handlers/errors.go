package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// errorStatus maps a service error to its HTTP status.
func errorStatus(err error) int {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrMissingSupplier),
		errors.Is(err, apperrors.ErrUnderfunded):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrRegisterAlreadyOpen):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrNegativeBalance),
		errors.Is(err, apperrors.ErrNoEligibleItems):
		return http.StatusUnprocessableEntity
	case errors.As(err, &appErr) && appErr.Code >= 400:
		return appErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body for err. Server-side failures are logged
// and hidden behind fallback; business errors are returned as is, with the
// amounts the caller needs to show.
func respondError(c *gin.Context, err error, fallback string) {
	logger := getLogger(c)
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallback})
		return
	}

	logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	body := gin.H{"error": err.Error()}
	var insufficient *apperrors.InsufficientBalanceError
	var underfunded *apperrors.UnderfundedError
	var alreadyOpen *apperrors.RegisterAlreadyOpenError
	switch {
	case errors.As(err, &insufficient):
		body["available"] = insufficient.Available
		body["requested"] = insufficient.Requested
		if insufficient.SupplierID != "" {
			body["supplierID"] = insufficient.SupplierID
		}
	case errors.As(err, &underfunded):
		body["shortfall"] = underfunded.Shortfall
		body["total"] = underfunded.Total
		body["paid"] = underfunded.Paid
	case errors.As(err, &alreadyOpen):
		if alreadyOpen.RegisterID != "" {
			body["registerID"] = alreadyOpen.RegisterID
		}
	}
	c.JSON(status, body)
}

// bindError answers a request whose body or query failed to bind.
func bindError(c *gin.Context, err error) {
	getLogger(c).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}
