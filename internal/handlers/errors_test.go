package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: name is required", apperrors.ErrValidation), http.StatusBadRequest},
		{"missing supplier", apperrors.ErrMissingSupplier, http.StatusBadRequest},
		{"underfunded", &apperrors.UnderfundedError{}, http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: settlement s-1", apperrors.ErrNotFound), http.StatusNotFound},
		{"invalid state", &apperrors.InvalidStateError{Entity: "settlement", Status: "PAID", Operation: "pay"}, http.StatusConflict},
		{"duplicate", apperrors.ErrDuplicate, http.StatusConflict},
		{"conflict", apperrors.ErrConflict, http.StatusConflict},
		{"already open", &apperrors.RegisterAlreadyOpenError{Operator: "ana"}, http.StatusConflict},
		{"insufficient", &apperrors.InsufficientBalanceError{}, http.StatusUnprocessableEntity},
		{"negative", &apperrors.NegativeBalanceError{}, http.StatusUnprocessableEntity},
		{"no eligible items", apperrors.ErrNoEligibleItems, http.StatusUnprocessableEntity},
		{"app error with code", apperrors.NewAppError(http.StatusServiceUnavailable, "lock unavailable", nil), http.StatusServiceUnavailable},
		{"app error without code", apperrors.NewAppError(0, "boom", nil), http.StatusInternalServerError},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorStatus(tc.err))
		})
	}
}
