package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent write touched the same ledger position.
var ErrConflict = errors.New("conflicting concurrent update")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// Ledger and point-of-sale failures.
var (
	ErrNoEligibleItems     = errors.New("no eligible items for settlement")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrMissingSupplier     = errors.New("supplier is required for store credit payments")
	ErrUnderfunded         = errors.New("payments do not cover the sale total")
	ErrRegisterAlreadyOpen = errors.New("operator already has an open register")
	ErrNegativeBalance     = errors.New("balance cannot become negative")
)

// AppError wraps an infrastructure failure with an HTTP-ish status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InsufficientBalanceError carries the balance that was available so callers can display it.
type InsufficientBalanceError struct {
	SupplierID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: requested %s, available %s", ErrInsufficientBalance, e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// UnderfundedError carries the amount still missing from the tender lines.
type UnderfundedError struct {
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *UnderfundedError) Error() string {
	return fmt.Sprintf("%s: total %s, paid %s, short %s", ErrUnderfunded, e.Total.StringFixed(2), e.Paid.StringFixed(2), e.Shortfall.StringFixed(2))
}

func (e *UnderfundedError) Unwrap() error {
	return ErrUnderfunded
}

// InvalidStateError describes an operation attempted on an entity in the wrong status.
type InvalidStateError struct {
	Entity    string
	ID        string
	Status    string
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: cannot %s %s %s in status %s", ErrInvalidState, e.Operation, e.Entity, e.ID, e.Status)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// NegativeBalanceError reports an adjustment that would take a balance below zero.
type NegativeBalanceError struct {
	Balance decimal.Decimal
	Delta   decimal.Decimal
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("%s: balance %s, delta %s", ErrNegativeBalance, e.Balance.StringFixed(2), e.Delta.StringFixed(2))
}

func (e *NegativeBalanceError) Unwrap() error {
	return ErrNegativeBalance
}

// RegisterAlreadyOpenError identifies the register the operator still has open.
type RegisterAlreadyOpenError struct {
	Operator   string
	RegisterID string
}

func (e *RegisterAlreadyOpenError) Error() string {
	return fmt.Sprintf("%s: operator %s, register %s", ErrRegisterAlreadyOpen, e.Operator, e.RegisterID)
}

func (e *RegisterAlreadyOpenError) Unwrap() error {
	return ErrRegisterAlreadyOpen
}
