package repositories

import (
	"context"

	"github.com/consignet/consignment_backend/internal/core/domain"
)

// CashRegisterReader defines read operations for till sessions
type CashRegisterReader interface {
	FindRegisterByID(ctx context.Context, registerID string) (*domain.CashRegister, error)

	// FindOpenRegisterByOperator returns apperrors.ErrNotFound when the operator has no open register.
	FindOpenRegisterByOperator(ctx context.Context, operator string) (*domain.CashRegister, error)
}

// CashRegisterWriter defines write operations for till sessions
type CashRegisterWriter interface {
	SaveRegister(ctx context.Context, register domain.CashRegister) error
	UpdateRegister(ctx context.Context, register domain.CashRegister) error
}

// CashRegisterTransactionSupport defines operations that only make sense inside a transaction.
type CashRegisterTransactionSupport interface {
	FindRegisterByIDForUpdate(ctx context.Context, registerID string) (*domain.CashRegister, error)
}

// CashRegisterRepositoryFacade combines all register-related repository interfaces
type CashRegisterRepositoryFacade interface {
	CashRegisterReader
	CashRegisterWriter
	CashRegisterTransactionSupport
}
