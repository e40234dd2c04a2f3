package memory

import (
	"context"
	"fmt"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
)

type cashRegisterRepo struct{ *session }

var _ portsrepo.CashRegisterRepositoryFacade = (*cashRegisterRepo)(nil)

func (r *cashRegisterRepo) SaveRegister(_ context.Context, register domain.CashRegister) error {
	var err error
	r.write(func(record func(func())) {
		if _, exists := r.store.registers[register.RegisterID]; exists {
			err = fmt.Errorf("%w: register %s", apperrors.ErrDuplicate, register.RegisterID)
			return
		}
		if register.Status == domain.RegisterOpen {
			for _, other := range r.store.registers {
				if other.Operator == register.Operator && other.Status == domain.RegisterOpen {
					err = fmt.Errorf("%w: operator %s already has open register %s", apperrors.ErrDuplicate, register.Operator, other.RegisterID)
					return
				}
			}
		}
		record(remember(r.store.registers, register.RegisterID))
		r.store.registers[register.RegisterID] = register
	})
	return err
}

func (r *cashRegisterRepo) UpdateRegister(_ context.Context, register domain.CashRegister) error {
	var err error
	r.write(func(record func(func())) {
		if _, exists := r.store.registers[register.RegisterID]; !exists {
			err = fmt.Errorf("%w: register %s", apperrors.ErrNotFound, register.RegisterID)
			return
		}
		record(remember(r.store.registers, register.RegisterID))
		r.store.registers[register.RegisterID] = register
	})
	return err
}

func (r *cashRegisterRepo) FindRegisterByID(_ context.Context, registerID string) (*domain.CashRegister, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	register, ok := r.store.registers[registerID]
	if !ok {
		return nil, fmt.Errorf("%w: register %s", apperrors.ErrNotFound, registerID)
	}
	return &register, nil
}

func (r *cashRegisterRepo) FindRegisterByIDForUpdate(ctx context.Context, registerID string) (*domain.CashRegister, error) {
	return r.FindRegisterByID(ctx, registerID)
}

func (r *cashRegisterRepo) FindOpenRegisterByOperator(_ context.Context, operator string) (*domain.CashRegister, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, register := range r.store.registers {
		if register.Operator == operator && register.Status == domain.RegisterOpen {
			return &register, nil
		}
	}
	return nil, fmt.Errorf("%w: no open register for operator %s", apperrors.ErrNotFound, operator)
}
