package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/platform/locker"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cashRegisterService opens and reconciles till sessions. It reads the sale
// stream but never writes to the ledgers.
type cashRegisterService struct {
	BaseService
	repos portsrepo.RepositoryProvider
	tx    portsrepo.Transactor
}

// NewCashRegisterService creates a new register service.
func NewCashRegisterService(repos portsrepo.RepositoryProvider, tx portsrepo.Transactor, options ...ServiceOption) portssvc.CashRegisterSvcFacade {
	return &cashRegisterService{
		BaseService: newBaseService(options...),
		repos:       repos,
		tx:          tx,
	}
}

var _ portssvc.CashRegisterSvcFacade = (*cashRegisterService)(nil)

func (s *cashRegisterService) OpenRegister(ctx context.Context, operator string, openingAmount decimal.Decimal, notes string) (*domain.CashRegister, error) {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return nil, fmt.Errorf("%w: operator is required", apperrors.ErrValidation)
	}
	if openingAmount.IsNegative() {
		return nil, fmt.Errorf("%w: opening amount must not be negative", apperrors.ErrValidation)
	}
	if err := validateMoney("opening amount", openingAmount); err != nil {
		return nil, err
	}

	var register domain.CashRegister
	err := s.runLocked(ctx, []string{locker.OperatorKey(operator)}, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			open, err := txRepos.CashRegisterRepo.FindOpenRegisterByOperator(ctx, operator)
			switch {
			case err == nil:
				return &apperrors.RegisterAlreadyOpenError{Operator: operator, RegisterID: open.RegisterID}
			case !errors.Is(err, apperrors.ErrNotFound):
				return err
			}

			now := s.Now()
			register = domain.CashRegister{
				RegisterID:    uuid.NewString(),
				Operator:      operator,
				OpeningAmount: openingAmount,
				OpenedAt:      now,
				Status:        domain.RegisterOpen,
				Notes:         notes,
				AuditFields:   domain.NewAuditFields(operator, now),
			}
			err = txRepos.CashRegisterRepo.SaveRegister(ctx, register)
			if errors.Is(err, apperrors.ErrDuplicate) {
				// Another instance opened one between our read and write.
				return &apperrors.RegisterAlreadyOpenError{Operator: operator}
			}
			return err
		})
	})
	if err = s.finish(ctx, "register_open", err, slog.String("operator", operator)); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Register opened",
		slog.String("register_id", register.RegisterID),
		slog.String("operator", operator),
		slog.String("opening_amount", openingAmount.StringFixed(2)))
	return &register, nil
}

func (s *cashRegisterService) CloseRegister(ctx context.Context, registerID string, countedCash decimal.Decimal, notes string, operatorID string) (*domain.RegisterReconciliation, error) {
	if countedCash.IsNegative() {
		return nil, fmt.Errorf("%w: counted cash must not be negative", apperrors.ErrValidation)
	}
	if err := validateMoney("counted cash", countedCash); err != nil {
		return nil, err
	}

	var rec domain.RegisterReconciliation
	err := s.runLocked(ctx, []string{locker.RegisterKey(registerID)}, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			register, err := txRepos.CashRegisterRepo.FindRegisterByIDForUpdate(ctx, registerID)
			if err != nil {
				return err
			}
			if register.Status != domain.RegisterOpen {
				return &apperrors.InvalidStateError{Entity: "register", ID: registerID, Status: string(register.Status), Operation: "close"}
			}
			sales, err := txRepos.SaleRepo.ListSalesByRegister(ctx, registerID, register.OpenedAt)
			if err != nil {
				return err
			}

			rec = ReconcileRegister(*register, sales, countedCash)
			now := s.Now()
			closed := rec.Register
			closed.Status = domain.RegisterClosed
			closed.ClosedAt = &now
			closed.ClosingAmount = &rec.CountedAmount
			closed.ExpectedAmount = &rec.ExpectedAmount
			closed.Discrepancy = &rec.Discrepancy
			if notes != "" {
				closed.Notes = strings.TrimSpace(closed.Notes + "\n" + notes)
			}
			closed.Touch(operatorID, now)
			rec.Register = closed
			return txRepos.CashRegisterRepo.UpdateRegister(ctx, closed)
		})
	})
	if err = s.finish(ctx, "register_close", err, slog.String("register_id", registerID)); err != nil {
		return nil, err
	}

	logArgs := []any{
		slog.String("register_id", registerID),
		slog.String("expected", rec.ExpectedAmount.StringFixed(2)),
		slog.String("counted", rec.CountedAmount.StringFixed(2)),
		slog.String("discrepancy", rec.Discrepancy.StringFixed(2)),
		slog.Int("sale_count", rec.SaleCount),
	}
	if rec.Discrepancy.IsZero() {
		s.LogInfo(ctx, "Register closed", logArgs...)
	} else {
		s.GetLogger(ctx).Warn("Register closed with discrepancy", logArgs...)
	}
	return &rec, nil
}

func (s *cashRegisterService) GetRegister(ctx context.Context, registerID string) (*domain.CashRegister, error) {
	return s.repos.CashRegisterRepo.FindRegisterByID(ctx, registerID)
}

func (s *cashRegisterService) GetOpenRegister(ctx context.Context, operator string) (*domain.CashRegister, error) {
	return s.repos.CashRegisterRepo.FindOpenRegisterByOperator(ctx, operator)
}
