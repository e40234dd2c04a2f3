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
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/consignet/consignment_backend/internal/platform/locker"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundredPercent = decimal.NewFromInt(100)

// supplierService manages consignors.
type supplierService struct {
	BaseService
	repos portsrepo.RepositoryProvider
	tx    portsrepo.Transactor

	defaultCreditPct decimal.Decimal
	defaultCashPct   decimal.Decimal
}

// NewSupplierService creates a new supplier service. Suppliers created without
// percentages get the defaults.
func NewSupplierService(repos portsrepo.RepositoryProvider, tx portsrepo.Transactor, defaultCreditPct, defaultCashPct decimal.Decimal, options ...ServiceOption) portssvc.SupplierSvcFacade {
	return &supplierService{
		BaseService:      newBaseService(options...),
		repos:            repos,
		tx:               tx,
		defaultCreditPct: defaultCreditPct,
		defaultCashPct:   defaultCashPct,
	}
}

var _ portssvc.SupplierSvcFacade = (*supplierService)(nil)

// validatePercentages checks each percentage is within [0, 100] and that
// together they leave the store a non-negative commission.
func validatePercentages(creditPct, cashPct decimal.Decimal) error {
	checks := []struct {
		name string
		pct  decimal.Decimal
	}{
		{"creditPercentageInStore", creditPct},
		{"cashRedemptionPercentage", cashPct},
	}
	for _, c := range checks {
		if c.pct.IsNegative() || c.pct.GreaterThan(hundredPercent) {
			return fmt.Errorf("%w: %s must be between 0 and 100", apperrors.ErrValidation, c.name)
		}
	}
	if creditPct.Add(cashPct).GreaterThan(hundredPercent) {
		return fmt.Errorf("%w: percentages add up to more than 100", apperrors.ErrValidation)
	}
	return nil
}

func (s *supplierService) CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest, operatorID string) (*domain.Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: supplier name is required", apperrors.ErrValidation)
	}
	creditPct, cashPct := s.defaultCreditPct, s.defaultCashPct
	if req.CreditPercentageInStore != nil {
		creditPct = *req.CreditPercentageInStore
	}
	if req.CashRedemptionPercentage != nil {
		cashPct = *req.CashRedemptionPercentage
	}
	if err := validatePercentages(creditPct, cashPct); err != nil {
		return nil, err
	}

	supplier := domain.Supplier{
		SupplierID:               uuid.NewString(),
		Name:                     name,
		Email:                    req.Email,
		CreditPercentageInStore:  creditPct,
		CashRedemptionPercentage: cashPct,
		IsActive:                 true,
		AuditFields:              domain.NewAuditFields(operatorID, s.Now()),
	}
	if err := s.repos.SupplierRepo.SaveSupplier(ctx, supplier); err != nil {
		s.LogError(ctx, err, "Failed to save supplier", slog.String("supplier_id", supplier.SupplierID))
		return nil, err
	}

	s.LogInfo(ctx, "Supplier created", slog.String("supplier_id", supplier.SupplierID))
	return &supplier, nil
}

func (s *supplierService) GetSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	supplier, err := s.repos.SupplierRepo.FindSupplierByID(ctx, supplierID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find supplier", slog.String("supplier_id", supplierID))
		}
		return nil, err
	}
	return supplier, nil
}

// UpdateSupplierPercentages implements portssvc.SupplierSvcFacade. Settlements
// already created keep the percentages they were created with.
func (s *supplierService) UpdateSupplierPercentages(ctx context.Context, supplierID string, req dto.UpdateSupplierPercentagesRequest, operatorID string) (*domain.Supplier, error) {
	if err := validatePercentages(req.CreditPercentageInStore, req.CashRedemptionPercentage); err != nil {
		return nil, err
	}

	var supplier domain.Supplier
	err := s.runLocked(ctx, []string{locker.SupplierKey(supplierID)}, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			found, err := txRepos.SupplierRepo.LockSupplierForUpdate(ctx, supplierID)
			if err != nil {
				return err
			}
			supplier = *found
			supplier.CreditPercentageInStore = req.CreditPercentageInStore
			supplier.CashRedemptionPercentage = req.CashRedemptionPercentage
			supplier.Touch(operatorID, s.Now())
			return txRepos.SupplierRepo.UpdateSupplier(ctx, supplier)
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update supplier percentages", slog.String("supplier_id", supplierID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Supplier percentages updated",
		slog.String("supplier_id", supplierID),
		slog.String("credit_pct", supplier.CreditPercentageInStore.String()),
		slog.String("cash_pct", supplier.CashRedemptionPercentage.String()))
	return &supplier, nil
}
