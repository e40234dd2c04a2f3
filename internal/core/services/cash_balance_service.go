package services

import (
	"context"
	"log/slog"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/platform/locker"
	"github.com/shopspring/decimal"
)

// cashBalanceService owns the supplier's redeemable cash ledger. Settlement
// payouts credit it; redemptions are the only debits.
type cashBalanceService struct {
	BaseService
	repos portsrepo.RepositoryProvider
	tx    portsrepo.Transactor
}

// NewCashBalanceService creates a new cash balance service.
func NewCashBalanceService(repos portsrepo.RepositoryProvider, tx portsrepo.Transactor, options ...ServiceOption) portssvc.CashBalanceSvcFacade {
	return &cashBalanceService{
		BaseService: newBaseService(options...),
		repos:       repos,
		tx:          tx,
	}
}

var _ portssvc.CashBalanceSvcFacade = (*cashBalanceService)(nil)

func (s *cashBalanceService) GetSupplierCashBalance(ctx context.Context, supplierID string) (decimal.Decimal, error) {
	if _, err := s.repos.SupplierRepo.FindSupplierByID(ctx, supplierID); err != nil {
		return decimal.Zero, err
	}
	head, err := s.repos.CashBalanceRepo.GetCashLedgerHead(ctx, supplierID)
	if err != nil {
		s.LogError(ctx, err, "Failed to derive cash balance", slog.String("supplier_id", supplierID))
		return decimal.Zero, err
	}
	return head.Balance, nil
}

func (s *cashBalanceService) ListSupplierCashTransactions(ctx context.Context, supplierID string) ([]domain.SupplierCashBalanceTransaction, error) {
	if _, err := s.repos.SupplierRepo.FindSupplierByID(ctx, supplierID); err != nil {
		return nil, err
	}
	txns, err := s.repos.CashBalanceRepo.ListCashTransactions(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []domain.SupplierCashBalanceTransaction{}
	}
	return txns, nil
}

func (s *cashBalanceService) RedeemSupplierCash(ctx context.Context, supplierID string, amount decimal.Decimal, notes string, operatorID string) (*domain.SupplierCashBalanceTransaction, error) {
	if err := validatePositiveMoney("amount", amount); err != nil {
		return nil, err
	}

	var row *domain.SupplierCashBalanceTransaction
	err := s.runLocked(ctx, []string{locker.SupplierKey(supplierID)}, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			if _, err := txRepos.SupplierRepo.LockSupplierForUpdate(ctx, supplierID); err != nil {
				return err
			}
			head, err := txRepos.CashBalanceRepo.GetCashLedgerHead(ctx, supplierID)
			if err != nil {
				return err
			}
			if amount.GreaterThan(head.Balance) {
				return &apperrors.InsufficientBalanceError{SupplierID: supplierID, Requested: amount, Available: head.Balance}
			}
			row, err = appendCashRow(ctx, txRepos, domain.SupplierCashBalanceTransaction{
				SupplierID:      supplierID,
				Amount:          amount.Neg(),
				TransactionType: domain.CashRedemption,
				Notes:           notes,
			}, operatorID, s.Now())
			return err
		})
	})
	if err = s.finish(ctx, "cash_redeem", err, slog.String("supplier_id", supplierID)); err != nil {
		return nil, err
	}

	s.Metrics.AddAmount("cash_redeem", amount)
	s.LogInfo(ctx, "Supplier cash redeemed",
		slog.String("supplier_id", supplierID),
		slog.String("transaction_id", row.TransactionID),
		slog.String("amount", amount.StringFixed(2)))
	return row, nil
}
