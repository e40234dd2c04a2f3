package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/consignet/consignment_backend/internal/platform/locker"
	"github.com/shopspring/decimal"
)

// SweepOperator is recorded as processedBy on rows written by the expiry sweep.
const SweepOperator = "system:expiry-sweep"

// storeCreditService owns the store credit ledger.
type storeCreditService struct {
	BaseService
	repos portsrepo.RepositoryProvider
	tx    portsrepo.Transactor
}

// NewStoreCreditService creates a new store credit service.
func NewStoreCreditService(repos portsrepo.RepositoryProvider, tx portsrepo.Transactor, options ...ServiceOption) portssvc.StoreCreditSvcFacade {
	return &storeCreditService{
		BaseService: newBaseService(options...),
		repos:       repos,
		tx:          tx,
	}
}

var _ portssvc.StoreCreditSvcFacade = (*storeCreditService)(nil)

func validateMoney(field string, amount decimal.Decimal) error {
	if domain.HasMoreThanMoneyPlaces(amount) {
		return fmt.Errorf("%w: %s %s has more than %d decimal places", apperrors.ErrValidation, field, amount, domain.MoneyPlaces)
	}
	return nil
}

func validatePositiveMoney(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", apperrors.ErrValidation, field)
	}
	return validateMoney(field, amount)
}

func (s *storeCreditService) GetStoreCredit(ctx context.Context, storeCreditID string) (*domain.StoreCredit, error) {
	credit, err := s.repos.StoreCreditRepo.FindStoreCreditByID(ctx, storeCreditID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find store credit", slog.String("store_credit_id", storeCreditID))
		}
		return nil, err
	}
	return credit, nil
}

func (s *storeCreditService) ListStoreCredits(ctx context.Context, supplierID string, activeOnly bool) ([]domain.StoreCredit, error) {
	if _, err := s.repos.SupplierRepo.FindSupplierByID(ctx, supplierID); err != nil {
		return nil, err
	}
	credits, err := s.repos.StoreCreditRepo.ListStoreCreditsBySupplier(ctx, supplierID, activeOnly)
	if err != nil {
		return nil, err
	}
	if credits == nil {
		credits = []domain.StoreCredit{}
	}
	return credits, nil
}

func (s *storeCreditService) ListStoreCreditTransactions(ctx context.Context, storeCreditID string) ([]domain.StoreCreditTransaction, error) {
	if _, err := s.repos.StoreCreditRepo.FindStoreCreditByID(ctx, storeCreditID); err != nil {
		return nil, err
	}
	txns, err := s.repos.StoreCreditRepo.ListStoreCreditTransactions(ctx, storeCreditID)
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []domain.StoreCreditTransaction{}
	}
	return txns, nil
}

// TotalActiveBalance implements portssvc.StoreCreditReaderSvc. Credits past
// their expiry count as spent even before the sweep flips their status.
func (s *storeCreditService) TotalActiveBalance(ctx context.Context, supplierID string) (decimal.Decimal, error) {
	if _, err := s.repos.SupplierRepo.FindSupplierByID(ctx, supplierID); err != nil {
		return decimal.Zero, err
	}
	credits, err := s.repos.StoreCreditRepo.ListStoreCreditsBySupplier(ctx, supplierID, true)
	if err != nil {
		return decimal.Zero, err
	}
	_, total := spendableCredits(credits, s.Now())
	return total, nil
}

// spendableCredits keeps the credits a sale may draw on, in FIFO order, and sums them.
func spendableCredits(credits []domain.StoreCredit, now time.Time) ([]domain.StoreCredit, decimal.Decimal) {
	spendable := make([]domain.StoreCredit, 0, len(credits))
	total := decimal.Zero
	for _, c := range credits {
		if c.IsSpendable(now) {
			spendable = append(spendable, c)
			total = total.Add(c.CurrentBalance)
		}
	}
	return spendable, total
}

func (s *storeCreditService) VerifyStoreCredit(ctx context.Context, storeCreditID string) (*dto.VerifyStoreCreditResponse, error) {
	credit, err := s.repos.StoreCreditRepo.FindStoreCreditByID(ctx, storeCreditID)
	if err != nil {
		return nil, err
	}
	txns, err := s.repos.StoreCreditRepo.ListStoreCreditTransactions(ctx, storeCreditID)
	if err != nil {
		return nil, err
	}

	resp := &dto.VerifyStoreCreditResponse{
		StoreCreditID:    storeCreditID,
		RecordedBalance:  credit.CurrentBalance,
		TransactionCount: len(txns),
	}
	replayed, err := domain.ReplayStoreCredit(credit.OriginalAmount, txns)
	switch {
	case err != nil:
		resp.Problem = err.Error()
	case len(txns) == 0:
		resp.ReplayedBalance = replayed
		resp.Problem = "no issuance row"
	case !replayed.Equal(credit.CurrentBalance):
		resp.ReplayedBalance = replayed
		resp.Problem = fmt.Sprintf("recorded balance %s differs from replay %s", credit.CurrentBalance, replayed)
	case credit.Status == domain.StoreCreditUsed && !replayed.IsZero(),
		credit.Status == domain.StoreCreditActive && !replayed.IsPositive():
		resp.ReplayedBalance = replayed
		resp.Problem = fmt.Sprintf("status %s does not match balance %s", credit.Status, replayed)
	default:
		resp.ReplayedBalance = replayed
		resp.Consistent = true
	}
	if !resp.Consistent {
		s.GetLogger(ctx).Warn("Store credit ledger inconsistent",
			slog.String("store_credit_id", storeCreditID),
			slog.String("problem", resp.Problem))
	}
	return resp, nil
}

func (s *storeCreditService) IssueStoreCredit(ctx context.Context, req dto.IssueStoreCreditRequest, operatorID string) (*domain.StoreCredit, error) {
	if err := validatePositiveMoney("amount", req.Amount); err != nil {
		return nil, err
	}
	now := s.Now()
	if req.ExpiresOn != nil && !req.ExpiresOn.After(now) {
		return nil, fmt.Errorf("%w: expiresOn must be in the future", apperrors.ErrValidation)
	}

	var credit *domain.StoreCredit
	err := s.runLocked(ctx, []string{locker.SupplierKey(req.SupplierID)}, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			if _, err := txRepos.SupplierRepo.LockSupplierForUpdate(ctx, req.SupplierID); err != nil {
				return err
			}
			var err error
			credit, err = issueCredit(ctx, txRepos, creditGrant{
				SupplierID: req.SupplierID,
				Amount:     req.Amount,
				ExpiresOn:  req.ExpiresOn,
				Notes:      req.Notes,
			}, operatorID, now)
			return err
		})
	})
	if err = s.finish(ctx, "store_credit_issue", err, slog.String("supplier_id", req.SupplierID)); err != nil {
		return nil, err
	}

	s.Metrics.AddAmount("store_credit_issue", req.Amount)
	s.LogInfo(ctx, "Store credit issued",
		slog.String("store_credit_id", credit.StoreCreditID),
		slog.String("supplier_id", req.SupplierID),
		slog.String("amount", req.Amount.StringFixed(2)))
	return credit, nil
}

// mutate serializes a single-row change of one credit. next builds the row
// from the freshly read credit, or rejects the change.
func (s *storeCreditService) mutate(ctx context.Context, operation, storeCreditID, operatorID string, next func(credit domain.StoreCredit, now time.Time) (domain.StoreCreditTransaction, error)) (*domain.StoreCredit, error) {
	current, err := s.repos.StoreCreditRepo.FindStoreCreditByID(ctx, storeCreditID)
	if err != nil {
		return nil, err
	}

	var credit domain.StoreCredit
	var row domain.StoreCreditTransaction
	err = s.runLocked(ctx, []string{locker.SupplierKey(current.SupplierID)}, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			if _, err := txRepos.SupplierRepo.LockSupplierForUpdate(ctx, current.SupplierID); err != nil {
				return err
			}
			found, err := txRepos.StoreCreditRepo.FindStoreCreditByID(ctx, storeCreditID)
			if err != nil {
				return err
			}
			credit = *found
			now := s.Now()
			if row, err = next(credit, now); err != nil {
				return err
			}
			return appendCreditRow(ctx, txRepos, &credit, row, operatorID, now)
		})
	})
	if err = s.finish(ctx, operation, err, slog.String("store_credit_id", storeCreditID)); err != nil {
		return nil, err
	}

	s.Metrics.AddAmount(operation, row.Amount)
	s.LogInfo(ctx, "Store credit updated",
		slog.String("operation", operation),
		slog.String("store_credit_id", storeCreditID),
		slog.String("amount", row.Amount.StringFixed(2)),
		slog.String("balance", credit.CurrentBalance.StringFixed(2)),
		slog.String("status", string(credit.Status)))
	return &credit, nil
}

func requireActive(credit domain.StoreCredit, operation string) error {
	if credit.Status != domain.StoreCreditActive {
		return &apperrors.InvalidStateError{Entity: "store credit", ID: credit.StoreCreditID, Status: string(credit.Status), Operation: operation}
	}
	return nil
}

// AdjustStoreCredit implements portssvc.StoreCreditWriterSvc. The balance may
// neither go below zero nor above the original grant.
func (s *storeCreditService) AdjustStoreCredit(ctx context.Context, storeCreditID string, delta decimal.Decimal, reason string, operatorID string) (*domain.StoreCredit, error) {
	if delta.IsZero() {
		return nil, fmt.Errorf("%w: delta must not be zero", apperrors.ErrValidation)
	}
	if err := validateMoney("delta", delta); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "store_credit_adjust", storeCreditID, operatorID, func(credit domain.StoreCredit, _ time.Time) (domain.StoreCreditTransaction, error) {
		if err := requireActive(credit, "adjust"); err != nil {
			return domain.StoreCreditTransaction{}, err
		}
		row := credit.NextRow(domain.CreditAdjustment, delta)
		if row.BalanceAfter.IsNegative() {
			return row, &apperrors.NegativeBalanceError{Balance: credit.CurrentBalance, Delta: delta}
		}
		if row.BalanceAfter.GreaterThan(credit.OriginalAmount) {
			return row, fmt.Errorf("%w: balance %s would exceed original amount %s", apperrors.ErrValidation,
				row.BalanceAfter.StringFixed(2), credit.OriginalAmount.StringFixed(2))
		}
		row.Notes = reason
		return row, nil
	})
}

func (s *storeCreditService) ConsumeStoreCredit(ctx context.Context, storeCreditID string, amount decimal.Decimal, saleID *string, operatorID string) (*domain.StoreCredit, error) {
	if err := validatePositiveMoney("amount", amount); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "store_credit_consume", storeCreditID, operatorID, func(credit domain.StoreCredit, now time.Time) (domain.StoreCreditTransaction, error) {
		return usageRow(credit, amount, saleID, now)
	})
}

// usageRow builds the USAGE row drawing amount from credit.
func usageRow(credit domain.StoreCredit, amount decimal.Decimal, saleID *string, now time.Time) (domain.StoreCreditTransaction, error) {
	if credit.Status == domain.StoreCreditUsed || (credit.Status == domain.StoreCreditActive && !credit.IsPastExpiry(now)) {
		if amount.GreaterThan(credit.CurrentBalance) {
			return domain.StoreCreditTransaction{}, &apperrors.InsufficientBalanceError{
				SupplierID: credit.SupplierID,
				Requested:  amount,
				Available:  credit.CurrentBalance,
			}
		}
		row := credit.NextRow(domain.CreditUsage, amount.Neg())
		row.SaleID = saleID
		return row, nil
	}
	status := string(credit.Status)
	if credit.Status == domain.StoreCreditActive {
		status = "past expiry"
	}
	return domain.StoreCreditTransaction{}, &apperrors.InvalidStateError{Entity: "store credit", ID: credit.StoreCreditID, Status: status, Operation: "consume"}
}

func (s *storeCreditService) CancelStoreCredit(ctx context.Context, storeCreditID string, notes string, operatorID string) (*domain.StoreCredit, error) {
	return s.mutate(ctx, "store_credit_cancel", storeCreditID, operatorID, func(credit domain.StoreCredit, _ time.Time) (domain.StoreCreditTransaction, error) {
		return closingRow(credit, domain.CreditCancellation, "cancel", notes)
	})
}

func (s *storeCreditService) ExpireStoreCredit(ctx context.Context, storeCreditID string, notes string, operatorID string) (*domain.StoreCredit, error) {
	return s.mutate(ctx, "store_credit_expire", storeCreditID, operatorID, func(credit domain.StoreCredit, _ time.Time) (domain.StoreCreditTransaction, error) {
		return closingRow(credit, domain.CreditExpiration, "expire", notes)
	})
}

// closingRow zeroes the remaining balance of an active credit.
func closingRow(credit domain.StoreCredit, txnType domain.StoreCreditTransactionType, operation, notes string) (domain.StoreCreditTransaction, error) {
	if err := requireActive(credit, operation); err != nil {
		return domain.StoreCreditTransaction{}, err
	}
	row := credit.NextRow(txnType, credit.CurrentBalance.Neg())
	row.Notes = notes
	return row, nil
}

// ExpireDueStoreCredits implements portssvc.StoreCreditWriterSvc. A credit
// that changed state since it was listed is skipped; other failures are
// collected and the sweep carries on.
func (s *storeCreditService) ExpireDueStoreCredits(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repos.StoreCreditRepo.ListActiveStoreCreditsExpiringBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	var errs []error
	for _, credit := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		_, err := s.ExpireStoreCredit(ctx, credit.StoreCreditID, "Expired on "+credit.ExpiresOn.UTC().Format(dto.DateLayout), SweepOperator)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, apperrors.ErrInvalidState):
		default:
			errs = append(errs, fmt.Errorf("expire %s: %w", credit.StoreCreditID, err))
		}
	}
	if expired > 0 {
		s.LogInfo(ctx, "Expired store credits", slog.Int("count", expired))
	}
	return expired, errors.Join(errs...)
}
