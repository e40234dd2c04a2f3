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
	"github.com/consignet/consignment_backend/internal/utils/pagination"
	"github.com/google/uuid"
)

// settlementService turns sold items into settlements and pays them out into
// the store credit and cash ledgers.
type settlementService struct {
	BaseService
	repos portsrepo.RepositoryProvider
	tx    portsrepo.Transactor

	// creditValidityDays bounds the life of settlement-issued credit; 0 means no expiry.
	creditValidityDays int
}

// NewSettlementService creates a new settlement service.
func NewSettlementService(repos portsrepo.RepositoryProvider, tx portsrepo.Transactor, creditValidityDays int, options ...ServiceOption) portssvc.SettlementSvcFacade {
	return &settlementService{
		BaseService:        newBaseService(options...),
		repos:              repos,
		tx:                 tx,
		creditValidityDays: creditValidityDays,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

func validatePeriod(periodStart, periodEnd time.Time) error {
	if periodStart.IsZero() || periodEnd.IsZero() {
		return fmt.Errorf("%w: period start and end are required", apperrors.ErrValidation)
	}
	if domain.DateOnly(periodStart).After(domain.DateOnly(periodEnd)) {
		return fmt.Errorf("%w: period start %s is after period end %s", apperrors.ErrValidation,
			periodStart.Format(dto.DateLayout), periodEnd.Format(dto.DateLayout))
	}
	return nil
}

func (s *settlementService) CalculateSettlement(ctx context.Context, supplierID string, periodStart, periodEnd time.Time) (*domain.SettlementBreakdown, error) {
	if err := validatePeriod(periodStart, periodEnd); err != nil {
		return nil, err
	}
	supplier, err := s.repos.SupplierRepo.FindSupplierByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.ItemRepo.ListUnsettledSoldItems(ctx, supplierID, periodStart, periodEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unsettled items", slog.String("supplier_id", supplierID))
		return nil, err
	}
	breakdown := CalculateSettlementBreakdown(*supplier, periodStart, periodEnd, items)
	return &breakdown, nil
}

func (s *settlementService) CreateSettlement(ctx context.Context, supplierID string, periodStart, periodEnd time.Time, notes string, operatorID string) (*domain.Settlement, error) {
	if err := validatePeriod(periodStart, periodEnd); err != nil {
		return nil, err
	}

	var settlement domain.Settlement
	err := s.runLocked(ctx, []string{locker.SupplierKey(supplierID)}, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			supplier, err := txRepos.SupplierRepo.LockSupplierForUpdate(ctx, supplierID)
			if err != nil {
				return err
			}
			// Recomputed from the current item set, never from an earlier preview.
			items, err := txRepos.ItemRepo.ListUnsettledSoldItems(ctx, supplierID, periodStart, periodEnd)
			if err != nil {
				return err
			}
			breakdown := CalculateSettlementBreakdown(*supplier, periodStart, periodEnd, items)
			if breakdown.ItemCount() == 0 {
				return fmt.Errorf("%w: supplier %s, %s to %s", apperrors.ErrNoEligibleItems, supplierID,
					periodStart.Format(dto.DateLayout), periodEnd.Format(dto.DateLayout))
			}

			now := s.Now()
			settlement = domain.Settlement{
				SettlementID:             uuid.NewString(),
				SupplierID:               supplierID,
				PeriodStart:              breakdown.PeriodStart,
				PeriodEnd:                breakdown.PeriodEnd,
				ItemCount:                breakdown.ItemCount(),
				TotalSalesAmount:         breakdown.TotalSalesAmount,
				CreditPercentageInStore:  breakdown.CreditPercentageInStore,
				CashRedemptionPercentage: breakdown.CashRedemptionPercentage,
				StoreCreditAmount:        breakdown.StoreCreditAmount,
				CashRedemptionAmount:     breakdown.CashRedemptionAmount,
				NetAmountToSupplier:      breakdown.NetAmountToSupplier,
				StoreCommissionAmount:    breakdown.StoreCommissionAmount,
				Status:                   domain.SettlementPending,
				Notes:                    notes,
				AuditFields:              domain.NewAuditFields(operatorID, now),
			}
			if err := txRepos.SettlementRepo.SaveSettlement(ctx, settlement); err != nil {
				return err
			}
			return txRepos.ItemRepo.AttachItemsToSettlement(ctx, settlement.SettlementID, breakdown.ItemIDs)
		})
	})
	if err = s.finish(ctx, "settlement_create", err, slog.String("supplier_id", supplierID)); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Settlement created",
		slog.String("settlement_id", settlement.SettlementID),
		slog.String("supplier_id", supplierID),
		slog.Int("item_count", settlement.ItemCount),
		slog.String("total_sales", settlement.TotalSalesAmount.StringFixed(2)))
	return &settlement, nil
}

// ProcessSettlementPayment implements portssvc.SettlementWriterSvc. Credit
// issuance, cash payout and the status change share one transaction.
func (s *settlementService) ProcessSettlementPayment(ctx context.Context, settlementID string, operatorID string) (*domain.Settlement, error) {
	current, err := s.repos.SettlementRepo.FindSettlementByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	var settlement domain.Settlement
	keys := []string{locker.SupplierKey(current.SupplierID), locker.SettlementKey(settlementID)}
	err = s.runLocked(ctx, keys, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			found, err := txRepos.SettlementRepo.FindSettlementByID(ctx, settlementID)
			if err != nil {
				return err
			}
			settlement = *found
			if settlement.Status != domain.SettlementPending {
				return &apperrors.InvalidStateError{Entity: "settlement", ID: settlementID, Status: string(settlement.Status), Operation: "pay"}
			}
			if _, err := txRepos.SupplierRepo.LockSupplierForUpdate(ctx, settlement.SupplierID); err != nil {
				return err
			}

			now := s.Now()
			if settlement.StoreCreditAmount.IsPositive() {
				credit, err := issueCredit(ctx, txRepos, creditGrant{
					SupplierID:         settlement.SupplierID,
					Amount:             settlement.StoreCreditAmount,
					SourceSettlementID: &settlement.SettlementID,
					ExpiresOn:          s.creditExpiry(now),
					Notes:              "Settlement " + settlement.SettlementID,
				}, operatorID, now)
				if err != nil {
					return err
				}
				settlement.StoreCreditID = &credit.StoreCreditID
			}

			if settlement.CashRedemptionAmount.IsPositive() {
				if _, err := appendCashRow(ctx, txRepos, domain.SupplierCashBalanceTransaction{
					SupplierID:      settlement.SupplierID,
					Amount:          settlement.CashRedemptionAmount,
					TransactionType: domain.CashSettlementPayout,
					SettlementID:    &settlement.SettlementID,
					Notes:           "Settlement " + settlement.SettlementID,
				}, operatorID, now); err != nil {
					return err
				}
			}

			paidBy := operatorID
			settlement.Status = domain.SettlementPaid
			settlement.PaidOn = &now
			settlement.PaidBy = &paidBy
			settlement.Touch(operatorID, now)
			return txRepos.SettlementRepo.UpdateSettlementStatus(ctx, settlement)
		})
	})
	if err = s.finish(ctx, "settlement_pay", err, slog.String("settlement_id", settlementID)); err != nil {
		return nil, err
	}

	s.Metrics.AddAmount("settlement_store_credit", settlement.StoreCreditAmount)
	s.Metrics.AddAmount("settlement_cash_payout", settlement.CashRedemptionAmount)
	s.LogInfo(ctx, "Settlement paid",
		slog.String("settlement_id", settlementID),
		slog.String("store_credit", settlement.StoreCreditAmount.StringFixed(2)),
		slog.String("cash", settlement.CashRedemptionAmount.StringFixed(2)))
	return &settlement, nil
}

func (s *settlementService) creditExpiry(now time.Time) *time.Time {
	if s.creditValidityDays <= 0 {
		return nil
	}
	expiry := now.AddDate(0, 0, s.creditValidityDays)
	return &expiry
}

func (s *settlementService) CancelSettlement(ctx context.Context, settlementID string, operatorID string) (*domain.Settlement, error) {
	current, err := s.repos.SettlementRepo.FindSettlementByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	var settlement domain.Settlement
	keys := []string{locker.SupplierKey(current.SupplierID), locker.SettlementKey(settlementID)}
	err = s.runLocked(ctx, keys, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			found, err := txRepos.SettlementRepo.FindSettlementByID(ctx, settlementID)
			if err != nil {
				return err
			}
			settlement = *found
			// A paid settlement has moved money and cannot be undone here.
			if settlement.Status != domain.SettlementPending {
				return &apperrors.InvalidStateError{Entity: "settlement", ID: settlementID, Status: string(settlement.Status), Operation: "cancel"}
			}
			if err := txRepos.ItemRepo.DetachItemsFromSettlement(ctx, settlementID); err != nil {
				return err
			}
			settlement.Status = domain.SettlementCancelled
			settlement.Touch(operatorID, s.Now())
			return txRepos.SettlementRepo.UpdateSettlementStatus(ctx, settlement)
		})
	})
	if err = s.finish(ctx, "settlement_cancel", err, slog.String("settlement_id", settlementID)); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Settlement cancelled", slog.String("settlement_id", settlementID))
	return &settlement, nil
}

func (s *settlementService) GetSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	settlement, err := s.repos.SettlementRepo.FindSettlementByID(ctx, settlementID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find settlement", slog.String("settlement_id", settlementID))
		}
		return nil, err
	}
	return settlement, nil
}

func (s *settlementService) ListSettlements(ctx context.Context, supplierID string, params dto.ListSettlementsParams) (*dto.ListSettlementsResponse, error) {
	if _, err := s.repos.SupplierRepo.FindSupplierByID(ctx, supplierID); err != nil {
		return nil, err
	}
	settlements, nextToken, err := s.repos.SettlementRepo.ListSettlementsBySupplier(ctx, supplierID, pagination.ClampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list settlements", slog.String("supplier_id", supplierID))
		return nil, err
	}
	if settlements == nil {
		settlements = []domain.Settlement{}
	}
	return &dto.ListSettlementsResponse{Settlements: settlements, NextToken: nextToken}, nil
}

func (s *settlementService) GetSettlementItems(ctx context.Context, settlementID string) ([]domain.Item, error) {
	if _, err := s.repos.SettlementRepo.FindSettlementByID(ctx, settlementID); err != nil {
		return nil, err
	}
	items, err := s.repos.ItemRepo.ListItemsBySettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}
