package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/consignet/consignment_backend/internal/platform/locker"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// saleService validates multi-tender sales and applies them atomically.
type saleService struct {
	BaseService
	repos portsrepo.RepositoryProvider
	tx    portsrepo.Transactor

	discountThresholdPct decimal.Decimal
}

// NewSaleService creates a new sale service. Discounts above discountThresholdPct
// percent of the subtotal need a reason.
func NewSaleService(repos portsrepo.RepositoryProvider, tx portsrepo.Transactor, discountThresholdPct decimal.Decimal, options ...ServiceOption) portssvc.SaleSvcFacade {
	return &saleService{
		BaseService:          newBaseService(options...),
		repos:                repos,
		tx:                   tx,
		discountThresholdPct: discountThresholdPct,
	}
}

var _ portssvc.SaleSvcFacade = (*saleService)(nil)

// validateSaleShape rejects malformed requests before anything is read.
func validateSaleShape(req dto.ProcessSaleRequest) error {
	if len(req.ItemIDs) == 0 {
		return fmt.Errorf("%w: a sale needs at least one item", apperrors.ErrValidation)
	}
	seen := make(map[string]struct{}, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: item %s listed twice", apperrors.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	if len(req.Payments) == 0 {
		return fmt.Errorf("%w: a sale needs at least one payment line", apperrors.ErrValidation)
	}
	for i, p := range req.Payments {
		if !isKnownMethod(p.Method) {
			return fmt.Errorf("%w: payment line %d has unknown method %q", apperrors.ErrValidation, i+1, p.Method)
		}
		if err := validatePositiveMoney(fmt.Sprintf("payment line %d amount", i+1), p.Amount); err != nil {
			return err
		}
	}
	if req.DiscountAmount.IsNegative() {
		return fmt.Errorf("%w: discount must not be negative", apperrors.ErrValidation)
	}
	return validateMoney("discount", req.DiscountAmount)
}

func isKnownMethod(m domain.PaymentMethod) bool {
	for _, known := range domain.PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ProcessSale implements portssvc.SaleSvcFacade. Validation runs in order:
// tender covers the total, store credit lines name a supplier with enough
// active credit, large discounts carry a reason. Nothing is written unless all pass.
func (s *saleService) ProcessSale(ctx context.Context, registerID string, req dto.ProcessSaleRequest, operatorID string) (*domain.Sale, error) {
	if err := validateSaleShape(req); err != nil {
		return nil, s.finish(ctx, "sale", err, slog.String("register_id", registerID))
	}

	keys := []string{locker.RegisterKey(registerID)}
	for _, p := range req.Payments {
		if p.Method == domain.PaymentStoreCredit && p.SupplierID != nil {
			keys = append(keys, locker.SupplierKey(*p.SupplierID))
		}
	}

	var sale *domain.Sale
	var drawn decimal.Decimal
	err := s.runLocked(ctx, keys, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
			var err error
			sale, drawn, err = s.applySale(ctx, txRepos, registerID, req, operatorID)
			return err
		})
	})
	if err = s.finish(ctx, "sale", err, slog.String("register_id", registerID)); err != nil {
		return nil, err
	}

	s.Metrics.AddAmount("sale", sale.Total)
	if drawn.IsPositive() {
		s.Metrics.AddAmount("store_credit_consume", drawn)
	}
	s.LogInfo(ctx, "Sale processed",
		slog.String("sale_id", sale.SaleID),
		slog.String("register_id", registerID),
		slog.Int("item_count", len(sale.Items)),
		slog.String("total", sale.Total.StringFixed(2)),
		slog.String("store_credit_drawn", drawn.StringFixed(2)),
		slog.String("change", sale.ChangeAmount.StringFixed(2)))
	return sale, nil
}

// applySale runs inside the sale's transaction. It returns the sale and the
// amount of store credit drawn.
func (s *saleService) applySale(ctx context.Context, txRepos portsrepo.RepositoryProvider, registerID string, req dto.ProcessSaleRequest, operatorID string) (*domain.Sale, decimal.Decimal, error) {
	register, err := txRepos.CashRegisterRepo.FindRegisterByIDForUpdate(ctx, registerID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if register.Status != domain.RegisterOpen {
		return nil, decimal.Zero, &apperrors.InvalidStateError{Entity: "register", ID: registerID, Status: string(register.Status), Operation: "sell on"}
	}

	found, err := txRepos.ItemRepo.FindItemsByIDs(ctx, req.ItemIDs)
	if err != nil {
		return nil, decimal.Zero, err
	}
	saleID := uuid.NewString()
	subtotal := decimal.Zero
	saleItems := make([]domain.SaleItem, 0, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		item, ok := found[id]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: item %s", apperrors.ErrNotFound, id)
		}
		if item.Status != domain.ItemToSell {
			return nil, decimal.Zero, &apperrors.InvalidStateError{Entity: "item", ID: id, Status: string(item.Status), Operation: "sell"}
		}
		subtotal = subtotal.Add(item.EvaluatedPrice)
		saleItems = append(saleItems, domain.SaleItem{SaleID: saleID, ItemID: id, SupplierID: item.SupplierID, Price: item.EvaluatedPrice})
	}

	// 1. Tender covers the total.
	totals, err := priceSale(subtotal, req.DiscountAmount, req.Payments)
	if err != nil {
		return nil, decimal.Zero, err
	}

	// 2. Store credit lines are backed by spendable credit.
	demand, suppliers, err := storeCreditDemand(req.Payments)
	if err != nil {
		return nil, decimal.Zero, err
	}
	now := s.Now()
	pools := make(map[string][]domain.StoreCredit, len(suppliers))
	for _, supplierID := range suppliers {
		if _, err := txRepos.SupplierRepo.LockSupplierForUpdate(ctx, supplierID); err != nil {
			return nil, decimal.Zero, err
		}
		credits, err := txRepos.StoreCreditRepo.ListStoreCreditsBySupplier(ctx, supplierID, true)
		if err != nil {
			return nil, decimal.Zero, err
		}
		pool, available := spendableCredits(credits, now)
		if demand[supplierID].GreaterThan(available) {
			return nil, decimal.Zero, &apperrors.InsufficientBalanceError{SupplierID: supplierID, Requested: demand[supplierID], Available: available}
		}
		pools[supplierID] = pool
	}

	// 3. Large discounts carry a reason.
	if err := checkDiscountReason(subtotal, req.DiscountAmount, req.DiscountReason, s.discountThresholdPct); err != nil {
		return nil, decimal.Zero, err
	}

	draws, err := planCreditDraws(req.Payments, pools)
	if err != nil {
		return nil, decimal.Zero, err
	}

	payments := make([]domain.SalePayment, len(req.Payments))
	grants := make([]map[string]struct{}, len(req.Payments))
	for _, d := range draws {
		if grants[d.PaymentIndex] == nil {
			grants[d.PaymentIndex] = make(map[string]struct{})
		}
		grants[d.PaymentIndex][pools[d.SupplierID][d.CreditIndex].StoreCreditID] = struct{}{}
	}
	for i, p := range req.Payments {
		payments[i] = domain.SalePayment{
			PaymentID:  uuid.NewString(),
			SaleID:     saleID,
			Method:     p.Method,
			Amount:     p.Amount,
			SupplierID: p.SupplierID,
		}
		if len(grants[i]) == 1 {
			for creditID := range grants[i] {
				id := creditID
				payments[i].StoreCreditID = &id
			}
		}
	}

	sale := &domain.Sale{
		SaleID:         saleID,
		RegisterID:     registerID,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		DiscountReason: req.DiscountReason,
		Total:          totals.Total,
		TotalPaid:      totals.Paid,
		ChangeAmount:   changeDue(totals, req.Payments),
		SaleDate:       now,
		Items:          saleItems,
		Payments:       payments,
		AuditFields:    domain.NewAuditFields(operatorID, now),
	}
	// The sale row goes first: credit rows and items reference it.
	if err := txRepos.SaleRepo.SaveSale(ctx, *sale); err != nil {
		return nil, decimal.Zero, err
	}

	drawn := decimal.Zero
	for _, d := range draws {
		credit := &pools[d.SupplierID][d.CreditIndex]
		row, err := usageRow(*credit, d.Amount, &saleID, now)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if err := appendCreditRow(ctx, txRepos, credit, row, operatorID, now); err != nil {
			return nil, decimal.Zero, err
		}
		drawn = drawn.Add(d.Amount)
	}

	if err := txRepos.ItemRepo.MarkItemsSold(ctx, req.ItemIDs, saleID, now); err != nil {
		return nil, decimal.Zero, err
	}
	return sale, drawn, nil
}

func (s *saleService) GetSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.repos.SaleRepo.FindSaleByID(ctx, saleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find sale", slog.String("sale_id", saleID))
		}
		return nil, err
	}
	return sale, nil
}
