package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/core/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/consignet/consignment_backend/internal/platform/config"
	"github.com/consignet/consignment_backend/internal/repositories/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const operator = "ana"

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

// fakeClock is a settable clock shared by every service of a fixture.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{
		DiscountReasonThresholdPercent: d("10"),
		DefaultCreditPercentage:        d("50"),
		DefaultCashPercentage:          d("40"),
	}
}

// ledgerSuite wires every service to one in-memory store.
type ledgerSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	repos portsrepo.RepositoryProvider
	clock *fakeClock
	svc   *portssvc.ServiceContainer
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.repos = s.store.Provider()
	s.clock = &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	s.svc = s.container(s.store)
}

func (s *ledgerSuite) container(tx portsrepo.Transactor) *portssvc.ServiceContainer {
	return services.NewServiceContainer(testConfig(), s.repos, tx, services.WithClock(s.clock.Now))
}

func (s *ledgerSuite) newSupplier(creditPct, cashPct string) domain.Supplier {
	supplier, err := s.svc.Supplier.CreateSupplier(s.ctx, dto.CreateSupplierRequest{
		Name:                     "Supplier " + uuid.NewString()[:8],
		CreditPercentageInStore:  ptr(d(creditPct)),
		CashRedemptionPercentage: ptr(d(cashPct)),
	}, operator)
	s.Require().NoError(err)
	return *supplier
}

func (s *ledgerSuite) newItem(supplierID, price string) domain.Item {
	item, err := s.svc.Item.CreateItem(s.ctx, dto.CreateItemRequest{
		SupplierID:     supplierID,
		Description:    "Item",
		EvaluatedPrice: d(price),
	}, operator)
	s.Require().NoError(err)
	return *item
}

// soldItem stores an item that was sold on saleDate outside any register.
func (s *ledgerSuite) soldItem(supplierID, price string, saleDate time.Time) domain.Item {
	item := domain.Item{
		ItemID:         uuid.NewString(),
		SupplierID:     supplierID,
		Description:    "Sold item",
		EvaluatedPrice: d(price),
		Status:         domain.ItemSold,
		SaleDate:       &saleDate,
		AuditFields:    domain.NewAuditFields(operator, saleDate),
	}
	s.Require().NoError(s.repos.ItemRepo.SaveItem(s.ctx, item))
	return item
}

func (s *ledgerSuite) issue(supplierID, amount string) domain.StoreCredit {
	credit, err := s.svc.StoreCredit.IssueStoreCredit(s.ctx, dto.IssueStoreCreditRequest{
		SupplierID: supplierID,
		Amount:     d(amount),
	}, operator)
	s.Require().NoError(err)
	return *credit
}

func (s *ledgerSuite) credit(id string) domain.StoreCredit {
	credit, err := s.svc.StoreCredit.GetStoreCredit(s.ctx, id)
	s.Require().NoError(err)
	return *credit
}

func (s *ledgerSuite) openRegister(opening string) domain.CashRegister {
	register, err := s.svc.CashRegister.OpenRegister(s.ctx, operator, d(opening), "")
	s.Require().NoError(err)
	return *register
}

func cash(amount string) dto.PaymentLineRequest {
	return dto.PaymentLineRequest{Method: domain.PaymentCash, Amount: d(amount)}
}

func card(amount string) dto.PaymentLineRequest {
	return dto.PaymentLineRequest{Method: domain.PaymentCard, Amount: d(amount)}
}

func storeCredit(supplierID, amount string) dto.PaymentLineRequest {
	return dto.PaymentLineRequest{Method: domain.PaymentStoreCredit, Amount: d(amount), SupplierID: ptr(supplierID)}
}

// faultyTransactor runs the store's transaction but lets a test swap repositories inside it.
type faultyTransactor struct {
	store *memory.Store
	wrap  func(portsrepo.RepositoryProvider) portsrepo.RepositoryProvider
}

func (f faultyTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error) error {
	return f.store.WithinTransaction(ctx, func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error {
		return fn(ctx, f.wrap(txRepos))
	})
}
