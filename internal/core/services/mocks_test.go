package services_test

import (
	"context"

	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// MockSupplierRepository is a mock implementation of portsrepo.SupplierRepositoryFacade
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) SaveSupplier(ctx context.Context, supplier domain.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) UpdateSupplier(ctx context.Context, supplier domain.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) LockSupplierForUpdate(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Supplier), args.Error(1)
}

// MockCashBalanceRepository is a mock implementation of portsrepo.CashBalanceRepositoryFacade
type MockCashBalanceRepository struct {
	mock.Mock
}

func (m *MockCashBalanceRepository) GetCashLedgerHead(ctx context.Context, supplierID string) (domain.CashLedgerHead, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).(domain.CashLedgerHead), args.Error(1)
}

func (m *MockCashBalanceRepository) AppendCashTransaction(ctx context.Context, txn domain.SupplierCashBalanceTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockCashBalanceRepository) ListCashTransactions(ctx context.Context, supplierID string) ([]domain.SupplierCashBalanceTransaction, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SupplierCashBalanceTransaction), args.Error(1)
}

// passthroughTransactor runs fn directly against the mocked repositories.
type passthroughTransactor struct {
	repos portsrepo.RepositoryProvider
}

func (p passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error) error {
	return fn(ctx, p.repos)
}
