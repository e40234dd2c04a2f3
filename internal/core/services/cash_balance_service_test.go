package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CashBalanceServiceTestSuite struct {
	suite.Suite
	mockSupplierRepo *MockSupplierRepository
	mockCashRepo     *MockCashBalanceRepository
	service          portssvc.CashBalanceSvcFacade
	ctx              context.Context
	supplier         *domain.Supplier
}

func (s *CashBalanceServiceTestSuite) SetupTest() {
	s.mockSupplierRepo = new(MockSupplierRepository)
	s.mockCashRepo = new(MockCashBalanceRepository)
	repos := portsrepo.RepositoryProvider{
		SupplierRepo:    s.mockSupplierRepo,
		CashBalanceRepo: s.mockCashRepo,
	}
	s.service = services.NewCashBalanceService(repos, passthroughTransactor{repos: repos})
	s.ctx = context.Background()
	s.supplier = &domain.Supplier{SupplierID: "sup-1", Name: "Vintage Vera"}
}

func (s *CashBalanceServiceTestSuite) TestGetSupplierCashBalance() {
	s.mockSupplierRepo.On("FindSupplierByID", s.ctx, "sup-1").Return(s.supplier, nil).Once()
	s.mockCashRepo.On("GetCashLedgerHead", s.ctx, "sup-1").
		Return(domain.CashLedgerHead{Balance: d("150.00"), LastSequence: 3}, nil).Once()

	balance, err := s.service.GetSupplierCashBalance(s.ctx, "sup-1")

	s.Require().NoError(err)
	s.True(balance.Equal(d("150.00")))
	s.mockSupplierRepo.AssertExpectations(s.T())
	s.mockCashRepo.AssertExpectations(s.T())
}

func (s *CashBalanceServiceTestSuite) TestRedeemSupplierCash_Success() {
	s.mockSupplierRepo.On("LockSupplierForUpdate", s.ctx, "sup-1").Return(s.supplier, nil).Once()
	s.mockCashRepo.On("GetCashLedgerHead", s.ctx, "sup-1").
		Return(domain.CashLedgerHead{Balance: d("150.00"), LastSequence: 3}, nil).Twice()
	s.mockCashRepo.On("AppendCashTransaction", s.ctx, mock.MatchedBy(func(txn domain.SupplierCashBalanceTransaction) bool {
		return txn.SupplierID == "sup-1" &&
			txn.Sequence == 4 &&
			txn.Amount.Equal(d("-100.00")) &&
			txn.TransactionType == domain.CashRedemption &&
			txn.ProcessedBy == operator
	})).Return(nil).Once()

	row, err := s.service.RedeemSupplierCash(s.ctx, "sup-1", d("100.00"), "cash out", operator)

	s.Require().NoError(err)
	s.Equal(int64(4), row.Sequence)
	s.Equal("cash out", row.Notes)
	s.mockSupplierRepo.AssertExpectations(s.T())
	s.mockCashRepo.AssertExpectations(s.T())
}

func (s *CashBalanceServiceTestSuite) TestRedeemSupplierCash_Insufficient() {
	s.mockSupplierRepo.On("LockSupplierForUpdate", s.ctx, "sup-1").Return(s.supplier, nil).Once()
	s.mockCashRepo.On("GetCashLedgerHead", s.ctx, "sup-1").
		Return(domain.CashLedgerHead{Balance: d("150.00"), LastSequence: 1}, nil).Once()

	row, err := s.service.RedeemSupplierCash(s.ctx, "sup-1", d("200.00"), "", operator)

	s.Require().Error(err)
	s.Nil(row)
	var insufficient *apperrors.InsufficientBalanceError
	s.Require().True(errors.As(err, &insufficient))
	s.True(insufficient.Available.Equal(d("150.00")))
	s.True(insufficient.Requested.Equal(d("200.00")))
	s.mockCashRepo.AssertNotCalled(s.T(), "AppendCashTransaction", mock.Anything, mock.Anything)
}

func (s *CashBalanceServiceTestSuite) TestRedeemSupplierCash_InvalidAmount() {
	for _, amount := range []string{"0", "-5.00", "1.001"} {
		_, err := s.service.RedeemSupplierCash(s.ctx, "sup-1", d(amount), "", operator)
		s.ErrorIs(err, apperrors.ErrValidation, amount)
	}
	s.mockSupplierRepo.AssertNotCalled(s.T(), "LockSupplierForUpdate", mock.Anything, mock.Anything)
}

func (s *CashBalanceServiceTestSuite) TestRedeemSupplierCash_UnknownSupplier() {
	s.mockSupplierRepo.On("LockSupplierForUpdate", s.ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.RedeemSupplierCash(s.ctx, "ghost", d("1.00"), "", operator)

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.mockCashRepo.AssertNotCalled(s.T(), "GetCashLedgerHead", mock.Anything, mock.Anything)
}

func (s *CashBalanceServiceTestSuite) TestListSupplierCashTransactions_Empty() {
	s.mockSupplierRepo.On("FindSupplierByID", s.ctx, "sup-1").Return(s.supplier, nil).Once()
	s.mockCashRepo.On("ListCashTransactions", s.ctx, "sup-1").Return(nil, nil).Once()

	txns, err := s.service.ListSupplierCashTransactions(s.ctx, "sup-1")

	s.Require().NoError(err)
	s.NotNil(txns)
	s.Empty(txns)
}

func TestCashBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CashBalanceServiceTestSuite))
}
