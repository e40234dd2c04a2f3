package services_test

import (
	"context"
	"testing"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/core/services"
	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SupplierServiceTestSuite struct {
	suite.Suite
	mockSupplierRepo *MockSupplierRepository
	service          portssvc.SupplierSvcFacade
	ctx              context.Context
}

func (s *SupplierServiceTestSuite) SetupTest() {
	s.mockSupplierRepo = new(MockSupplierRepository)
	repos := portsrepo.RepositoryProvider{SupplierRepo: s.mockSupplierRepo}
	s.service = services.NewSupplierService(repos, passthroughTransactor{repos: repos}, d("50"), d("40"))
	s.ctx = context.Background()
}

func (s *SupplierServiceTestSuite) TestCreateSupplier_Defaults() {
	s.mockSupplierRepo.On("SaveSupplier", s.ctx, mock.AnythingOfType("domain.Supplier")).Return(nil).Once()

	supplier, err := s.service.CreateSupplier(s.ctx, dto.CreateSupplierRequest{Name: " Vintage Vera "}, operator)

	s.Require().NoError(err)
	s.Equal("Vintage Vera", supplier.Name)
	s.True(supplier.CreditPercentageInStore.Equal(d("50")))
	s.True(supplier.CashRedemptionPercentage.Equal(d("40")))
	s.True(supplier.IsActive)
	s.Equal(operator, supplier.CreatedBy)
	s.mockSupplierRepo.AssertExpectations(s.T())
}

func (s *SupplierServiceTestSuite) TestCreateSupplier_Validation() {
	cases := []dto.CreateSupplierRequest{
		{Name: ""},
		{Name: "A", CreditPercentageInStore: ptr(d("70")), CashRedemptionPercentage: ptr(d("40"))},
		{Name: "B", CreditPercentageInStore: ptr(d("-1"))},
		{Name: "C", CashRedemptionPercentage: ptr(d("100.5"))},
	}
	for _, req := range cases {
		_, err := s.service.CreateSupplier(s.ctx, req, operator)
		s.ErrorIs(err, apperrors.ErrValidation, req.Name)
	}
	s.mockSupplierRepo.AssertNotCalled(s.T(), "SaveSupplier", mock.Anything, mock.Anything)
}

func (s *SupplierServiceTestSuite) TestUpdateSupplierPercentages() {
	existing := &domain.Supplier{SupplierID: "sup-1", Name: "Vera", CreditPercentageInStore: d("50"), CashRedemptionPercentage: d("40")}
	s.mockSupplierRepo.On("LockSupplierForUpdate", s.ctx, "sup-1").Return(existing, nil).Once()
	s.mockSupplierRepo.On("UpdateSupplier", s.ctx, mock.MatchedBy(func(sup domain.Supplier) bool {
		return sup.CreditPercentageInStore.Equal(d("60")) && sup.CashRedemptionPercentage.Equal(d("40")) && sup.LastUpdatedBy == operator
	})).Return(nil).Once()

	updated, err := s.service.UpdateSupplierPercentages(s.ctx, "sup-1", dto.UpdateSupplierPercentagesRequest{
		CreditPercentageInStore:  d("60"),
		CashRedemptionPercentage: d("40"),
	}, operator)

	s.Require().NoError(err)
	s.True(updated.CreditPercentageInStore.Equal(d("60")))
	s.mockSupplierRepo.AssertExpectations(s.T())
}

func (s *SupplierServiceTestSuite) TestUpdateSupplierPercentages_NotFound() {
	s.mockSupplierRepo.On("LockSupplierForUpdate", s.ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.UpdateSupplierPercentages(s.ctx, "ghost", dto.UpdateSupplierPercentagesRequest{
		CreditPercentageInStore:  d("10"),
		CashRedemptionPercentage: d("10"),
	}, operator)

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.mockSupplierRepo.AssertNotCalled(s.T(), "UpdateSupplier", mock.Anything, mock.Anything)
}

func TestSupplierServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SupplierServiceTestSuite))
}
