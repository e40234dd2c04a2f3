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
	"github.com/google/uuid"
)

// itemService takes items into consignment.
type itemService struct {
	BaseService
	repos portsrepo.RepositoryProvider
}

// NewItemService creates a new item service.
func NewItemService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.ItemSvcFacade {
	return &itemService{
		BaseService: newBaseService(options...),
		repos:       repos,
	}
}

var _ portssvc.ItemSvcFacade = (*itemService)(nil)

func (s *itemService) CreateItem(ctx context.Context, req dto.CreateItemRequest, operatorID string) (*domain.Item, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}
	if err := validatePositiveMoney("evaluatedPrice", req.EvaluatedPrice); err != nil {
		return nil, err
	}
	if _, err := s.repos.SupplierRepo.FindSupplierByID(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	item := domain.Item{
		ItemID:         uuid.NewString(),
		SupplierID:     req.SupplierID,
		Description:    description,
		EvaluatedPrice: req.EvaluatedPrice,
		Status:         domain.ItemToSell,
		AuditFields:    domain.NewAuditFields(operatorID, s.Now()),
	}
	if err := s.repos.ItemRepo.SaveItem(ctx, item); err != nil {
		s.LogError(ctx, err, "Failed to save item", slog.String("item_id", item.ItemID))
		return nil, err
	}

	s.LogInfo(ctx, "Item taken into consignment",
		slog.String("item_id", item.ItemID),
		slog.String("supplier_id", item.SupplierID))
	return &item, nil
}

func (s *itemService) GetItemByID(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := s.repos.ItemRepo.FindItemByID(ctx, itemID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find item", slog.String("item_id", itemID))
		}
		return nil, err
	}
	return item, nil
}
