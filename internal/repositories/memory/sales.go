package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
)

type saleRepo struct{ *session }

var _ portsrepo.SaleRepositoryFacade = (*saleRepo)(nil)

func (r *saleRepo) SaveSale(_ context.Context, sale domain.Sale) error {
	var err error
	r.write(func(record func(func())) {
		if _, exists := r.store.sales[sale.SaleID]; exists {
			err = fmt.Errorf("%w: sale %s", apperrors.ErrDuplicate, sale.SaleID)
			return
		}
		record(remember(r.store.sales, sale.SaleID))
		r.store.sales[sale.SaleID] = cloneSale(sale)
	})
	return err
}

func (r *saleRepo) FindSaleByID(_ context.Context, saleID string) (*domain.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sale, ok := r.store.sales[saleID]
	if !ok {
		return nil, fmt.Errorf("%w: sale %s", apperrors.ErrNotFound, saleID)
	}
	out := cloneSale(sale)
	return &out, nil
}

func (r *saleRepo) ListSalesByRegister(_ context.Context, registerID string, since time.Time) ([]domain.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.Sale
	for _, sale := range r.store.sales {
		if sale.RegisterID == registerID && !sale.SaleDate.Before(since) {
			out = append(out, cloneSale(sale))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.Before(out[j].SaleDate)
		}
		return out[i].SaleID < out[j].SaleID
	})
	return out, nil
}

func cloneSale(s domain.Sale) domain.Sale {
	s.Items = append([]domain.SaleItem(nil), s.Items...)
	s.Payments = append([]domain.SalePayment(nil), s.Payments...)
	return s
}
