package pgsql

import (
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider returns repositories that run each statement on the pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return newRepositoryProvider(dbPool)
}

func newRepositoryProvider(db DBTX) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		SupplierRepo:     newPgxSupplierRepository(db),
		ItemRepo:         newPgxItemRepository(db),
		SettlementRepo:   newPgxSettlementRepository(db),
		StoreCreditRepo:  newPgxStoreCreditRepository(db),
		CashBalanceRepo:  newPgxCashBalanceRepository(db),
		SaleRepo:         newPgxSaleRepository(db),
		CashRegisterRepo: newPgxCashRegisterRepository(db),
	}
}
