package services

import (
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	portssvc "github.com/consignet/consignment_backend/internal/core/ports/services"
	"github.com/consignet/consignment_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// Every service shares one locker so that ledger writes of the same supplier
// serialize across services.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, tx portsrepo.Transactor, options ...ServiceOption) *portssvc.ServiceContainer {
	shared := newBaseService(options...)
	options = append(options, WithLocker(shared.Locker))

	return &portssvc.ServiceContainer{
		Supplier:     NewSupplierService(repos, tx, cfg.DefaultCreditPercentage, cfg.DefaultCashPercentage, options...),
		Item:         NewItemService(repos, options...),
		Settlement:   NewSettlementService(repos, tx, cfg.StoreCreditValidityDays, options...),
		StoreCredit:  NewStoreCreditService(repos, tx, options...),
		CashBalance:  NewCashBalanceService(repos, tx, options...),
		Sale:         NewSaleService(repos, tx, cfg.DiscountReasonThresholdPercent, options...),
		CashRegister: NewCashRegisterService(repos, tx, options...),
	}
}
