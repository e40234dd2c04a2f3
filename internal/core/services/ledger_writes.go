package services

import (
	"context"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The helpers below write ledger rows through whatever repositories they are
// given. Callers hold the supplier lock and run them inside one transaction.

// creditGrant describes a store credit about to be issued.
type creditGrant struct {
	SupplierID         string
	Amount             decimal.Decimal
	SourceSettlementID *string
	ExpiresOn          *time.Time
	Notes              string
}

// issueCredit saves a new grant and posts its ISSUANCE row as sequence 1.
func issueCredit(ctx context.Context, repos portsrepo.RepositoryProvider, grant creditGrant, operatorID string, now time.Time) (*domain.StoreCredit, error) {
	credit := domain.StoreCredit{
		StoreCreditID:      uuid.NewString(),
		SupplierID:         grant.SupplierID,
		SourceSettlementID: grant.SourceSettlementID,
		OriginalAmount:     grant.Amount,
		CurrentBalance:     decimal.Zero,
		IssuedOn:           now,
		ExpiresOn:          grant.ExpiresOn,
		Status:             domain.StoreCreditActive,
		Notes:              grant.Notes,
		AuditFields:        domain.NewAuditFields(operatorID, now),
	}
	if err := repos.StoreCreditRepo.SaveStoreCredit(ctx, credit); err != nil {
		return nil, err
	}

	row := credit.NextRow(domain.CreditIssuance, grant.Amount)
	row.Notes = grant.Notes
	if err := appendCreditRow(ctx, repos, &credit, row, operatorID, now); err != nil {
		return nil, err
	}
	return &credit, nil
}

// appendCreditRow posts row and moves credit to the resulting state, persisting
// a status change when there is one.
func appendCreditRow(ctx context.Context, repos portsrepo.RepositoryProvider, credit *domain.StoreCredit, row domain.StoreCreditTransaction, operatorID string, now time.Time) error {
	row.TransactionID = uuid.NewString()
	row.TransactionDate = now
	row.ProcessedBy = operatorID
	if err := repos.StoreCreditRepo.AppendStoreCreditTransaction(ctx, row); err != nil {
		return err
	}

	previous := credit.Status
	credit.Apply(row)
	credit.Touch(operatorID, now)
	if credit.Status != previous {
		return repos.StoreCreditRepo.UpdateStoreCreditStatus(ctx, credit.StoreCreditID, credit.Status, operatorID, now)
	}
	return nil
}

// appendCashRow posts row as the next entry of the supplier's cash ledger.
func appendCashRow(ctx context.Context, repos portsrepo.RepositoryProvider, row domain.SupplierCashBalanceTransaction, operatorID string, now time.Time) (*domain.SupplierCashBalanceTransaction, error) {
	head, err := repos.CashBalanceRepo.GetCashLedgerHead(ctx, row.SupplierID)
	if err != nil {
		return nil, err
	}
	row.TransactionID = uuid.NewString()
	row.Sequence = head.LastSequence + 1
	row.TransactionDate = now
	row.ProcessedBy = operatorID
	if err := repos.CashBalanceRepo.AppendCashTransaction(ctx, row); err != nil {
		return nil, err
	}
	return &row, nil
}
