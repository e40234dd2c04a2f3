package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

func TestWithinTransactionRollsBackEveryWrite(t *testing.T) {
	ctx := context.Background()
	store := New()
	repos := store.Provider()
	require.NoError(t, repos.SupplierRepo.SaveSupplier(ctx, domain.Supplier{SupplierID: "s-1", Name: "Ana"}))
	require.NoError(t, repos.ItemRepo.SaveItem(ctx, domain.Item{ItemID: "i-1", SupplierID: "s-1", Status: domain.ItemToSell}))

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(ctx context.Context, tx portsrepo.RepositoryProvider) error {
		require.NoError(t, tx.ItemRepo.MarkItemsSold(ctx, []string{"i-1"}, "sale-1", t0))
		require.NoError(t, tx.CashBalanceRepo.AppendCashTransaction(ctx, domain.SupplierCashBalanceTransaction{
			TransactionID: "c-1", SupplierID: "s-1", Sequence: 1, Amount: decimal.NewFromInt(40),
		}))
		require.NoError(t, tx.StoreCreditRepo.SaveStoreCredit(ctx, domain.StoreCredit{StoreCreditID: "sc-1", SupplierID: "s-1", OriginalAmount: decimal.NewFromInt(50)}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	item, err := repos.ItemRepo.FindItemByID(ctx, "i-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemToSell, item.Status)
	assert.Nil(t, item.SaleID)

	head, err := repos.CashBalanceRepo.GetCashLedgerHead(ctx, "s-1")
	require.NoError(t, err)
	assert.True(t, head.Balance.IsZero())
	assert.Equal(t, int64(0), head.LastSequence)

	_, err = repos.StoreCreditRepo.FindStoreCreditByID(ctx, "sc-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWithinTransactionCommits(t *testing.T) {
	ctx := context.Background()
	store := New()
	err := store.WithinTransaction(ctx, func(ctx context.Context, tx portsrepo.RepositoryProvider) error {
		return tx.SupplierRepo.SaveSupplier(ctx, domain.Supplier{SupplierID: "s-1"})
	})
	require.NoError(t, err)
	_, err = store.Provider().SupplierRepo.FindSupplierByID(ctx, "s-1")
	assert.NoError(t, err)
}

func TestStoreCreditLedgerDerivesBalanceAndRejectsSequenceReuse(t *testing.T) {
	ctx := context.Background()
	repo := New().Provider().StoreCreditRepo
	credit := domain.StoreCredit{StoreCreditID: "sc-1", SupplierID: "s-1", OriginalAmount: decimal.NewFromInt(100), Status: domain.StoreCreditActive, IssuedOn: t0}
	require.NoError(t, repo.SaveStoreCredit(ctx, credit))

	fresh, err := repo.FindStoreCreditByID(ctx, "sc-1")
	require.NoError(t, err)
	assert.True(t, fresh.CurrentBalance.Equal(decimal.NewFromInt(100)))

	require.NoError(t, repo.AppendStoreCreditTransaction(ctx, domain.StoreCreditTransaction{StoreCreditID: "sc-1", Sequence: 1, Amount: decimal.NewFromInt(100), BalanceAfter: decimal.NewFromInt(100), TransactionType: domain.CreditIssuance}))
	require.NoError(t, repo.AppendStoreCreditTransaction(ctx, domain.StoreCreditTransaction{StoreCreditID: "sc-1", Sequence: 2, Amount: decimal.NewFromInt(-30), BalanceAfter: decimal.NewFromInt(70), TransactionType: domain.CreditUsage}))

	err = repo.AppendStoreCreditTransaction(ctx, domain.StoreCreditTransaction{StoreCreditID: "sc-1", Sequence: 2, Amount: decimal.NewFromInt(-10), BalanceAfter: decimal.NewFromInt(90), TransactionType: domain.CreditUsage})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	got, err := repo.FindStoreCreditByID(ctx, "sc-1")
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, int64(2), got.LastSequence)
}

func TestListStoreCreditsOrderedByIssuance(t *testing.T) {
	ctx := context.Background()
	repo := New().Provider().StoreCreditRepo
	require.NoError(t, repo.SaveStoreCredit(ctx, domain.StoreCredit{StoreCreditID: "b", SupplierID: "s-1", Status: domain.StoreCreditActive, IssuedOn: t0}))
	require.NoError(t, repo.SaveStoreCredit(ctx, domain.StoreCredit{StoreCreditID: "c", SupplierID: "s-1", Status: domain.StoreCreditUsed, IssuedOn: t0.Add(-time.Hour)}))
	require.NoError(t, repo.SaveStoreCredit(ctx, domain.StoreCredit{StoreCreditID: "a", SupplierID: "s-1", Status: domain.StoreCreditActive, IssuedOn: t0}))
	require.NoError(t, repo.SaveStoreCredit(ctx, domain.StoreCredit{StoreCreditID: "z", SupplierID: "s-2", Status: domain.StoreCreditActive, IssuedOn: t0}))

	all, err := repo.ListStoreCreditsBySupplier(ctx, "s-1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, creditIDs(all))

	active, err := repo.ListStoreCreditsBySupplier(ctx, "s-1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, creditIDs(active))
}

func TestSameInstantCreditsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	ids := []string{"f3c1", "0a9e", "ffff", "7b21", "0000"}
	for run := 0; run < 20; run++ {
		repo := New().Provider().StoreCreditRepo
		for _, id := range ids {
			require.NoError(t, repo.SaveStoreCredit(ctx, domain.StoreCredit{StoreCreditID: id, SupplierID: "s-1", Status: domain.StoreCreditActive, IssuedOn: t0}))
		}
		got, err := repo.ListStoreCreditsBySupplier(ctx, "s-1", true)
		require.NoError(t, err)
		require.Equal(t, ids, creditIDs(got))
	}
}

func TestRolledBackCreditDoesNotDisturbOrder(t *testing.T) {
	ctx := context.Background()
	store := New()
	repo := store.Provider().StoreCreditRepo
	require.NoError(t, repo.SaveStoreCredit(ctx, domain.StoreCredit{StoreCreditID: "z-first", SupplierID: "s-1", Status: domain.StoreCreditActive, IssuedOn: t0}))

	err := store.WithinTransaction(ctx, func(txCtx context.Context, tx portsrepo.RepositoryProvider) error {
		require.NoError(t, tx.StoreCreditRepo.SaveStoreCredit(txCtx, domain.StoreCredit{StoreCreditID: "m-dropped", SupplierID: "s-1", Status: domain.StoreCreditActive, IssuedOn: t0}))
		return errors.New("abort")
	})
	require.Error(t, err)
	require.NoError(t, repo.SaveStoreCredit(ctx, domain.StoreCredit{StoreCreditID: "a-second", SupplierID: "s-1", Status: domain.StoreCreditActive, IssuedOn: t0}))

	got, err := repo.ListStoreCreditsBySupplier(ctx, "s-1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"z-first", "a-second"}, creditIDs(got))
}

func TestMarkItemsSoldIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := New().Provider().ItemRepo
	require.NoError(t, repo.SaveItem(ctx, domain.Item{ItemID: "i-1", Status: domain.ItemToSell}))
	require.NoError(t, repo.SaveItem(ctx, domain.Item{ItemID: "i-2", Status: domain.ItemReturned}))

	err := repo.MarkItemsSold(ctx, []string{"i-1", "i-2"}, "sale-1", t0)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	item, err := repo.FindItemByID(ctx, "i-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemToSell, item.Status)
}

func TestOneOpenRegisterPerOperator(t *testing.T) {
	ctx := context.Background()
	repo := New().Provider().CashRegisterRepo
	require.NoError(t, repo.SaveRegister(ctx, domain.CashRegister{RegisterID: "r-1", Operator: "ana", Status: domain.RegisterOpen}))

	err := repo.SaveRegister(ctx, domain.CashRegister{RegisterID: "r-2", Operator: "ana", Status: domain.RegisterOpen})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	open, err := repo.FindOpenRegisterByOperator(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "r-1", open.RegisterID)

	_, err = repo.FindOpenRegisterByOperator(ctx, "bob")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListSettlementsPaginates(t *testing.T) {
	ctx := context.Background()
	repo := New().Provider().SettlementRepo
	for i, id := range []string{"s1", "s2", "s3"} {
		s := domain.Settlement{SettlementID: id, SupplierID: "sup"}
		s.CreatedAt = t0.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.SaveSettlement(ctx, s))
	}

	page, next, err := repo.ListSettlementsBySupplier(ctx, "sup", 2, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "s3", page[0].SettlementID)
	assert.Equal(t, "s2", page[1].SettlementID)

	page, next, err = repo.ListSettlementsBySupplier(ctx, "sup", 2, next)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, page, 1)
	assert.Equal(t, "s1", page[0].SettlementID)
}

func creditIDs(credits []domain.StoreCredit) []string {
	ids := make([]string, len(credits))
	for i, c := range credits {
		ids[i] = c.StoreCreditID
	}
	return ids
}
