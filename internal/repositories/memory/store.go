// Package memory keeps every repository in process memory. It backs the
// service when no database is configured and the service-level tests.
package memory

import (
	"context"
	"sync"

	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
)

// Store holds all aggregates. Transactions are serialized: while one runs,
// writes from outside it wait on txMu.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	suppliers   map[string]domain.Supplier
	items       map[string]domain.Item
	settlements map[string]domain.Settlement
	credits     map[string]domain.StoreCredit
	creditOrder map[string]int64 // Insertion order, breaks ties on issuedOn
	creditSeq   int64
	creditTxns  map[string][]domain.StoreCreditTransaction
	cashTxns    map[string][]domain.SupplierCashBalanceTransaction
	sales       map[string]domain.Sale
	registers   map[string]domain.CashRegister
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		suppliers:   make(map[string]domain.Supplier),
		items:       make(map[string]domain.Item),
		settlements: make(map[string]domain.Settlement),
		credits:     make(map[string]domain.StoreCredit),
		creditOrder: make(map[string]int64),
		creditTxns:  make(map[string][]domain.StoreCreditTransaction),
		cashTxns:    make(map[string][]domain.SupplierCashBalanceTransaction),
		sales:       make(map[string]domain.Sale),
		registers:   make(map[string]domain.CashRegister),
	}
}

var _ portsrepo.Transactor = (*Store)(nil)

// session binds repositories to the store, and inside a transaction to its undo log.
type session struct {
	store *Store
	undo  *[]func()
}

func (s *session) inTx() bool { return s.undo != nil }

// write applies fn under the store lock. Inside a transaction, fn receives a
// record callback to register how to revert its change.
func (s *session) write(fn func(record func(func()))) {
	if !s.inTx() {
		s.store.txMu.Lock()
		defer s.store.txMu.Unlock()
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	fn(func(undo func()) {
		if s.inTx() {
			*s.undo = append(*s.undo, undo)
		}
	})
}

// remember returns an undo func restoring m[k] to its current state.
func remember[K comparable, V any](m map[K]V, k K) func() {
	prev, existed := m[k]
	return func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	}
}

// Provider returns repositories that write straight to the store.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return s.provider(&session{store: s})
}

func (s *Store) provider(sess *session) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		SupplierRepo:     &supplierRepo{sess},
		ItemRepo:         &itemRepo{sess},
		SettlementRepo:   &settlementRepo{sess},
		StoreCreditRepo:  &storeCreditRepo{sess},
		CashBalanceRepo:  &cashBalanceRepo{sess},
		SaleRepo:         &saleRepo{sess},
		CashRegisterRepo: &cashRegisterRepo{sess},
	}
}

// WithinTransaction implements portsrepo.Transactor. Writes made through txRepos
// are reverted in reverse order when fn fails or panics.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	undo := make([]func(), 0, 8)
	sess := &session{store: s, undo: &undo}
	committed := false
	defer func() {
		if committed {
			return
		}
		s.mu.Lock()
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		s.mu.Unlock()
	}()

	if err = fn(ctx, s.provider(sess)); err != nil {
		return err
	}
	committed = true
	return nil
}
