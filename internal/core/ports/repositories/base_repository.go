package repositories

import "context"

// Transactor runs units of work atomically.
type Transactor interface {
	// WithinTransaction runs fn with repositories bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise, so no
	// write made through txRepos survives a failed fn.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, txRepos RepositoryProvider) error) error
}
