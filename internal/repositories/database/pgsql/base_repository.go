package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/consignet/consignment_backend/internal/apperrors"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so one
// repository implementation serves both pooled and transactional access.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// Transactor runs units of work inside a single pgx transaction.
type Transactor struct {
	BaseRepository
}

// NewTransactor creates a Transactor on top of pool.
func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.Transactor = (*Transactor)(nil)

// WithinTransaction implements portsrepo.Transactor.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, txRepos portsrepo.RepositoryProvider) error) error {
	tx, err := t.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if transaction is committed successfully
	defer t.Rollback(ctx, tx)

	if err := fn(ctx, newRepositoryProvider(tx)); err != nil {
		return err
	}
	return t.Commit(ctx, tx)
}

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// mapWriteError turns constraint violations into application errors.
// Unique violations on ledger sequences mean another writer got there first.
func mapWriteError(err error, what string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName != "" && pgErr.ConstraintName != pgErr.TableName+"_pkey" {
				return fmt.Errorf("%w: %s (%s)", apperrors.ErrConflict, what, pgErr.ConstraintName)
			}
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, what)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s violates %s", apperrors.ErrValidation, what, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("failed to write %s: %w", what, err)
}

// mapReadError turns pgx.ErrNoRows into apperrors.ErrNotFound.
func mapReadError(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}
