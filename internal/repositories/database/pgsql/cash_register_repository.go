package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxCashRegisterRepository struct {
	db DBTX
}

func newPgxCashRegisterRepository(db DBTX) portsrepo.CashRegisterRepositoryFacade {
	return &PgxCashRegisterRepository{db: db}
}

var _ portsrepo.CashRegisterRepositoryFacade = (*PgxCashRegisterRepository)(nil)

const registerColumns = `register_id, operator, opening_amount, opened_at, status, closed_at, closing_amount,
	expected_amount, discrepancy, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanRegister(row pgx.Row) (domain.CashRegister, error) {
	var c domain.CashRegister
	err := row.Scan(
		&c.RegisterID,
		&c.Operator,
		&c.OpeningAmount,
		&c.OpenedAt,
		&c.Status,
		&c.ClosedAt,
		&c.ClosingAmount,
		&c.ExpectedAmount,
		&c.Discrepancy,
		&c.Notes,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	return c, err
}

// SaveRegister inserts an open register. The partial unique index on operator
// turns a second open register into apperrors.ErrDuplicate.
func (r *PgxCashRegisterRepository) SaveRegister(ctx context.Context, c domain.CashRegister) error {
	query := `INSERT INTO cash_registers (` + registerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`
	_, err := r.db.Exec(ctx, query,
		c.RegisterID, c.Operator, c.OpeningAmount, c.OpenedAt, c.Status, c.ClosedAt, c.ClosingAmount,
		c.ExpectedAmount, c.Discrepancy, c.Notes, c.CreatedAt, c.CreatedBy, c.LastUpdatedAt, c.LastUpdatedBy,
	)
	if err = mapWriteError(err, "register of operator "+c.Operator); errors.Is(err, apperrors.ErrConflict) {
		return fmt.Errorf("%w: operator %s already has an open register", apperrors.ErrDuplicate, c.Operator)
	}
	return err
}

// UpdateRegister persists the closing state of a register.
func (r *PgxCashRegisterRepository) UpdateRegister(ctx context.Context, c domain.CashRegister) error {
	query := `
		UPDATE cash_registers
		SET status = $2, closed_at = $3, closing_amount = $4, expected_amount = $5, discrepancy = $6, notes = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE register_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		c.RegisterID, c.Status, c.ClosedAt, c.ClosingAmount, c.ExpectedAmount, c.Discrepancy, c.Notes,
		c.LastUpdatedAt, c.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "register "+c.RegisterID)
	}
	if tag.RowsAffected() == 0 {
		return mapReadError(pgx.ErrNoRows, "register "+c.RegisterID)
	}
	return nil
}

func (r *PgxCashRegisterRepository) FindRegisterByID(ctx context.Context, registerID string) (*domain.CashRegister, error) {
	c, err := scanRegister(r.db.QueryRow(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE register_id = $1;`, registerID))
	if err != nil {
		return nil, mapReadError(err, "register "+registerID)
	}
	return &c, nil
}

func (r *PgxCashRegisterRepository) FindOpenRegisterByOperator(ctx context.Context, operator string) (*domain.CashRegister, error) {
	query := `SELECT ` + registerColumns + ` FROM cash_registers WHERE operator = $1 AND status = 'OPEN';`
	c, err := scanRegister(r.db.QueryRow(ctx, query, operator))
	if err != nil {
		return nil, mapReadError(err, "open register of operator "+operator)
	}
	return &c, nil
}

// FindRegisterByIDForUpdate locks the register row for the rest of the transaction.
func (r *PgxCashRegisterRepository) FindRegisterByIDForUpdate(ctx context.Context, registerID string) (*domain.CashRegister, error) {
	query := `SELECT ` + registerColumns + ` FROM cash_registers WHERE register_id = $1 FOR UPDATE;`
	c, err := scanRegister(r.db.QueryRow(ctx, query, registerID))
	if err != nil {
		return nil, mapReadError(err, "register "+registerID)
	}
	return &c, nil
}
