package pgsql

import (
	"context"

	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxSupplierRepository struct {
	db DBTX
}

func newPgxSupplierRepository(db DBTX) portsrepo.SupplierRepositoryFacade {
	return &PgxSupplierRepository{db: db}
}

var _ portsrepo.SupplierRepositoryFacade = (*PgxSupplierRepository)(nil)

const supplierColumns = `supplier_id, name, email, credit_percentage_in_store, cash_redemption_percentage, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanSupplier(row pgx.Row) (domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(
		&s.SupplierID,
		&s.Name,
		&s.Email,
		&s.CreditPercentageInStore,
		&s.CashRedemptionPercentage,
		&s.IsActive,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	return s, err
}

// SaveSupplier inserts a new supplier.
func (r *PgxSupplierRepository) SaveSupplier(ctx context.Context, s domain.Supplier) error {
	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		s.SupplierID, s.Name, s.Email, s.CreditPercentageInStore, s.CashRedemptionPercentage, s.IsActive,
		s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy,
	)
	return mapWriteError(err, "supplier "+s.SupplierID)
}

// FindSupplierByID retrieves a supplier by its ID.
func (r *PgxSupplierRepository) FindSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE supplier_id = $1;`
	s, err := scanSupplier(r.db.QueryRow(ctx, query, supplierID))
	if err != nil {
		return nil, mapReadError(err, "supplier "+supplierID)
	}
	return &s, nil
}

// UpdateSupplier updates the mutable supplier fields.
func (r *PgxSupplierRepository) UpdateSupplier(ctx context.Context, s domain.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $2, email = $3, credit_percentage_in_store = $4, cash_redemption_percentage = $5,
		    is_active = $6, last_updated_at = $7, last_updated_by = $8
		WHERE supplier_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		s.SupplierID, s.Name, s.Email, s.CreditPercentageInStore, s.CashRedemptionPercentage,
		s.IsActive, s.LastUpdatedAt, s.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "supplier "+s.SupplierID)
	}
	if tag.RowsAffected() == 0 {
		return mapReadError(pgx.ErrNoRows, "supplier "+s.SupplierID)
	}
	return nil
}

// LockSupplierForUpdate row-locks the supplier until the surrounding transaction ends.
func (r *PgxSupplierRepository) LockSupplierForUpdate(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE supplier_id = $1 FOR UPDATE;`
	s, err := scanSupplier(r.db.QueryRow(ctx, query, supplierID))
	if err != nil {
		return nil, mapReadError(err, "supplier "+supplierID)
	}
	return &s, nil
}
