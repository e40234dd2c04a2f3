package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxSaleRepository struct {
	db DBTX
}

func newPgxSaleRepository(db DBTX) portsrepo.SaleRepositoryFacade {
	return &PgxSaleRepository{db: db}
}

var _ portsrepo.SaleRepositoryFacade = (*PgxSaleRepository)(nil)

const saleColumns = `sale_id, register_id, subtotal, discount_amount, discount_reason, total, total_paid, change_amount,
	sale_date, created_at, created_by, last_updated_at, last_updated_by`

func scanSale(row pgx.Row) (domain.Sale, error) {
	var s domain.Sale
	err := row.Scan(
		&s.SaleID,
		&s.RegisterID,
		&s.Subtotal,
		&s.DiscountAmount,
		&s.DiscountReason,
		&s.Total,
		&s.TotalPaid,
		&s.ChangeAmount,
		&s.SaleDate,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	return s, err
}

// SaveSale inserts the sale header, its item lines and its tender lines in order.
func (r *PgxSaleRepository) SaveSale(ctx context.Context, s domain.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`
	_, err := r.db.Exec(ctx, query,
		s.SaleID, s.RegisterID, s.Subtotal, s.DiscountAmount, s.DiscountReason, s.Total, s.TotalPaid, s.ChangeAmount,
		s.SaleDate, s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "sale "+s.SaleID)
	}

	itemQuery := `INSERT INTO sale_items (sale_id, item_id, supplier_id, price) VALUES ($1, $2, $3, $4);`
	for _, item := range s.Items {
		if _, err := r.db.Exec(ctx, itemQuery, s.SaleID, item.ItemID, item.SupplierID, item.Price); err != nil {
			return mapWriteError(err, fmt.Sprintf("sale %s item %s", s.SaleID, item.ItemID))
		}
	}

	paymentQuery := `
		INSERT INTO sale_payments (payment_id, sale_id, position, method, amount, supplier_id, store_credit_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for i, p := range s.Payments {
		if _, err := r.db.Exec(ctx, paymentQuery, p.PaymentID, s.SaleID, i+1, p.Method, p.Amount, p.SupplierID, p.StoreCreditID); err != nil {
			return mapWriteError(err, fmt.Sprintf("sale %s payment %d", s.SaleID, i+1))
		}
	}
	return nil
}

// FindSaleByID retrieves a sale with its items and payments.
func (r *PgxSaleRepository) FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	s, err := scanSale(r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE sale_id = $1;`, saleID))
	if err != nil {
		return nil, mapReadError(err, "sale "+saleID)
	}
	if s.Items, err = r.loadItems(ctx, saleID); err != nil {
		return nil, err
	}
	payments, err := r.loadPayments(ctx, []string{saleID})
	if err != nil {
		return nil, err
	}
	s.Payments = payments[saleID]
	return &s, nil
}

// ListSalesByRegister returns the register's sales since the given instant, oldest first.
func (r *PgxSaleRepository) ListSalesByRegister(ctx context.Context, registerID string, since time.Time) ([]domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE register_id = $1 AND sale_date >= $2 ORDER BY sale_date, sale_id;`
	rows, err := r.db.Query(ctx, query, registerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	var sales []domain.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		sales = append(sales, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]string, len(sales))
	for i, s := range sales {
		ids[i] = s.SaleID
	}
	payments, err := r.loadPayments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Payments = payments[sales[i].SaleID]
	}
	return sales, nil
}

func (r *PgxSaleRepository) loadItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := r.db.Query(ctx, `SELECT sale_id, item_id, supplier_id, price FROM sale_items WHERE sale_id = $1 ORDER BY item_id;`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	var items []domain.SaleItem
	for rows.Next() {
		var it domain.SaleItem
		if err := rows.Scan(&it.SaleID, &it.ItemID, &it.SupplierID, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan sale item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PgxSaleRepository) loadPayments(ctx context.Context, saleIDs []string) (map[string][]domain.SalePayment, error) {
	query := `
		SELECT payment_id, sale_id, method, amount, supplier_id, store_credit_id
		FROM sale_payments
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, position;
	`
	rows, err := r.db.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale payments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.SalePayment, len(saleIDs))
	for rows.Next() {
		var p domain.SalePayment
		if err := rows.Scan(&p.PaymentID, &p.SaleID, &p.Method, &p.Amount, &p.SupplierID, &p.StoreCreditID); err != nil {
			return nil, fmt.Errorf("failed to scan sale payment row: %w", err)
		}
		out[p.SaleID] = append(out[p.SaleID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale payment rows: %w", err)
	}
	return out, nil
}
