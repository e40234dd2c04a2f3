package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/consignet/consignment_backend/internal/apperrors"
	"github.com/consignet/consignment_backend/internal/core/domain"
	portsrepo "github.com/consignet/consignment_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxItemRepository struct {
	db DBTX
}

func newPgxItemRepository(db DBTX) portsrepo.ItemRepositoryFacade {
	return &PgxItemRepository{db: db}
}

var _ portsrepo.ItemRepositoryFacade = (*PgxItemRepository)(nil)

const itemColumns = `item_id, supplier_id, description, evaluated_price, status, sale_id, sale_date, settlement_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanItem(row pgx.Row) (domain.Item, error) {
	var i domain.Item
	err := row.Scan(
		&i.ItemID,
		&i.SupplierID,
		&i.Description,
		&i.EvaluatedPrice,
		&i.Status,
		&i.SaleID,
		&i.SaleDate,
		&i.SettlementID,
		&i.CreatedAt,
		&i.CreatedBy,
		&i.LastUpdatedAt,
		&i.LastUpdatedBy,
	)
	return i, err
}

func (r *PgxItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}
	return items, nil
}

// SaveItem inserts a new item.
func (r *PgxItemRepository) SaveItem(ctx context.Context, i domain.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		i.ItemID, i.SupplierID, i.Description, i.EvaluatedPrice, i.Status, i.SaleID, i.SaleDate, i.SettlementID,
		i.CreatedAt, i.CreatedBy, i.LastUpdatedAt, i.LastUpdatedBy,
	)
	return mapWriteError(err, "item "+i.ItemID)
}

// FindItemByID retrieves an item by its ID.
func (r *PgxItemRepository) FindItemByID(ctx context.Context, itemID string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1;`
	item, err := scanItem(r.db.QueryRow(ctx, query, itemID))
	if err != nil {
		return nil, mapReadError(err, "item "+itemID)
	}
	return &item, nil
}

// FindItemsByIDs retrieves the items that exist among itemIDs.
func (r *PgxItemRepository) FindItemsByIDs(ctx context.Context, itemIDs []string) (map[string]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = ANY($1);`
	items, err := r.queryItems(ctx, query, itemIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[string]domain.Item, len(items))
	for _, item := range items {
		found[item.ItemID] = item
	}
	return found, nil
}

// ListUnsettledSoldItems compares calendar days in UTC, both ends inclusive.
func (r *PgxItemRepository) ListUnsettledSoldItems(ctx context.Context, supplierID string, periodStart, periodEnd time.Time) ([]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE supplier_id = $1
		  AND status = 'SOLD'
		  AND settlement_id IS NULL
		  AND (sale_date AT TIME ZONE 'UTC')::date BETWEEN $2::date AND $3::date
		ORDER BY sale_date, item_id;
	`
	return r.queryItems(ctx, query, supplierID, domain.DateOnly(periodStart), domain.DateOnly(periodEnd))
}

// ListItemsBySettlement retrieves the items attached to a settlement.
func (r *PgxItemRepository) ListItemsBySettlement(ctx context.Context, settlementID string) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE settlement_id = $1 ORDER BY sale_date, item_id;`
	return r.queryItems(ctx, query, settlementID)
}

// MarkItemsSold only touches TO_SELL rows; a short row count means another sale took one first.
func (r *PgxItemRepository) MarkItemsSold(ctx context.Context, itemIDs []string, saleID string, saleDate time.Time) error {
	query := `
		UPDATE items
		SET status = 'SOLD', sale_id = $2, sale_date = $3, last_updated_at = $3
		WHERE item_id = ANY($1) AND status = 'TO_SELL';
	`
	tag, err := r.db.Exec(ctx, query, itemIDs, saleID, saleDate)
	if err != nil {
		return mapWriteError(err, "items of sale "+saleID)
	}
	if tag.RowsAffected() != int64(len(itemIDs)) {
		return fmt.Errorf("%w: %d of %d items were no longer for sale", apperrors.ErrConflict, int64(len(itemIDs))-tag.RowsAffected(), len(itemIDs))
	}
	return nil
}

// AttachItemsToSettlement only touches unsettled sold rows.
func (r *PgxItemRepository) AttachItemsToSettlement(ctx context.Context, settlementID string, itemIDs []string) error {
	query := `
		UPDATE items
		SET settlement_id = $2
		WHERE item_id = ANY($1) AND status = 'SOLD' AND settlement_id IS NULL;
	`
	tag, err := r.db.Exec(ctx, query, itemIDs, settlementID)
	if err != nil {
		return mapWriteError(err, "items of settlement "+settlementID)
	}
	if tag.RowsAffected() != int64(len(itemIDs)) {
		return fmt.Errorf("%w: %d of %d items were settled meanwhile", apperrors.ErrConflict, int64(len(itemIDs))-tag.RowsAffected(), len(itemIDs))
	}
	return nil
}

// DetachItemsFromSettlement makes a settlement's items selectable again.
func (r *PgxItemRepository) DetachItemsFromSettlement(ctx context.Context, settlementID string) error {
	_, err := r.db.Exec(ctx, `UPDATE items SET settlement_id = NULL WHERE settlement_id = $1;`, settlementID)
	return mapWriteError(err, "items of settlement "+settlementID)
}
