package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/teashop/apiserver/types"
)

// AdjustSale records change units sold on date (change > 0) or undoes
// previously recorded sales (change < 0). Both the sales entry and the
// stock count move in one conditional row update, so concurrent sales
// against the same item cannot oversell:
//
//	sales[date] += change
//	quantity    -= change
//
// A positive change only applies while quantity >= change. A negative
// change always applies; it restores stock.
func (r *ItemRepository) AdjustSale(ctx context.Context, id int64, date string, change int64) (types.InventoryItem, error) {
	const query = `
		UPDATE inventory_items
		SET sales = jsonb_set(sales, ARRAY[$2::text], to_jsonb(COALESCE((sales->>$2)::bigint, 0) + $3::bigint)),
			quantity = quantity - $3,
			updated_at = $4
		WHERE id = $1 AND ($3 < 0 OR quantity >= $3)
		RETURNING ` + itemColumns
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id, date, change, time.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The guard and a missing row both match zero records.
			// Re-read to report the right failure.
			if _, getErr := r.Get(ctx, id); getErr != nil {
				return types.InventoryItem{}, getErr
			}
			return types.InventoryItem{}, ErrInsufficientStock
		}
		return types.InventoryItem{}, err
	}
	return item, nil
}

// GetSaleCount returns the recorded count for date, 0 when the item has
// no entry for that date.
func (r *ItemRepository) GetSaleCount(ctx context.Context, id int64, date string) (int64, error) {
	const query = `
		SELECT COALESCE((sales->>$2)::bigint, 0)
		FROM inventory_items
		WHERE id = $1`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, id, date).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

// SetSaleCount overwrites sales[date] = count with no corresponding
// quantity change. Bulk-correction entry point; callers reconcile stock
// separately if they need to.
func (r *ItemRepository) SetSaleCount(ctx context.Context, id int64, date string, count int64) error {
	const query = `
		UPDATE inventory_items
		SET sales = jsonb_set(sales, ARRAY[$2::text], to_jsonb($3::bigint)),
			updated_at = $4
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, date, count, time.Now())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSaleEntry removes the date's entry entirely rather than setting
// it to zero. Zero rows modified means there was no entry to remove.
func (r *ItemRepository) DeleteSaleEntry(ctx context.Context, id int64, date string) error {
	const query = `
		UPDATE inventory_items
		SET sales = sales - $2::text,
			updated_at = $3
		WHERE id = $1 AND sales ? $2`
	result, err := r.db.ExecContext(ctx, query, id, date, time.Now())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
