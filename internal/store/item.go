package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/teashop/apiserver/types"
)

const itemColumns = `id, name, quantity, price, supplier, sales, created_at, updated_at`

// ItemRepository handles persistence for inventory items, including the
// quantity-control operations. The sales-ledger operations live in
// sales.go on the same repository.
type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (types.InventoryItem, error) {
	var item types.InventoryItem
	var salesJSON []byte
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Quantity,
		&item.Price,
		&item.Supplier,
		&salesJSON,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return types.InventoryItem{}, err
	}
	item.Sales = types.SalesHistory{}
	_ = json.Unmarshal(salesJSON, &item.Sales)
	return item, nil
}

func (r *ItemRepository) List(ctx context.Context) ([]types.InventoryItem, error) {
	const query = `
		SELECT ` + itemColumns + `
		FROM inventory_items
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.InventoryItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (types.InventoryItem, error) {
	const query = `
		SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE id = $1`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.InventoryItem{}, ErrNotFound
		}
		return types.InventoryItem{}, err
	}
	return item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	const query = `
		INSERT INTO inventory_items (name, quantity, price, supplier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.Name,
		item.Quantity,
		item.Price,
		item.Supplier,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID); err != nil {
		return types.InventoryItem{}, err
	}

	item.Sales = types.SalesHistory{}
	return item, nil
}

// Replace overwrites the item's fields, excluding the identifier and the
// sales history.
func (r *ItemRepository) Replace(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error) {
	const query = `
		UPDATE inventory_items
		SET name = $2,
			quantity = $3,
			price = $4,
			supplier = $5,
			updated_at = $6
		WHERE id = $1
		RETURNING ` + itemColumns
	updated, err := scanItem(r.db.QueryRowContext(
		ctx,
		query,
		item.ID,
		item.Name,
		item.Quantity,
		item.Price,
		item.Supplier,
		time.Now(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.InventoryItem{}, ErrNotFound
		}
		return types.InventoryItem{}, err
	}
	return updated, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM inventory_items WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
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

// IncrementQuantity applies quantity += change as a single conditional
// update that refuses to drive the stock count negative.
func (r *ItemRepository) IncrementQuantity(ctx context.Context, id int64, change int64) (types.InventoryItem, error) {
	const query = `
		UPDATE inventory_items
		SET quantity = quantity + $2,
			updated_at = $3
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING ` + itemColumns
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id, change, time.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Zero rows means either the item is absent or the guard
			// failed; a follow-up read tells them apart.
			if _, getErr := r.Get(ctx, id); getErr != nil {
				return types.InventoryItem{}, getErr
			}
			return types.InventoryItem{}, ErrNegativeQuantity
		}
		return types.InventoryItem{}, err
	}
	return item, nil
}

// SetQuantity overwrites the stock count. Callers validate the new value;
// the store itself only reports a missing item.
func (r *ItemRepository) SetQuantity(ctx context.Context, id int64, quantity int64) (types.InventoryItem, error) {
	const query = `
		UPDATE inventory_items
		SET quantity = $2,
			updated_at = $3
		WHERE id = $1
		RETURNING ` + itemColumns
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id, quantity, time.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.InventoryItem{}, ErrNotFound
		}
		return types.InventoryItem{}, err
	}
	return item, nil
}
