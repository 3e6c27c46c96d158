package database

import (
	"context"
	"fmt"
	"time"

	"price-resolution-api/internal/models"
	"price-resolution-api/internal/pricing"
)

// Find returns the price windows matching q, in q's order and limited to q.Limit.
func (db *DB) Find(ctx context.Context, q pricing.Query) ([]models.PriceWindow, error) {
	stmt, err := db.dialect.selectPrices(q)
	if err != nil {
		return nil, fmt.Errorf("failed to build price query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var windows []models.PriceWindow
	for rows.Next() {
		var w models.PriceWindow
		err := rows.Scan(
			&w.ID,
			&w.ProductID,
			&w.BrandID,
			&w.StartDate,
			&w.EndDate,
			&w.Priority,
			&w.Currency,
			&w.Value,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		w.StartDate = w.StartDate.UTC()
		w.EndDate = w.EndDate.UTC()
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return windows, nil
}

// UpsertBrand creates or renames a brand.
func (db *DB) UpsertBrand(ctx context.Context, brand models.Brand) error {
	query := db.dialect.rebind(`INSERT INTO brands (brand_id, name, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (brand_id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at`)

	if _, err := db.conn.ExecContext(ctx, query, brand.ID, brand.Name, db.dialect.timeArg(time.Now())); err != nil {
		return fmt.Errorf("failed to upsert brand %d: %w", brand.ID, err)
	}
	return nil
}

// UpsertProduct creates or renames a product.
func (db *DB) UpsertProduct(ctx context.Context, product models.Product) error {
	query := db.dialect.rebind(`INSERT INTO products (product_id, name, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (product_id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at`)

	if _, err := db.conn.ExecContext(ctx, query, product.ID, product.Name, db.dialect.timeArg(time.Now())); err != nil {
		return fmt.Errorf("failed to upsert product %d: %w", product.ID, err)
	}
	return nil
}

// UpsertPriceWindows writes price windows in a single transaction, replacing any
// window with the same price list id.
func (db *DB) UpsertPriceWindows(ctx context.Context, windows []models.PriceWindow) (int, error) {
	if len(windows) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, db.dialect.rebind(`INSERT INTO prices (
		price_list, brand_id, product_id, start_date, end_date, priority, curr, price, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (price_list) DO UPDATE SET
		brand_id = excluded.brand_id,
		product_id = excluded.product_id,
		start_date = excluded.start_date,
		end_date = excluded.end_date,
		priority = excluded.priority,
		curr = excluded.curr,
		price = excluded.price,
		updated_at = excluded.updated_at`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := db.dialect.timeArg(time.Now())
	written := 0
	for _, w := range windows {
		_, err := stmt.ExecContext(ctx,
			w.ID,
			w.BrandID,
			w.ProductID,
			db.dialect.timeArg(w.StartDate),
			db.dialect.timeArg(w.EndDate),
			w.Priority,
			w.Currency,
			w.Value.StringFixed(2),
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to write price %d: %w", w.ID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return written, nil
}

var _ pricing.Store = (*DB)(nil)
