package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dealer_backoffice_backend/internal/pricing"
)

// CatalogProduct is a locally cached catalog item, keyed by SKU. Rows are
// written opportunistically from distributor search results so the store has
// a browsable product record even when distributors are unreachable.
type CatalogProduct struct {
	ID           uuid.UUID `db:"id"`
	SKU          string    `db:"sku"`
	UPC          *string   `db:"upc"`
	Name         string    `db:"name"`
	Manufacturer *string   `db:"manufacturer"`
	Category     *string   `db:"category"`
	Caliber      *string   `db:"caliber"`
	LastSeenAt   time.Time `db:"last_seen_at"`
	CreatedAt    time.Time `db:"created_at"`
}

const productColumns = ` id, sku, upc, name, manufacturer, category, caliber, last_seen_at, created_at`

// UpsertProducts records products observed in distributor search results.
// Existing rows are refreshed; last_seen_at tracks the most recent sighting.
func (r *Repository) UpsertProducts(ctx context.Context, products []pricing.Product, seenAt time.Time) error {
	if len(products) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range products {
		if p.SKU == "" {
			continue
		}
		batch.Queue(`
			INSERT INTO catalog_products (id, sku, upc, name, manufacturer, category, caliber, last_seen_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			ON CONFLICT (sku) DO UPDATE SET
				upc = COALESCE(EXCLUDED.upc, catalog_products.upc),
				name = EXCLUDED.name,
				manufacturer = COALESCE(EXCLUDED.manufacturer, catalog_products.manufacturer),
				category = COALESCE(EXCLUDED.category, catalog_products.category),
				caliber = COALESCE(EXCLUDED.caliber, catalog_products.caliber),
				last_seen_at = EXCLUDED.last_seen_at`,
			uuid.New(), p.SKU, emptyToNil(p.UPC), p.Name, emptyToNil(p.Manufacturer),
			emptyToNil(p.Category), emptyToNil(p.Caliber), seenAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert catalog product: %w", err)
		}
	}
	return nil
}

// SearchProducts returns cached products matching the search term across SKU,
// UPC, name, and manufacturer, most recently seen first.
func (r *Repository) SearchProducts(ctx context.Context, search string, limit, offset int) ([]CatalogProduct, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1
	if search != "" {
		where += fmt.Sprintf(" AND (sku ILIKE $%d OR upc = $%d OR name ILIKE $%d OR manufacturer ILIKE $%d)",
			argPos, argPos+1, argPos, argPos)
		args = append(args, "%"+search+"%", search)
		argPos += 2
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM catalog_products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count catalog products: %w", err)
	}

	query := `SELECT` + productColumns + ` FROM catalog_products` + where +
		fmt.Sprintf(" ORDER BY last_seen_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list catalog products: %w", err)
	}
	defer rows.Close()

	var items []CatalogProduct
	for rows.Next() {
		var p CatalogProduct
		if err := rows.Scan(&p.ID, &p.SKU, &p.UPC, &p.Name, &p.Manufacturer,
			&p.Category, &p.Caliber, &p.LastSeenAt, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan catalog product: %w", err)
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
