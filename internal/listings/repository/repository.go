package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"dealer_backoffice_backend/platform/apperr"
)

// Listing is the database model for a sales listing.
type Listing struct {
	ID          uuid.UUID       `db:"id"`
	SKU         string          `db:"sku"`
	Title       string          `db:"title"`
	Description *string         `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Status      string          `db:"status"`
	Marketplace string          `db:"marketplace"`
	PublishedAt *time.Time      `db:"published_at"`
	SyncedAt    *time.Time      `db:"synced_at"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

const listingNotFoundMsg = "listing not found"

const listingColumns = `
	id, sku, title, description, price, status, marketplace, published_at,
	synced_at, created_at, updated_at`

// Repository provides database operations for listings.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new listings repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new listing.
func (r *Repository) Create(ctx context.Context, l *Listing) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO listings (id, sku, title, description, price, status, marketplace,
			published_at, synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, l.SKU, l.Title, l.Description, l.Price, l.Status, l.Marketplace,
		l.PublishedAt, l.SyncedAt, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// GetByID fetches a listing by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return r.scanListing(r.pool.QueryRow(ctx,
		`SELECT`+listingColumns+` FROM listings WHERE id = $1`, id))
}

// List returns listings filtered by optional status, newest first.
func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]Listing, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1
	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, status)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	query := `SELECT` + listingColumns + ` FROM listings` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var items []Listing
	for rows.Next() {
		l, err := r.scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *l)
	}
	return items, total, rows.Err()
}

// Update applies changes to a listing.
func (r *Repository) Update(ctx context.Context, l *Listing) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE listings SET title = $1, description = $2, price = $3, status = $4,
			published_at = $5, synced_at = $6, updated_at = $7
		WHERE id = $8`,
		l.Title, l.Description, l.Price, l.Status, l.PublishedAt, l.SyncedAt,
		time.Now(), l.ID)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(listingNotFoundMsg)
	}
	return nil
}

// MarkSynced stamps every active listing with the sync time. Used by the
// background marketplace sync task.
func (r *Repository) MarkSynced(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET synced_at = $1 WHERE status = 'active'`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark listings synced: %w", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanListing(row rowScanner) (*Listing, error) {
	var l Listing
	err := row.Scan(&l.ID, &l.SKU, &l.Title, &l.Description, &l.Price, &l.Status,
		&l.Marketplace, &l.PublishedAt, &l.SyncedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(listingNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to scan listing: %w", err)
	}
	return &l, nil
}
