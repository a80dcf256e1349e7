package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"dealer_backoffice_backend/internal/pricing"
	"dealer_backoffice_backend/internal/quotes/domain"
	"dealer_backoffice_backend/platform/apperr"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quote is the database model for a quote. Line items are serialized as JSONB
// on the quote row: items never exist outside their quote and are always read
// and written together with it.
type Quote struct {
	ID            uuid.UUID          `db:"id"`
	QuoteNumber   string             `db:"quote_number"`
	Status        domain.Status      `db:"status"`
	CustomerID    uuid.UUID          `db:"customer_id"`
	CustomerName  string             `db:"customer_name"`
	CustomerEmail string             `db:"customer_email"`
	CustomerPhone string             `db:"customer_phone"`
	Items         []pricing.LineItem `db:"items"`
	Subtotal      decimal.Decimal    `db:"subtotal"`
	Tax           decimal.Decimal    `db:"tax"`
	Fees          decimal.Decimal    `db:"fees"`
	CardFee       decimal.Decimal    `db:"card_fee"`
	Total         decimal.Decimal    `db:"total"`
	TotalCost     decimal.Decimal    `db:"total_cost"`
	TotalProfit   decimal.Decimal    `db:"total_profit"`
	MarginPercent decimal.Decimal    `db:"margin_percent"`
	Notes         *string            `db:"notes"`
	ValidUntil    *time.Time         `db:"valid_until"`
	CreatedAt     time.Time          `db:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at"`
}

// ListParams contains parameters for listing quotes.
type ListParams struct {
	Status   *domain.Status
	Search   string
	Page     int
	PageSize int
}

// ListResult contains the paginated result of listing quotes.
type ListResult struct {
	Items      []Quote
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ── Repository ────────────────────────────────────────────────────────────────

const quoteNotFoundMsg = "quote not found"

const quoteColumns = `
	id, quote_number, status, customer_id, customer_name, customer_email,
	customer_phone, items, subtotal, tax, fees, card_fee, total, total_cost,
	total_profit, margin_percent, notes, valid_until, created_at, updated_at`

// Repository provides database operations for quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextQuoteNumber atomically reserves the next quote number. The counter row
// is upserted so the first quote ever works without seeding, and concurrent
// calls each get a distinct number.
func (r *Repository) NextQuoteNumber(ctx context.Context) (string, error) {
	var nextNum int
	query := `
		INSERT INTO quote_counters (id, last_number)
		VALUES (1, 1)
		ON CONFLICT (id) DO UPDATE SET last_number = quote_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate quote number: %w", err)
	}

	year := time.Now().Year()
	return fmt.Sprintf("QT-%d-%04d", year, nextNum), nil
}

// Create inserts a new quote with its serialized line items.
func (r *Repository) Create(ctx context.Context, quote *Quote) error {
	itemsJSON, err := json.Marshal(quote.Items)
	if err != nil {
		return fmt.Errorf("failed to serialize line items: %w", err)
	}

	query := `
		INSERT INTO quotes (
			id, quote_number, status, customer_id, customer_name, customer_email,
			customer_phone, items, subtotal, tax, fees, card_fee, total, total_cost,
			total_profit, margin_percent, notes, valid_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err = r.pool.Exec(ctx, query,
		quote.ID, quote.QuoteNumber, quote.Status, quote.CustomerID,
		quote.CustomerName, quote.CustomerEmail, quote.CustomerPhone, itemsJSON,
		quote.Subtotal, quote.Tax, quote.Fees, quote.CardFee, quote.Total,
		quote.TotalCost, quote.TotalProfit, quote.MarginPercent, quote.Notes,
		quote.ValidUntil, quote.CreatedAt, quote.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

// GetByID fetches a quote by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	query := `SELECT` + quoteColumns + ` FROM quotes WHERE id = $1`
	return r.scanQuote(r.pool.QueryRow(ctx, query, id))
}

// GetByNumber fetches a quote by its quote number.
func (r *Repository) GetByNumber(ctx context.Context, quoteNumber string) (*Quote, error) {
	query := `SELECT` + quoteColumns + ` FROM quotes WHERE quote_number = $1`
	return r.scanQuote(r.pool.QueryRow(ctx, query, quoteNumber))
}

// List returns a paginated, filtered page of quotes, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if params.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *params.Status)
		argPos++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (quote_number ILIKE $%d OR customer_name ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+params.Search+"%")
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotes`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	query := `SELECT` + quoteColumns + ` FROM quotes` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	items := make([]Quote, 0, params.PageSize)
	for rows.Next() {
		quote, err := r.scanQuote(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *quote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read quote rows: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus moves a quote between lifecycle states with an optimistic
// status guard: the update only applies if the stored status still matches
// the expected one, so concurrent transitions cannot double-apply.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error {
	query := `UPDATE quotes SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	tag, err := r.pool.Exec(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("quote status changed concurrently").WithOp("quotes.update_status")
	}
	return nil
}

// UpdateItems replaces a quote's line items and totals. The caller is
// responsible for checking the quote is still editable.
func (r *Repository) UpdateItems(ctx context.Context, quote *Quote) error {
	itemsJSON, err := json.Marshal(quote.Items)
	if err != nil {
		return fmt.Errorf("failed to serialize line items: %w", err)
	}

	query := `
		UPDATE quotes SET
			items = $1, subtotal = $2, tax = $3, fees = $4, card_fee = $5,
			total = $6, total_cost = $7, total_profit = $8, margin_percent = $9,
			notes = $10, updated_at = $11
		WHERE id = $12`

	tag, err := r.pool.Exec(ctx, query,
		itemsJSON, quote.Subtotal, quote.Tax, quote.Fees, quote.CardFee,
		quote.Total, quote.TotalCost, quote.TotalProfit, quote.MarginPercent,
		quote.Notes, time.Now(), quote.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote items: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// ExpireOverdue transitions every sent quote past its validity date to
// expired. Used by the background sweep; returns the number of quotes moved.
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE quotes SET status = $1, updated_at = $2
		WHERE status = $3 AND valid_until IS NOT NULL AND valid_until < $2`

	tag, err := r.pool.Exec(ctx, query, domain.StatusExpired, now, domain.StatusSent)
	if err != nil {
		return 0, fmt.Errorf("failed to expire quotes: %w", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanQuote(row rowScanner) (*Quote, error) {
	var quote Quote
	var itemsJSON []byte

	err := row.Scan(
		&quote.ID, &quote.QuoteNumber, &quote.Status, &quote.CustomerID,
		&quote.CustomerName, &quote.CustomerEmail, &quote.CustomerPhone,
		&itemsJSON, &quote.Subtotal, &quote.Tax, &quote.Fees, &quote.CardFee,
		&quote.Total, &quote.TotalCost, &quote.TotalProfit, &quote.MarginPercent,
		&quote.Notes, &quote.ValidUntil, &quote.CreatedAt, &quote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to scan quote: %w", err)
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &quote.Items); err != nil {
			return nil, fmt.Errorf("failed to deserialize line items: %w", err)
		}
	}
	return &quote, nil
}
