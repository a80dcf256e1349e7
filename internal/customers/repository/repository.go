package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealer_backoffice_backend/platform/apperr"
)

// Customer is the database model for a customer record. FFLTransfer marks
// customers whose purchases ship to another dealer for transfer rather than
// being picked up in store.
type Customer struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Email       *string   `db:"email"`
	Phone       *string   `db:"phone"`
	Notes       *string   `db:"notes"`
	FFLTransfer bool      `db:"ffl_transfer"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const customerNotFoundMsg = "customer not found"

const customerColumns = ` id, name, email, phone, notes, ffl_transfer, created_at, updated_at`

// Repository provides database operations for customers.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new customers repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new customer.
func (r *Repository) Create(ctx context.Context, c *Customer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone, notes, ffl_transfer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.Email, c.Phone, c.Notes, c.FFLTransfer, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

// GetByID fetches a customer by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return r.scanCustomer(r.pool.QueryRow(ctx,
		`SELECT`+customerColumns+` FROM customers WHERE id = $1`, id))
}

// FindByContact finds a customer matching the given email or phone. Email
// matches take precedence. Returns NotFound when neither matches.
func (r *Repository) FindByContact(ctx context.Context, email, phone string) (*Customer, error) {
	if email != "" {
		c, err := r.scanCustomer(r.pool.QueryRow(ctx,
			`SELECT`+customerColumns+` FROM customers WHERE email = $1`, email))
		if err == nil || !apperr.Is(err, apperr.KindNotFound) {
			return c, err
		}
	}
	if phone != "" {
		return r.scanCustomer(r.pool.QueryRow(ctx,
			`SELECT`+customerColumns+` FROM customers WHERE phone = $1`, phone))
	}
	return nil, apperr.NotFound(customerNotFoundMsg)
}

// List returns customers matching an optional search, newest first.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]Customer, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1
	if search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+search+"%")
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := `SELECT` + customerColumns + ` FROM customers` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var items []Customer
	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *c)
	}
	return items, total, rows.Err()
}

// Update applies changes to a customer record.
func (r *Repository) Update(ctx context.Context, c *Customer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers SET name = $1, email = $2, phone = $3, notes = $4, ffl_transfer = $5, updated_at = $6
		WHERE id = $7`,
		c.Name, c.Email, c.Phone, c.Notes, c.FFLTransfer, time.Now(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(customerNotFoundMsg)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanCustomer(row rowScanner) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.FFLTransfer, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(customerNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}
