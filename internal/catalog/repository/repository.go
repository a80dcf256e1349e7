package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealer_backoffice_backend/internal/catalog/aggregator"
	"dealer_backoffice_backend/platform/apperr"
)

// Distributor is the database model for a wholesale distributor and the
// store's bookkeeping about it. Quality and reliability feed the offer
// tie-break in the pricing engine.
type Distributor struct {
	ID             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	DisplayName    string    `db:"display_name"`
	QualityScore   float64   `db:"quality_score"`
	ReliabilityPct float64   `db:"reliability_pct"`
	Enabled        bool      `db:"enabled"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

const distributorNotFoundMsg = "distributor not found"

// Repository provides database operations for distributor records.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all distributors ordered by name.
func (r *Repository) List(ctx context.Context) ([]Distributor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, display_name, quality_score, reliability_pct, enabled, created_at, updated_at
		FROM distributors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributors: %w", err)
	}
	defer rows.Close()

	var items []Distributor
	for rows.Next() {
		var d Distributor
		if err := rows.Scan(&d.ID, &d.Name, &d.DisplayName, &d.QualityScore,
			&d.ReliabilityPct, &d.Enabled, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan distributor: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// GetByName fetches a distributor by its identifier name.
func (r *Repository) GetByName(ctx context.Context, name string) (*Distributor, error) {
	var d Distributor
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, display_name, quality_score, reliability_pct, enabled, created_at, updated_at
		FROM distributors WHERE name = $1`, name).
		Scan(&d.ID, &d.Name, &d.DisplayName, &d.QualityScore,
			&d.ReliabilityPct, &d.Enabled, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(distributorNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get distributor: %w", err)
	}
	return &d, nil
}

// Upsert registers a distributor, keeping existing scores on conflict. Called
// at startup for every configured provider so metadata rows always exist.
func (r *Repository) Upsert(ctx context.Context, name, displayName string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO distributors (id, name, display_name, quality_score, reliability_pct, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, TRUE, $4, $4)
		ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name, displayName, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert distributor: %w", err)
	}
	return nil
}

// UpdateScores sets the quality and reliability scores for a distributor.
func (r *Repository) UpdateScores(ctx context.Context, name string, quality, reliability float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE distributors SET quality_score = $1, reliability_pct = $2, updated_at = $3
		WHERE name = $4`, quality, reliability, time.Now(), name)
	if err != nil {
		return fmt.Errorf("failed to update distributor scores: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(distributorNotFoundMsg)
	}
	return nil
}

// SetEnabled toggles whether a distributor participates in offer fan-out.
func (r *Repository) SetEnabled(ctx context.Context, name string, enabled bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE distributors SET enabled = $1, updated_at = $2 WHERE name = $3`,
		enabled, time.Now(), name)
	if err != nil {
		return fmt.Errorf("failed to toggle distributor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(distributorNotFoundMsg)
	}
	return nil
}

// ListDistributorMeta implements aggregator.MetaSource.
func (r *Repository) ListDistributorMeta(ctx context.Context) ([]aggregator.DistributorMeta, error) {
	distributors, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	meta := make([]aggregator.DistributorMeta, len(distributors))
	for i, d := range distributors {
		meta[i] = aggregator.DistributorMeta{
			Name:           d.Name,
			QualityScore:   d.QualityScore,
			ReliabilityPct: d.ReliabilityPct,
			Enabled:        d.Enabled,
		}
	}
	return meta, nil
}

// Compile-time check that Repository implements aggregator.MetaSource
var _ aggregator.MetaSource = (*Repository)(nil)
