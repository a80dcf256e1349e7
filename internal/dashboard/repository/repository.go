package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// QuoteStats aggregates quote activity over a window.
type QuoteStats struct {
	CountByStatus map[string]int
	TotalRevenue  decimal.Decimal
	TotalCost     decimal.Decimal
	TotalProfit   decimal.Decimal
}

// ListingStats aggregates listing counts by status.
type ListingStats struct {
	CountByStatus map[string]int
}

// Repository provides aggregate read queries for the dashboard. It reads the
// quotes and listings tables directly; no writes.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new dashboard repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// QuoteStatsSince aggregates quotes created at or after since. Revenue,
// cost, and profit only count accepted quotes: a sent quote is not income.
func (r *Repository) QuoteStatsSince(ctx context.Context, since time.Time) (*QuoteStats, error) {
	stats := &QuoteStats{
		CountByStatus: make(map[string]int),
		TotalRevenue:  decimal.Zero,
		TotalCost:     decimal.Zero,
		TotalProfit:   decimal.Zero,
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM quotes WHERE created_at >= $1 GROUP BY status`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan quote count: %w", err)
		}
		stats.CountByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COALESCE(SUM(total_cost), 0), COALESCE(SUM(total_profit), 0)
		FROM quotes WHERE status = 'accepted' AND created_at >= $1`, since).
		Scan(&stats.TotalRevenue, &stats.TotalCost, &stats.TotalProfit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum accepted quotes: %w", err)
	}

	return stats, nil
}

// ListingStatsNow returns current listing counts by status.
func (r *Repository) ListingStatsNow(ctx context.Context) (*ListingStats, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM listings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}
	defer rows.Close()

	stats := &ListingStats{CountByStatus: make(map[string]int)}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan listing count: %w", err)
		}
		stats.CountByStatus[status] = count
	}
	return stats, rows.Err()
}
