// Package service computes dashboard summaries from quote and listing data.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"dealer_backoffice_backend/internal/dashboard/repository"
	"dealer_backoffice_backend/internal/pricing"
)

// Summary is the store activity dashboard payload.
type Summary struct {
	WindowDays     int             `json:"windowDays"`
	Quotes         map[string]int  `json:"quotes"`
	Listings       map[string]int  `json:"listings"`
	AcceptanceRate decimal.Decimal `json:"acceptanceRate"`
	Revenue        decimal.Decimal `json:"revenue"`
	Cost           decimal.Decimal `json:"cost"`
	Profit         decimal.Decimal `json:"profit"`
	MarginPercent  decimal.Decimal `json:"marginPercent"`
}

// Service computes dashboard summaries.
type Service struct {
	repo *repository.Repository
}

// New creates a new dashboard service.
func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Summary aggregates activity over the trailing windowDays days. Margin uses
// the same formula as quote pricing so the dashboard and quotes agree.
func (s *Service) Summary(ctx context.Context, windowDays int) (*Summary, error) {
	if windowDays < 1 {
		windowDays = 30
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	quoteStats, err := s.repo.QuoteStatsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	listingStats, err := s.repo.ListingStatsNow(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		WindowDays:     windowDays,
		Quotes:         quoteStats.CountByStatus,
		Listings:       listingStats.CountByStatus,
		AcceptanceRate: acceptanceRate(quoteStats.CountByStatus),
		Revenue:        quoteStats.TotalRevenue,
		Cost:           quoteStats.TotalCost,
		Profit:         quoteStats.TotalProfit,
		MarginPercent:  pricing.MarginPercent(quoteStats.TotalProfit, quoteStats.TotalCost),
	}, nil
}

// acceptanceRate is accepted quotes over all decided quotes (accepted,
// rejected, or expired), as a percentage. Draft and sent quotes are still
// pending and do not count either way.
func acceptanceRate(counts map[string]int) decimal.Decimal {
	accepted := counts["accepted"]
	decided := accepted + counts["rejected"] + counts["expired"]
	if decided == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(accepted) * 100).
		Div(decimal.NewFromInt(int64(decided))).
		Round(2)
}
