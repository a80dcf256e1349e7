// Package service implements quote orchestration: offer aggregation, pricing,
// persistence, and lifecycle management.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dealer_backoffice_backend/internal/catalog/aggregator"
	"dealer_backoffice_backend/internal/pricing"
	"dealer_backoffice_backend/internal/quotes/domain"
	"dealer_backoffice_backend/internal/quotes/repository"
	"dealer_backoffice_backend/internal/quotes/transport"
	"dealer_backoffice_backend/platform/events"
	"dealer_backoffice_backend/platform/logger"
)

// Repo is the persistence contract the service depends on.
type Repo interface {
	NextQuoteNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, quote *repository.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Quote, error)
	GetByNumber(ctx context.Context, quoteNumber string) (*repository.Quote, error)
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error
	UpdateItems(ctx context.Context, quote *repository.Quote) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// OfferSource fans a product query out to distributor catalogs.
type OfferSource interface {
	FetchOffers(ctx context.Context, q aggregator.Query, enabled []string) (*aggregator.Result, error)
}

// Customer is the resolved customer identity a quote is built against.
type Customer struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

// CustomerDirectory resolves and creates customer records. Implemented by the
// customers module.
type CustomerDirectory interface {
	Resolve(ctx context.Context, id uuid.UUID) (*Customer, error)
	Ensure(ctx context.Context, name, email, phone string) (*Customer, error)
}

// Defaults carries the store-level pricing defaults and validity horizon.
type Defaults struct {
	Pricing      pricing.Config
	ValidityDays int
}

// Service orchestrates quote building and lifecycle operations.
type Service struct {
	repo      Repo
	offers    OfferSource
	customers CustomerDirectory
	defaults  Defaults
	eventBus  events.Bus
	log       *logger.Logger
}

// New creates a new quotes service.
func New(repo Repo, offers OfferSource, customers CustomerDirectory, defaults Defaults, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		offers:    offers,
		customers: customers,
		defaults:  defaults,
		log:       log,
	}
}

// SetEventBus wires the event bus for lifecycle notifications.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// effectiveConfig merges request overrides onto the store defaults.
func (s *Service) effectiveConfig(overrides *transport.PricingOverrides) pricing.Config {
	cfg := s.defaults.Pricing
	if overrides == nil {
		return cfg
	}
	if overrides.MarkupPercent != nil {
		cfg.MarkupPercent = decimal.NewFromFloat(*overrides.MarkupPercent)
	}
	if overrides.MinimumMarginPercent != nil {
		cfg.MinimumMarginPercent = decimal.NewFromFloat(*overrides.MinimumMarginPercent)
	}
	if overrides.TransferFee != nil {
		cfg.TransferFee = decimal.NewFromFloat(*overrides.TransferFee)
	}
	if overrides.BackgroundCheckFee != nil {
		cfg.BackgroundCheckFee = decimal.NewFromFloat(*overrides.BackgroundCheckFee)
	}
	if overrides.SalesTaxPercent != nil {
		cfg.SalesTaxPercent = decimal.NewFromFloat(*overrides.SalesTaxPercent)
	}
	if overrides.CardFeePercent != nil {
		cfg.CardFeePercent = decimal.NewFromFloat(*overrides.CardFeePercent)
	}
	return cfg
}

func toResponse(q *repository.Quote, failed []transport.FailedProduct) *transport.QuoteResponse {
	items := make([]transport.LineItemResponse, len(q.Items))
	for i, line := range q.Items {
		items[i] = transport.LineItemResponse{
			Product:            line.Product,
			Distributor:        line.Offer.Distributor,
			Quantity:           line.Quantity,
			UnitCost:           line.Offer.UnitCost,
			UnitRetail:         line.UnitRetail,
			LineTotal:          line.LineTotal,
			MarginPercent:      line.MarginPercent,
			BelowMinimumMargin: line.BelowMinimumMargin,
			Flagged:            line.Offer.Flagged,
		}
	}

	notes := ""
	if q.Notes != nil {
		notes = *q.Notes
	}

	return &transport.QuoteResponse{
		ID:             q.ID,
		QuoteNumber:    q.QuoteNumber,
		Status:         q.Status,
		CustomerID:     q.CustomerID,
		CustomerName:   q.CustomerName,
		CustomerEmail:  q.CustomerEmail,
		CustomerPhone:  q.CustomerPhone,
		Items:          items,
		Subtotal:       q.Subtotal,
		Tax:            q.Tax,
		Fees:           q.Fees,
		CardFee:        q.CardFee,
		Total:          q.Total,
		TotalCost:      q.TotalCost,
		TotalProfit:    q.TotalProfit,
		MarginPercent:  q.MarginPercent,
		FailedProducts: failed,
		Notes:          notes,
		ValidUntil:     q.ValidUntil,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

func toSummary(q repository.Quote) transport.QuoteSummary {
	return transport.QuoteSummary{
		ID:           q.ID,
		QuoteNumber:  q.QuoteNumber,
		Status:       q.Status,
		CustomerName: q.CustomerName,
		Total:        q.Total,
		TotalProfit:  q.TotalProfit,
		ItemCount:    len(q.Items),
		ValidUntil:   q.ValidUntil,
		CreatedAt:    q.CreatedAt,
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
