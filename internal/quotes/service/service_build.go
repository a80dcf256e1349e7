package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealer_backoffice_backend/internal/catalog/aggregator"
	domainevents "dealer_backoffice_backend/internal/events"
	"dealer_backoffice_backend/internal/pricing"
	"dealer_backoffice_backend/internal/quotes/domain"
	"dealer_backoffice_backend/internal/quotes/repository"
	"dealer_backoffice_backend/internal/quotes/transport"
	"dealer_backoffice_backend/platform/apperr"
	"dealer_backoffice_backend/platform/events"
)

// BuildQuote aggregates offers for every requested product, prices the best
// offer per product, and persists the result as a draft quote.
//
// A product that no distributor can supply does not fail the whole quote: it
// is reported in FailedProducts and the quote is built from the lines that
// priced. Only when every product fails is an error returned.
func (s *Service) BuildQuote(ctx context.Context, req transport.BuildQuoteRequest) (*transport.QuoteResponse, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validation("a quote requires at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be positive").
				WithDetails(map[string]string{"search": item.Search})
		}
	}

	customer, err := s.resolveCustomer(ctx, req.Customer)
	if err != nil {
		return nil, err
	}

	cfg := s.effectiveConfig(req.Overrides)

	lines := make([]pricing.LineItem, 0, len(req.Items))
	failed := make([]transport.FailedProduct, 0)

	for _, item := range req.Items {
		line, err := s.priceProduct(ctx, item, req.Distributors, cfg)
		if err != nil {
			failed = append(failed, transport.FailedProduct{
				Search: item.Search,
				Reason: failureReason(err),
			})
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, apperr.Unavailable("no distributor could supply any requested product").
			WithDetails(failed)
	}

	totals := pricing.PriceTotals(lines, cfg, req.PaymentIsCard)

	quoteNumber, err := s.repo.NextQuoteNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate quote number: %w", err)
	}

	now := time.Now()
	var validUntil *time.Time
	if s.defaults.ValidityDays > 0 {
		exp := now.AddDate(0, 0, s.defaults.ValidityDays)
		validUntil = &exp
	}

	quote := repository.Quote{
		ID:            uuid.New(),
		QuoteNumber:   quoteNumber,
		Status:        domain.StatusDraft,
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		Items:         lines,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Fees:          totals.Fees,
		CardFee:       totals.CardFee,
		Total:         totals.Total,
		TotalCost:     totals.TotalCost,
		TotalProfit:   totals.TotalProfit,
		MarginPercent: totals.MarginPercent,
		Notes:         nilIfEmpty(req.Notes),
		ValidUntil:    validUntil,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, &quote); err != nil {
		return nil, fmt.Errorf("persist quote: %w", err)
	}

	s.log.QuoteEvent("created", quote.QuoteNumber, string(quote.Status))
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, domainevents.QuoteCreated{
			BaseEvent:   events.NewBaseEvent(),
			QuoteID:     quote.ID,
			QuoteNumber: quote.QuoteNumber,
			CustomerID:  quote.CustomerID,
			Total:       quote.Total.StringFixed(2),
		})
	}

	return toResponse(&quote, failed), nil
}

// UpdateItems re-prices a quote against current distributor offers. Only
// draft and sent quotes can be edited; accepted, rejected, and expired
// quotes are locked.
func (s *Service) UpdateItems(ctx context.Context, id uuid.UUID, req transport.UpdateItemsRequest) (*transport.QuoteResponse, error) {
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be positive").
				WithDetails(map[string]string{"search": item.Search})
		}
	}

	quote, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quote.Status.Editable() {
		return nil, domain.ErrQuoteLocked(quote.Status)
	}

	cfg := s.effectiveConfig(req.Overrides)

	lines := make([]pricing.LineItem, 0, len(req.Items))
	failed := make([]transport.FailedProduct, 0)
	for _, item := range req.Items {
		line, err := s.priceProduct(ctx, item, req.Distributors, cfg)
		if err != nil {
			failed = append(failed, transport.FailedProduct{
				Search: item.Search,
				Reason: failureReason(err),
			})
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, apperr.Unavailable("no distributor could supply any requested product").
			WithDetails(failed)
	}

	totals := pricing.PriceTotals(lines, cfg, req.PaymentIsCard)

	quote.Items = lines
	quote.Subtotal = totals.Subtotal
	quote.Tax = totals.Tax
	quote.Fees = totals.Fees
	quote.CardFee = totals.CardFee
	quote.Total = totals.Total
	quote.TotalCost = totals.TotalCost
	quote.TotalProfit = totals.TotalProfit
	quote.MarginPercent = totals.MarginPercent
	if req.Notes != nil {
		quote.Notes = nilIfEmpty(*req.Notes)
	}

	if err := s.repo.UpdateItems(ctx, quote); err != nil {
		return nil, err
	}

	s.log.QuoteEvent("items_updated", quote.QuoteNumber, string(quote.Status))
	return toResponse(quote, failed), nil
}

// priceProduct fans one product query out and prices the winning offer.
func (s *Service) priceProduct(ctx context.Context, item transport.ProductQueryRequest, distributors []string, cfg pricing.Config) (pricing.LineItem, error) {
	result, err := s.offers.FetchOffers(ctx, aggregator.Query{
		Search:   item.Search,
		Category: item.Category,
		SKU:      item.SKU,
		UPC:      item.UPC,
	}, distributors)
	if err != nil {
		return pricing.LineItem{}, err
	}

	best, err := pricing.SelectBestOffer(result.Offers)
	if err != nil {
		return pricing.LineItem{}, err
	}

	return pricing.PriceLine(best, item.Quantity, cfg)
}

func (s *Service) resolveCustomer(ctx context.Context, ref transport.CustomerRef) (*Customer, error) {
	if ref.ID != nil {
		return s.customers.Resolve(ctx, *ref.ID)
	}
	if ref.Name == "" {
		return nil, apperr.Validation("customer name is required when no customer id is given")
	}
	if ref.Email == "" && ref.Phone == "" {
		return nil, apperr.Validation("customer email or phone is required")
	}
	return s.customers.Ensure(ctx, ref.Name, ref.Email, ref.Phone)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, aggregator.ErrNoOffersAvailable):
		return "all distributors failed"
	case errors.Is(err, pricing.ErrNoOffers):
		return "no distributor carries this product"
	default:
		return err.Error()
	}
}
