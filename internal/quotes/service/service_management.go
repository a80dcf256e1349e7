package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainevents "dealer_backoffice_backend/internal/events"
	"dealer_backoffice_backend/internal/quotes/domain"
	"dealer_backoffice_backend/internal/quotes/repository"
	"dealer_backoffice_backend/internal/quotes/transport"
	"dealer_backoffice_backend/platform/apperr"
	"dealer_backoffice_backend/platform/events"
)

// Get fetches a quote by ID. Reading a sent quote past its validity date
// transitions it to expired before it is returned; this is the only
// transition the system performs without an explicit caller request.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.QuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withExpiryCheck(ctx, quote)
}

// GetByNumber fetches a quote by its quote number, with the same
// expiry-on-read behavior as Get.
func (s *Service) GetByNumber(ctx context.Context, quoteNumber string) (*transport.QuoteResponse, error) {
	quote, err := s.repo.GetByNumber(ctx, quoteNumber)
	if err != nil {
		return nil, err
	}
	return s.withExpiryCheck(ctx, quote)
}

func (s *Service) withExpiryCheck(ctx context.Context, quote *repository.Quote) (*transport.QuoteResponse, error) {
	if domain.ShouldExpire(quote.Status, quote.ValidUntil, time.Now()) {
		if err := s.repo.UpdateStatus(ctx, quote.ID, domain.StatusSent, domain.StatusExpired); err != nil {
			// A concurrent sweep may have expired it already; re-read wins.
			if !apperr.Is(err, apperr.KindConflict) {
				return nil, err
			}
		}
		s.publishStatusChange(ctx, quote, quote.Status, domain.StatusExpired)
		quote.Status = domain.StatusExpired
	}
	return toResponse(quote, nil), nil
}

// List returns a filtered, paginated quote listing.
func (s *Service) List(ctx context.Context, req transport.ListQuotesRequest) (*transport.ListQuotesResponse, error) {
	params := repository.ListParams{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		params.Status = &status
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.QuoteSummary, len(result.Items))
	for i, q := range result.Items {
		items[i] = toSummary(q)
	}
	return &transport.ListQuotesResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Transition moves a quote to the requested lifecycle status. Illegal moves
// return a conflict and leave the stored status untouched. A draft quote with
// no line items cannot be sent.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target domain.Status) (*transport.QuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if quote.Status == domain.StatusDraft && target == domain.StatusSent && len(quote.Items) == 0 {
		return nil, apperr.Conflict("a quote with no line items cannot be sent")
	}

	next, err := quote.Status.Transition(target)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, quote.ID, quote.Status, next); err != nil {
		return nil, err
	}

	s.log.QuoteEvent("transition", quote.QuoteNumber, string(next))
	s.publishStatusChange(ctx, quote, quote.Status, next)
	if next == domain.StatusSent && s.eventBus != nil {
		s.eventBus.Publish(ctx, domainevents.QuoteSent{
			BaseEvent:     events.NewBaseEvent(),
			QuoteID:       quote.ID,
			QuoteNumber:   quote.QuoteNumber,
			CustomerName:  quote.CustomerName,
			CustomerEmail: quote.CustomerEmail,
		})
	}

	quote.Status = next
	quote.UpdatedAt = time.Now()
	return toResponse(quote, nil), nil
}

// Send marks a quote as sent. It is a convenience wrapper over Transition
// that exists so the handler can expose POST /:id/send.
func (s *Service) Send(ctx context.Context, id uuid.UUID) (*transport.QuoteResponse, error) {
	return s.Transition(ctx, id, domain.StatusSent)
}

// ExpireSweep bulk-expires every sent quote past its validity date. Invoked
// by the scheduler so stale quotes do not linger until someone reads them.
func (s *Service) ExpireSweep(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("expire sweep: %w", err)
	}
	if count > 0 {
		s.log.Info("expired overdue quotes", "count", count)
	}
	return count, nil
}

func (s *Service) publishStatusChange(ctx context.Context, quote *repository.Quote, from, to domain.Status) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, domainevents.QuoteStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     quote.ID,
		QuoteNumber: quote.QuoteNumber,
		FromStatus:  string(from),
		ToStatus:    string(to),
	})
}
