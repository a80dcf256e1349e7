// Package service implements sales listing management: draft listings,
// publishing, and the periodic marketplace sync.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainevents "dealer_backoffice_backend/internal/events"
	"dealer_backoffice_backend/internal/listings/repository"
	"dealer_backoffice_backend/internal/listings/transport"
	"dealer_backoffice_backend/platform/apperr"
	"dealer_backoffice_backend/platform/events"
	"dealer_backoffice_backend/platform/logger"
)

// Listing statuses.
const (
	StatusDraft   = "draft"
	StatusActive  = "active"
	StatusSold    = "sold"
	StatusRemoved = "removed"
)

// Service manages sales listings.
type Service struct {
	repo     *repository.Repository
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new listings service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetEventBus wires the event bus for listing notifications.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Create stores a new draft listing.
func (s *Service) Create(ctx context.Context, req transport.CreateListingRequest) (*transport.ListingResponse, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, apperr.Validation("price must be a non-negative decimal")
	}

	now := time.Now()
	listing := repository.Listing{
		ID:          uuid.New(),
		SKU:         req.SKU,
		Title:       req.Title,
		Description: nilIfEmpty(req.Description),
		Price:       price.Round(2),
		Status:      StatusDraft,
		Marketplace: req.Marketplace,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, &listing); err != nil {
		return nil, err
	}
	return toResponse(&listing), nil
}

// Get fetches a listing by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.ListingResponse, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(listing), nil
}

// List returns listings filtered by optional status.
func (s *Service) List(ctx context.Context, req transport.ListListingsRequest) (*transport.ListListingsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	listings, total, err := s.repo.List(ctx, req.Status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]transport.ListingResponse, len(listings))
	for i := range listings {
		items[i] = *toResponse(&listings[i])
	}
	return &transport.ListListingsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Publish moves a draft listing to active and announces it.
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (*transport.ListingResponse, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status != StatusDraft {
		return nil, apperr.Conflict("only draft listings can be published")
	}

	now := time.Now()
	listing.Status = StatusActive
	listing.PublishedAt = &now
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, domainevents.ListingPublished{
			BaseEvent: events.NewBaseEvent(),
			ListingID: listing.ID,
			SKU:       listing.SKU,
			Title:     listing.Title,
		})
	}
	return toResponse(listing), nil
}

// UpdateStatus moves a listing to sold or removed.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*transport.ListingResponse, error) {
	if status != StatusSold && status != StatusRemoved {
		return nil, apperr.Validation("status must be sold or removed")
	}

	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status != StatusActive {
		return nil, apperr.Conflict("only active listings can be marked " + status)
	}

	listing.Status = status
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return toResponse(listing), nil
}

// SyncActive stamps active listings as synced with the marketplace. Invoked
// by the scheduler.
func (s *Service) SyncActive(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkSynced(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info("synced active listings", "count", count)
	}
	return count, nil
}

func toResponse(l *repository.Listing) *transport.ListingResponse {
	resp := &transport.ListingResponse{
		ID:          l.ID,
		SKU:         l.SKU,
		Title:       l.Title,
		Price:       l.Price,
		Status:      l.Status,
		Marketplace: l.Marketplace,
		PublishedAt: l.PublishedAt,
		SyncedAt:    l.SyncedAt,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Description != nil {
		resp.Description = *l.Description
	}
	return resp
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
