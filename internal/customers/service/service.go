// Package service implements customer record management. Phone numbers are
// normalized to E.164 on the way in so contact-based lookups are stable.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dealer_backoffice_backend/internal/customers/repository"
	"dealer_backoffice_backend/internal/customers/transport"
	domainevents "dealer_backoffice_backend/internal/events"
	"dealer_backoffice_backend/platform/apperr"
	"dealer_backoffice_backend/platform/events"
	"dealer_backoffice_backend/platform/logger"
	"dealer_backoffice_backend/platform/phone"
)

// Service manages customer records.
type Service struct {
	repo     *repository.Repository
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new customers service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetEventBus wires the event bus for customer notifications.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Create stores a new customer record.
func (s *Service) Create(ctx context.Context, req transport.CreateCustomerRequest) (*transport.CustomerResponse, error) {
	if req.Email == "" && req.Phone == "" {
		return nil, apperr.Validation("customer email or phone is required")
	}

	now := time.Now()
	customer := repository.Customer{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       nilIfEmpty(req.Email),
		Phone:       nilIfEmpty(phone.NormalizeE164(req.Phone)),
		Notes:       nilIfEmpty(req.Notes),
		FFLTransfer: req.FFLTransfer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, &customer); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, domainevents.CustomerCreated{
			BaseEvent:  events.NewBaseEvent(),
			CustomerID: customer.ID,
			Name:       customer.Name,
		})
	}
	return toResponse(&customer), nil
}

// Get fetches a customer by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.CustomerResponse, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(customer), nil
}

// List returns a paginated customer listing.
func (s *Service) List(ctx context.Context, req transport.ListCustomersRequest) (*transport.ListCustomersResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	customers, total, err := s.repo.List(ctx, req.Search, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]transport.CustomerResponse, len(customers))
	for i := range customers {
		items[i] = *toResponse(&customers[i])
	}
	return &transport.ListCustomersResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update applies partial changes to a customer record.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCustomerRequest) (*transport.CustomerResponse, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = nilIfEmpty(*req.Email)
	}
	if req.Phone != nil {
		customer.Phone = nilIfEmpty(phone.NormalizeE164(*req.Phone))
	}
	if req.Notes != nil {
		customer.Notes = nilIfEmpty(*req.Notes)
	}
	if req.FFLTransfer != nil {
		customer.FFLTransfer = *req.FFLTransfer
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return toResponse(customer), nil
}

// ResolveByID returns the stored identity for an existing customer.
func (s *Service) ResolveByID(ctx context.Context, id uuid.UUID) (*repository.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// EnsureByContact finds a customer by email or phone, creating one when no
// match exists. Used when quotes are built against inline customer identity.
func (s *Service) EnsureByContact(ctx context.Context, name, email, phoneRaw string) (*repository.Customer, error) {
	normalizedPhone := phone.NormalizeE164(phoneRaw)

	existing, err := s.repo.FindByContact(ctx, email, normalizedPhone)
	if err == nil {
		return existing, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	created, err := s.Create(ctx, transport.CreateCustomerRequest{
		Name:  name,
		Email: email,
		Phone: phoneRaw,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, created.ID)
}

func toResponse(c *repository.Customer) *transport.CustomerResponse {
	return &transport.CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       deref(c.Email),
		Phone:       deref(c.Phone),
		Notes:       deref(c.Notes),
		FFLTransfer: c.FFLTransfer,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
