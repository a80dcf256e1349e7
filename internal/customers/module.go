// Package customers provides the customer records domain module.
package customers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealer_backoffice_backend/internal/customers/handler"
	"dealer_backoffice_backend/internal/customers/repository"
	"dealer_backoffice_backend/internal/customers/service"
	apphttp "dealer_backoffice_backend/internal/http"
	quotesvc "dealer_backoffice_backend/internal/quotes/service"
	"dealer_backoffice_backend/platform/events"
	"dealer_backoffice_backend/platform/logger"
	"dealer_backoffice_backend/platform/validator"
)

// Module represents the customers domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new customers module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "customers"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Directory returns an adapter implementing the quotes module's customer
// directory port.
func (m *Module) Directory() quotesvc.CustomerDirectory {
	return &directory{svc: m.service}
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	customersGroup := ctx.Protected.Group("/customers")
	m.handler.RegisterRoutes(customersGroup)
}

// directory adapts the customers service to the quotes CustomerDirectory port.
type directory struct {
	svc *service.Service
}

func (d *directory) Resolve(ctx context.Context, id uuid.UUID) (*quotesvc.Customer, error) {
	customer, err := d.svc.ResolveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toQuoteCustomer(customer.ID, customer.Name, customer.Email, customer.Phone), nil
}

func (d *directory) Ensure(ctx context.Context, name, email, phone string) (*quotesvc.Customer, error) {
	customer, err := d.svc.EnsureByContact(ctx, name, email, phone)
	if err != nil {
		return nil, err
	}
	return toQuoteCustomer(customer.ID, customer.Name, customer.Email, customer.Phone), nil
}

func toQuoteCustomer(id uuid.UUID, name string, email, phone *string) *quotesvc.Customer {
	c := &quotesvc.Customer{ID: id, Name: name}
	if email != nil {
		c.Email = *email
	}
	if phone != nil {
		c.Phone = *phone
	}
	return c
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
