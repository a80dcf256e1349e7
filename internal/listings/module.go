// Package listings provides the sales listings domain module.
package listings

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "dealer_backoffice_backend/internal/http"
	"dealer_backoffice_backend/internal/listings/handler"
	"dealer_backoffice_backend/internal/listings/repository"
	"dealer_backoffice_backend/internal/listings/service"
	"dealer_backoffice_backend/platform/events"
	"dealer_backoffice_backend/platform/logger"
	"dealer_backoffice_backend/platform/validator"
)

// Module represents the listings domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new listings module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "listings"
}

// Service returns the service layer for external use (scheduler).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	listingsGroup := ctx.Protected.Group("/listings")
	m.handler.RegisterRoutes(listingsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
