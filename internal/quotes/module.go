// Package quotes provides the quote building and lifecycle domain module.
package quotes

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "dealer_backoffice_backend/internal/http"
	"dealer_backoffice_backend/internal/pricing"
	"dealer_backoffice_backend/internal/quotes/handler"
	"dealer_backoffice_backend/internal/quotes/repository"
	"dealer_backoffice_backend/internal/quotes/service"
	"dealer_backoffice_backend/platform/config"
	"dealer_backoffice_backend/platform/events"
	"dealer_backoffice_backend/platform/logger"
	"dealer_backoffice_backend/platform/validator"
)

// Module represents the quotes domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired. The
// offer source and customer directory come from the catalog and customers
// modules; the quotes module owns only persistence, pricing orchestration,
// and lifecycle.
func NewModule(
	pool *pgxpool.Pool,
	offers service.OfferSource,
	customers service.CustomerDirectory,
	cfg interface {
		config.PricingDefaultsConfig
	},
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, offers, customers, service.Defaults{
		Pricing:      pricing.ConfigFromDefaults(cfg),
		ValidityDays: cfg.GetQuoteValidityDays(),
	}, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use (scheduler, dashboard).
func (m *Module) Service() *service.Service {
	return m.service
}

// SetPDFRenderer wires the PDF renderer for quote downloads.
func (m *Module) SetPDFRenderer(renderer handler.PDFRenderer) {
	m.handler.SetPDFRenderer(renderer)
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotes := ctx.Protected.Group("/quotes")
	m.handler.RegisterRoutes(quotes)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
