// Package catalog provides the distributor catalog domain module: provider
// clients, the offer aggregator, and distributor bookkeeping.
package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"dealer_backoffice_backend/internal/catalog/aggregator"
	"dealer_backoffice_backend/internal/catalog/handler"
	"dealer_backoffice_backend/internal/catalog/provider"
	"dealer_backoffice_backend/internal/catalog/repository"
	"dealer_backoffice_backend/internal/catalog/service"
	apphttp "dealer_backoffice_backend/internal/http"
	"dealer_backoffice_backend/platform/config"
	"dealer_backoffice_backend/platform/logger"
	"dealer_backoffice_backend/platform/validator"
)

// Module represents the catalog domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the catalog module: one HTTP provider per configured
// distributor, the aggregator over them, and distributor persistence.
func NewModule(pool *pgxpool.Pool, cfg config.DistributorConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)

	distributors := cfg.GetDistributors()
	providers := make([]provider.CatalogProvider, len(distributors))
	for i, d := range distributors {
		providers[i] = provider.NewHTTPProvider(d, log)
	}

	agg := aggregator.New(providers, repo, cfg.GetProviderTimeout(), log)
	svc := service.New(repo, agg, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// OfferSource returns the aggregator for the quotes module.
func (m *Module) OfferSource() *aggregator.Aggregator {
	return m.service.Aggregator()
}

// RegisterConfigured seeds distributor rows for every configured provider.
func (m *Module) RegisterConfigured(ctx context.Context, cfg config.DistributorConfig) error {
	names := make([]string, 0, len(cfg.GetDistributors()))
	for _, d := range cfg.GetDistributors() {
		names = append(names, d.Name)
	}
	return m.service.RegisterConfigured(ctx, names)
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	catalogGroup := ctx.Protected.Group("/catalog")
	m.handler.RegisterRoutes(catalogGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
