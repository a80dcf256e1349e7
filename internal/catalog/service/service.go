// Package service implements catalog operations: distributor-wide product
// search and distributor bookkeeping.
package service

import (
	"context"
	"errors"
	"time"

	"dealer_backoffice_backend/internal/catalog/aggregator"
	"dealer_backoffice_backend/internal/catalog/repository"
	"dealer_backoffice_backend/internal/catalog/transport"
	"dealer_backoffice_backend/internal/pricing"
	"dealer_backoffice_backend/platform/apperr"
	"dealer_backoffice_backend/platform/logger"
)

// Service exposes catalog search and distributor management.
type Service struct {
	repo *repository.Repository
	agg  *aggregator.Aggregator
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo *repository.Repository, agg *aggregator.Aggregator, log *logger.Logger) *Service {
	return &Service{repo: repo, agg: agg, log: log}
}

// Aggregator returns the offer source for use by the quotes module.
func (s *Service) Aggregator() *aggregator.Aggregator {
	return s.agg
}

// Search fans the query out to the enabled distributors and returns the
// merged offer set. All distributors failing maps to 503.
func (s *Service) Search(ctx context.Context, req transport.SearchRequest) (*transport.SearchResponse, error) {
	result, err := s.agg.FetchOffers(ctx, aggregator.Query{
		Search:   req.Search,
		Category: req.Category,
		SKU:      req.SKU,
		UPC:      req.UPC,
	}, req.Distributors)
	if err != nil {
		if errors.Is(err, aggregator.ErrNoOffersAvailable) {
			return nil, apperr.Unavailable("all distributors failed").
				WithDetails(result.FailedProviders)
		}
		return nil, err
	}
	s.rememberProducts(ctx, result.Offers)

	return &transport.SearchResponse{
		Offers:          result.Offers,
		FailedProviders: result.FailedProviders,
	}, nil
}

// rememberProducts caches the products seen in a search result. Best effort:
// a cache write failure never fails the search.
func (s *Service) rememberProducts(ctx context.Context, offers []pricing.Offer) {
	if len(offers) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(offers))
	products := make([]pricing.Product, 0, len(offers))
	for _, offer := range offers {
		key := offer.Product.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		products = append(products, offer.Product)
	}
	if err := s.repo.UpsertProducts(ctx, products, time.Now()); err != nil {
		s.log.DatabaseError("upsert catalog products", err)
	}
}

// ListProducts returns the locally cached product catalog.
func (s *Service) ListProducts(ctx context.Context, req transport.ListProductsRequest) (*transport.ListProductsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	products, total, err := s.repo.SearchProducts(ctx, req.Search, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]transport.ProductResponse, len(products))
	for i, p := range products {
		items[i] = transport.ProductResponse{
			SKU:          p.SKU,
			UPC:          derefStr(p.UPC),
			Name:         p.Name,
			Manufacturer: derefStr(p.Manufacturer),
			Category:     derefStr(p.Category),
			Caliber:      derefStr(p.Caliber),
			LastSeenAt:   p.LastSeenAt,
		}
	}
	return &transport.ListProductsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListDistributors returns all distributor records.
func (s *Service) ListDistributors(ctx context.Context) ([]transport.DistributorResponse, error) {
	distributors, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.DistributorResponse, len(distributors))
	for i, d := range distributors {
		out[i] = toDistributorResponse(d)
	}
	return out, nil
}

// UpdateDistributor applies score and enablement changes to a distributor.
func (s *Service) UpdateDistributor(ctx context.Context, name string, req transport.UpdateDistributorRequest) (*transport.DistributorResponse, error) {
	current, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if req.QualityScore != nil || req.ReliabilityPct != nil {
		quality := current.QualityScore
		reliability := current.ReliabilityPct
		if req.QualityScore != nil {
			quality = *req.QualityScore
		}
		if req.ReliabilityPct != nil {
			reliability = *req.ReliabilityPct
		}
		if err := s.repo.UpdateScores(ctx, name, quality, reliability); err != nil {
			return nil, err
		}
	}
	if req.Enabled != nil {
		if err := s.repo.SetEnabled(ctx, name, *req.Enabled); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	resp := toDistributorResponse(*updated)
	return &resp, nil
}

// RegisterConfigured ensures a distributor row exists for every configured
// provider. Called once at startup.
func (s *Service) RegisterConfigured(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := s.repo.Upsert(ctx, name, name); err != nil {
			return err
		}
	}
	return nil
}

func toDistributorResponse(d repository.Distributor) transport.DistributorResponse {
	return transport.DistributorResponse{
		Name:           d.Name,
		DisplayName:    d.DisplayName,
		QualityScore:   d.QualityScore,
		ReliabilityPct: d.ReliabilityPct,
		Enabled:        d.Enabled,
		UpdatedAt:      d.UpdatedAt,
	}
}
