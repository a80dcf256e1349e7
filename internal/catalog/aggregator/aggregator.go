// Package aggregator fans a product query out to every enabled distributor
// catalog, normalizes what comes back, and returns the merged offer set.
// A distributor that errors or times out is dropped from the result, never
// fatal to the call: partial results across distributors are meaningful.
package aggregator

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"dealer_backoffice_backend/internal/catalog/provider"
	"dealer_backoffice_backend/internal/pricing"
	"dealer_backoffice_backend/platform/logger"
)

// ErrNoOffersAvailable is returned when every queried distributor failed.
// It is distinct from the zero-offers-found case, where providers succeeded
// but none carried the product.
var ErrNoOffersAvailable = errors.New("no offers available: every distributor failed")

// DefaultProviderTimeout bounds each distributor call independently.
const DefaultProviderTimeout = 5 * time.Second

// Query identifies the product being quoted. UPC takes precedence over SKU
// for matching; Search is the free-text string sent to distributors.
type Query struct {
	Search   string
	Category string
	SKU      string
	UPC      string
}

// DistributorMeta carries the store's quality bookkeeping for a distributor.
type DistributorMeta struct {
	Name           string
	QualityScore   float64 // 0–5
	ReliabilityPct float64 // 0–100
	Enabled        bool
}

// MetaSource supplies distributor metadata, typically backed by the catalog
// repository.
type MetaSource interface {
	ListDistributorMeta(ctx context.Context) ([]DistributorMeta, error)
}

// Result is the outcome of one fan-out: whatever subset of distributors
// succeeded, annotated with the ones that did not.
type Result struct {
	Offers          []pricing.Offer
	FailedProviders []string
}

// Aggregator queries all enabled catalog providers concurrently.
type Aggregator struct {
	providers []provider.CatalogProvider
	meta      MetaSource
	timeout   time.Duration
	log       *logger.Logger
}

// New creates an aggregator over the registered providers.
func New(providers []provider.CatalogProvider, meta MetaSource, timeout time.Duration, log *logger.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Aggregator{
		providers: providers,
		meta:      meta,
		timeout:   timeout,
		log:       log,
	}
}

// FetchOffers queries every enabled distributor in parallel, each call
// bounded by an independent timeout, and waits for all of them to settle.
// When enabled is empty, all store-enabled distributors are queried.
func (a *Aggregator) FetchOffers(ctx context.Context, q Query, enabled []string) (*Result, error) {
	metaByName, err := a.loadMeta(ctx)
	if err != nil {
		return nil, err
	}

	requested := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		requested[name] = true
	}

	eligible := make([]provider.CatalogProvider, 0, len(a.providers))
	for _, p := range a.providers {
		meta, known := metaByName[p.Name()]
		if known && !meta.Enabled {
			continue
		}
		if len(requested) > 0 && !requested[p.Name()] {
			continue
		}
		eligible = append(eligible, p)
	}

	result := &Result{}
	if len(eligible) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, p := range eligible {
		p := p
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			raw, err := p.Search(callCtx, q.Search, q.Category)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.log.ProviderError(p.Name(), q.Search, err)
				result.FailedProviders = append(result.FailedProviders, p.Name())
				return nil
			}
			for _, r := range raw {
				offer, ok := normalize(r, p.Name(), metaByName[p.Name()], q)
				if ok {
					result.Offers = append(result.Offers, offer)
				}
			}
			return nil
		})
	}

	// Provider failures are absorbed above; Wait only propagates ctx errors.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(result.FailedProviders) == len(eligible) {
		sort.Strings(result.FailedProviders)
		return result, ErrNoOffersAvailable
	}

	result.Offers = dedupe(result.Offers)
	sort.Strings(result.FailedProviders)
	return result, nil
}

func (a *Aggregator) loadMeta(ctx context.Context) (map[string]DistributorMeta, error) {
	byName := make(map[string]DistributorMeta)
	if a.meta == nil {
		return byName, nil
	}
	list, err := a.meta.ListDistributorMeta(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		byName[m.Name] = m
	}
	return byName, nil
}

// normalize validates and coerces a raw distributor row into a typed offer.
// Malformed numeric fields default to 0 and flag the offer rather than
// dropping it. Rows that do not match the queried product identity are
// filtered out.
func normalize(r provider.RawOffer, distributor string, meta DistributorMeta, q Query) (pricing.Offer, bool) {
	product := pricing.Product{
		SKU:          strings.TrimSpace(r.ItemNumber),
		UPC:          strings.TrimSpace(r.UPC),
		Name:         strings.TrimSpace(r.Description),
		Manufacturer: strings.TrimSpace(r.Manufacturer),
		Category:     strings.TrimSpace(r.Category),
		Caliber:      strings.TrimSpace(r.Caliber),
	}

	if !matchesQuery(product, q) {
		return pricing.Offer{}, false
	}

	flagged := false
	cost, ok := parsePrice(r.Price)
	if !ok {
		flagged = true
	}
	qty, ok := parseQuantity(r.Quantity)
	if !ok {
		flagged = true
	}

	return pricing.Offer{
		Distributor:    distributor,
		Product:        product,
		UnitCost:       cost,
		QuantityOnHand: qty,
		ShippingClass:  strings.TrimSpace(r.ShipClass),
		DeliveryDays:   r.DeliveryDays,
		QualityScore:   meta.QualityScore,
		ReliabilityPct: meta.ReliabilityPct,
		Flagged:        flagged,
	}, true
}

// matchesQuery checks product identity: UPC when the query carries one,
// otherwise SKU. Free-text queries match everything.
func matchesQuery(p pricing.Product, q Query) bool {
	if q.UPC != "" {
		if p.UPC != "" {
			return p.UPC == q.UPC
		}
		return q.SKU != "" && strings.EqualFold(p.SKU, q.SKU)
	}
	if q.SKU != "" {
		return strings.EqualFold(p.SKU, q.SKU)
	}
	return true
}

// dedupe keeps the first offer per (distributor, product identity) pair,
// preserving one offer per distributor for the pricing engine to rank.
func dedupe(offers []pricing.Offer) []pricing.Offer {
	seen := make(map[string]bool, len(offers))
	out := make([]pricing.Offer, 0, len(offers))
	for _, o := range offers {
		key := o.Distributor + "|" + o.Product.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distributor < out[j].Distributor
	})
	return out
}

func parsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if strings.Contains(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	} else {
		// European feeds use a comma decimal separator
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func parseQuantity(raw string) (int, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(cleaned); err == nil && n >= 0 {
		return n, true
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil && f >= 0 {
		return int(f), true
	}
	return 0, false
}
