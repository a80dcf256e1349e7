package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealer_backoffice_backend/internal/catalog/provider"
	"dealer_backoffice_backend/platform/logger"
)

type stubProvider struct {
	name   string
	offers []provider.RawOffer
	err    error
	delay  time.Duration
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(ctx context.Context, query, category string) ([]provider.RawOffer, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.offers, nil
}

type stubMeta struct {
	list []DistributorMeta
	err  error
}

func (s *stubMeta) ListDistributorMeta(ctx context.Context) ([]DistributorMeta, error) {
	return s.list, s.err
}

func rawOffer(sku, upc, price, qty string) provider.RawOffer {
	return provider.RawOffer{
		ItemNumber:  sku,
		UPC:         upc,
		Description: "Glock 19 Gen5 9mm",
		Price:       price,
		Quantity:    qty,
	}
}

func newTestAggregator(providers []provider.CatalogProvider, meta MetaSource, timeout time.Duration) *Aggregator {
	return New(providers, meta, timeout, logger.New("development"))
}

func TestFetchOffersMergesAcrossProviders(t *testing.T) {
	agg := newTestAggregator([]provider.CatalogProvider{
		&stubProvider{name: "lipseys", offers: []provider.RawOffer{rawOffer("GLK-19", "764503037276", "425.00", "12")}},
		&stubProvider{name: "davidsons", offers: []provider.RawOffer{rawOffer("G19G5", "764503037276", "428.50", "3")}},
	}, &stubMeta{list: []DistributorMeta{
		{Name: "lipseys", QualityScore: 4.0, ReliabilityPct: 97.8, Enabled: true},
		{Name: "davidsons", QualityScore: 4.5, ReliabilityPct: 98.5, Enabled: true},
	}}, time.Second)

	result, err := agg.FetchOffers(context.Background(), Query{Search: "glock 19"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(result.Offers))
	}
	if len(result.FailedProviders) != 0 {
		t.Fatalf("expected no failed providers, got %v", result.FailedProviders)
	}
	// Deterministic ordering by distributor name.
	if result.Offers[0].Distributor != "davidsons" || result.Offers[1].Distributor != "lipseys" {
		t.Fatalf("offers not ordered by distributor: %s, %s", result.Offers[0].Distributor, result.Offers[1].Distributor)
	}
	// Distributor metadata decorates each offer.
	if result.Offers[1].ReliabilityPct != 97.8 || result.Offers[1].QualityScore != 4.0 {
		t.Fatalf("lipseys offer missing distributor metadata: %+v", result.Offers[1])
	}
}

func TestFetchOffersDropsFailedProviderSilently(t *testing.T) {
	agg := newTestAggregator([]provider.CatalogProvider{
		&stubProvider{name: "lipseys", offers: []provider.RawOffer{rawOffer("GLK-19", "764503037276", "425.00", "12")}},
		&stubProvider{name: "rsr", err: errors.New("connection refused")},
	}, nil, time.Second)

	result, err := agg.FetchOffers(context.Background(), Query{Search: "glock 19"}, nil)
	if err != nil {
		t.Fatalf("partial failure must not be an error, got %v", err)
	}
	if len(result.Offers) != 1 || result.Offers[0].Distributor != "lipseys" {
		t.Fatalf("expected only the lipseys offer, got %+v", result.Offers)
	}
	if len(result.FailedProviders) != 1 || result.FailedProviders[0] != "rsr" {
		t.Fatalf("expected rsr in failed providers, got %v", result.FailedProviders)
	}
}

func TestFetchOffersAllProvidersFailed(t *testing.T) {
	agg := newTestAggregator([]provider.CatalogProvider{
		&stubProvider{name: "lipseys", err: errors.New("timeout")},
		&stubProvider{name: "rsr", err: errors.New("503")},
	}, nil, time.Second)

	result, err := agg.FetchOffers(context.Background(), Query{Search: "glock 19"}, nil)
	if !errors.Is(err, ErrNoOffersAvailable) {
		t.Fatalf("expected ErrNoOffersAvailable, got %v", err)
	}
	if len(result.FailedProviders) != 2 {
		t.Fatalf("expected both providers reported failed, got %v", result.FailedProviders)
	}
}

func TestFetchOffersZeroResultsIsNotAnError(t *testing.T) {
	agg := newTestAggregator([]provider.CatalogProvider{
		&stubProvider{name: "lipseys"},
	}, nil, time.Second)

	result, err := agg.FetchOffers(context.Background(), Query{Search: "discontinued item"}, nil)
	if err != nil {
		t.Fatalf("empty catalogs must not be an error, got %v", err)
	}
	if len(result.Offers) != 0 || len(result.FailedProviders) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestFetchOffersTimesOutSlowProvider(t *testing.T) {
	agg := newTestAggregator([]provider.CatalogProvider{
		&stubProvider{name: "lipseys", offers: []provider.RawOffer{rawOffer("GLK-19", "764503037276", "425.00", "12")}},
		&stubProvider{name: "slow", delay: 500 * time.Millisecond},
	}, nil, 50*time.Millisecond)

	result, err := agg.FetchOffers(context.Background(), Query{Search: "glock 19"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.FailedProviders) != 1 || result.FailedProviders[0] != "slow" {
		t.Fatalf("slow provider must be dropped as failed, got %v", result.FailedProviders)
	}
	if len(result.Offers) != 1 {
		t.Fatalf("fast provider's offers must survive, got %d", len(result.Offers))
	}
}

func TestFetchOffersSkipsDisabledDistributor(t *testing.T) {
	agg := newTestAggregator([]provider.CatalogProvider{
		&stubProvider{name: "lipseys", offers: []provider.RawOffer{rawOffer("GLK-19", "764503037276", "425.00", "12")}},
		&stubProvider{name: "rsr", err: errors.New("should never be called")},
	}, &stubMeta{list: []DistributorMeta{
		{Name: "lipseys", Enabled: true},
		{Name: "rsr", Enabled: false},
	}}, time.Second)

	result, err := agg.FetchOffers(context.Background(), Query{Search: "glock 19"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.FailedProviders) != 0 {
		t.Fatalf("disabled distributor must not be queried, got failures %v", result.FailedProviders)
	}
	if len(result.Offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(result.Offers))
	}
}

func TestFetchOffersRestrictsToRequestedDistributors(t *testing.T) {
	agg := newTestAggregator([]provider.CatalogProvider{
		&stubProvider{name: "lipseys", offers: []provider.RawOffer{rawOffer("GLK-19", "764503037276", "425.00", "12")}},
		&stubProvider{name: "davidsons", offers: []provider.RawOffer{rawOffer("G19G5", "764503037276", "428.50", "3")}},
	}, nil, time.Second)

	result, err := agg.FetchOffers(context.Background(), Query{Search: "glock 19"}, []string{"davidsons"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Offers) != 1 || result.Offers[0].Distributor != "davidsons" {
		t.Fatalf("expected only davidsons offers, got %+v", result.Offers)
	}
}

func TestFetchOffersFlagsMalformedNumerics(t *testing.T) {
	agg := newTestAggregator([]provider.CatalogProvider{
		&stubProvider{name: "lipseys", offers: []provider.RawOffer{rawOffer("GLK-19", "764503037276", "call for price", "n/a")}},
	}, nil, time.Second)

	result, err := agg.FetchOffers(context.Background(), Query{Search: "glock 19"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Offers) != 1 {
		t.Fatalf("malformed rows must be kept, got %d offers", len(result.Offers))
	}
	o := result.Offers[0]
	if !o.Flagged {
		t.Fatal("offer with unparseable price must be flagged")
	}
	if !o.UnitCost.IsZero() || o.QuantityOnHand != 0 {
		t.Fatalf("malformed numerics must default to zero, got cost=%s qty=%d", o.UnitCost, o.QuantityOnHand)
	}
}

func TestFetchOffersDedupesByProductIdentity(t *testing.T) {
	agg := newTestAggregator([]provider.CatalogProvider{
		&stubProvider{name: "lipseys", offers: []provider.RawOffer{
			rawOffer("GLK-19", "764503037276", "425.00", "12"),
			rawOffer("GLK-19-ALT", "764503037276", "430.00", "4"),
		}},
	}, nil, time.Second)

	result, err := agg.FetchOffers(context.Background(), Query{Search: "glock 19"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Offers) != 1 {
		t.Fatalf("same UPC from one distributor must dedupe to one offer, got %d", len(result.Offers))
	}
	if got := result.Offers[0].UnitCost.String(); got != "425" {
		t.Fatalf("first offer wins the dedupe, got cost %s", got)
	}
}

func TestFetchOffersPriceFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"$429.99", "429.99"},
		{"429,99", "429.99"},
		{"1,249.95", "1249.95"},
		{" 425.00 ", "425"},
	}
	for _, tc := range cases {
		d, ok := parsePrice(tc.raw)
		if !ok {
			t.Fatalf("parsePrice(%q) unexpectedly failed", tc.raw)
		}
		if d.String() != tc.want {
			t.Fatalf("parsePrice(%q) = %s, want %s", tc.raw, d, tc.want)
		}
	}
	if _, ok := parsePrice("-5.00"); ok {
		t.Fatal("negative prices must be rejected")
	}
}
