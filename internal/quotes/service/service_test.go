package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dealer_backoffice_backend/internal/catalog/aggregator"
	"dealer_backoffice_backend/internal/pricing"
	"dealer_backoffice_backend/internal/quotes/domain"
	"dealer_backoffice_backend/internal/quotes/repository"
	"dealer_backoffice_backend/internal/quotes/transport"
	"dealer_backoffice_backend/platform/apperr"
	"dealer_backoffice_backend/platform/logger"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeRepo struct {
	quotes  map[uuid.UUID]*repository.Quote
	counter int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{quotes: make(map[uuid.UUID]*repository.Quote)}
}

func (f *fakeRepo) NextQuoteNumber(ctx context.Context) (string, error) {
	f.counter++
	return fmt.Sprintf("QT-2026-%04d", f.counter), nil
}

func (f *fakeRepo) Create(ctx context.Context, quote *repository.Quote) error {
	stored := *quote
	f.quotes[quote.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*repository.Quote, error) {
	q, ok := f.quotes[id]
	if !ok {
		return nil, apperr.NotFound("quote not found")
	}
	copied := *q
	return &copied, nil
}

func (f *fakeRepo) GetByNumber(ctx context.Context, quoteNumber string) (*repository.Quote, error) {
	for _, q := range f.quotes {
		if q.QuoteNumber == quoteNumber {
			copied := *q
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("quote not found")
}

func (f *fakeRepo) List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error) {
	items := make([]repository.Quote, 0, len(f.quotes))
	for _, q := range f.quotes {
		if params.Status != nil && q.Status != *params.Status {
			continue
		}
		items = append(items, *q)
	}
	return &repository.ListResult{Items: items, Total: len(items), Page: 1, PageSize: 20, TotalPages: 1}, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error {
	q, ok := f.quotes[id]
	if !ok {
		return apperr.NotFound("quote not found")
	}
	if q.Status != from {
		return apperr.Conflict("quote status changed concurrently")
	}
	q.Status = to
	return nil
}

func (f *fakeRepo) UpdateItems(ctx context.Context, quote *repository.Quote) error {
	if _, ok := f.quotes[quote.ID]; !ok {
		return apperr.NotFound("quote not found")
	}
	stored := *quote
	f.quotes[quote.ID] = &stored
	return nil
}

func (f *fakeRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for _, q := range f.quotes {
		if domain.ShouldExpire(q.Status, q.ValidUntil, now) {
			q.Status = domain.StatusExpired
			count++
		}
	}
	return count, nil
}

type fakeOffers struct {
	// byQuery maps search text to a canned result or error.
	results map[string]*aggregator.Result
	errs    map[string]error
}

func (f *fakeOffers) FetchOffers(ctx context.Context, q aggregator.Query, enabled []string) (*aggregator.Result, error) {
	if err, ok := f.errs[q.Search]; ok {
		return &aggregator.Result{}, err
	}
	if result, ok := f.results[q.Search]; ok {
		return result, nil
	}
	return &aggregator.Result{}, nil
}

type fakeCustomers struct {
	known map[uuid.UUID]*Customer
}

func (f *fakeCustomers) Resolve(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, ok := f.known[id]
	if !ok {
		return nil, apperr.NotFound("customer not found")
	}
	return c, nil
}

func (f *fakeCustomers) Ensure(ctx context.Context, name, email, phone string) (*Customer, error) {
	return &Customer{ID: uuid.New(), Name: name, Email: email, Phone: phone}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testDefaults() Defaults {
	return Defaults{
		Pricing: pricing.Config{
			MarkupPercent:        dec("25"),
			MinimumMarginPercent: dec("10"),
			TransferFee:          dec("25.00"),
			SalesTaxPercent:      dec("8.5"),
			CardFeePercent:       dec("3"),
		},
		ValidityDays: 30,
	}
}

func glockOffers() *aggregator.Result {
	return &aggregator.Result{Offers: []pricing.Offer{
		{
			Distributor:    "lipseys",
			Product:        pricing.Product{SKU: "GLK-19-G5", UPC: "764503037276", Name: "Glock 19 Gen5"},
			UnitCost:       dec("425.00"),
			QuantityOnHand: 12,
			ReliabilityPct: 97.8,
			QualityScore:   4.0,
		},
		{
			Distributor:    "davidsons",
			Product:        pricing.Product{SKU: "G19G5", UPC: "764503037276", Name: "Glock 19 Gen5"},
			UnitCost:       dec("428.50"),
			QuantityOnHand: 3,
			ReliabilityPct: 98.5,
			QualityScore:   4.5,
		},
	}}
}

func newTestService(repo Repo, offers OfferSource) *Service {
	return New(repo, offers, &fakeCustomers{}, testDefaults(), logger.New("development"))
}

func buildRequest() transport.BuildQuoteRequest {
	return transport.BuildQuoteRequest{
		Customer: transport.CustomerRef{Name: "John Miller", Email: "jmiller@example.com"},
		Items:    []transport.ProductQueryRequest{{Search: "glock 19", Quantity: 1}},
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestBuildQuoteHappyPath(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{results: map[string]*aggregator.Result{"glock 19": glockOffers()}})

	quote, err := svc.BuildQuote(context.Background(), buildRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.Status != domain.StatusDraft {
		t.Fatalf("new quotes must start in draft, got %s", quote.Status)
	}
	if quote.QuoteNumber != "QT-2026-0001" {
		t.Fatalf("unexpected quote number %s", quote.QuoteNumber)
	}
	if len(quote.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(quote.Items))
	}
	// Lipseys wins on cost; retail = 425.00 × 1.25.
	if quote.Items[0].Distributor != "lipseys" {
		t.Fatalf("expected lipseys to win, got %s", quote.Items[0].Distributor)
	}
	if !quote.Items[0].UnitRetail.Equal(dec("531.25")) {
		t.Fatalf("expected unit retail 531.25, got %s", quote.Items[0].UnitRetail)
	}
	if !quote.Total.Equal(dec("601.41")) {
		t.Fatalf("expected total 601.41, got %s", quote.Total)
	}
	if quote.ValidUntil == nil {
		t.Fatal("quote must carry a validity date")
	}
	if len(repo.quotes) != 1 {
		t.Fatalf("quote must be persisted, found %d", len(repo.quotes))
	}
}

func TestBuildQuotePartialProductFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{
		results: map[string]*aggregator.Result{"glock 19": glockOffers()},
		errs:    map[string]error{"unicorn rifle": aggregator.ErrNoOffersAvailable},
	})

	req := buildRequest()
	req.Items = append(req.Items, transport.ProductQueryRequest{Search: "unicorn rifle", Quantity: 1})

	quote, err := svc.BuildQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("partial failure must still build the quote: %v", err)
	}
	if len(quote.Items) != 1 {
		t.Fatalf("expected 1 priced line, got %d", len(quote.Items))
	}
	if len(quote.FailedProducts) != 1 || quote.FailedProducts[0].Search != "unicorn rifle" {
		t.Fatalf("failed product must be reported, got %+v", quote.FailedProducts)
	}
}

func TestBuildQuoteAllProductsFail(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeOffers{
		errs: map[string]error{"glock 19": aggregator.ErrNoOffersAvailable},
	})

	_, err := svc.BuildQuote(context.Background(), buildRequest())
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error when every product fails, got %v", err)
	}
}

func TestBuildQuoteNoOffersFound(t *testing.T) {
	// Providers succeed but return nothing: the product simply is not carried.
	svc := newTestService(newFakeRepo(), &fakeOffers{})

	_, err := svc.BuildQuote(context.Background(), buildRequest())
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestBuildQuoteValidation(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeOffers{})

	cases := []struct {
		name string
		req  transport.BuildQuoteRequest
	}{
		{"no items", transport.BuildQuoteRequest{
			Customer: transport.CustomerRef{Name: "John", Email: "j@example.com"},
		}},
		{"zero quantity", transport.BuildQuoteRequest{
			Customer: transport.CustomerRef{Name: "John", Email: "j@example.com"},
			Items:    []transport.ProductQueryRequest{{Search: "glock 19", Quantity: 0}},
		}},
		{"missing customer name", transport.BuildQuoteRequest{
			Customer: transport.CustomerRef{Email: "j@example.com"},
			Items:    []transport.ProductQueryRequest{{Search: "glock 19", Quantity: 1}},
		}},
		{"no customer contact", transport.BuildQuoteRequest{
			Customer: transport.CustomerRef{Name: "John"},
			Items:    []transport.ProductQueryRequest{{Search: "glock 19", Quantity: 1}},
		}},
	}

	for _, tc := range cases {
		if _, err := svc.BuildQuote(context.Background(), tc.req); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestTransitionLifecycle(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{results: map[string]*aggregator.Result{"glock 19": glockOffers()}})

	quote, err := svc.BuildQuote(context.Background(), buildRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent, err := svc.Transition(context.Background(), quote.ID, domain.StatusSent)
	if err != nil {
		t.Fatalf("draft → sent failed: %v", err)
	}
	if sent.Status != domain.StatusSent {
		t.Fatalf("expected sent, got %s", sent.Status)
	}

	accepted, err := svc.Transition(context.Background(), quote.ID, domain.StatusAccepted)
	if err != nil {
		t.Fatalf("sent → accepted failed: %v", err)
	}
	if accepted.Status != domain.StatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	// Terminal: no further transitions, stored status unchanged.
	if _, err := svc.Transition(context.Background(), quote.ID, domain.StatusSent); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("transition from accepted must conflict, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), quote.ID)
	if stored.Status != domain.StatusAccepted {
		t.Fatalf("failed transition must not change stored status, got %s", stored.Status)
	}
}

func TestTransitionZeroItemDraftCannotBeSent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{})

	id := uuid.New()
	repo.quotes[id] = &repository.Quote{
		ID:          id,
		QuoteNumber: "QT-2026-0099",
		Status:      domain.StatusDraft,
	}

	if _, err := svc.Transition(context.Background(), id, domain.StatusSent); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("zero-item draft must not be sendable, got %v", err)
	}
}

func TestGetExpiresOverdueSentQuote(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{})

	id := uuid.New()
	past := time.Now().Add(-24 * time.Hour)
	repo.quotes[id] = &repository.Quote{
		ID:          id,
		QuoteNumber: "QT-2026-0042",
		Status:      domain.StatusSent,
		ValidUntil:  &past,
	}

	quote, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Status != domain.StatusExpired {
		t.Fatalf("overdue sent quote must read as expired, got %s", quote.Status)
	}
	if repo.quotes[id].Status != domain.StatusExpired {
		t.Fatalf("expiry must be persisted, stored status is %s", repo.quotes[id].Status)
	}
}

func TestGetDoesNotExpireDraft(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{})

	id := uuid.New()
	past := time.Now().Add(-24 * time.Hour)
	repo.quotes[id] = &repository.Quote{
		ID:         id,
		Status:     domain.StatusDraft,
		ValidUntil: &past,
	}

	quote, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Status != domain.StatusDraft {
		t.Fatalf("drafts never auto-expire, got %s", quote.Status)
	}
}

func TestExpireSweep(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{})

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	for _, q := range []*repository.Quote{
		{ID: uuid.New(), Status: domain.StatusSent, ValidUntil: &past},
		{ID: uuid.New(), Status: domain.StatusSent, ValidUntil: &future},
		{ID: uuid.New(), Status: domain.StatusAccepted, ValidUntil: &past},
	} {
		repo.quotes[q.ID] = q
	}

	count, err := svc.ExpireSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("exactly one quote should expire, got %d", count)
	}
}

func TestBuildQuoteAppliesOverrides(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{results: map[string]*aggregator.Result{"glock 19": glockOffers()}})

	markup := 50.0
	tax := 0.0
	req := buildRequest()
	req.Overrides = &transport.PricingOverrides{MarkupPercent: &markup, SalesTaxPercent: &tax}

	quote, err := svc.BuildQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 425.00 × 1.50 = 637.50, no tax, transfer fee 25.00.
	if !quote.Items[0].UnitRetail.Equal(dec("637.50")) {
		t.Fatalf("override markup not applied, retail %s", quote.Items[0].UnitRetail)
	}
	if !quote.Total.Equal(dec("662.50")) {
		t.Fatalf("expected total 662.50, got %s", quote.Total)
	}
}

func TestConcurrentQuoteNumbersAreDistinct(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{results: map[string]*aggregator.Result{"glock 19": glockOffers()}})

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		quote, err := svc.BuildQuote(context.Background(), buildRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[quote.QuoteNumber] {
			t.Fatalf("duplicate quote number %s", quote.QuoteNumber)
		}
		seen[quote.QuoteNumber] = true
	}
}

func TestUpdateItemsRepricesDraft(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{results: map[string]*aggregator.Result{"glock 19": glockOffers()}})

	quote, err := svc.BuildQuote(context.Background(), buildRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.UpdateItems(context.Background(), quote.ID, transport.UpdateItemsRequest{
		Items: []transport.ProductQueryRequest{{Search: "glock 19", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("draft quotes must accept edits: %v", err)
	}
	if updated.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2 after edit, got %d", updated.Items[0].Quantity)
	}
	// 2 × 531.25 = 1062.50.
	if !updated.Subtotal.Equal(dec("1062.50")) {
		t.Fatalf("expected subtotal 1062.50 after edit, got %s", updated.Subtotal)
	}

	stored, _ := repo.GetByID(context.Background(), quote.ID)
	if len(stored.Items) != 1 || stored.Items[0].Quantity != 2 {
		t.Fatal("edited items must be persisted")
	}
}

func TestUpdateItemsRejectedOnLockedQuote(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOffers{results: map[string]*aggregator.Result{"glock 19": glockOffers()}})

	quote, err := svc.BuildQuote(context.Background(), buildRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Send(context.Background(), quote.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Transition(context.Background(), quote.ID, domain.StatusAccepted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.UpdateItems(context.Background(), quote.ID, transport.UpdateItemsRequest{
		Items: []transport.ProductQueryRequest{{Search: "glock 19", Quantity: 5}},
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("accepted quotes must reject edits, got %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), quote.ID)
	if stored.Items[0].Quantity != 1 {
		t.Fatal("locked quote items must not change")
	}
}
