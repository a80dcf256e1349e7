package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testConfig() Config {
	return Config{
		MarkupPercent:        dec("25"),
		MinimumMarginPercent: dec("10"),
		TransferFee:          dec("25.00"),
		BackgroundCheckFee:   dec("0"),
		SalesTaxPercent:      dec("8.5"),
		CardFeePercent:       dec("3"),
	}
}

func offer(distributor, cost string, reliability, quality float64) Offer {
	return Offer{
		Distributor:    distributor,
		Product:        Product{SKU: "GLK-19-G5", UPC: "764503037276"},
		UnitCost:       dec(cost),
		QuantityOnHand: 10,
		ReliabilityPct: reliability,
		QualityScore:   quality,
	}
}

func TestSelectBestOfferLowestCostWins(t *testing.T) {
	offers := []Offer{
		offer("davidsons", "428.50", 98.5, 4.5),
		offer("lipseys", "425.00", 97.8, 4.0),
		offer("rsr", "432.00", 99.1, 5.0),
	}

	best, err := SelectBestOffer(offers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Distributor != "lipseys" {
		t.Fatalf("expected lipseys to win on cost, got %s", best.Distributor)
	}
}

func TestSelectBestOfferCostTieFallsToReliability(t *testing.T) {
	offers := []Offer{
		offer("davidsons", "425.00", 98.5, 5.0),
		offer("lipseys", "425.00", 99.1, 4.0),
	}

	best, err := SelectBestOffer(offers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Distributor != "lipseys" {
		t.Fatalf("expected reliability tie-break to pick lipseys, got %s", best.Distributor)
	}
}

func TestSelectBestOfferFullTieIsDeterministicByName(t *testing.T) {
	offers := []Offer{
		offer("rsr", "425.00", 99.0, 4.5),
		offer("davidsons", "425.00", 99.0, 4.5),
	}

	for i := 0; i < 10; i++ {
		best, err := SelectBestOffer(offers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if best.Distributor != "davidsons" {
			t.Fatalf("expected davidsons on full tie, got %s", best.Distributor)
		}
	}
}

func TestSelectBestOfferEmpty(t *testing.T) {
	if _, err := SelectBestOffer(nil); err != ErrNoOffers {
		t.Fatalf("expected ErrNoOffers, got %v", err)
	}
}

func TestPriceLineRetailAndTotal(t *testing.T) {
	line, err := PriceLine(offer("lipseys", "425.00", 97.8, 4.0), 2, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !line.UnitRetail.Equal(dec("531.25")) {
		t.Fatalf("expected retail 531.25, got %s", line.UnitRetail)
	}
	if !line.LineTotal.Equal(dec("1062.50")) {
		t.Fatalf("expected line total 1062.50, got %s", line.LineTotal)
	}
	if line.BelowMinimumMargin {
		t.Fatal("25 percent markup line should not be below a 10 percent margin floor")
	}
}

func TestPriceLineRejectsNonPositiveQuantity(t *testing.T) {
	if _, err := PriceLine(offer("lipseys", "425.00", 97.8, 4.0), 0, testConfig()); err != ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestPriceLineMarginFloorBoundary(t *testing.T) {
	cfg := testConfig()
	cfg.MarkupPercent = dec("10")
	cfg.MinimumMarginPercent = dec("10")

	// 100.00 × 1.10 = 110.00 exactly: margin is exactly the floor.
	atFloor, err := PriceLine(offer("lipseys", "100.00", 99, 5), 1, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atFloor.BelowMinimumMargin {
		t.Fatal("margin exactly at the floor must not be flagged")
	}

	// One basis point under the floor triggers the warning.
	cfg.MinimumMarginPercent = dec("10.01")
	underFloor, err := PriceLine(offer("lipseys", "100.00", 99, 5), 1, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !underFloor.BelowMinimumMargin {
		t.Fatal("margin one basis point under the floor must be flagged")
	}
}

func TestPriceTotalsReferenceScenario(t *testing.T) {
	// Three distributors at $425.00 / $428.50 / $432.00; markup 25%,
	// tax 8.5%, transfer fee $25.00, quantity 1, no card payment.
	cfg := testConfig()
	offers := []Offer{
		offer("lipseys", "425.00", 97.8, 4.0),
		offer("davidsons", "428.50", 98.5, 4.5),
		offer("rsr", "432.00", 99.1, 5.0),
	}

	best, err := SelectBestOffer(offers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line, err := PriceLine(best, 1, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	totals := PriceTotals([]LineItem{line}, cfg, false)

	assertEqual := func(name string, got, want decimal.Decimal) {
		t.Helper()
		if !got.Equal(want) {
			t.Fatalf("%s: expected %s, got %s", name, want, got)
		}
	}
	assertEqual("subtotal", totals.Subtotal, dec("531.25"))
	assertEqual("tax", totals.Tax, dec("45.16"))
	assertEqual("fees", totals.Fees, dec("25.00"))
	assertEqual("total", totals.Total, dec("601.41"))
	assertEqual("totalCost", totals.TotalCost, dec("425.00"))
	assertEqual("totalProfit", totals.TotalProfit, dec("106.25"))
	assertEqual("marginPercent", totals.MarginPercent, dec("25.00"))
}

func TestPriceTotalsCardFee(t *testing.T) {
	cfg := testConfig()
	line, err := PriceLine(offer("lipseys", "425.00", 97.8, 4.0), 1, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cash := PriceTotals([]LineItem{line}, cfg, false)
	card := PriceTotals([]LineItem{line}, cfg, true)

	if !cash.CardFee.IsZero() {
		t.Fatalf("cash payment must carry no card fee, got %s", cash.CardFee)
	}
	// 3% of (531.25 + 45.16 + 25.00) = 18.0423 → 18.04
	if !card.CardFee.Equal(dec("18.04")) {
		t.Fatalf("expected card fee 18.04, got %s", card.CardFee)
	}
	if !card.Total.Equal(cash.Total.Add(card.CardFee)) {
		t.Fatalf("card total must be cash total plus card fee, got %s", card.Total)
	}
	// Fees are pass-through: profit is unchanged by the payment method.
	if !card.TotalProfit.Equal(cash.TotalProfit) {
		t.Fatalf("profit must not depend on payment method: %s vs %s", card.TotalProfit, cash.TotalProfit)
	}
}

func TestPriceTotalsIdempotent(t *testing.T) {
	cfg := testConfig()
	lines := make([]LineItem, 0, 3)
	for _, o := range []Offer{
		offer("lipseys", "425.00", 97.8, 4.0),
		offer("davidsons", "17.99", 98.5, 4.5),
		offer("rsr", "1249.95", 99.1, 5.0),
	} {
		line, err := PriceLine(o, 3, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines = append(lines, line)
	}

	first := PriceTotals(lines, cfg, true)
	second := PriceTotals(lines, cfg, true)

	if first.Total.String() != second.Total.String() ||
		first.TotalProfit.String() != second.TotalProfit.String() ||
		first.MarginPercent.String() != second.MarginPercent.String() {
		t.Fatalf("totals must be deterministic: %+v vs %+v", first, second)
	}
}

func TestPriceTotalsRoundTripIdentity(t *testing.T) {
	// total == profit + cost + tax + fees + card fee, to the cent.
	cfg := testConfig()
	lines := make([]LineItem, 0, 2)
	for _, o := range []Offer{
		offer("lipseys", "433.33", 97.8, 4.0),
		offer("rsr", "0.99", 99.1, 5.0),
	} {
		line, err := PriceLine(o, 7, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines = append(lines, line)
	}

	totals := PriceTotals(lines, cfg, true)
	sum := totals.TotalProfit.Add(totals.TotalCost).Add(totals.Tax).Add(totals.Fees).Add(totals.CardFee)
	if !sum.Equal(totals.Total) {
		t.Fatalf("round-trip identity broken: %s != %s", sum, totals.Total)
	}
}

func TestMarginPercentZeroCost(t *testing.T) {
	if !MarginPercent(dec("10"), decimal.Zero).IsZero() {
		t.Fatal("margin with zero cost must be reported as 0")
	}
	if !PriceTotals(nil, testConfig(), false).MarginPercent.IsZero() {
		t.Fatal("empty quote margin must be 0")
	}
}
