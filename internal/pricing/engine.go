package pricing

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrNoOffers is returned by SelectBestOffer when the offer set is empty.
var ErrNoOffers = errors.New("no offers to select from")

// ErrInvalidQuantity is returned by PriceLine for non-positive quantities.
var ErrInvalidQuantity = errors.New("quantity must be positive")

var hundred = decimal.NewFromInt(100)

// round2 rounds to the nearest cent. decimal.Round rounds half away from
// zero, which is round-half-up for the non-negative amounts handled here.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SelectBestOffer picks the winning offer. Tie-break order: lowest unit
// cost, then highest reliability, then highest quality score, then
// distributor name for a stable, deterministic result.
func SelectBestOffer(offers []Offer) (Offer, error) {
	if len(offers) == 0 {
		return Offer{}, ErrNoOffers
	}

	sorted := make([]Offer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if cmp := a.UnitCost.Cmp(b.UnitCost); cmp != 0 {
			return cmp < 0
		}
		if a.ReliabilityPct != b.ReliabilityPct {
			return a.ReliabilityPct > b.ReliabilityPct
		}
		if a.QualityScore != b.QualityScore {
			return a.QualityScore > b.QualityScore
		}
		return a.Distributor < b.Distributor
	})

	return sorted[0], nil
}

// PriceLine derives the retail line for an offer and quantity.
// Retail unit price is cost × (1 + markup/100) rounded to the cent; a line
// whose margin falls under the configured floor is returned with
// BelowMinimumMargin set rather than rejected.
func PriceLine(offer Offer, quantity int, cfg Config) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}

	markupFactor := decimal.NewFromInt(1).Add(cfg.MarkupPercent.Div(hundred))
	unitRetail := round2(offer.UnitCost.Mul(markupFactor))

	margin := decimal.Zero
	if offer.UnitCost.IsPositive() {
		margin = unitRetail.Sub(offer.UnitCost).Div(offer.UnitCost).Mul(hundred)
	}

	qty := decimal.NewFromInt(int64(quantity))
	return LineItem{
		Product:            offer.Product,
		Offer:              offer,
		Quantity:           quantity,
		UnitRetail:         unitRetail,
		LineTotal:          round2(unitRetail.Mul(qty)),
		MarginPercent:      round2(margin),
		BelowMinimumMargin: margin.LessThan(cfg.MinimumMarginPercent),
	}, nil
}

// PriceTotals computes quote-level totals from priced lines.
//
// Transfer and background-check fees are fixed per transaction, independent
// of item count. The card processing fee applies only when the caller
// indicates card payment, and is computed over subtotal + tax + fees.
// Tax, fees, and the card fee are pass-through amounts: profit is the retail
// subtotal less distributor cost.
func PriceTotals(lines []LineItem, cfg Config, paymentIsCard bool) Totals {
	subtotal := decimal.Zero
	totalCost := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
		qty := decimal.NewFromInt(int64(line.Quantity))
		totalCost = totalCost.Add(round2(line.Offer.UnitCost.Mul(qty)))
	}

	tax := round2(subtotal.Mul(cfg.SalesTaxPercent).Div(hundred))
	fees := round2(cfg.TransferFee.Add(cfg.BackgroundCheckFee))

	cardFee := decimal.Zero
	if paymentIsCard {
		cardFee = round2(subtotal.Add(tax).Add(fees).Mul(cfg.CardFeePercent).Div(hundred))
	}

	total := subtotal.Add(tax).Add(fees).Add(cardFee)
	profit := subtotal.Sub(totalCost)

	return Totals{
		Subtotal:      subtotal,
		Tax:           tax,
		Fees:          fees,
		CardFee:       cardFee,
		Total:         total,
		TotalCost:     totalCost,
		TotalProfit:   profit,
		MarginPercent: MarginPercent(profit, totalCost),
	}
}

// MarginPercent reports profit as a percentage of cost, rounded to two
// decimals. Margin is undefined when cost is zero and reported as 0.
func MarginPercent(profit, cost decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return round2(profit.Div(cost).Mul(hundred))
}
