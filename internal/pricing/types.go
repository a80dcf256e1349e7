// Package pricing implements the store's single pricing engine: best-offer
// selection across distributors, per-line retail pricing, and quote-level
// totals. Every caller that needs a margin or total routes through this
// package so the formulas cannot drift between call sites.
package pricing

import (
	"github.com/shopspring/decimal"

	"dealer_backoffice_backend/platform/config"
)

// Product identifies a catalog item. Immutable once created; sourced from
// distributor catalog data.
type Product struct {
	SKU          string `json:"sku"`
	UPC          string `json:"upc,omitempty"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Category     string `json:"category,omitempty"`
	Caliber      string `json:"caliber,omitempty"`
}

// Key returns the dedupe identity for the product: UPC when present,
// otherwise SKU.
func (p Product) Key() string {
	if p.UPC != "" {
		return p.UPC
	}
	return p.SKU
}

// Offer is one distributor's price for a Product at a point in time.
// Offers are fetched per request and never persisted independently.
type Offer struct {
	Distributor    string          `json:"distributor"`
	Product        Product         `json:"product"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	QuantityOnHand int             `json:"quantityOnHand"`
	ShippingClass  string          `json:"shippingClass,omitempty"`
	DeliveryDays   int             `json:"deliveryDays,omitempty"`
	QualityScore   float64         `json:"qualityScore"`   // 0–5
	ReliabilityPct float64         `json:"reliabilityPct"` // 0–100
	// Flagged marks offers whose numeric fields failed to parse and were
	// defaulted to zero at the provider boundary.
	Flagged bool `json:"flagged,omitempty"`
}

// Config holds the business parameters for one pricing computation.
// It is supplied per request and never mutated during a computation.
type Config struct {
	MarkupPercent        decimal.Decimal
	MinimumMarginPercent decimal.Decimal
	TransferFee          decimal.Decimal
	BackgroundCheckFee   decimal.Decimal
	SalesTaxPercent      decimal.Decimal
	CardFeePercent       decimal.Decimal
}

// ConfigFromDefaults builds a pricing Config from store-level defaults.
func ConfigFromDefaults(defaults config.PricingDefaultsConfig) Config {
	return Config{
		MarkupPercent:        decimal.NewFromFloat(defaults.GetDefaultMarkupPercent()),
		MinimumMarginPercent: decimal.NewFromFloat(defaults.GetMinimumMarginPercent()),
		TransferFee:          decimal.NewFromFloat(defaults.GetTransferFee()),
		BackgroundCheckFee:   decimal.NewFromFloat(defaults.GetBackgroundCheckFee()),
		SalesTaxPercent:      decimal.NewFromFloat(defaults.GetSalesTaxPercent()),
		CardFeePercent:       decimal.NewFromFloat(defaults.GetCardFeePercent()),
	}
}

// LineItem is a priced quote line: the chosen offer, requested quantity, and
// the derived retail amounts. Owned exclusively by its quote.
type LineItem struct {
	Product  Product `json:"product"`
	Offer    Offer   `json:"offer"`
	Quantity int     `json:"quantity"`

	UnitRetail    decimal.Decimal `json:"unitRetail"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	// BelowMinimumMargin is a warning, not a rejection: the line margin fell
	// under Config.MinimumMarginPercent. Policy decisions belong to the caller.
	BelowMinimumMargin bool `json:"belowMinimumMargin,omitempty"`
}

// Totals holds quote-level monetary results. All fields are rounded to two
// decimal places at the point of computation so repeated reads are stable.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Fees          decimal.Decimal `json:"fees"`
	CardFee       decimal.Decimal `json:"cardFee"`
	Total         decimal.Decimal `json:"total"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
}
