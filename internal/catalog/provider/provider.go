// Package provider defines the distributor catalog provider boundary.
// A provider is one wholesale distributor's search API: authentication,
// transport, and rate limiting are entirely the provider's concern; the
// aggregator treats it as a single Search function plus a timeout.
package provider

import "context"

// RawOffer is the unvalidated shape a distributor returns for one item.
// Price and quantity stay raw strings here: distributor feeds disagree on
// formatting ("$429.99", "429,99", "n/a") and all coercion happens once, at
// the aggregation boundary, never downstream.
type RawOffer struct {
	ItemNumber   string `json:"itemNumber"`
	UPC          string `json:"upc"`
	Description  string `json:"description"`
	Manufacturer string `json:"manufacturer"`
	Category     string `json:"category"`
	Caliber      string `json:"caliber"`
	Price        string `json:"price"`
	Quantity     string `json:"quantity"`
	ShipClass    string `json:"shipClass"`
	DeliveryDays int    `json:"deliveryDays"`
}

// CatalogProvider is the per-distributor search contract.
type CatalogProvider interface {
	// Name returns the distributor identifier (e.g. "lipseys").
	Name() string
	// Search queries the distributor's catalog. Category may be empty.
	Search(ctx context.Context, query string, category string) ([]RawOffer, error)
}
