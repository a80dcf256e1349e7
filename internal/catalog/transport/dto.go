package transport

import (
	"time"

	"dealer_backoffice_backend/internal/pricing"
)

// SearchRequest carries product search parameters bound from query params.
type SearchRequest struct {
	Search       string   `form:"search" validate:"required,min=2,max=200"`
	Category     string   `form:"category" validate:"omitempty,max=100"`
	SKU          string   `form:"sku" validate:"omitempty,max=100"`
	UPC          string   `form:"upc" validate:"omitempty,max=20"`
	Distributors []string `form:"distributors" validate:"omitempty,dive,min=1"`
}

// SearchResponse is the merged offer set across distributors.
type SearchResponse struct {
	Offers          []pricing.Offer `json:"offers"`
	FailedProviders []string        `json:"failedProviders,omitempty"`
}

// DistributorResponse is the API representation of a distributor record.
type DistributorResponse struct {
	Name           string    `json:"name"`
	DisplayName    string    `json:"displayName"`
	QualityScore   float64   `json:"qualityScore"`
	ReliabilityPct float64   `json:"reliabilityPct"`
	Enabled        bool      `json:"enabled"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UpdateDistributorRequest updates distributor bookkeeping.
type UpdateDistributorRequest struct {
	QualityScore   *float64 `json:"qualityScore" validate:"omitempty,min=0,max=5"`
	ReliabilityPct *float64 `json:"reliabilityPct" validate:"omitempty,min=0,max=100"`
	Enabled        *bool    `json:"enabled"`
}

// ListProductsRequest carries cached-product search parameters.
type ListProductsRequest struct {
	Search   string `form:"search" validate:"omitempty,max=200"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ProductResponse is the API representation of a cached catalog product.
type ProductResponse struct {
	SKU          string    `json:"sku"`
	UPC          string    `json:"upc,omitempty"`
	Name         string    `json:"name"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	Category     string    `json:"category,omitempty"`
	Caliber      string    `json:"caliber,omitempty"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
}

// ListProductsResponse is the paginated cached-product payload.
type ListProductsResponse struct {
	Items    []ProductResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}
