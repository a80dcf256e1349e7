package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateListingRequest is the request body for creating a listing.
type CreateListingRequest struct {
	SKU         string `json:"sku" validate:"required,min=1,max=100"`
	Title       string `json:"title" validate:"required,min=3,max=300"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Price       string `json:"price" validate:"required"`
	Marketplace string `json:"marketplace" validate:"required,oneof=gunbroker website"`
}

// UpdateListingStatusRequest moves a listing to sold or removed.
type UpdateListingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=sold removed"`
}

// ListListingsRequest carries list filters bound from query parameters.
type ListListingsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=draft active sold removed"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ListingResponse is the API representation of a listing.
type ListingResponse struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	Marketplace string          `json:"marketplace"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
	SyncedAt    *time.Time      `json:"syncedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ListListingsResponse is the paginated list payload.
type ListListingsResponse struct {
	Items    []ListingResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}
