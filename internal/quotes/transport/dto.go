package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dealer_backoffice_backend/internal/pricing"
	"dealer_backoffice_backend/internal/quotes/domain"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// ProductQueryRequest identifies one product the customer wants quoted.
type ProductQueryRequest struct {
	Search   string `json:"search" validate:"required,min=2,max=200"`
	Category string `json:"category" validate:"omitempty,max=100"`
	SKU      string `json:"sku" validate:"omitempty,max=100"`
	UPC      string `json:"upc" validate:"omitempty,max=20"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CustomerRef identifies the quote's customer. Either an existing customer ID
// or enough inline identity to create the quote against.
type CustomerRef struct {
	ID    *uuid.UUID `json:"id"`
	Name  string     `json:"name" validate:"omitempty,max=200"`
	Email string     `json:"email" validate:"omitempty,email,max=320"`
	Phone string     `json:"phone" validate:"omitempty,max=32"`
}

// PricingOverrides lets a request override the store's pricing defaults.
// Nil fields fall back to configuration.
type PricingOverrides struct {
	MarkupPercent        *float64 `json:"markupPercent" validate:"omitempty,min=0,max=500"`
	MinimumMarginPercent *float64 `json:"minimumMarginPercent" validate:"omitempty,min=0,max=100"`
	TransferFee          *float64 `json:"transferFee" validate:"omitempty,min=0"`
	BackgroundCheckFee   *float64 `json:"backgroundCheckFee" validate:"omitempty,min=0"`
	SalesTaxPercent      *float64 `json:"salesTaxPercent" validate:"omitempty,min=0,max=100"`
	CardFeePercent       *float64 `json:"cardFeePercent" validate:"omitempty,min=0,max=100"`
}

// BuildQuoteRequest is the request body for building a new quote. Each product
// query fans out to the enabled distributors; the best offer per product
// becomes a line item.
type BuildQuoteRequest struct {
	Customer      CustomerRef           `json:"customer" validate:"required"`
	Items         []ProductQueryRequest `json:"items" validate:"required,min=1,dive"`
	Distributors  []string              `json:"distributors" validate:"omitempty,dive,min=1"`
	Overrides     *PricingOverrides     `json:"overrides"`
	PaymentIsCard bool                  `json:"paymentIsCard"`
	Notes         string                `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateItemsRequest is the request body for re-pricing a quote's items.
// Only draft and sent quotes can be edited; the products are re-fetched and
// re-priced against current distributor offers.
type UpdateItemsRequest struct {
	Items         []ProductQueryRequest `json:"items" validate:"required,min=1,dive"`
	Distributors  []string              `json:"distributors" validate:"omitempty,dive,min=1"`
	Overrides     *PricingOverrides     `json:"overrides"`
	PaymentIsCard bool                  `json:"paymentIsCard"`
	Notes         *string               `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateStatusRequest is the request body for a lifecycle transition.
type UpdateStatusRequest struct {
	Status domain.Status `json:"status" validate:"required,oneof=draft sent accepted rejected expired"`
}

// ListQuotesRequest carries list filters bound from query parameters.
type ListQuotesRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=draft sent accepted rejected expired"`
	Search   string `form:"search" validate:"omitempty,max=200"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// LineItemResponse is one priced line on a quote.
type LineItemResponse struct {
	Product            pricing.Product `json:"product"`
	Distributor        string          `json:"distributor"`
	Quantity           int             `json:"quantity"`
	UnitCost           decimal.Decimal `json:"unitCost"`
	UnitRetail         decimal.Decimal `json:"unitRetail"`
	LineTotal          decimal.Decimal `json:"lineTotal"`
	MarginPercent      decimal.Decimal `json:"marginPercent"`
	BelowMinimumMargin bool            `json:"belowMinimumMargin,omitempty"`
	Flagged            bool            `json:"flagged,omitempty"`
}

// QuoteResponse is the full quote representation returned by the API.
type QuoteResponse struct {
	ID            uuid.UUID          `json:"id"`
	QuoteNumber   string             `json:"quoteNumber"`
	Status        domain.Status      `json:"status"`
	CustomerID    uuid.UUID          `json:"customerId"`
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
	CustomerPhone string             `json:"customerPhone,omitempty"`
	Items         []LineItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Fees          decimal.Decimal    `json:"fees"`
	CardFee       decimal.Decimal    `json:"cardFee"`
	Total         decimal.Decimal    `json:"total"`
	TotalCost     decimal.Decimal    `json:"totalCost"`
	TotalProfit   decimal.Decimal    `json:"totalProfit"`
	MarginPercent decimal.Decimal    `json:"marginPercent"`
	// FailedProducts lists product queries that produced no line item, with
	// the reason. The quote is still created from the lines that succeeded.
	FailedProducts []FailedProduct `json:"failedProducts,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	ValidUntil     *time.Time      `json:"validUntil,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// FailedProduct reports a product query that could not be priced.
type FailedProduct struct {
	Search string `json:"search"`
	Reason string `json:"reason"`
}

// QuoteSummary is the list-view representation.
type QuoteSummary struct {
	ID           uuid.UUID       `json:"id"`
	QuoteNumber  string          `json:"quoteNumber"`
	Status       domain.Status   `json:"status"`
	CustomerName string          `json:"customerName"`
	Total        decimal.Decimal `json:"total"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
	ItemCount    int             `json:"itemCount"`
	ValidUntil   *time.Time      `json:"validUntil,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ListQuotesResponse is the paginated list payload.
type ListQuotesResponse struct {
	Items      []QuoteSummary `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
