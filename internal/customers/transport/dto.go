package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateCustomerRequest is the request body for creating a customer.
type CreateCustomerRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Email       string `json:"email" validate:"omitempty,email,max=320"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	Notes       string `json:"notes" validate:"omitempty,max=2000"`
	FFLTransfer bool   `json:"fflTransfer"`
}

// UpdateCustomerRequest is the request body for updating a customer.
type UpdateCustomerRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=200"`
	Email       *string `json:"email" validate:"omitempty,email,max=320"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
	FFLTransfer *bool   `json:"fflTransfer"`
}

// ListCustomersRequest carries list filters bound from query parameters.
type ListCustomersRequest struct {
	Search   string `form:"search" validate:"omitempty,max=200"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// CustomerResponse is the API representation of a customer.
type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	FFLTransfer bool      `json:"fflTransfer"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListCustomersResponse is the paginated list payload.
type ListCustomersResponse struct {
	Items    []CustomerResponse `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}
