package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dealer_backoffice_backend/internal/customers/service"
	"dealer_backoffice_backend/internal/customers/transport"
	"dealer_backoffice_backend/platform/httpkit"
	"dealer_backoffice_backend/platform/validator"
)

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgInvalidCustomerID = "invalid customer id"
)

// Handler handles HTTP requests for customers.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new customers handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the customer routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
}

// Create stores a new customer.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	customer, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, customer)
}

// List returns a paginated customer listing.
func (h *Handler) List(c *gin.Context) {
	var req transport.ListCustomersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID fetches one customer.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseCustomerID(c)
	if !ok {
		return
	}

	customer, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, customer)
}

// Update applies changes to a customer.
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseCustomerID(c)
	if !ok {
		return
	}

	var req transport.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	customer, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, customer)
}

func parseCustomerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCustomerID, nil)
		return uuid.Nil, false
	}
	return id, true
}
