package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dealer_backoffice_backend/internal/listings/service"
	"dealer_backoffice_backend/internal/listings/transport"
	"dealer_backoffice_backend/platform/httpkit"
	"dealer_backoffice_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidListingID = "invalid listing id"
)

// Handler handles HTTP requests for listings.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new listings handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the listing routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/publish", h.Publish)
	rg.PATCH("/:id/status", h.UpdateStatus)
}

// Create stores a new draft listing.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	listing, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, listing)
}

// List returns a paginated listing of listings.
func (h *Handler) List(c *gin.Context) {
	var req transport.ListListingsRequest
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

// GetByID fetches one listing.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseListingID(c)
	if !ok {
		return
	}

	listing, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, listing)
}

// Publish moves a draft listing to active.
func (h *Handler) Publish(c *gin.Context) {
	id, ok := parseListingID(c)
	if !ok {
		return
	}

	listing, err := h.svc.Publish(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, listing)
}

// UpdateStatus marks a listing sold or removed.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseListingID(c)
	if !ok {
		return
	}

	var req transport.UpdateListingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	listing, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, listing)
}

func parseListingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidListingID, nil)
		return uuid.Nil, false
	}
	return id, true
}
