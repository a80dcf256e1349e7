package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealer_backoffice_backend/internal/catalog/service"
	"dealer_backoffice_backend/internal/catalog/transport"
	"dealer_backoffice_backend/platform/httpkit"
	"dealer_backoffice_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for catalog search and distributors.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.Search)
	rg.GET("/products", h.ListProducts)
	rg.GET("/distributors", h.ListDistributors)
	rg.PATCH("/distributors/:name", httpkit.RequireRole("admin"), h.UpdateDistributor)
}

// Search queries all enabled distributor catalogs for a product.
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Search(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListProducts returns the locally cached product catalog.
func (h *Handler) ListProducts(c *gin.Context) {
	var req transport.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListProducts(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListDistributors returns all distributor records.
func (h *Handler) ListDistributors(c *gin.Context) {
	distributors, err := h.svc.ListDistributors(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, distributors)
}

// UpdateDistributor updates scores or enablement for a distributor.
func (h *Handler) UpdateDistributor(c *gin.Context) {
	var req transport.UpdateDistributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	updated, err := h.svc.UpdateDistributor(c.Request.Context(), c.Param("name"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, updated)
}
