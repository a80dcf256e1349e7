package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dealer_backoffice_backend/internal/quotes/service"
	"dealer_backoffice_backend/internal/quotes/transport"
	"dealer_backoffice_backend/platform/httpkit"
	"dealer_backoffice_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidQuoteID   = "invalid quote id"
)

// PDFRenderer renders a quote to PDF bytes for download.
type PDFRenderer interface {
	RenderQuote(quote *transport.QuoteResponse) ([]byte, error)
}

// Handler handles HTTP requests for quotes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	pdf PDFRenderer
}

// New creates a new quotes handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SetPDFRenderer injects the PDF renderer for quote downloads.
func (h *Handler) SetPDFRenderer(renderer PDFRenderer) {
	h.pdf = renderer
}

// RegisterRoutes registers the quote routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Build)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id/items", h.UpdateItems)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.POST("/:id/send", h.Send)
	rg.GET("/:id/pdf", h.DownloadPDF)
}

// Build creates a new quote from product queries.
func (h *Handler) Build(c *gin.Context) {
	var req transport.BuildQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	quote, err := h.svc.BuildQuote(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, quote)
}

// List returns a paginated quote listing.
func (h *Handler) List(c *gin.Context) {
	var req transport.ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID fetches one quote.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	quote, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, quote)
}

// UpdateItems re-prices a quote's items against current distributor offers.
func (h *Handler) UpdateItems(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	var req transport.UpdateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	quote, err := h.svc.UpdateItems(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, quote)
}

// UpdateStatus performs an explicit lifecycle transition.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	quote, err := h.svc.Transition(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, quote)
}

// Send marks a quote as sent to the customer.
func (h *Handler) Send(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	quote, err := h.svc.Send(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, quote)
}

// DownloadPDF renders the quote as a PDF document.
func (h *Handler) DownloadPDF(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}
	if h.pdf == nil {
		httpkit.Error(c, http.StatusNotImplemented, "PDF rendering is not configured", nil)
		return
	}

	quote, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	content, err := h.pdf.RenderQuote(quote)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "PDF generation failed", nil)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+quote.QuoteNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", content)
}

func parseQuoteID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQuoteID, nil)
		return uuid.Nil, false
	}
	return id, true
}
