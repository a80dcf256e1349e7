// Package admin exposes operational endpoints for store administrators:
// on-demand triggers for the background jobs the worker otherwise runs on
// a schedule. Every route requires the admin role.
package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apphttp "dealer_backoffice_backend/internal/http"
	"dealer_backoffice_backend/platform/httpkit"
	"dealer_backoffice_backend/platform/logger"
)

// TaskClient enqueues background tasks for the worker to pick up.
type TaskClient interface {
	EnqueueQuoteExpirySweep(ctx context.Context) error
	EnqueueListingSync(ctx context.Context) error
}

// Module represents the admin module. Like dashboard, it is small enough
// that the handlers live here instead of a separate package.
type Module struct {
	tasks TaskClient
	log   *logger.Logger
}

// NewModule creates a new admin module.
func NewModule(tasks TaskClient, log *logger.Logger) *Module {
	return &Module{tasks: tasks, log: log}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "admin"
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	rg := ctx.Protected.Group("/admin")
	rg.Use(httpkit.RequireRole("admin"))
	rg.POST("/tasks/quote-expiry-sweep", m.triggerQuoteExpirySweep)
	rg.POST("/tasks/listing-sync", m.triggerListingSync)
}

func (m *Module) triggerQuoteExpirySweep(c *gin.Context) {
	m.trigger(c, "quote_expiry_sweep", m.tasks.EnqueueQuoteExpirySweep)
}

func (m *Module) triggerListingSync(c *gin.Context) {
	m.trigger(c, "listing_sync", m.tasks.EnqueueListingSync)
}

func (m *Module) trigger(c *gin.Context, task string, enqueue func(context.Context) error) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	if err := enqueue(c.Request.Context()); err != nil {
		m.log.Error("failed to enqueue task", "task", task, "error", err)
		httpkit.Error(c, http.StatusServiceUnavailable, "task queue unavailable", nil)
		return
	}

	m.log.Info("task enqueued", "task", task, "requested_by", id.UserID())
	httpkit.OK(c, gin.H{"task": task, "queued": true})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
