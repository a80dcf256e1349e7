// Package dashboard provides the store activity dashboard module.
package dashboard

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealer_backoffice_backend/internal/dashboard/repository"
	"dealer_backoffice_backend/internal/dashboard/service"
	apphttp "dealer_backoffice_backend/internal/http"
	"dealer_backoffice_backend/platform/httpkit"
)

// Module represents the dashboard module. It is read-only and small enough
// that the handler lives here instead of a separate package.
type Module struct {
	service *service.Service
}

// NewModule creates a new dashboard module.
func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{service: service.New(repository.New(pool))}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "dashboard"
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/dashboard/summary", m.summary)
}

func (m *Module) summary(c *gin.Context) {
	windowDays, _ := strconv.Atoi(c.DefaultQuery("windowDays", "30"))

	summary, err := m.service.Summary(c.Request.Context(), windowDays)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summary)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
