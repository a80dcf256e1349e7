package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "dealer_backoffice_backend/internal/http"
	"dealer_backoffice_backend/platform/httpkit"
	"dealer_backoffice_backend/platform/logger"
)

type fakeTaskClient struct {
	sweeps int
	syncs  int
	err    error
}

func (f *fakeTaskClient) EnqueueQuoteExpirySweep(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.sweeps++
	return nil
}

func (f *fakeTaskClient) EnqueueListingSync(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.syncs++
	return nil
}

// newTestEngine mounts the admin module behind a stub auth middleware that
// injects the given roles, mirroring what AuthRequired does after a valid
// token.
func newTestEngine(tasks TaskClient, roles []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	protected := engine.Group("/api/v1")
	protected.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextRolesKey, roles)
		c.Next()
	})

	module := NewModule(tasks, logger.New("development"))
	module.RegisterRoutes(&apphttp.RouterContext{Engine: engine, Protected: protected})
	return engine
}

func TestAdminTriggersEnqueueTasks(t *testing.T) {
	tasks := &fakeTaskClient{}
	engine := newTestEngine(tasks, []string{"admin"})

	for _, path := range []string{
		"/api/v1/admin/tasks/quote-expiry-sweep",
		"/api/v1/admin/tasks/listing-sync",
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("POST %s: expected status %d, got %d (%s)", path, http.StatusOK, rec.Code, rec.Body.String())
		}
	}

	if tasks.sweeps != 1 || tasks.syncs != 1 {
		t.Fatalf("expected one sweep and one sync enqueued, got sweeps=%d syncs=%d", tasks.sweeps, tasks.syncs)
	}
}

func TestAdminTriggersForbiddenWithoutAdminRole(t *testing.T) {
	tasks := &fakeTaskClient{}
	engine := newTestEngine(tasks, []string{"sales"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tasks/quote-expiry-sweep", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if tasks.sweeps != 0 {
		t.Fatalf("expected no task enqueued for non-admin, got %d", tasks.sweeps)
	}
}

func TestAdminTriggerQueueUnavailable(t *testing.T) {
	tasks := &fakeTaskClient{err: context.DeadlineExceeded}
	engine := newTestEngine(tasks, []string{"admin"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tasks/listing-sync", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}
