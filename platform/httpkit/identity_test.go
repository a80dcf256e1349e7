package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func authContext(userID uuid.UUID, roles []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRolesKey, roles)
		c.Next()
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		roles      []string
		setRoles   bool
		wantStatus int
	}{
		{name: "matching role passes", roles: []string{"sales", "admin"}, setRoles: true, wantStatus: http.StatusOK},
		{name: "other role forbidden", roles: []string{"sales"}, setRoles: true, wantStatus: http.StatusForbidden},
		{name: "no roles forbidden", roles: nil, setRoles: true, wantStatus: http.StatusForbidden},
		{name: "roles never set forbidden", setRoles: false, wantStatus: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := gin.New()
			if tc.setRoles {
				engine.Use(authContext(uuid.New(), tc.roles))
			}
			engine.GET("/guarded", RequireRole("admin"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			engine.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestGetIdentityReadsAuthContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	engine := gin.New()
	engine.Use(authContext(userID, []string{"admin"}))
	engine.GET("/whoami", func(c *gin.Context) {
		id := GetIdentity(c)
		if !id.IsAuthenticated() {
			t.Fatal("expected authenticated identity")
		}
		if id.UserID() != userID {
			t.Fatalf("expected user %s, got %s", userID, id.UserID())
		}
		if !id.HasRole("admin") || id.HasRole("sales") {
			t.Fatalf("unexpected roles: %v", id.Roles())
		}
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestMustGetIdentityAbortsWhenUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.GET("/whoami", func(c *gin.Context) {
		if id := MustGetIdentity(c); id != nil {
			t.Fatalf("expected nil identity, got user %s", id.UserID())
		}
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
