package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuedesk/backend/internal/auth"
	"github.com/venuedesk/backend/internal/permissions"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTMiddleware(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	orgID := uuid.New()
	token, err := svc.Generate(userID, "a@example.com", "user", &orgID)
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWT(svc))
	router.GET("/", func(c *gin.Context) {
		assert.Equal(t, userID, UserID(c))
		assert.Equal(t, orgID, OrgID(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWTRejectsTokenFromOtherSecret(t *testing.T) {
	orgID := uuid.New()
	foreign, err := auth.NewJWTService("other-secret", 1).Generate(uuid.New(), "a@example.com", "user", &orgID)
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWT(auth.NewJWTService("test-secret", 1)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+foreign)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func permissionRouter(orgRole string, superAdmin *permissions.SuperAdmin, resource, action string) *gin.Engine {
	ac := permissions.Backoffice()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserID, uuid.New())
		c.Set(ContextUserRole, "user")
		c.Set(ContextOrgID, uuid.New())
		if orgRole != "" {
			c.Set(ContextOrgRole, orgRole)
		}
	})
	router.GET("/", RequirePermission(ac, superAdmin, resource, action), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequirePermission(t *testing.T) {
	noAdmins := permissions.NewSuperAdmin(nil, nil)

	get := func(r *gin.Engine) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get(permissionRouter("owner", noAdmins, "payment", "delete")))
	assert.Equal(t, http.StatusOK, get(permissionRouter("member", noAdmins, "request", "read")))
	assert.Equal(t, http.StatusForbidden, get(permissionRouter("member", noAdmins, "payment", "delete")))
	assert.Equal(t, http.StatusForbidden, get(permissionRouter("production_manager", noAdmins, "payment", "delete")))
	assert.Equal(t, http.StatusForbidden, get(permissionRouter("", noAdmins, "payment", "read")))
	assert.Equal(t, http.StatusForbidden, get(permissionRouter("owner", noAdmins, "nonexistent", "read")))
}

func TestRequirePermissionSuperAdminRoleBypass(t *testing.T) {
	admins := permissions.NewSuperAdmin(nil, []string{"user"})
	router := permissionRouter("member", admins, "payment", "delete")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS("http://localhost:3000"))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
	assert.NotContains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
