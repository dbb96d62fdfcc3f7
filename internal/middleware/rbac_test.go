package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func rbacRequest(t *testing.T, role string, guard gin.HandlerFunc) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if role != "" {
			c.Set("user_role", role)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequirePermission(t *testing.T) {
	rbac := NewRBACMiddleware(zap.NewNop())

	tests := []struct {
		role       string
		permission string
		want       int
	}{
		{RoleViewer, PermSolveModel, http.StatusOK},
		{RoleViewer, PermRunAnalysis, http.StatusForbidden},
		{RoleAnalyst, PermRunAnalysis, http.StatusOK},
		{RoleAnalyst, PermManageUsers, http.StatusForbidden},
		{RoleAdmin, PermManageUsers, http.StatusOK},
		{"", PermReadSeries, http.StatusUnauthorized},
		{"stranger", PermReadSeries, http.StatusForbidden},
	}

	for _, tt := range tests {
		got := rbacRequest(t, tt.role, rbac.RequirePermission(tt.permission))
		if got != tt.want {
			t.Errorf("role %q permission %q: status = %d, want %d", tt.role, tt.permission, got, tt.want)
		}
	}
}

func TestRequireRoleHierarchy(t *testing.T) {
	rbac := NewRBACMiddleware(zap.NewNop())

	if got := rbacRequest(t, RoleAdmin, rbac.RequireRole(RoleAnalyst)); got != http.StatusOK {
		t.Errorf("admin as analyst: status = %d", got)
	}
	if got := rbacRequest(t, RoleViewer, rbac.RequireRole(RoleAnalyst)); got != http.StatusForbidden {
		t.Errorf("viewer as analyst: status = %d", got)
	}
}
