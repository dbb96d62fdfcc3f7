package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Role constants
const (
	RoleViewer  = "viewer"
	RoleAnalyst = "analyst"
	RoleAdmin   = "admin"
)

// Permission constants
const (
	PermReadSeries  = "series:read"
	PermRunAnalysis = "analysis:run"
	PermSolveModel  = "model:solve"
	PermManageUsers = "users:manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[string]map[string]bool{
	RoleViewer: {
		PermReadSeries: true,
		PermSolveModel: true,
	},
	RoleAnalyst: {
		PermReadSeries:  true,
		PermSolveModel:  true,
		PermRunAnalysis: true,
	},
	RoleAdmin: {
		PermReadSeries:  true,
		PermSolveModel:  true,
		PermRunAnalysis: true,
		PermManageUsers: true,
	},
}

// RBACMiddleware handles role-based access control. Roles live on the
// user record and travel in the JWT, so no storage lookup is needed.
type RBACMiddleware struct {
	logger *zap.Logger
}

func NewRBACMiddleware(logger *zap.Logger) *RBACMiddleware {
	return &RBACMiddleware{logger: logger}
}

// RequireRole checks if the user has the required role or higher.
// Hierarchy: admin > analyst > viewer.
func (m *RBACMiddleware) RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.checkAccess(c, func(userRole string) bool {
			return isRoleAtLeast(userRole, requiredRole)
		})
	}
}

// RequirePermission checks if the user has the specific permission
func (m *RBACMiddleware) RequirePermission(requiredPermission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.checkAccess(c, func(userRole string) bool {
			return hasPermission(userRole, requiredPermission)
		})
	}
}

func (m *RBACMiddleware) checkAccess(c *gin.Context, checkFunc func(userRole string) bool) {
	role, exists := GetUserRole(c)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if !checkFunc(role) {
		m.logger.Warn("access denied",
			zap.String("role", role),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}

	c.Next()
}

func isRoleAtLeast(userRole, requiredRole string) bool {
	roles := map[string]int{
		RoleViewer:  1,
		RoleAnalyst: 2,
		RoleAdmin:   3,
	}
	return roles[userRole] >= roles[requiredRole]
}

func hasPermission(userRole, requiredPermission string) bool {
	permissions, ok := RolePermissions[userRole]
	if !ok {
		return false
	}
	return permissions[requiredPermission]
}
