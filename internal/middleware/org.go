package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/venuedesk/backend/internal/organizations"
	"github.com/venuedesk/backend/internal/permissions"
	"github.com/venuedesk/backend/pkg/response"
)

// RequireOrganization resolves the caller's membership in the active
// organization from the session and stores the org id and role in context.
// Super admins pass without a membership row; their org role is their
// platform role. Organization-scoped handlers run behind this middleware.
func RequireOrganization(orgs *organizations.Repository, superAdmin *permissions.SuperAdmin) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(ContextUserID).(uuid.UUID)
		role, _ := c.MustGet(ContextUserRole).(string)

		orgVal, ok := c.Get(ContextOrgID)
		if !ok {
			response.Forbidden(c, "no active organization")
			c.Abort()
			return
		}
		orgID := orgVal.(uuid.UUID)

		// Super admins bypass organization membership entirely.
		if superAdmin.Is(userID.String(), role) {
			c.Set(ContextOrgRole, role)
			c.Next()
			return
		}

		member, err := orgs.GetMember(c.Request.Context(), orgID, userID)
		if err != nil {
			response.StoreError(c, nil, err)
			c.Abort()
			return
		}
		if member == nil {
			response.Forbidden(c, "not a member of this organization")
			c.Abort()
			return
		}
		if !member.IsActive {
			response.Forbidden(c, "membership is inactive")
			c.Abort()
			return
		}
		c.Set(ContextOrgRole, member.Role)
		c.Next()
	}
}

// RequirePermission allows the request only when the caller's organization
// role grants the action on the resource, or the caller is a super admin.
// Must run after RequireOrganization.
func RequirePermission(ac *permissions.AccessControl, superAdmin *permissions.SuperAdmin, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(ContextUserID).(uuid.UUID)
		platformRole, _ := c.MustGet(ContextUserRole).(string)
		if superAdmin.Is(userID.String(), platformRole) {
			c.Next()
			return
		}

		roleVal, ok := c.Get(ContextOrgRole)
		if !ok {
			response.Forbidden(c, "missing organization context")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if !ac.Can(role, resource, action) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OrgID returns the active organization id from context. Handlers behind
// RequireOrganization can rely on it being present.
func OrgID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextOrgID).(uuid.UUID)
}

// UserID returns the authenticated user id from context.
func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextUserID).(uuid.UUID)
}
