package organizations

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/internal/middleware"
	"github.com/venuedesk/backend/internal/models"
	"github.com/venuedesk/backend/pkg/response"
)

// Slug must be lowercase alphanumeric and hyphens only, 2–64 chars.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateOrganizationRequest is the body for POST /organizations.
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// JoinOrganizationRequest is the body for POST /organizations/join.
type JoinOrganizationRequest struct {
	Slug string `json:"slug" binding:"required"`
}

// SetMemberActiveRequest is the body for PATCH /organizations/members/:userId/active.
type SetMemberActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// Create handles POST /organizations. Creates the org and adds the current
// user as owner.
func (h *Handler) Create(c *gin.Context) {
	userID := middleware.UserID(c)
	var body CreateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and slug required")
		return
	}
	body.Slug = strings.ToLower(strings.TrimSpace(body.Slug))
	if !slugRegex.MatchString(body.Slug) {
		response.BadRequest(c, "slug must be 2-64 chars, lowercase letters, numbers, hyphens only")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	org := &models.Organization{Name: body.Name, Slug: body.Slug}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		// Duplicate slug surfaces as a unique violation.
		response.StoreError(c, h.logger, err)
		return
	}
	if err := h.repo.AddMember(c.Request.Context(), org.ID, userID, models.OrgRoleOwner); err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.Created(c, org)
}

// Join handles POST /organizations/join. Adds the current user to an org by
// slug as a plain member.
func (h *Handler) Join(c *gin.Context) {
	userID := middleware.UserID(c)
	var body JoinOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "slug required")
		return
	}
	slug := strings.ToLower(strings.TrimSpace(body.Slug))
	org, err := h.repo.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if org == nil {
		response.NotFound(c, "organization not found")
		return
	}
	if err := h.repo.AddMember(c.Request.Context(), org.ID, userID, models.OrgRoleMember); err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.OK(c, org)
}

// ListMine handles GET /organizations. Returns orgs the current user is a
// member of.
func (h *Handler) ListMine(c *gin.Context) {
	userID := middleware.UserID(c)
	orgs, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.OK(c, orgs)
}

// ListMembers handles GET /organizations/members for the active organization.
func (h *Handler) ListMembers(c *gin.Context) {
	orgID := middleware.OrgID(c)
	members, err := h.repo.ListMembers(c.Request.Context(), orgID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.OK(c, members)
}

// SetMemberActive handles PATCH /organizations/members/:userId/active,
// toggling whether the member may act as a request handler.
func (h *Handler) SetMemberActive(c *gin.Context) {
	orgID := middleware.OrgID(c)
	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var body SetMemberActiveRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.IsActive == nil {
		response.BadRequest(c, "is_active required")
		return
	}
	member, err := h.repo.GetMember(c.Request.Context(), orgID, targetID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if member == nil {
		response.NotFound(c, "member not found")
		return
	}
	if err := h.repo.SetMemberActive(c.Request.Context(), orgID, targetID, *body.IsActive); err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	member.IsActive = *body.IsActive
	response.OK(c, member)
}
