package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/internal/models"
	"github.com/venuedesk/backend/internal/organizations"
	"github.com/venuedesk/backend/pkg/response"
	"github.com/venuedesk/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SwitchOrganizationRequest is the body for POST /auth/switch-organization.
type SwitchOrganizationRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	orgs   *organizations.Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, orgs *organizations.Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orgs: orgs, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := h.repo.GetByEmail(c.Request.Context(), email)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if existing != nil {
		response.Conflict(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	name := strings.TrimSpace(first + " " + last)
	user := &models.User{
		Email:     email,
		Password:  hash,
		FirstName: &first,
		LastName:  &last,
		Name:      &name,
		Role:      models.RoleUser,
	}
	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		response.StoreError(c, h.logger, err)
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.Role, nil)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login. The issued token carries the user's first
// organization as the active one, when they have any membership.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	var activeOrg *uuid.UUID
	orgs, err := h.orgs.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if len(orgs) > 0 {
		activeOrg = &orgs[0].ID
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.Role, activeOrg)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Me handles GET /me. Returns the current user with their organizations.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}

	orgs, err := h.orgs.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}

	response.OK(c, gin.H{
		"user":          user.ToPublic(),
		"organizations": orgs,
	})
}

// SwitchOrganization handles POST /auth/switch-organization. Verifies that
// the user is a member of the target organization and reissues the token
// with it as the active one.
func (h *Handler) SwitchOrganization(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	var req SwitchOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "organization_id required")
		return
	}
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}

	member, err := h.orgs.GetMember(c.Request.Context(), orgID, userID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if member == nil {
		response.Forbidden(c, "not a member of this organization")
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.Role, &orgID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}
