package users

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/internal/middleware"
	"github.com/venuedesk/backend/pkg/response"
)

// Handler handles the organization user directory endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /users with pagination and search.
func (h *Handler) List(c *gin.Context) {
	orgID := middleware.OrgID(c)
	page, perPage, search := response.ListParams(c)

	list, total, err := h.repo.List(c.Request.Context(), orgID, page, perPage, search)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.Page(c, list, total, perPage)
}

// Get handles GET /users/:id.
func (h *Handler) Get(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	u, err := h.repo.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if u == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, u.ToPublic())
}

// UpdateUserBody is the body for PATCH /users/:id.
type UpdateUserBody struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Image     *string `json:"image"`
}

// Update handles PATCH /users/:id.
func (h *Handler) Update(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var body UpdateUserBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	u, err := h.repo.Update(c.Request.Context(), orgID, id, UpdateInput{
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Image:     body.Image,
	})
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if u == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, u.ToPublic())
}
