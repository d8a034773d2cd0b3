package locations

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/pkg/response"
)

// Handler handles venue catalog HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a locations handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /locations with pagination, type filter, and search.
func (h *Handler) List(c *gin.Context) {
	page, perPage, search := response.ListParams(c)
	locType := c.Query("type")
	if locType != "" && !ValidTypes[locType] {
		response.BadRequest(c, "invalid type filter")
		return
	}

	list, total, err := h.repo.List(c.Request.Context(), page, perPage, locType, search)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.Page(c, list, total, perPage)
}

// Get handles GET /locations/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid location id")
		return
	}
	l, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if l == nil {
		response.NotFound(c, "location not found")
		return
	}
	response.OK(c, l)
}

// CreateLocationBody is the body for POST /locations.
type CreateLocationBody struct {
	Name          string   `json:"name" binding:"required"`
	Type          string   `json:"type"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	GooglePlaceID *string  `json:"google_place_id"`
}

// Create handles POST /locations.
func (h *Handler) Create(c *gin.Context) {
	var body CreateLocationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		response.ValidationFailed(c, "name is required")
		return
	}
	if body.Type != "" && !ValidTypes[body.Type] {
		response.ValidationFailed(c, "invalid type")
		return
	}

	l, err := h.repo.Create(c.Request.Context(), CreateInput{
		Name:          strings.TrimSpace(body.Name),
		Type:          body.Type,
		Address:       body.Address,
		City:          body.City,
		Latitude:      body.Latitude,
		Longitude:     body.Longitude,
		GooglePlaceID: body.GooglePlaceID,
	})
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.Created(c, l)
}
