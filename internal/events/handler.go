package events

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/internal/middleware"
	"github.com/venuedesk/backend/pkg/response"
)

// Handler handles calendar event HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		response.BadRequest(c, "invalid "+key+" timestamp")
		return nil, false
	}
	return &t, true
}

// List handles GET /events with an optional from/to range.
func (h *Handler) List(c *gin.Context) {
	orgID := middleware.OrgID(c)
	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		response.BadRequest(c, "to must not precede from")
		return
	}

	list, err := h.repo.List(c.Request.Context(), orgID, from, to)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// CreateEventBody is the body for POST /events.
type CreateEventBody struct {
	RequestID   *uuid.UUID `json:"request_id"`
	LocationID  *uuid.UUID `json:"location_id"`
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	orgID := middleware.OrgID(c)
	var body CreateEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		response.ValidationFailed(c, "title is required")
		return
	}
	if body.EndsAt != nil && body.EndsAt.Before(body.StartsAt) {
		response.ValidationFailed(c, "ends_at must not precede starts_at")
		return
	}

	e, err := h.repo.Create(c.Request.Context(), orgID, CreateInput{
		RequestID:   body.RequestID,
		LocationID:  body.LocationID,
		Title:       strings.TrimSpace(body.Title),
		Description: body.Description,
		StartsAt:    body.StartsAt,
		EndsAt:      body.EndsAt,
	})
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.Created(c, e)
}

// UpdateEventBody is the body for PATCH /events/:id.
type UpdateEventBody struct {
	LocationID    *uuid.UUID `json:"location_id"`
	ClearLocation bool       `json:"clear_location"`
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
	ClearEndsAt   bool       `json:"clear_ends_at"`
}

// Update handles PATCH /events/:id.
func (h *Handler) Update(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body UpdateEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if body.Title != nil && strings.TrimSpace(*body.Title) == "" {
		response.ValidationFailed(c, "title cannot be empty")
		return
	}

	e, err := h.repo.Update(c.Request.Context(), orgID, id, UpdateInput{
		LocationID:    body.LocationID,
		ClearLocation: body.ClearLocation,
		Title:         body.Title,
		Description:   body.Description,
		StartsAt:      body.StartsAt,
		EndsAt:        body.EndsAt,
		ClearEndsAt:   body.ClearEndsAt,
	})
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	deleted, err := h.repo.Delete(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if deleted == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, deleted)
}
