package requests

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/internal/middleware"
	"github.com/venuedesk/backend/internal/models"
	"github.com/venuedesk/backend/pkg/response"
)

// Handler handles request workflow HTTP endpoints.
type Handler struct {
	repo     *Repository
	workflow *Workflow
	logger   *zap.Logger
}

// NewHandler creates a requests handler.
func NewHandler(repo *Repository, workflow *Workflow, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, workflow: workflow, logger: logger}
}

var validStatuses = map[string]bool{
	models.RequestStatusPending:         true,
	models.RequestStatusInProgress:      true,
	models.RequestStatusPendingApproval: true,
	models.RequestStatusApproved:        true,
	models.RequestStatusCancelled:       true,
	models.RequestStatusConfirmed:       true,
}

// List handles GET /requests with pagination and optional status filter.
func (h *Handler) List(c *gin.Context) {
	orgID := middleware.OrgID(c)
	page, perPage, _ := response.ListParams(c)
	status := c.Query("status")
	if status != "" && !validStatuses[status] {
		response.BadRequest(c, "invalid status filter")
		return
	}

	list, total, err := h.repo.List(c.Request.Context(), orgID, page, perPage, status)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []models.Request{}
	}
	response.Page(c, list, total, perPage)
}

// Get handles GET /requests/:id.
func (h *Handler) Get(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	req, err := h.repo.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if req == nil {
		response.NotFound(c, "request not found")
		return
	}
	response.OK(c, req)
}

// CreateRequestBody is the body for POST /requests.
type CreateRequestBody struct {
	Title              string           `json:"title" binding:"required"`
	Description        *string          `json:"description"`
	Type               string           `json:"type"`
	RequestedForUserID *string          `json:"requested_for_user_id"`
	Items              []CreateItemBody `json:"items" binding:"dive"`
}

// CreateItemBody is one item in a request create payload, or the body for
// POST /requests/:id/items.
type CreateItemBody struct {
	Title       string          `json:"title" binding:"required"`
	Type        string          `json:"type"`
	Description *string         `json:"description"`
	Required    *bool           `json:"required"`
	SortOrder   int             `json:"sort_order"`
	Constraints json.RawMessage `json:"constraints"`
}

func (b CreateItemBody) toInput() CreateItemInput {
	itemType := b.Type
	if itemType == "" {
		itemType = "venue"
	}
	required := true
	if b.Required != nil {
		required = *b.Required
	}
	return CreateItemInput{
		Type:        itemType,
		Title:       b.Title,
		Description: b.Description,
		Required:    required,
		SortOrder:   b.SortOrder,
		Constraints: b.Constraints,
	}
}

// Create handles POST /requests.
func (h *Handler) Create(c *gin.Context) {
	orgID := middleware.OrgID(c)
	userID := middleware.UserID(c)

	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	input := CreateInput{
		Type:        body.Type,
		Title:       body.Title,
		Description: body.Description,
	}
	if input.Type == "" {
		input.Type = "other"
	}
	if body.RequestedForUserID != nil {
		id, err := uuid.Parse(*body.RequestedForUserID)
		if err != nil {
			response.BadRequest(c, "invalid requested_for_user_id")
			return
		}
		input.RequestedForUserID = &id
	}
	for _, item := range body.Items {
		input.Items = append(input.Items, item.toInput())
	}

	req, err := h.repo.Create(c.Request.Context(), orgID, userID, input)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.Created(c, req)
}

// UpdateRequestBody is the body for PATCH /requests/:id.
type UpdateRequestBody struct {
	Status             *string `json:"status"`
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	Type               *string `json:"type"`
	HandledByUserID    *string `json:"handled_by_user_id"`
	RequestedForUserID *string `json:"requested_for_user_id"`
}

// Update handles PATCH /requests/:id. Status changes must follow the
// lifecycle; the approval edge itself is normally driven by option
// selection.
func (h *Handler) Update(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	var body UpdateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	input := UpdateInput{
		Title:       body.Title,
		Description: body.Description,
		Type:        body.Type,
	}
	if body.Status != nil {
		if !validStatuses[*body.Status] {
			response.BadRequest(c, "invalid status")
			return
		}
		input.Status = body.Status
	}
	if body.HandledByUserID != nil {
		if *body.HandledByUserID == "" {
			input.ClearHandledBy = true
		} else {
			hid, err := uuid.Parse(*body.HandledByUserID)
			if err != nil {
				response.BadRequest(c, "invalid handled_by_user_id")
				return
			}
			input.HandledByUserID = &hid
		}
	}
	if body.RequestedForUserID != nil {
		rid, err := uuid.Parse(*body.RequestedForUserID)
		if err != nil {
			response.BadRequest(c, "invalid requested_for_user_id")
			return
		}
		input.RequestedForUserID = &rid
	}

	req, err := h.repo.Update(c.Request.Context(), orgID, id, input)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			response.BadRequest(c, "invalid status transition")
			return
		}
		response.StoreError(c, h.logger, err)
		return
	}
	if req == nil {
		response.NotFound(c, "request not found")
		return
	}
	response.OK(c, req)
}

// Delete handles DELETE /requests/:id.
func (h *Handler) Delete(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	deleted, err := h.repo.Delete(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if deleted == nil {
		response.NotFound(c, "request not found")
		return
	}
	response.OK(c, deleted)
}

// ListItems handles GET /requests/:id/items.
func (h *Handler) ListItems(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	items, err := h.repo.ListItems(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if items == nil {
		response.NotFound(c, "request not found")
		return
	}
	response.OK(c, items)
}

// CreateItem handles POST /requests/:id/items.
func (h *Handler) CreateItem(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	var body CreateItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	item, err := h.repo.CreateItem(c.Request.Context(), orgID, id, body.toInput())
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if item == nil {
		response.NotFound(c, "request not found")
		return
	}
	response.Created(c, item)
}

// ListOptions handles GET /requests/items/:itemId/options.
func (h *Handler) ListOptions(c *gin.Context) {
	orgID := middleware.OrgID(c)
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	opts, err := h.repo.ListOptions(c.Request.Context(), orgID, itemID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if opts == nil {
		response.NotFound(c, "request item not found")
		return
	}
	response.OK(c, opts)
}

// CreateOptionBody is the body for POST /requests/items/:itemId/options.
type CreateOptionBody struct {
	Title       string          `json:"title" binding:"required"`
	Description *string         `json:"description"`
	LocationID  *string         `json:"location_id"`
	StartsAt    *time.Time      `json:"starts_at"`
	EndsAt      *time.Time      `json:"ends_at"`
	ExternalURL *string         `json:"external_url"`
	Metadata    json.RawMessage `json:"metadata"`
}

// CreateOption handles POST /requests/items/:itemId/options.
func (h *Handler) CreateOption(c *gin.Context) {
	orgID := middleware.OrgID(c)
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	var body CreateOptionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	input := CreateOptionInput{
		Title:       body.Title,
		Description: body.Description,
		StartsAt:    body.StartsAt,
		EndsAt:      body.EndsAt,
		ExternalURL: body.ExternalURL,
		Metadata:    body.Metadata,
	}
	if body.LocationID != nil {
		lid, err := uuid.Parse(*body.LocationID)
		if err != nil {
			response.BadRequest(c, "invalid location_id")
			return
		}
		input.LocationID = &lid
	}
	opt, err := h.repo.CreateOption(c.Request.Context(), orgID, itemID, input)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if opt == nil {
		response.NotFound(c, "request item not found")
		return
	}
	response.Created(c, opt)
}

// SelectOption handles POST /requests/:id/items/:itemId/options/:optionId/select.
// Selecting an option rejects its pending siblings and approves the request
// when every item is decided.
func (h *Handler) SelectOption(c *gin.Context) {
	orgID := middleware.OrgID(c)
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	optionID, err := uuid.Parse(c.Param("optionId"))
	if err != nil {
		response.BadRequest(c, "invalid option id")
		return
	}

	opt, err := h.workflow.SelectOptionAndFinalize(c.Request.Context(), orgID, requestID, itemID, optionID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if opt == nil {
		response.NotFound(c, "request option not found")
		return
	}
	response.OK(c, opt)
}

// RejectOtherOptions handles POST /requests/items/:itemId/options/:optionId/reject-others.
func (h *Handler) RejectOtherOptions(c *gin.Context) {
	orgID := middleware.OrgID(c)
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	optionID, err := uuid.Parse(c.Param("optionId"))
	if err != nil {
		response.BadRequest(c, "invalid option id")
		return
	}
	if err := h.workflow.RejectOtherOptionsForItem(c.Request.Context(), orgID, itemID, optionID); err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}
