package payments

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/internal/middleware"
	"github.com/venuedesk/backend/internal/models"
	"github.com/venuedesk/backend/pkg/response"
)

// Handler handles payment HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a payments handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

var validModes = map[string]bool{
	models.PaymentModeCheck:        true,
	models.PaymentModeCash:         true,
	models.PaymentModeBankTransfer: true,
	models.PaymentModeDebitCard:    true,
}

var validPaymentStatuses = map[string]bool{
	models.PaymentStatusPending:   true,
	models.PaymentStatusCompleted: true,
	models.PaymentStatusFailed:    true,
}

var validDocumentTypes = map[string]bool{
	models.DocumentTypeTransport: true,
	models.DocumentTypeInvoice:   true,
}

// List handles GET /payments with pagination and search.
func (h *Handler) List(c *gin.Context) {
	orgID := middleware.OrgID(c)
	page, perPage, search := response.ListParams(c)

	list, total, err := h.repo.List(c.Request.Context(), orgID, page, perPage, search)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []models.Payment{}
	}
	response.Page(c, list, total, perPage)
}

// Get handles GET /payments/:id.
func (h *Handler) Get(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if p == nil {
		response.NotFound(c, "payment not found")
		return
	}
	response.OK(c, p)
}

// LineItemBody is the body of a payment line item.
type LineItemBody struct {
	DocumentType string  `json:"document_type" binding:"required"`
	DocumentID   string  `json:"document_id" binding:"required"`
	AmountCents  int64   `json:"amount_cents"`
	ImageURL     *string `json:"image_url"`
}

func validateLineItems(items []LineItemBody) (string, bool) {
	for _, li := range items {
		if !validDocumentTypes[li.DocumentType] {
			return "invalid document_type", false
		}
		if li.AmountCents < 0 {
			return "amount_cents cannot be negative", false
		}
	}
	return "", true
}

func toLineItemInputs(items []LineItemBody) []LineItemInput {
	out := make([]LineItemInput, 0, len(items))
	for _, li := range items {
		out = append(out, LineItemInput{
			DocumentType: li.DocumentType,
			DocumentID:   li.DocumentID,
			AmountCents:  li.AmountCents,
			ImageURL:     li.ImageURL,
		})
	}
	return out
}

// CreatePaymentBody is the body for POST /payments. The payment amount is
// derived from the line items, never accepted from the client.
type CreatePaymentBody struct {
	CustomerID  *uuid.UUID     `json:"customer_id"`
	PaymentMode *string        `json:"payment_mode"`
	Currency    string         `json:"currency"`
	Status      string         `json:"status"`
	ExpiresAt   *time.Time     `json:"expires_at"`
	LineItems   []LineItemBody `json:"line_items" binding:"required,min=1"`
}

// Create handles POST /payments.
func (h *Handler) Create(c *gin.Context) {
	orgID := middleware.OrgID(c)
	var body CreatePaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if body.PaymentMode != nil && !validModes[*body.PaymentMode] {
		response.ValidationFailed(c, "invalid payment_mode")
		return
	}
	if body.Status != "" && !validPaymentStatuses[body.Status] {
		response.ValidationFailed(c, "invalid status")
		return
	}
	if msg, ok := validateLineItems(body.LineItems); !ok {
		response.ValidationFailed(c, msg)
		return
	}

	p, err := h.repo.Create(c.Request.Context(), orgID, CreateInput{
		CustomerID:  body.CustomerID,
		PaymentMode: body.PaymentMode,
		Currency:    body.Currency,
		Status:      body.Status,
		ExpiresAt:   body.ExpiresAt,
		LineItems:   toLineItemInputs(body.LineItems),
	})
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.Created(c, p)
}

// UpdatePaymentBody is the body for PATCH /payments/:id. A present
// line_items array replaces the whole set. An explicit null customer_id
// detaches the customer.
type UpdatePaymentBody struct {
	CustomerID    *uuid.UUID     `json:"customer_id"`
	ClearCustomer bool           `json:"clear_customer"`
	PaymentMode   *string        `json:"payment_mode"`
	Currency      *string        `json:"currency"`
	Status        *string        `json:"status"`
	ExpiresAt     *time.Time     `json:"expires_at"`
	ClearExpires  bool           `json:"clear_expires_at"`
	MarkPaid      bool           `json:"mark_paid"`
	LineItems     []LineItemBody `json:"line_items"`
}

// Update handles PATCH /payments/:id.
func (h *Handler) Update(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}
	var body UpdatePaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if body.PaymentMode != nil && !validModes[*body.PaymentMode] {
		response.ValidationFailed(c, "invalid payment_mode")
		return
	}
	if body.Status != nil && !validPaymentStatuses[*body.Status] {
		response.ValidationFailed(c, "invalid status")
		return
	}
	if body.LineItems != nil {
		if len(body.LineItems) == 0 {
			response.ValidationFailed(c, "line_items cannot be empty")
			return
		}
		if msg, ok := validateLineItems(body.LineItems); !ok {
			response.ValidationFailed(c, msg)
			return
		}
	}

	input := UpdateInput{
		CustomerID:     body.CustomerID,
		ClearCustomer:  body.ClearCustomer,
		PaymentMode:    body.PaymentMode,
		Currency:       body.Currency,
		Status:         body.Status,
		ExpiresAt:      body.ExpiresAt,
		ClearExpiresAt: body.ClearExpires,
		MarkPaid:       body.MarkPaid,
	}
	if body.LineItems != nil {
		input.ReplaceLineItems = true
		input.LineItems = toLineItemInputs(body.LineItems)
	}

	p, err := h.repo.Update(c.Request.Context(), orgID, id, input)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if p == nil {
		response.NotFound(c, "payment not found")
		return
	}
	response.OK(c, p)
}

// Delete handles DELETE /payments/:id.
func (h *Handler) Delete(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}
	deleted, err := h.repo.Delete(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if deleted == nil {
		response.NotFound(c, "payment not found")
		return
	}
	response.OK(c, deleted)
}

// BulkDeleteBody is the body for POST /payments/bulk-delete.
type BulkDeleteBody struct {
	IDs []uuid.UUID `json:"ids"`
}

// BulkDelete handles POST /payments/bulk-delete.
func (h *Handler) BulkDelete(c *gin.Context) {
	orgID := middleware.OrgID(c)
	var body BulkDeleteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	deleted, err := h.repo.DeleteByIDs(c.Request.Context(), orgID, body.IDs)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"deleted": deleted, "count": len(deleted)})
}
