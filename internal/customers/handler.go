package customers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/internal/middleware"
	"github.com/venuedesk/backend/internal/models"
	"github.com/venuedesk/backend/pkg/response"
)

// Handler handles customer HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a customers handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /customers with pagination and search.
func (h *Handler) List(c *gin.Context) {
	orgID := middleware.OrgID(c)
	page, perPage, search := response.ListParams(c)

	list, total, err := h.repo.List(c.Request.Context(), orgID, page, perPage, search)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []models.Customer{}
	}
	response.Page(c, list, total, perPage)
}

// Get handles GET /customers/:id.
func (h *Handler) Get(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	cust, err := h.repo.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if cust == nil {
		response.NotFound(c, "customer not found")
		return
	}
	response.OK(c, cust)
}

// AddressBody is the body of a customer address within create requests.
type AddressBody struct {
	Type          string   `json:"type"`
	Label         *string  `json:"label"`
	Line1         string   `json:"line1" binding:"required"`
	Line2         *string  `json:"line2"`
	PostalCode    *string  `json:"postal_code"`
	City          string   `json:"city" binding:"required"`
	StateProvince *string  `json:"state_province"`
	CountryCode   *string  `json:"country_code"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	GooglePlaceID *string  `json:"google_place_id"`
	IsPrimary     bool     `json:"is_primary"`
}

func (b AddressBody) toInput() AddressInput {
	return AddressInput{
		Type:          b.Type,
		Label:         b.Label,
		Line1:         b.Line1,
		Line2:         b.Line2,
		PostalCode:    b.PostalCode,
		City:          b.City,
		StateProvince: b.StateProvince,
		CountryCode:   b.CountryCode,
		Latitude:      b.Latitude,
		Longitude:     b.Longitude,
		GooglePlaceID: b.GooglePlaceID,
		IsPrimary:     b.IsPrimary,
	}
}

// CreateCustomerBody is the body for POST /customers.
type CreateCustomerBody struct {
	BusinessName       string        `json:"business_name" binding:"required"`
	Domain             *string       `json:"domain"`
	ContactPhoneNumber *string       `json:"contact_phone_number"`
	ClientCode         *string       `json:"client_code"`
	TaxID              *string       `json:"tax_id"`
	VATNumber          *string       `json:"vat_number"`
	Addresses          []AddressBody `json:"addresses"`
}

// Create handles POST /customers.
func (h *Handler) Create(c *gin.Context) {
	orgID := middleware.OrgID(c)
	var body CreateCustomerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if strings.TrimSpace(body.BusinessName) == "" {
		response.ValidationFailed(c, "business_name is required")
		return
	}

	input := CreateInput{
		BusinessName:       strings.TrimSpace(body.BusinessName),
		Domain:             body.Domain,
		ContactPhoneNumber: body.ContactPhoneNumber,
		ClientCode:         body.ClientCode,
		TaxID:              body.TaxID,
		VATNumber:          body.VATNumber,
	}
	for _, addr := range body.Addresses {
		input.Addresses = append(input.Addresses, addr.toInput())
	}

	cust, err := h.repo.Create(c.Request.Context(), orgID, input)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	response.Created(c, cust)
}

// UpdateCustomerBody is the body for PATCH /customers/:id. Absent fields are
// left unchanged.
type UpdateCustomerBody struct {
	BusinessName       *string `json:"business_name"`
	Domain             *string `json:"domain"`
	ContactPhoneNumber *string `json:"contact_phone_number"`
	ClientCode         *string `json:"client_code"`
	TaxID              *string `json:"tax_id"`
	VATNumber          *string `json:"vat_number"`
}

// Update handles PATCH /customers/:id.
func (h *Handler) Update(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	var body UpdateCustomerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if body.BusinessName != nil && strings.TrimSpace(*body.BusinessName) == "" {
		response.ValidationFailed(c, "business_name cannot be empty")
		return
	}

	cust, err := h.repo.Update(c.Request.Context(), orgID, id, UpdateInput{
		BusinessName:       body.BusinessName,
		Domain:             body.Domain,
		ContactPhoneNumber: body.ContactPhoneNumber,
		ClientCode:         body.ClientCode,
		TaxID:              body.TaxID,
		VATNumber:          body.VATNumber,
	})
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if cust == nil {
		response.NotFound(c, "customer not found")
		return
	}
	response.OK(c, cust)
}

// Delete handles DELETE /customers/:id.
func (h *Handler) Delete(c *gin.Context) {
	orgID := middleware.OrgID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	deleted, err := h.repo.DeleteByID(c.Request.Context(), orgID, id)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if deleted == nil {
		response.NotFound(c, "customer not found")
		return
	}
	response.OK(c, deleted)
}

// BulkDeleteBody is the body for POST /customers/bulk-delete.
type BulkDeleteBody struct {
	IDs []uuid.UUID `json:"ids"`
}

// BulkDelete handles POST /customers/bulk-delete.
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

// CreateAddress handles POST /customers/:id/addresses.
func (h *Handler) CreateAddress(c *gin.Context) {
	orgID := middleware.OrgID(c)
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	var body AddressBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	addr, err := h.repo.CreateAddress(c.Request.Context(), orgID, customerID, body.toInput())
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if addr == nil {
		response.NotFound(c, "customer not found")
		return
	}
	response.Created(c, addr)
}

// UpdateAddressBody is the body for PATCH /customers/:id/addresses/:addressId.
type UpdateAddressBody struct {
	Type          *string  `json:"type"`
	Label         *string  `json:"label"`
	Line1         *string  `json:"line1"`
	Line2         *string  `json:"line2"`
	PostalCode    *string  `json:"postal_code"`
	City          *string  `json:"city"`
	StateProvince *string  `json:"state_province"`
	CountryCode   *string  `json:"country_code"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	GooglePlaceID *string  `json:"google_place_id"`
	IsPrimary     *bool    `json:"is_primary"`
}

// UpdateAddress handles PATCH /customers/:id/addresses/:addressId.
func (h *Handler) UpdateAddress(c *gin.Context) {
	orgID := middleware.OrgID(c)
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	addressID, err := uuid.Parse(c.Param("addressId"))
	if err != nil {
		response.BadRequest(c, "invalid address id")
		return
	}
	var body UpdateAddressBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	addr, err := h.repo.UpdateAddress(c.Request.Context(), orgID, customerID, addressID, UpdateAddressInput{
		Type:          body.Type,
		Label:         body.Label,
		Line1:         body.Line1,
		Line2:         body.Line2,
		PostalCode:    body.PostalCode,
		City:          body.City,
		StateProvince: body.StateProvince,
		CountryCode:   body.CountryCode,
		Latitude:      body.Latitude,
		Longitude:     body.Longitude,
		GooglePlaceID: body.GooglePlaceID,
		IsPrimary:     body.IsPrimary,
	})
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if addr == nil {
		response.NotFound(c, "address not found")
		return
	}
	response.OK(c, addr)
}

// DeleteAddress handles DELETE /customers/:id/addresses/:addressId.
func (h *Handler) DeleteAddress(c *gin.Context) {
	orgID := middleware.OrgID(c)
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	addressID, err := uuid.Parse(c.Param("addressId"))
	if err != nil {
		response.BadRequest(c, "invalid address id")
		return
	}
	addr, err := h.repo.DeleteAddress(c.Request.Context(), orgID, customerID, addressID)
	if err != nil {
		response.StoreError(c, h.logger, err)
		return
	}
	if addr == nil {
		response.NotFound(c, "address not found")
		return
	}
	response.OK(c, addr)
}
