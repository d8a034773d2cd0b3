package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a B2B customer owned by an organization.
type Customer struct {
	ID                 uuid.UUID         `json:"id"`
	OrganizationID     uuid.UUID         `json:"organization_id"`
	BusinessName       string            `json:"business_name"`
	Domain             *string           `json:"domain,omitempty"`
	ContactPhoneNumber *string           `json:"contact_phone_number,omitempty"`
	ClientCode         *string           `json:"client_code,omitempty"`
	TaxID              *string           `json:"tax_id,omitempty"`
	VATNumber          *string           `json:"vat_number,omitempty"`
	Addresses          []CustomerAddress `json:"addresses,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Customer address types.
const (
	AddressTypeBilling  = "billing"
	AddressTypeShipping = "shipping"
	AddressTypeHQ       = "hq"
	AddressTypeOther    = "other"
)

// CustomerAddress is a structured address for a customer. At most one
// address per customer has IsPrimary set.
type CustomerAddress struct {
	ID            uuid.UUID `json:"id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Type          string    `json:"type"`
	Label         *string   `json:"label,omitempty"`
	Line1         string    `json:"line1"`
	Line2         *string   `json:"line2,omitempty"`
	PostalCode    *string   `json:"postal_code,omitempty"`
	City          string    `json:"city"`
	StateProvince *string   `json:"state_province,omitempty"`
	CountryCode   *string   `json:"country_code,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	GooglePlaceID *string   `json:"google_place_id,omitempty"`
	IsPrimary     bool      `json:"is_primary"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
