package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment modes.
const (
	PaymentModeCheck        = "check"
	PaymentModeCash         = "cash"
	PaymentModeBankTransfer = "bank_transfer"
	PaymentModeDebitCard    = "debit_card"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Line item document types.
const (
	DocumentTypeTransport = "transport_document"
	DocumentTypeInvoice   = "invoice"
)

// Payment aggregates one or more line items. AmountCents is always the
// exact sum of the line item amounts.
type Payment struct {
	ID                   uuid.UUID         `json:"id"`
	OrganizationID       uuid.UUID         `json:"organization_id"`
	CustomerID           *uuid.UUID        `json:"customer_id,omitempty"`
	PaymentMode          *string           `json:"payment_mode,omitempty"`
	AmountCents          int64             `json:"amount_cents"`
	Currency             string            `json:"currency"`
	Status               string            `json:"status"`
	ExpiresAt            *time.Time        `json:"expires_at,omitempty"`
	PaidAt               *time.Time        `json:"paid_at,omitempty"`
	CustomerBusinessName *string           `json:"customer_business_name,omitempty"`
	LineItems            []PaymentLineItem `json:"line_items,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// PaymentLineItem is one payable document row attached to a payment,
// ordered by Position.
type PaymentLineItem struct {
	ID           uuid.UUID `json:"id"`
	PaymentID    uuid.UUID `json:"payment_id"`
	Position     int       `json:"position"`
	DocumentType string    `json:"document_type"`
	DocumentID   string    `json:"document_id"`
	AmountCents  int64     `json:"amount_cents"`
	ImageURL     *string   `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
