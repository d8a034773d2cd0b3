package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request statuses. The workflow engine only ever drives the transition to
// approved; all other edges come from direct status updates.
const (
	RequestStatusPending         = "pending"
	RequestStatusInProgress      = "in_progress"
	RequestStatusPendingApproval = "pending_approval"
	RequestStatusApproved        = "approved"
	RequestStatusCancelled       = "cancelled"
	RequestStatusConfirmed       = "confirmed"
)

// Request option statuses. Once an option leaves pending it never returns.
const (
	OptionStatusPending  = "pending"
	OptionStatusSelected = "selected"
	OptionStatusRejected = "rejected"
)

// Request is a booking approval workflow instance owned by an organization.
type Request struct {
	ID                 uuid.UUID     `json:"id"`
	OrganizationID     uuid.UUID     `json:"organization_id"`
	CreatedByUserID    uuid.UUID     `json:"created_by_user_id"`
	RequestedForUserID *uuid.UUID    `json:"requested_for_user_id,omitempty"`
	HandledByUserID    *uuid.UUID    `json:"handled_by_user_id,omitempty"`
	Type               string        `json:"type"`
	Status             string        `json:"status"`
	Title              string        `json:"title"`
	Description        *string       `json:"description,omitempty"`
	SentForApprovalAt  *time.Time    `json:"sent_for_approval_at,omitempty"`
	DecidedAt          *time.Time    `json:"decided_at,omitempty"`
	Items              []RequestItem `json:"items,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// RequestItem is one fulfillment slot within a request (e.g. "main venue"),
// ordered by SortOrder. Deleted with its request.
type RequestItem struct {
	ID          uuid.UUID       `json:"id"`
	RequestID   uuid.UUID       `json:"request_id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Required    bool            `json:"required"`
	SortOrder   int             `json:"sort_order"`
	Constraints json.RawMessage `json:"constraints,omitempty"`
	Options     []RequestOption `json:"options,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RequestOption is a candidate fulfillment for a request item. At most one
// option per item is ever in selected status.
type RequestOption struct {
	ID            uuid.UUID       `json:"id"`
	RequestItemID uuid.UUID       `json:"request_item_id"`
	LocationID    *uuid.UUID      `json:"location_id,omitempty"`
	Title         string          `json:"title"`
	Description   *string         `json:"description,omitempty"`
	Status        string          `json:"status"`
	StartsAt      *time.Time      `json:"starts_at,omitempty"`
	EndsAt        *time.Time      `json:"ends_at,omitempty"`
	ExternalURL   *string         `json:"external_url,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	SelectedAt    *time.Time      `json:"selected_at,omitempty"`
	BookedAt      *time.Time      `json:"booked_at,omitempty"`
}
