package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant. Members, customers, requests, and
// payments all belong to exactly one organization.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Organization member roles (back-office deployment).
const (
	OrgRoleOwner             = "owner"
	OrgRoleProductionManager = "production_manager"
	OrgRoleMember            = "member"
)

// Member links a user to an organization with a role. At most one row
// exists per (organization, user) pair. IsActive gates whether the member
// may act as a request handler.
type Member struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
