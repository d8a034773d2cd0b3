package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a bookable venue. Locations are shared across organizations.
type Location struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Address       *string   `json:"address,omitempty"`
	City          *string   `json:"city,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	GooglePlaceID *string   `json:"google_place_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CalendarEvent is an organization-scoped event, optionally tied to a
// request and a location.
type CalendarEvent struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	RequestID      *uuid.UUID `json:"request_id,omitempty"`
	LocationID     *uuid.UUID `json:"location_id,omitempty"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
