package events

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuedesk/backend/internal/models"
)

// Repository handles calendar event persistence, scoped by organization.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, organization_id, request_id, location_id, title, description,
	starts_at, ends_at, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	err := row.Scan(&e.ID, &e.OrganizationID, &e.RequestID, &e.LocationID, &e.Title,
		&e.Description, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// List returns the organization's events, optionally bounded to a time
// range. Events overlapping the range are included.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, from, to *time.Time) ([]models.CalendarEvent, error) {
	where := `WHERE organization_id = $1`
	args := []interface{}{orgID}
	if from != nil {
		args = append(args, *from)
		where += ` AND COALESCE(ends_at, starts_at) >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		where += ` AND starts_at <= $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM calendar_events `+where+` ORDER BY starts_at ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// GetByID returns an event or nil when absent or out of tenant scope.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.CalendarEvent, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM calendar_events WHERE id = $1 AND organization_id = $2`, id, orgID))
}

// CreateInput holds fields for a new calendar event.
type CreateInput struct {
	RequestID   *uuid.UUID
	LocationID  *uuid.UUID
	Title       string
	Description *string
	StartsAt    time.Time
	EndsAt      *time.Time
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, orgID uuid.UUID, input CreateInput) (*models.CalendarEvent, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`INSERT INTO calendar_events (organization_id, request_id, location_id, title, description, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+eventColumns,
		orgID, input.RequestID, input.LocationID, input.Title, input.Description,
		input.StartsAt, input.EndsAt))
}

// UpdateInput holds the optional fields of an event update.
type UpdateInput struct {
	LocationID    *uuid.UUID
	ClearLocation bool
	Title         *string
	Description   *string
	StartsAt      *time.Time
	EndsAt        *time.Time
	ClearEndsAt   bool
}

// Update applies a partial update to an event. Returns nil when absent or
// out of tenant scope.
func (r *Repository) Update(ctx context.Context, orgID, id uuid.UUID, input UpdateInput) (*models.CalendarEvent, error) {
	existing, err := r.GetByID(ctx, orgID, id)
	if err != nil || existing == nil {
		return existing, err
	}

	locationID := existing.LocationID
	if input.ClearLocation {
		locationID = nil
	} else if input.LocationID != nil {
		locationID = input.LocationID
	}
	title := existing.Title
	if input.Title != nil {
		title = *input.Title
	}
	description := existing.Description
	if input.Description != nil {
		description = input.Description
	}
	startsAt := existing.StartsAt
	if input.StartsAt != nil {
		startsAt = *input.StartsAt
	}
	endsAt := existing.EndsAt
	if input.ClearEndsAt {
		endsAt = nil
	} else if input.EndsAt != nil {
		endsAt = input.EndsAt
	}

	return scanEvent(r.pool.QueryRow(ctx,
		`UPDATE calendar_events SET location_id = $3, title = $4, description = $5,
			starts_at = $6, ends_at = $7, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+eventColumns,
		id, orgID, locationID, title, description, startsAt, endsAt))
}

// Delete removes an event. Returns the deleted row or nil.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) (*models.CalendarEvent, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`DELETE FROM calendar_events WHERE id = $1 AND organization_id = $2 RETURNING `+eventColumns,
		id, orgID))
}
