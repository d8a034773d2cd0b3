package requests

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

// Repository handles request, request item, and request option persistence.
// Every query is scoped by organization id; nested entities are resolved
// through their parent chain so a forged id from another tenant matches
// nothing.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a requests repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `id, organization_id, created_by_user_id, requested_for_user_id,
	handled_by_user_id, type, status, title, description, sent_for_approval_at,
	decided_at, created_at, updated_at`

func scanRequest(row pgx.Row) (*models.Request, error) {
	var r models.Request
	err := row.Scan(&r.ID, &r.OrganizationID, &r.CreatedByUserID, &r.RequestedForUserID,
		&r.HandledByUserID, &r.Type, &r.Status, &r.Title, &r.Description,
		&r.SentForApprovalAt, &r.DecidedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

const optionColumns = `id, request_item_id, location_id, title, description, status,
	starts_at, ends_at, external_url, metadata, created_at, selected_at, booked_at`

// qualifiedOptionColumns is optionColumns with the o. alias, for statements
// where unqualified names would be ambiguous.
const qualifiedOptionColumns = `o.id, o.request_item_id, o.location_id, o.title, o.description, o.status,
	o.starts_at, o.ends_at, o.external_url, o.metadata, o.created_at, o.selected_at, o.booked_at`

func scanOption(row pgx.Row) (*models.RequestOption, error) {
	var o models.RequestOption
	err := row.Scan(&o.ID, &o.RequestItemID, &o.LocationID, &o.Title, &o.Description,
		&o.Status, &o.StartsAt, &o.EndsAt, &o.ExternalURL, &o.Metadata,
		&o.CreatedAt, &o.SelectedAt, &o.BookedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// List returns requests for the organization, newest first within a status
// priority ordering (pending approval surfaces first), plus the total count.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, page, perPage int, status string) ([]models.Request, int, error) {
	where := `WHERE organization_id = $1`
	args := []interface{}{orgID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM requests `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + requestColumns + ` FROM requests ` + where + `
		ORDER BY CASE status
			WHEN 'pending_approval' THEN 1
			WHEN 'in_progress' THEN 2
			WHEN 'approved' THEN 3
			WHEN 'confirmed' THEN 4
			WHEN 'cancelled' THEN 5
			ELSE 6
		END, created_at DESC
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// GetByID returns a request with its items (by sort order) and their options
// (newest first), or nil when absent or out of tenant scope.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Request, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1 AND organization_id = $2`, id, orgID))
	if err != nil || req == nil {
		return req, err
	}

	items, err := r.listItems(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	req.Items = items
	return req, nil
}

func (r *Repository) listItems(ctx context.Context, requestID uuid.UUID) ([]models.RequestItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, request_id, type, title, description, required, sort_order, constraints, created_at, updated_at
		FROM request_items WHERE request_id = $1 ORDER BY sort_order ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.RequestItem
	for rows.Next() {
		var it models.RequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.Type, &it.Title, &it.Description,
			&it.Required, &it.SortOrder, &it.Constraints, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		opts, err := r.listOptions(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Options = opts
	}
	return items, nil
}

func (r *Repository) listOptions(ctx context.Context, itemID uuid.UUID) ([]models.RequestOption, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+optionColumns+` FROM request_options WHERE request_item_id = $1 ORDER BY created_at DESC`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []models.RequestOption
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		opts = append(opts, *o)
	}
	return opts, rows.Err()
}

// CreateInput holds fields for a new request with its initial items.
type CreateInput struct {
	Type               string
	Title              string
	Description        *string
	RequestedForUserID *uuid.UUID
	Items              []CreateItemInput
}

// CreateItemInput holds fields for a new request item.
type CreateItemInput struct {
	Type        string
	Title       string
	Description *string
	Required    bool
	SortOrder   int
	Constraints []byte
}

// Create inserts a request and its items in one transaction.
func (r *Repository) Create(ctx context.Context, orgID, createdBy uuid.UUID, input CreateInput) (*models.Request, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	req, err := scanRequest(tx.QueryRow(ctx,
		`INSERT INTO requests (organization_id, created_by_user_id, requested_for_user_id, type, title, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+requestColumns, orgID, createdBy, input.RequestedForUserID, input.Type, input.Title, input.Description))
	if err != nil {
		return nil, err
	}

	for _, item := range input.Items {
		constraints := item.Constraints
		if len(constraints) == 0 {
			constraints = []byte(`{}`)
		}
		var it models.RequestItem
		err := tx.QueryRow(ctx,
			`INSERT INTO request_items (request_id, type, title, description, required, sort_order, constraints)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, request_id, type, title, description, required, sort_order, constraints, created_at, updated_at`,
			req.ID, item.Type, item.Title, item.Description, item.Required, item.SortOrder, constraints).
			Scan(&it.ID, &it.RequestID, &it.Type, &it.Title, &it.Description,
				&it.Required, &it.SortOrder, &it.Constraints, &it.CreatedAt, &it.UpdatedAt)
		if err != nil {
			return nil, err
		}
		req.Items = append(req.Items, it)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateInput holds the optional fields of a request update. Nil means
// leave unchanged.
type UpdateInput struct {
	Status             *string
	HandledByUserID    *uuid.UUID
	ClearHandledBy     bool
	Title              *string
	Description        *string
	Type               *string
	RequestedForUserID *uuid.UUID
}

// Update applies a partial update to a request. Status transitions stamp
// sent_for_approval_at and decided_at as they pass those stages. Returns
// nil when the request is absent or out of tenant scope.
func (r *Repository) Update(ctx context.Context, orgID, id uuid.UUID, input UpdateInput) (*models.Request, error) {
	existing, err := scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1 AND organization_id = $2`, id, orgID))
	if err != nil || existing == nil {
		return existing, err
	}

	status := existing.Status
	sentForApprovalAt := existing.SentForApprovalAt
	decidedAt := existing.DecidedAt
	if input.Status != nil && *input.Status != existing.Status {
		if !ValidTransition(existing.Status, *input.Status) {
			return nil, ErrInvalidTransition
		}
		status = *input.Status
		now := time.Now()
		switch status {
		case models.RequestStatusPendingApproval:
			sentForApprovalAt = &now
		case models.RequestStatusApproved, models.RequestStatusCancelled:
			decidedAt = &now
		}
	}

	title := existing.Title
	if input.Title != nil {
		title = *input.Title
	}
	description := existing.Description
	if input.Description != nil {
		description = input.Description
	}
	reqType := existing.Type
	if input.Type != nil {
		reqType = *input.Type
	}
	requestedFor := existing.RequestedForUserID
	if input.RequestedForUserID != nil {
		requestedFor = input.RequestedForUserID
	}
	handledBy := existing.HandledByUserID
	if input.ClearHandledBy {
		handledBy = nil
	} else if input.HandledByUserID != nil {
		handledBy = input.HandledByUserID
	}

	return scanRequest(r.pool.QueryRow(ctx,
		`UPDATE requests SET status = $3, title = $4, description = $5, type = $6,
			requested_for_user_id = $7, handled_by_user_id = $8,
			sent_for_approval_at = $9, decided_at = $10, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+requestColumns,
		id, orgID, status, title, description, reqType, requestedFor, handledBy, sentForApprovalAt, decidedAt))
}

// Delete removes a request; items and options cascade. Returns the deleted
// row or nil when absent or out of tenant scope.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) (*models.Request, error) {
	return scanRequest(r.pool.QueryRow(ctx,
		`DELETE FROM requests WHERE id = $1 AND organization_id = $2 RETURNING `+requestColumns, id, orgID))
}

// ListItems returns the items of a request with their options, or nil when
// the request is out of tenant scope.
func (r *Repository) ListItems(ctx context.Context, orgID, requestID uuid.UUID) ([]models.RequestItem, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1 AND organization_id = $2`, requestID, orgID))
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, nil
	}
	items, err := r.listItems(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.RequestItem{}
	}
	return items, nil
}

// CreateItem appends an item to a request. Returns nil when the request is
// absent or out of tenant scope.
func (r *Repository) CreateItem(ctx context.Context, orgID, requestID uuid.UUID, input CreateItemInput) (*models.RequestItem, error) {
	constraints := input.Constraints
	if len(constraints) == 0 {
		constraints = []byte(`{}`)
	}
	var it models.RequestItem
	err := r.pool.QueryRow(ctx,
		`INSERT INTO request_items (request_id, type, title, description, required, sort_order, constraints)
		SELECT r.id, $3, $4, $5, $6, $7, $8 FROM requests r
		WHERE r.id = $1 AND r.organization_id = $2
		RETURNING id, request_id, type, title, description, required, sort_order, constraints, created_at, updated_at`,
		requestID, orgID, input.Type, input.Title, input.Description, input.Required, input.SortOrder, constraints).
		Scan(&it.ID, &it.RequestID, &it.Type, &it.Title, &it.Description,
			&it.Required, &it.SortOrder, &it.Constraints, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

// CreateOptionInput holds fields for a new request option.
type CreateOptionInput struct {
	LocationID  *uuid.UUID
	Title       string
	Description *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	ExternalURL *string
	Metadata    []byte
}

// CreateOption appends a candidate option to an item. The item must resolve
// through its request to the organization.
func (r *Repository) CreateOption(ctx context.Context, orgID, itemID uuid.UUID, input CreateOptionInput) (*models.RequestOption, error) {
	metadata := input.Metadata
	if len(metadata) == 0 {
		metadata = []byte(`{}`)
	}
	opt, err := scanOption(r.pool.QueryRow(ctx,
		`INSERT INTO request_options (request_item_id, location_id, title, description, starts_at, ends_at, external_url, metadata)
		SELECT i.id, $3, $4, $5, $6, $7, $8, $9
		FROM request_items i
		INNER JOIN requests r ON r.id = i.request_id
		WHERE i.id = $1 AND r.organization_id = $2
		RETURNING `+optionColumns,
		itemID, orgID, input.LocationID, input.Title, input.Description,
		input.StartsAt, input.EndsAt, input.ExternalURL, metadata))
	if err != nil {
		return nil, err
	}
	return opt, nil
}

// ListOptions returns the options of an item, newest first, or nil when the
// item is out of tenant scope.
func (r *Repository) ListOptions(ctx context.Context, orgID, itemID uuid.UUID) ([]models.RequestOption, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT TRUE FROM request_items i
		INNER JOIN requests r ON r.id = i.request_id
		WHERE i.id = $1 AND r.organization_id = $2`, itemID, orgID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	opts, err := r.listOptions(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = []models.RequestOption{}
	}
	return opts, nil
}
