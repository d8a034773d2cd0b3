package payments

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

// Repository handles payment persistence. A payment's amount is kept as the
// exact sum of its line item amounts; every write that touches line items
// recomputes it inside the same transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a payments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const paymentColumns = `p.id, p.organization_id, p.customer_id, p.payment_mode, p.amount_cents,
	p.currency, p.status, p.expires_at, p.paid_at, p.created_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.OrganizationID, &p.CustomerID, &p.PaymentMode, &p.AmountCents,
		&p.Currency, &p.Status, &p.ExpiresAt, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

const lineItemColumns = `id, payment_id, position, document_type, document_id, amount_cents, image_url, created_at`

func scanLineItem(row pgx.Row) (*models.PaymentLineItem, error) {
	var li models.PaymentLineItem
	err := row.Scan(&li.ID, &li.PaymentID, &li.Position, &li.DocumentType, &li.DocumentID,
		&li.AmountCents, &li.ImageURL, &li.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &li, nil
}

// List returns payments for the organization with customer business names
// and line items, plus the total count. Search matches the customer business
// name and line item document ids.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, page, perPage int, search string) ([]models.Payment, int, error) {
	where := `WHERE p.organization_id = $1`
	args := []interface{}{orgID}
	if search != "" {
		where += ` AND (c.business_name ILIKE $2 OR EXISTS (
			SELECT 1 FROM payment_line_items li
			WHERE li.payment_id = p.id AND li.document_id ILIKE $2))`
		args = append(args, "%"+search+"%")
	}

	from := ` FROM payments p LEFT JOIN customers c ON c.id = p.customer_id `

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := "$" + strconv.Itoa(len(args)+1)
	offsetArg := "$" + strconv.Itoa(len(args)+2)
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+`, c.business_name`+from+where+
			` ORDER BY p.created_at DESC LIMIT `+limitArg+` OFFSET `+offsetArg,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Payment
	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.OrganizationID, &p.CustomerID, &p.PaymentMode, &p.AmountCents,
			&p.Currency, &p.Status, &p.ExpiresAt, &p.PaidAt, &p.CreatedAt, &p.CustomerBusinessName)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(list) == 0 {
		return list, total, nil
	}

	ids := make([]uuid.UUID, len(list))
	index := make(map[uuid.UUID]int, len(list))
	for i, p := range list {
		ids[i] = p.ID
		index[p.ID] = i
	}
	liRows, err := r.pool.Query(ctx,
		`SELECT `+lineItemColumns+` FROM payment_line_items
		WHERE payment_id = ANY($1) ORDER BY position ASC, created_at ASC`, ids)
	if err != nil {
		return nil, 0, err
	}
	defer liRows.Close()
	for liRows.Next() {
		li, err := scanLineItem(liRows)
		if err != nil {
			return nil, 0, err
		}
		if i, ok := index[li.PaymentID]; ok {
			list[i].LineItems = append(list[i].LineItems, *li)
		}
	}
	if err := liRows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// GetByID returns a payment with line items, or nil when absent or out of
// tenant scope.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+`, c.business_name
		FROM payments p LEFT JOIN customers c ON c.id = p.customer_id
		WHERE p.id = $1 AND p.organization_id = $2`, id, orgID).
		Scan(&p.ID, &p.OrganizationID, &p.CustomerID, &p.PaymentMode, &p.AmountCents,
			&p.Currency, &p.Status, &p.ExpiresAt, &p.PaidAt, &p.CreatedAt, &p.CustomerBusinessName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+lineItemColumns+` FROM payment_line_items
		WHERE payment_id = $1 ORDER BY position ASC, created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		p.LineItems = append(p.LineItems, *li)
	}
	return &p, rows.Err()
}

// LineItemInput holds fields for a payment line item.
type LineItemInput struct {
	DocumentType string
	DocumentID   string
	AmountCents  int64
	ImageURL     *string
}

// TotalCents sums line item amounts. The stored payment amount is always
// this value, never a client supplied one.
func TotalCents(items []LineItemInput) int64 {
	var total int64
	for _, li := range items {
		total += li.AmountCents
	}
	return total
}

// CreateInput holds fields for a new payment.
type CreateInput struct {
	CustomerID  *uuid.UUID
	PaymentMode *string
	Currency    string
	Status      string
	ExpiresAt   *time.Time
	LineItems   []LineItemInput
}

// Create inserts a payment and its line items in one transaction.
func (r *Repository) Create(ctx context.Context, orgID uuid.UUID, input CreateInput) (*models.Payment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	currency := input.Currency
	if currency == "" {
		currency = "EUR"
	}
	status := input.Status
	if status == "" {
		status = models.PaymentStatusPending
	}

	p, err := scanPayment(tx.QueryRow(ctx,
		`INSERT INTO payments AS p (organization_id, customer_id, payment_mode, amount_cents, currency, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+paymentColumns,
		orgID, input.CustomerID, input.PaymentMode, TotalCents(input.LineItems),
		currency, status, input.ExpiresAt))
	if err != nil {
		return nil, err
	}

	items, err := insertLineItems(ctx, tx, p.ID, input.LineItems)
	if err != nil {
		return nil, err
	}
	p.LineItems = items

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func insertLineItems(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID, items []LineItemInput) ([]models.PaymentLineItem, error) {
	out := make([]models.PaymentLineItem, 0, len(items))
	for pos, li := range items {
		inserted, err := scanLineItem(tx.QueryRow(ctx,
			`INSERT INTO payment_line_items (payment_id, position, document_type, document_id, amount_cents, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+lineItemColumns,
			paymentID, pos, li.DocumentType, li.DocumentID, li.AmountCents, li.ImageURL))
		if err != nil {
			return nil, err
		}
		out = append(out, *inserted)
	}
	return out, nil
}

// UpdateInput holds the optional fields of a payment update. A non-nil
// LineItems replaces the whole set and recomputes the amount.
type UpdateInput struct {
	CustomerID       *uuid.UUID
	ClearCustomer    bool
	PaymentMode      *string
	Currency         *string
	Status           *string
	ExpiresAt        *time.Time
	ClearExpiresAt   bool
	MarkPaid         bool
	LineItems        []LineItemInput
	ReplaceLineItems bool
}

// Update applies a partial update to a payment. When line items are replaced
// the old rows are deleted and the new set inserted with fresh positions,
// and the payment amount becomes the new sum. Returns nil when absent or out
// of tenant scope.
func (r *Repository) Update(ctx context.Context, orgID, id uuid.UUID, input UpdateInput) (*models.Payment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	existing, err := scanPayment(tx.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments p WHERE p.id = $1 AND p.organization_id = $2`, id, orgID))
	if err != nil || existing == nil {
		return existing, err
	}

	customerID := existing.CustomerID
	if input.ClearCustomer {
		customerID = nil
	} else if input.CustomerID != nil {
		customerID = input.CustomerID
	}
	mode := existing.PaymentMode
	if input.PaymentMode != nil {
		mode = input.PaymentMode
	}
	currency := existing.Currency
	if input.Currency != nil {
		currency = *input.Currency
	}
	status := existing.Status
	if input.Status != nil {
		status = *input.Status
	}

	amount := existing.AmountCents
	var items []models.PaymentLineItem
	if input.ReplaceLineItems {
		if _, err := tx.Exec(ctx, `DELETE FROM payment_line_items WHERE payment_id = $1`, id); err != nil {
			return nil, err
		}
		items, err = insertLineItems(ctx, tx, id, input.LineItems)
		if err != nil {
			return nil, err
		}
		amount = TotalCents(input.LineItems)
	}

	row := tx.QueryRow(ctx,
		`UPDATE payments AS p SET customer_id = $3, payment_mode = $4, currency = $5, status = $6,
			amount_cents = $7,
			expires_at = CASE WHEN $8 THEN NULL WHEN $9::timestamptz IS NOT NULL THEN $9 ELSE expires_at END,
			paid_at = CASE WHEN $10 THEN NOW() ELSE paid_at END
		WHERE p.id = $1 AND p.organization_id = $2
		RETURNING `+paymentColumns,
		id, orgID, customerID, mode, currency, status, amount,
		input.ClearExpiresAt, input.ExpiresAt, input.MarkPaid)
	updated, err := scanPayment(row)
	if err != nil {
		return nil, err
	}
	if input.ReplaceLineItems {
		updated.LineItems = items
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	if !input.ReplaceLineItems {
		full, err := r.GetByID(ctx, orgID, id)
		if err != nil {
			return nil, err
		}
		return full, nil
	}
	return updated, nil
}

// Delete removes a payment and its line items. Returns the deleted row or
// nil when absent or out of tenant scope.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) (*models.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		`DELETE FROM payments AS p WHERE p.id = $1 AND p.organization_id = $2 RETURNING `+paymentColumns,
		id, orgID))
}

// DeleteByIDs removes multiple payments in one statement. Ids are
// deduplicated; foreign-tenant ids are ignored; an empty list is a no-op.
func (r *Repository) DeleteByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.Payment, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return []models.Payment{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`DELETE FROM payments AS p WHERE p.organization_id = $1 AND p.id = ANY($2) RETURNING `+paymentColumns,
		orgID, unique)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	deleted := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, *p)
	}
	return deleted, rows.Err()
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
