package requests

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuedesk/backend/internal/models"
)

// ErrInvalidTransition is returned when a status update does not follow the
// request lifecycle.
var ErrInvalidTransition = errors.New("invalid request status transition")

// Workflow drives a request through its approval lifecycle: selecting an
// option rejects its pending siblings, and the request auto-approves exactly
// when every item has a selected option. All multi-step mutations run inside
// one transaction.
type Workflow struct {
	pool *pgxpool.Pool
}

// NewWorkflow creates the request workflow engine.
func NewWorkflow(pool *pgxpool.Pool) *Workflow {
	return &Workflow{pool: pool}
}

// SelectOptionAndFinalize marks the option selected, rejects the item's
// other pending options, and approves the request when every item now has a
// selected option. The option must resolve through item -> request ->
// organization; otherwise (nil, nil) is returned and nothing changes.
// All steps commit or roll back together.
func (w *Workflow) SelectOptionAndFinalize(ctx context.Context, orgID, requestID, itemID, optionID uuid.UUID) (*models.RequestOption, error) {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updated, err := scanOption(tx.QueryRow(ctx,
		`UPDATE request_options o SET status = 'selected', selected_at = NOW()
		FROM request_items i
		INNER JOIN requests r ON r.id = i.request_id
		WHERE o.id = $1
		  AND o.request_item_id = i.id
		  AND i.id = $2
		  AND r.id = $3
		  AND r.organization_id = $4
		RETURNING `+qualifiedOptionColumns,
		optionID, itemID, requestID, orgID))
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	// The explicit target always wins; only pending siblings are rejected.
	_, err = tx.Exec(ctx,
		`UPDATE request_options SET status = 'rejected'
		WHERE request_item_id = $1 AND status = 'pending' AND id <> $2`,
		itemID, optionID)
	if err != nil {
		return nil, err
	}

	counts, err := selectedCountsPerItem(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if fullyDecided(counts) {
		_, err = tx.Exec(ctx,
			`UPDATE requests SET status = 'approved', decided_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND organization_id = $2`,
			requestID, orgID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// RejectOtherOptionsForItem sets all pending options of the item to rejected
// except the given one. Standalone primitive; does not touch request status.
func (w *Workflow) RejectOtherOptionsForItem(ctx context.Context, orgID, itemID, exceptOptionID uuid.UUID) error {
	_, err := w.pool.Exec(ctx,
		`UPDATE request_options o SET status = 'rejected'
		FROM request_items i
		INNER JOIN requests r ON r.id = i.request_id
		WHERE o.request_item_id = i.id
		  AND i.id = $1
		  AND r.organization_id = $2
		  AND o.status = 'pending'
		  AND o.id <> $3`,
		itemID, orgID, exceptOptionID)
	return err
}

// AllItemsHaveSelectedOption reports whether every item of the request has
// at least one selected option. A request with no items, or with an item
// that has no options, is never fully decided.
func (w *Workflow) AllItemsHaveSelectedOption(ctx context.Context, requestID uuid.UUID) (bool, error) {
	counts, err := selectedCountsPerItem(ctx, w.pool, requestID)
	if err != nil {
		return false, err
	}
	return fullyDecided(counts), nil
}

// querier is the subset of pgx shared by pool and transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// selectedCountsPerItem returns, per item of the request, how many of its
// options are selected. Items without options appear with a zero count.
func selectedCountsPerItem(ctx context.Context, q querier, requestID uuid.UUID) ([]int, error) {
	rows, err := q.Query(ctx,
		`SELECT COUNT(o.id) FILTER (WHERE o.status = 'selected')
		FROM request_items i
		LEFT JOIN request_options o ON o.request_item_id = i.id
		WHERE i.request_id = $1
		GROUP BY i.id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		counts = append(counts, n)
	}
	return counts, rows.Err()
}

// fullyDecided reports whether a request with the given per-item selected
// counts is complete: at least one item, and every item with at least one
// selected option.
func fullyDecided(selectedPerItem []int) bool {
	if len(selectedPerItem) == 0 {
		return false
	}
	for _, n := range selectedPerItem {
		if n == 0 {
			return false
		}
	}
	return true
}

// ValidTransition reports whether a direct status update follows the
// request lifecycle: pending -> in_progress -> pending_approval ->
// approved|cancelled -> confirmed. Cancellation is allowed from any
// non-terminal status.
func ValidTransition(from, to string) bool {
	switch from {
	case models.RequestStatusPending:
		return to == models.RequestStatusInProgress || to == models.RequestStatusCancelled
	case models.RequestStatusInProgress:
		return to == models.RequestStatusPendingApproval || to == models.RequestStatusCancelled
	case models.RequestStatusPendingApproval:
		return to == models.RequestStatusApproved || to == models.RequestStatusCancelled
	case models.RequestStatusApproved:
		return to == models.RequestStatusConfirmed || to == models.RequestStatusCancelled
	default:
		return false
	}
}
