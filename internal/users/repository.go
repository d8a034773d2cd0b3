package users

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuedesk/backend/internal/models"
)

// Repository handles user persistence for the organization-scoped user
// directory. Listing only surfaces users who are members of the
// organization.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `u.id, u.email, u.password, u.first_name, u.last_name, u.name, u.image,
	u.role, u.email_verified, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Name,
		&u.Image, &u.Role, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// List returns users who are members of the organization, with the total
// count. Search matches name and email.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, page, perPage int, search string) ([]models.UserPublic, int, error) {
	where := `WHERE m.organization_id = $1`
	args := []interface{}{orgID}
	if search != "" {
		where += ` AND (u.name ILIKE $2 OR u.email ILIKE $2)`
		args = append(args, "%"+search+"%")
	}
	from := ` FROM users u INNER JOIN members m ON m.user_id = u.id `

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := "$" + strconv.Itoa(len(args)+1)
	offsetArg := "$" + strconv.Itoa(len(args)+2)
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+from+where+
			` ORDER BY u.created_at DESC LIMIT `+limitArg+` OFFSET `+offsetArg,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []models.UserPublic{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, u.ToPublic())
	}
	return list, total, rows.Err()
}

// GetByID returns a user when they belong to the organization, or nil.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u
		INNER JOIN members m ON m.user_id = u.id
		WHERE u.id = $1 AND m.organization_id = $2`, id, orgID))
}

// UpdateInput holds the optional fields of a user profile update.
type UpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Image     *string
}

// Update applies a partial profile update. The display name is recomputed
// from first and last name whenever either changes. Returns nil when the
// user is not a member of the organization.
func (r *Repository) Update(ctx context.Context, orgID, id uuid.UUID, input UpdateInput) (*models.User, error) {
	existing, err := r.GetByID(ctx, orgID, id)
	if err != nil || existing == nil {
		return existing, err
	}

	email := existing.Email
	if input.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	firstName := existing.FirstName
	if input.FirstName != nil {
		firstName = input.FirstName
	}
	lastName := existing.LastName
	if input.LastName != nil {
		lastName = input.LastName
	}
	image := existing.Image
	if input.Image != nil {
		image = input.Image
	}

	name := existing.Name
	if input.FirstName != nil || input.LastName != nil {
		name = buildName(firstName, lastName)
	}

	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users AS u SET email = $2, first_name = $3, last_name = $4, name = $5,
			image = $6, updated_at = NOW()
		WHERE u.id = $1
		RETURNING `+userColumns,
		id, email, firstName, lastName, name, image))
}

func buildName(first, last *string) *string {
	var parts []string
	if first != nil && strings.TrimSpace(*first) != "" {
		parts = append(parts, strings.TrimSpace(*first))
	}
	if last != nil && strings.TrimSpace(*last) != "" {
		parts = append(parts, strings.TrimSpace(*last))
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, " ")
	return &joined
}
