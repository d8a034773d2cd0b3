package locations

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuedesk/backend/internal/models"
)

// Location types accepted by the catalog.
var ValidTypes = map[string]bool{
	"restaurant": true,
	"bar":        true,
	"cafe":       true,
	"bakery":     true,
	"pub":        true,
	"lounge":     true,
	"food_hall":  true,
	"hotel":      true,
	"club":       true,
	"other":      true,
}

// Repository handles the shared venue catalog. Locations are not
// organization scoped.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a locations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const locationColumns = `id, name, type, address, city, latitude, longitude, google_place_id, created_at, updated_at`

func scanLocation(row pgx.Row) (*models.Location, error) {
	var l models.Location
	err := row.Scan(&l.ID, &l.Name, &l.Type, &l.Address, &l.City, &l.Latitude,
		&l.Longitude, &l.GooglePlaceID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// List returns locations with pagination, an optional type filter, and
// search over name and city.
func (r *Repository) List(ctx context.Context, page, perPage int, locType, search string) ([]models.Location, int, error) {
	where := `WHERE TRUE`
	args := []interface{}{}
	if locType != "" {
		args = append(args, locType)
		where += ` AND type = $` + strconv.Itoa(len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR city ILIKE $` + n + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM locations `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := "$" + strconv.Itoa(len(args)+1)
	offsetArg := "$" + strconv.Itoa(len(args)+2)
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.pool.Query(ctx,
		`SELECT `+locationColumns+` FROM locations `+where+
			` ORDER BY name ASC LIMIT `+limitArg+` OFFSET `+offsetArg,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *l)
	}
	return list, total, rows.Err()
}

// GetByID returns a location or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	return scanLocation(r.pool.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
}

// CreateInput holds fields for a new location.
type CreateInput struct {
	Name          string
	Type          string
	Address       *string
	City          *string
	Latitude      *float64
	Longitude     *float64
	GooglePlaceID *string
}

// Create inserts a location.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*models.Location, error) {
	locType := input.Type
	if locType == "" {
		locType = "other"
	}
	return scanLocation(r.pool.QueryRow(ctx,
		`INSERT INTO locations (name, type, address, city, latitude, longitude, google_place_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+locationColumns,
		input.Name, locType, input.Address, input.City, input.Latitude, input.Longitude, input.GooglePlaceID))
}
