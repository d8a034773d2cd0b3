package customers

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuedesk/backend/internal/models"
)

// Repository handles customer and customer address persistence. Every
// operation is scoped by organization id.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a customers repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, organization_id, business_name, domain, contact_phone_number,
	client_code, tax_id, vat_number, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.OrganizationID, &c.BusinessName, &c.Domain, &c.ContactPhoneNumber,
		&c.ClientCode, &c.TaxID, &c.VATNumber, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

const addressColumns = `id, customer_id, type, label, line1, line2, postal_code, city,
	state_province, country_code, latitude, longitude, google_place_id, is_primary,
	created_at, updated_at`

func scanAddress(row pgx.Row) (*models.CustomerAddress, error) {
	var a models.CustomerAddress
	err := row.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Label, &a.Line1, &a.Line2,
		&a.PostalCode, &a.City, &a.StateProvince, &a.CountryCode, &a.Latitude,
		&a.Longitude, &a.GooglePlaceID, &a.IsPrimary, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// List returns customers for the organization with their addresses, plus the
// total count. Search matches business name and client code.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, page, perPage int, search string) ([]models.Customer, int, error) {
	where := `WHERE organization_id = $1`
	args := []interface{}{orgID}
	if search != "" {
		where += ` AND (business_name ILIKE $2 OR client_code ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := len(args) + 1
	offsetArg := len(args) + 2
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers `+where+
			` ORDER BY created_at DESC LIMIT `+placeholder(limitArg)+` OFFSET `+placeholder(offsetArg),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Customer
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *cust)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(list) == 0 {
		return list, total, nil
	}

	ids := make([]uuid.UUID, len(list))
	index := make(map[uuid.UUID]int, len(list))
	for i, cust := range list {
		ids[i] = cust.ID
		index[cust.ID] = i
	}
	addrRows, err := r.pool.Query(ctx,
		`SELECT `+addressColumns+` FROM customer_addresses
		WHERE customer_id = ANY($1)
		ORDER BY is_primary DESC, created_at DESC`, ids)
	if err != nil {
		return nil, 0, err
	}
	defer addrRows.Close()
	for addrRows.Next() {
		addr, err := scanAddress(addrRows)
		if err != nil {
			return nil, 0, err
		}
		if i, ok := index[addr.CustomerID]; ok {
			list[i].Addresses = append(list[i].Addresses, *addr)
		}
	}
	if err := addrRows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// GetByID returns a customer with addresses, or nil when absent or out of
// tenant scope.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Customer, error) {
	cust, err := scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 AND organization_id = $2`, id, orgID))
	if err != nil || cust == nil {
		return cust, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+addressColumns+` FROM customer_addresses
		WHERE customer_id = $1 ORDER BY is_primary DESC, created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		addr, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		cust.Addresses = append(cust.Addresses, *addr)
	}
	return cust, rows.Err()
}

// AddressInput holds fields for a new or updated customer address.
type AddressInput struct {
	Type          string
	Label         *string
	Line1         string
	Line2         *string
	PostalCode    *string
	City          string
	StateProvince *string
	CountryCode   *string
	Latitude      *float64
	Longitude     *float64
	GooglePlaceID *string
	IsPrimary     bool
}

// CreateInput holds fields for a new customer with its addresses.
type CreateInput struct {
	BusinessName       string
	Domain             *string
	ContactPhoneNumber *string
	ClientCode         *string
	TaxID              *string
	VATNumber          *string
	Addresses          []AddressInput
}

// Create inserts a customer and its addresses in one transaction.
// Optional text fields are normalized (trim, empty -> NULL).
func (r *Repository) Create(ctx context.Context, orgID uuid.UUID, input CreateInput) (*models.Customer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cust, err := scanCustomer(tx.QueryRow(ctx,
		`INSERT INTO customers (organization_id, business_name, domain, contact_phone_number, client_code, tax_id, vat_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+customerColumns,
		orgID,
		input.BusinessName,
		normalizeOptionalDomain(input.Domain),
		normalizeOptionalText(input.ContactPhoneNumber),
		normalizeOptionalText(input.ClientCode),
		normalizeOptionalText(input.TaxID),
		normalizeOptionalText(input.VATNumber)))
	if err != nil {
		return nil, err
	}

	for _, addr := range input.Addresses {
		inserted, err := insertAddress(ctx, tx, cust.ID, addr)
		if err != nil {
			return nil, err
		}
		cust.Addresses = append(cust.Addresses, *inserted)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cust, nil
}

func insertAddress(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, addr AddressInput) (*models.CustomerAddress, error) {
	addrType := addr.Type
	if addrType == "" {
		addrType = models.AddressTypeBilling
	}
	return scanAddress(tx.QueryRow(ctx,
		`INSERT INTO customer_addresses (customer_id, type, label, line1, line2, postal_code, city,
			state_province, country_code, latitude, longitude, google_place_id, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+addressColumns,
		customerID, addrType,
		normalizeOptionalText(addr.Label),
		addr.Line1,
		normalizeOptionalText(addr.Line2),
		normalizeOptionalText(addr.PostalCode),
		addr.City,
		normalizeOptionalText(addr.StateProvince),
		normalizeOptionalCountryCode(addr.CountryCode),
		addr.Latitude, addr.Longitude,
		normalizeOptionalText(addr.GooglePlaceID),
		addr.IsPrimary))
}

// UpdateInput holds the optional fields of a customer update. Nil means
// leave unchanged.
type UpdateInput struct {
	BusinessName       *string
	Domain             *string
	ContactPhoneNumber *string
	ClientCode         *string
	TaxID              *string
	VATNumber          *string
}

// Update applies a partial update to a customer. Returns nil when absent or
// out of tenant scope.
func (r *Repository) Update(ctx context.Context, orgID, id uuid.UUID, input UpdateInput) (*models.Customer, error) {
	existing, err := scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 AND organization_id = $2`, id, orgID))
	if err != nil || existing == nil {
		return existing, err
	}

	businessName := existing.BusinessName
	if input.BusinessName != nil {
		businessName = *input.BusinessName
	}
	domain := existing.Domain
	if input.Domain != nil {
		domain = normalizeOptionalDomain(input.Domain)
	}
	phone := existing.ContactPhoneNumber
	if input.ContactPhoneNumber != nil {
		phone = normalizeOptionalText(input.ContactPhoneNumber)
	}
	clientCode := existing.ClientCode
	if input.ClientCode != nil {
		clientCode = normalizeOptionalText(input.ClientCode)
	}
	taxID := existing.TaxID
	if input.TaxID != nil {
		taxID = normalizeOptionalText(input.TaxID)
	}
	vat := existing.VATNumber
	if input.VATNumber != nil {
		vat = normalizeOptionalText(input.VATNumber)
	}

	return scanCustomer(r.pool.QueryRow(ctx,
		`UPDATE customers SET business_name = $3, domain = $4, contact_phone_number = $5,
			client_code = $6, tax_id = $7, vat_number = $8, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+customerColumns,
		id, orgID, businessName, domain, phone, clientCode, taxID, vat))
}

// DeleteByID removes a customer after nulling out its payment references so
// payment history survives. Returns the deleted row or nil.
func (r *Repository) DeleteByID(ctx context.Context, orgID, id uuid.UUID) (*models.Customer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE payments SET customer_id = NULL
		WHERE organization_id = $1 AND customer_id = $2`, orgID, id)
	if err != nil {
		return nil, err
	}

	deleted, err := scanCustomer(tx.QueryRow(ctx,
		`DELETE FROM customers WHERE id = $1 AND organization_id = $2 RETURNING `+customerColumns, id, orgID))
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteByIDs removes multiple customers in one transaction. Ids are
// deduplicated; foreign-tenant ids are ignored; an empty list is a no-op.
// Returns the rows actually deleted.
func (r *Repository) DeleteByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.Customer, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return []models.Customer{}, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE payments SET customer_id = NULL
		WHERE organization_id = $1 AND customer_id = ANY($2)`, orgID, unique)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx,
		`DELETE FROM customers WHERE organization_id = $1 AND id = ANY($2) RETURNING `+customerColumns,
		orgID, unique)
	if err != nil {
		return nil, err
	}
	deleted := []models.Customer{}
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		deleted = append(deleted, *cust)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return deleted, nil
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

// CreateAddress adds an address to a customer. When the new address is
// primary, the customer's previous primary is demoted first so exactly one
// primary remains. Returns nil when the customer is out of tenant scope.
func (r *Repository) CreateAddress(ctx context.Context, orgID, customerID uuid.UUID, input AddressInput) (*models.CustomerAddress, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT TRUE FROM customers WHERE id = $1 AND organization_id = $2`, customerID, orgID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if input.IsPrimary {
		_, err = tx.Exec(ctx,
			`UPDATE customer_addresses SET is_primary = FALSE, updated_at = NOW()
			WHERE customer_id = $1 AND is_primary`, customerID)
		if err != nil {
			return nil, err
		}
	}

	created, err := insertAddress(ctx, tx, customerID, input)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateAddressInput holds the optional fields of an address update.
type UpdateAddressInput struct {
	Type          *string
	Label         *string
	Line1         *string
	Line2         *string
	PostalCode    *string
	City          *string
	StateProvince *string
	CountryCode   *string
	Latitude      *float64
	Longitude     *float64
	GooglePlaceID *string
	IsPrimary     *bool
}

// UpdateAddress applies a partial update to a customer address. Setting
// IsPrimary demotes the customer's other addresses in the same transaction.
// Returns nil when the address is absent or out of tenant scope.
func (r *Repository) UpdateAddress(ctx context.Context, orgID, customerID, addressID uuid.UUID, input UpdateAddressInput) (*models.CustomerAddress, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	existing, err := scanAddress(tx.QueryRow(ctx,
		`SELECT `+qualifiedAddressColumns+` FROM customer_addresses a
		INNER JOIN customers c ON c.id = a.customer_id
		WHERE a.id = $1 AND a.customer_id = $2 AND c.organization_id = $3`,
		addressID, customerID, orgID))
	if err != nil || existing == nil {
		return existing, err
	}

	if input.IsPrimary != nil && *input.IsPrimary {
		_, err = tx.Exec(ctx,
			`UPDATE customer_addresses SET is_primary = FALSE, updated_at = NOW()
			WHERE customer_id = $1 AND id <> $2 AND is_primary`, customerID, addressID)
		if err != nil {
			return nil, err
		}
	}

	addrType := existing.Type
	if input.Type != nil {
		addrType = *input.Type
	}
	label := existing.Label
	if input.Label != nil {
		label = normalizeOptionalText(input.Label)
	}
	line1 := existing.Line1
	if input.Line1 != nil {
		line1 = *input.Line1
	}
	line2 := existing.Line2
	if input.Line2 != nil {
		line2 = normalizeOptionalText(input.Line2)
	}
	postal := existing.PostalCode
	if input.PostalCode != nil {
		postal = normalizeOptionalText(input.PostalCode)
	}
	city := existing.City
	if input.City != nil {
		city = *input.City
	}
	state := existing.StateProvince
	if input.StateProvince != nil {
		state = normalizeOptionalText(input.StateProvince)
	}
	country := existing.CountryCode
	if input.CountryCode != nil {
		country = normalizeOptionalCountryCode(input.CountryCode)
	}
	lat := existing.Latitude
	if input.Latitude != nil {
		lat = input.Latitude
	}
	lng := existing.Longitude
	if input.Longitude != nil {
		lng = input.Longitude
	}
	placeID := existing.GooglePlaceID
	if input.GooglePlaceID != nil {
		placeID = normalizeOptionalText(input.GooglePlaceID)
	}
	isPrimary := existing.IsPrimary
	if input.IsPrimary != nil {
		isPrimary = *input.IsPrimary
	}

	updated, err := scanAddress(tx.QueryRow(ctx,
		`UPDATE customer_addresses SET type = $3, label = $4, line1 = $5, line2 = $6,
			postal_code = $7, city = $8, state_province = $9, country_code = $10,
			latitude = $11, longitude = $12, google_place_id = $13, is_primary = $14,
			updated_at = NOW()
		WHERE id = $1 AND customer_id = $2
		RETURNING `+addressColumns,
		addressID, customerID, addrType, label, line1, line2, postal, city, state,
		country, lat, lng, placeID, isPrimary))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAddress removes a customer address. Returns the deleted row or nil
// when absent or out of tenant scope.
func (r *Repository) DeleteAddress(ctx context.Context, orgID, customerID, addressID uuid.UUID) (*models.CustomerAddress, error) {
	return scanAddress(r.pool.QueryRow(ctx,
		`DELETE FROM customer_addresses a
		USING customers c
		WHERE a.id = $1 AND a.customer_id = $2 AND c.id = a.customer_id AND c.organization_id = $3
		RETURNING `+qualifiedAddressColumns,
		addressID, customerID, orgID))
}

// qualifiedAddressColumns is addressColumns with the a. alias for joined
// statements.
const qualifiedAddressColumns = `a.id, a.customer_id, a.type, a.label, a.line1, a.line2, a.postal_code, a.city,
	a.state_province, a.country_code, a.latitude, a.longitude, a.google_place_id, a.is_primary,
	a.created_at, a.updated_at`
