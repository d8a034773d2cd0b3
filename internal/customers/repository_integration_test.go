//go:build integration

package customers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/venuedesk/backend/internal/models"
	"github.com/venuedesk/backend/internal/organizations"
	"github.com/venuedesk/backend/pkg/database"
)

func setupPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	pool, err := database.NewPostgresPool(ctx, dsn, database.PoolOptions{}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

func seedOrgs(t *testing.T, ctx context.Context, pool *pgxpool.Pool) (orgA, orgB uuid.UUID) {
	t.Helper()
	orgs := organizations.NewRepository(pool)
	a := &models.Organization{Name: "Org A", Slug: "org-a"}
	require.NoError(t, orgs.Create(ctx, a))
	b := &models.Organization{Name: "Org B", Slug: "org-b"}
	require.NoError(t, orgs.Create(ctx, b))
	return a.ID, b.ID
}

func TestDeleteByIDsScopedAndDetachesPayments(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	orgA, orgB := seedOrgs(t, ctx, pool)
	repo := NewRepository(pool)

	c1, err := repo.Create(ctx, orgA, CreateInput{BusinessName: "Acme"})
	require.NoError(t, err)
	c2, err := repo.Create(ctx, orgA, CreateInput{BusinessName: "Globex"})
	require.NoError(t, err)
	foreign, err := repo.Create(ctx, orgB, CreateInput{BusinessName: "Initech"})
	require.NoError(t, err)

	var paymentID uuid.UUID
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO payments (organization_id, customer_id, amount_cents) VALUES ($1, $2, 1000) RETURNING id`,
		orgA, c1.ID).Scan(&paymentID))

	// Duplicates collapse; the foreign tenant's id is ignored.
	deleted, err := repo.DeleteByIDs(ctx, orgA, []uuid.UUID{c1.ID, c2.ID, c1.ID, foreign.ID})
	require.NoError(t, err)
	assert.Len(t, deleted, 2)

	survivor, err := repo.GetByID(ctx, orgB, foreign.ID)
	require.NoError(t, err)
	require.NotNil(t, survivor)
	assert.Equal(t, "Initech", survivor.BusinessName)

	// Payment history survives with the customer reference cleared.
	var customerRef *uuid.UUID
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT customer_id FROM payments WHERE id = $1`, paymentID).Scan(&customerRef))
	assert.Nil(t, customerRef)
}

func TestDeleteByIDsEmptyListIsNoOp(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	orgA, _ := seedOrgs(t, ctx, pool)
	repo := NewRepository(pool)

	cust, err := repo.Create(ctx, orgA, CreateInput{BusinessName: "Acme"})
	require.NoError(t, err)

	deleted, err := repo.DeleteByIDs(ctx, orgA, nil)
	require.NoError(t, err)
	assert.Empty(t, deleted)

	still, err := repo.GetByID(ctx, orgA, cust.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func countPrimaries(t *testing.T, ctx context.Context, pool *pgxpool.Pool, customerID uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM customer_addresses WHERE customer_id = $1 AND is_primary`, customerID).Scan(&n))
	return n
}

func TestCreateAddressDemotesPreviousPrimary(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	orgA, orgB := seedOrgs(t, ctx, pool)
	repo := NewRepository(pool)

	cust, err := repo.Create(ctx, orgA, CreateInput{
		BusinessName: "Acme",
		Addresses: []AddressInput{
			{Type: models.AddressTypeBilling, Line1: "Via Roma 1", City: "Milano", IsPrimary: true},
		},
	})
	require.NoError(t, err)
	first := cust.Addresses[0]
	require.True(t, first.IsPrimary)

	second, err := repo.CreateAddress(ctx, orgA, cust.ID, AddressInput{
		Type: models.AddressTypeShipping, Line1: "Via Torino 2", City: "Milano", IsPrimary: true,
	})
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.True(t, second.IsPrimary)

	assert.Equal(t, 1, countPrimaries(t, ctx, pool, cust.ID))
	var firstPrimary bool
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT is_primary FROM customer_addresses WHERE id = $1`, first.ID).Scan(&firstPrimary))
	assert.False(t, firstPrimary)

	// A foreign tenant cannot attach addresses at all.
	none, err := repo.CreateAddress(ctx, orgB, cust.ID, AddressInput{
		Type: models.AddressTypeOther, Line1: "Elsewhere 3", City: "Roma", IsPrimary: true,
	})
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.Equal(t, 1, countPrimaries(t, ctx, pool, cust.ID))
}

func TestUpdateAddressPromotionDemotesOthers(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)
	orgA, _ := seedOrgs(t, ctx, pool)
	repo := NewRepository(pool)

	cust, err := repo.Create(ctx, orgA, CreateInput{
		BusinessName: "Acme",
		Addresses: []AddressInput{
			{Type: models.AddressTypeBilling, Line1: "Via Roma 1", City: "Milano", IsPrimary: true},
			{Type: models.AddressTypeShipping, Line1: "Via Torino 2", City: "Milano"},
		},
	})
	require.NoError(t, err)
	billing, shipping := cust.Addresses[0], cust.Addresses[1]

	promote := true
	updated, err := repo.UpdateAddress(ctx, orgA, cust.ID, shipping.ID, UpdateAddressInput{IsPrimary: &promote})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsPrimary)

	assert.Equal(t, 1, countPrimaries(t, ctx, pool, cust.ID))
	var billingPrimary bool
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT is_primary FROM customer_addresses WHERE id = $1`, billing.ID).Scan(&billingPrimary))
	assert.False(t, billingPrimary)
}
