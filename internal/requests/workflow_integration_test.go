//go:build integration

package requests

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
	// A second run must be a no-op once migrations are recorded.
	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

type fixture struct {
	pool     *pgxpool.Pool
	repo     *Repository
	workflow *Workflow
	userID   uuid.UUID
	orgA     uuid.UUID
	orgB     uuid.UUID
}

func setupFixture(t *testing.T, ctx context.Context) *fixture {
	t.Helper()
	pool := setupPostgres(t, ctx)

	var userID uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO users (email, password, role) VALUES ('pm@example.com', 'x', 'user') RETURNING id`).
		Scan(&userID)
	require.NoError(t, err)

	orgs := organizations.NewRepository(pool)
	orgA := &models.Organization{Name: "Org A", Slug: "org-a"}
	require.NoError(t, orgs.Create(ctx, orgA))
	orgB := &models.Organization{Name: "Org B", Slug: "org-b"}
	require.NoError(t, orgs.Create(ctx, orgB))
	require.NoError(t, orgs.AddMember(ctx, orgA.ID, userID, models.OrgRoleOwner))

	return &fixture{
		pool:     pool,
		repo:     NewRepository(pool),
		workflow: NewWorkflow(pool),
		userID:   userID,
		orgA:     orgA.ID,
		orgB:     orgB.ID,
	}
}

func (f *fixture) createRequest(t *testing.T, ctx context.Context, itemTitles ...string) *models.Request {
	t.Helper()
	input := CreateInput{Type: "venue_search", Title: "Summer launch"}
	for i, title := range itemTitles {
		input.Items = append(input.Items, CreateItemInput{
			Type: "venue", Title: title, Required: true, SortOrder: i,
		})
	}
	req, err := f.repo.Create(ctx, f.orgA, f.userID, input)
	require.NoError(t, err)
	return req
}

func (f *fixture) addOption(t *testing.T, ctx context.Context, itemID uuid.UUID, title string) *models.RequestOption {
	t.Helper()
	opt, err := f.repo.CreateOption(ctx, f.orgA, itemID, CreateOptionInput{Title: title})
	require.NoError(t, err)
	require.NotNil(t, opt)
	return opt
}

func (f *fixture) optionStatus(t *testing.T, ctx context.Context, optionID uuid.UUID) string {
	t.Helper()
	var status string
	require.NoError(t, f.pool.QueryRow(ctx,
		`SELECT status FROM request_options WHERE id = $1`, optionID).Scan(&status))
	return status
}

func TestSelectOptionRejectsSiblingsAndApprovesWhenComplete(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t, ctx)

	req := f.createRequest(t, ctx, "Venue", "Catering")
	item1, item2 := req.Items[0], req.Items[1]
	opt1a := f.addOption(t, ctx, item1.ID, "Rooftop")
	opt1b := f.addOption(t, ctx, item1.ID, "Warehouse")
	opt2a := f.addOption(t, ctx, item2.ID, "Buffet")

	selected, err := f.workflow.SelectOptionAndFinalize(ctx, f.orgA, req.ID, item1.ID, opt1a.ID)
	require.NoError(t, err)
	require.NotNil(t, selected)
	assert.Equal(t, models.OptionStatusSelected, selected.Status)
	assert.NotNil(t, selected.SelectedAt)

	// Sibling was pending, so it got rejected; the other item is untouched.
	assert.Equal(t, models.OptionStatusRejected, f.optionStatus(t, ctx, opt1b.ID))
	assert.Equal(t, models.OptionStatusPending, f.optionStatus(t, ctx, opt2a.ID))

	// One item is still undecided, so the request must not approve yet.
	after, err := f.repo.GetByID(ctx, f.orgA, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, after.Status)
	assert.Nil(t, after.DecidedAt)

	selected, err = f.workflow.SelectOptionAndFinalize(ctx, f.orgA, req.ID, item2.ID, opt2a.ID)
	require.NoError(t, err)
	require.NotNil(t, selected)

	after, err = f.repo.GetByID(ctx, f.orgA, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, after.Status)
	assert.NotNil(t, after.DecidedAt)
}

func TestSelectOptionIgnoresForeignTenant(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t, ctx)

	req := f.createRequest(t, ctx, "Venue")
	item := req.Items[0]
	opt := f.addOption(t, ctx, item.ID, "Rooftop")

	selected, err := f.workflow.SelectOptionAndFinalize(ctx, f.orgB, req.ID, item.ID, opt.ID)
	require.NoError(t, err)
	assert.Nil(t, selected)

	// Nothing changed for the real tenant.
	assert.Equal(t, models.OptionStatusPending, f.optionStatus(t, ctx, opt.ID))
	after, err := f.repo.GetByID(ctx, f.orgA, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, after.Status)
}

func TestItemWithoutOptionsBlocksApproval(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t, ctx)

	req := f.createRequest(t, ctx, "Venue", "Catering")
	item1 := req.Items[0]
	opt := f.addOption(t, ctx, item1.ID, "Rooftop")

	selected, err := f.workflow.SelectOptionAndFinalize(ctx, f.orgA, req.ID, item1.ID, opt.ID)
	require.NoError(t, err)
	require.NotNil(t, selected)

	// The second item has no candidate options at all.
	after, err := f.repo.GetByID(ctx, f.orgA, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, after.Status)
	assert.Nil(t, after.DecidedAt)
}

func TestRequestWithoutItemsNeverFullyDecided(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t, ctx)

	req := f.createRequest(t, ctx)
	require.Empty(t, req.Items)

	decided, err := f.workflow.AllItemsHaveSelectedOption(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, decided)
}

func TestRejectOtherOptionsForItemKeepsTarget(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t, ctx)

	req := f.createRequest(t, ctx, "Venue")
	item := req.Items[0]
	keep := f.addOption(t, ctx, item.ID, "Rooftop")
	other := f.addOption(t, ctx, item.ID, "Warehouse")

	require.NoError(t, f.workflow.RejectOtherOptionsForItem(ctx, f.orgA, item.ID, keep.ID))
	assert.Equal(t, models.OptionStatusPending, f.optionStatus(t, ctx, keep.ID))
	assert.Equal(t, models.OptionStatusRejected, f.optionStatus(t, ctx, other.ID))

	// A foreign tenant cannot reject anything.
	fresh := f.addOption(t, ctx, item.ID, "Loft")
	require.NoError(t, f.workflow.RejectOtherOptionsForItem(ctx, f.orgB, item.ID, keep.ID))
	assert.Equal(t, models.OptionStatusPending, f.optionStatus(t, ctx, fresh.ID))
}
