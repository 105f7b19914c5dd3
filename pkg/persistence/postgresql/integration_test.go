package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/blessedcoolant/InvokeAI/pkg/persistence/postgresql"
	"github.com/blessedcoolant/InvokeAI/pkg/testutil"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("invokeai_test"),
			postgres.WithUsername("invokeai"),
			postgres.WithPassword("invokeai"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx := setupTestDB(t)

	require.NoError(t, p.HealthCheck(ctx))
}

func TestWorkflowRepository_SaveAndGetByID(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.WorkflowRepository()

	workflow := testutil.CreateTestWorkflow(
		testutil.WithWorkflowID("wf-pg-1"),
		testutil.WithWorkflowName("Stored in postgres"),
		testutil.WithNodes(testutil.CreateTestNode(
			testutil.WithNodeID("a"),
			testutil.WithFields(map[string]any{"value": "hello"}),
		)),
	)

	require.NoError(t, repo.Save(ctx, workflow))
	assert.False(t, workflow.CreatedAt.IsZero())

	loaded, err := repo.GetByID(ctx, "wf-pg-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "wf-pg-1", loaded.ID)
	assert.Equal(t, "Stored in postgres", loaded.Name)
	assert.Equal(t, models.CurrentVersion, loaded.Version)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, map[string]any{"value": "hello"}, loaded.Nodes[0].Fields)
}

func TestWorkflowRepository_SaveAssignsID(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.WorkflowRepository()

	workflow := testutil.CreateTestWorkflow()
	workflow.ID = ""

	require.NoError(t, repo.Save(ctx, workflow))
	assert.NotEmpty(t, workflow.ID)
}

func TestWorkflowRepository_SaveUpdatesExisting(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.WorkflowRepository()

	workflow := testutil.CreateTestWorkflow(testutil.WithWorkflowID("wf-pg-2"))
	require.NoError(t, repo.Save(ctx, workflow))

	created := workflow.CreatedAt

	workflow.Name = "Renamed"
	require.NoError(t, repo.Save(ctx, workflow))

	loaded, err := repo.GetByID(ctx, "wf-pg-2")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Renamed", loaded.Name)
	assert.WithinDuration(t, created, loaded.CreatedAt, time.Second)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWorkflowRepository_GetByIDNotFound(t *testing.T) {
	p, ctx := setupTestDB(t)

	workflow, err := p.WorkflowRepository().GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, workflow)
}

func TestWorkflowRepository_ListNewestFirst(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.WorkflowRepository()

	older := testutil.CreateTestWorkflow(testutil.WithWorkflowID("older"))
	require.NoError(t, repo.Save(ctx, older))

	time.Sleep(10 * time.Millisecond)

	newer := testutil.CreateTestWorkflow(testutil.WithWorkflowID("newer"))
	require.NoError(t, repo.Save(ctx, newer))

	workflows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "newer", workflows[0].ID)
	assert.Equal(t, "older", workflows[1].ID)
}

func TestWorkflowRepository_DeleteHidesWorkflow(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.WorkflowRepository()

	workflow := testutil.CreateTestWorkflow(testutil.WithWorkflowID("wf-pg-3"))
	require.NoError(t, repo.Save(ctx, workflow))

	require.NoError(t, repo.Delete(ctx, "wf-pg-3"))

	loaded, err := repo.GetByID(ctx, "wf-pg-3")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWorkflowRepository_SaveRevivesDeleted(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.WorkflowRepository()

	workflow := testutil.CreateTestWorkflow(testutil.WithWorkflowID("wf-pg-4"))
	require.NoError(t, repo.Save(ctx, workflow))
	require.NoError(t, repo.Delete(ctx, "wf-pg-4"))

	require.NoError(t, repo.Save(ctx, workflow))

	loaded, err := repo.GetByID(ctx, "wf-pg-4")
	require.NoError(t, err)
	require.NotNil(t, loaded)
}

func TestWorkflowRepository_DeleteMissingIsNoop(t *testing.T) {
	p, ctx := setupTestDB(t)

	assert.NoError(t, p.WorkflowRepository().Delete(ctx, "missing"))
}
