package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/blessedcoolant/InvokeAI/pkg/access"
	"github.com/blessedcoolant/InvokeAI/pkg/eventbus"
	"github.com/blessedcoolant/InvokeAI/pkg/events"
	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/blessedcoolant/InvokeAI/pkg/persistence/file"
	"github.com/blessedcoolant/InvokeAI/pkg/registry"
	"github.com/blessedcoolant/InvokeAI/pkg/testutil"
	"github.com/blessedcoolant/InvokeAI/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (c *capturePublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)

	return nil
}

func (c *capturePublisher) eventTypes() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()

	types := make([]events.EventType, 0, len(c.events))
	for _, event := range c.events {
		types = append(types, event.GetType())
	}

	return types
}

func newTestRegistry(t *testing.T, templates ...*models.Template) *registry.Registry {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	for _, template := range templates {
		require.NoError(t, reg.Register(template))
	}

	return reg
}

func newTestLibrary(t *testing.T, root string, reg *registry.Registry, publisher eventbus.EventPublisher) *Library {
	t.Helper()

	validator, err := validation.NewValidator()
	require.NoError(t, err)

	return NewLibrary(file.NewPersistence(root), validator, access.Checkers{}, reg, publisher, slog.Default())
}

func mustJSON(t *testing.T, workflow *models.Workflow) []byte {
	t.Helper()

	data, err := json.Marshal(workflow)
	require.NoError(t, err)

	return data
}

func TestLibrary_CreateStoresValidatedWorkflow(t *testing.T) {
	t.Parallel()

	publisher := &capturePublisher{}
	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, publisher)
	ctx := context.Background()

	raw := mustJSON(t, testutil.CreateTestWorkflow(testutil.WithWorkflowName("Fresh")))

	workflow, warnings, err := library.Create(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, workflow)
	assert.NotEmpty(t, workflow.ID)
	assert.Equal(t, "Fresh", workflow.Name)
	assert.Empty(t, warnings)
	assert.False(t, workflow.CreatedAt.IsZero())

	stored, err := library.FetchByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.ID, stored.ID)

	assert.Equal(t, []events.EventType{events.WorkflowSavedEvent}, publisher.eventTypes())
}

func TestLibrary_CreateMigratesLegacyDocument(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, nil)

	raw := []byte(`{
		"version": "2.0.0",
		"name": "Legacy",
		"nodes": [{"id": "a", "type": "noop", "position_x": 5, "position_y": 7}],
		"edges": []
	}`)

	workflow, warnings, err := library.Create(context.Background(), raw)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, models.CurrentVersion, workflow.Version)
	require.Len(t, workflow.Nodes, 1)
	assert.Equal(t, models.Position{X: 5, Y: 7}, workflow.Nodes[0].Position)
}

func TestLibrary_CreateRejectsInvalidDocument(t *testing.T) {
	t.Parallel()

	publisher := &capturePublisher{}
	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, publisher)
	ctx := context.Background()

	workflow, warnings, err := library.Create(ctx, []byte(`{"version": "9.9.9", "nodes": [], "edges": []}`))
	require.Error(t, err)
	assert.True(t, validation.IsVersionError(err))
	assert.Nil(t, workflow)
	assert.Nil(t, warnings)

	all, err := library.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, publisher.eventTypes())
}

func TestLibrary_CreateReturnsWarnings(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, nil)

	raw := mustJSON(t, testutil.CreateTestWorkflow(
		testutil.WithNodes(testutil.CreateTestNode(
			testutil.WithNodeID("a"),
			testutil.WithFields(map[string]any{"stray": true}),
		)),
	))

	workflow, warnings, err := library.Create(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, workflow)
	require.Len(t, warnings, 1)
	assert.Equal(t, "a", warnings[0].NodeID)
	assert.Equal(t, "stray", warnings[0].Field)
}

func TestLibrary_Update(t *testing.T) {
	t.Parallel()

	publisher := &capturePublisher{}
	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, publisher)
	ctx := context.Background()

	created, _, err := library.Create(ctx, mustJSON(t, testutil.CreateTestWorkflow(testutil.WithWorkflowName("Before"))))
	require.NoError(t, err)

	updatedRaw := mustJSON(t, testutil.CreateTestWorkflow(testutil.WithWorkflowName("After")))

	updated, warnings, err := library.Update(ctx, created.ID, updatedRaw)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	assert.Equal(t, []events.EventType{events.WorkflowSavedEvent, events.WorkflowSavedEvent}, publisher.eventTypes())
}

func TestLibrary_UpdateMissingWorkflow(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, nil)

	_, _, err := library.Update(context.Background(), "missing", mustJSON(t, testutil.CreateTestWorkflow()))
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	_, _, err = library.Update(context.Background(), "", mustJSON(t, testutil.CreateTestWorkflow()))
	assert.ErrorIs(t, err, ErrEmptyWorkflowID)
}

func TestLibrary_FetchByID(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, nil)
	ctx := context.Background()

	_, err := library.FetchByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	_, err = library.FetchByID(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyWorkflowID)
}

func TestLibrary_Delete(t *testing.T) {
	t.Parallel()

	publisher := &capturePublisher{}
	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, publisher)
	ctx := context.Background()

	created, _, err := library.Create(ctx, mustJSON(t, testutil.CreateTestWorkflow()))
	require.NoError(t, err)

	require.NoError(t, library.Delete(ctx, created.ID))

	_, err = library.FetchByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	assert.Equal(t, []events.EventType{events.WorkflowSavedEvent, events.WorkflowDeletedEvent}, publisher.eventTypes())
}

func TestLibrary_DeleteMissingWorkflow(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, nil)

	assert.ErrorIs(t, library.Delete(context.Background(), "missing"), ErrWorkflowNotFound)
	assert.ErrorIs(t, library.Delete(context.Background(), ""), ErrEmptyWorkflowID)
}

func TestLibrary_HealthCheck(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, testutil.CreateTestTemplate("noop"))
	library := newTestLibrary(t, t.TempDir(), reg, nil)

	message, healthy := library.HealthCheck(context.Background())
	assert.True(t, healthy)
	assert.NotEmpty(t, message)
}
