package loader

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/blessedcoolant/InvokeAI/pkg/access"
	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/blessedcoolant/InvokeAI/pkg/testutil"
	"github.com/blessedcoolant/InvokeAI/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures every notification for assertions.
type recordingNotifier struct {
	mu          sync.Mutex
	loaded      []*LoadResult
	warned      []*LoadResult
	failedKinds []validation.Kind
	failedMsgs  []string
}

func (r *recordingNotifier) Loaded(_ context.Context, result *LoadResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = append(r.loaded, result)
}

func (r *recordingNotifier) LoadedWithWarnings(_ context.Context, result *LoadResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warned = append(r.warned, result)
}

func (r *recordingNotifier) LoadFailed(_ context.Context, kind validation.Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedKinds = append(r.failedKinds, kind)
	r.failedMsgs = append(r.failedMsgs, message)
}

func (r *recordingNotifier) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.loaded) + len(r.warned) + len(r.failedKinds)
}

func testTemplates() models.TemplateMap {
	return models.TemplateMap{
		"noop": testutil.CreateTestTemplate("noop"),
		"image": testutil.CreateTestTemplate("image",
			testutil.WithInput("image", "ImageField", nil),
			testutil.WithOutput("image", "ImageField"),
		),
		"resize_image": testutil.CreateTestTemplate("resize_image",
			testutil.WithInput("image", "ImageField", nil),
			testutil.WithInput("width", "IntegerField", float64(512)),
			testutil.WithInput("height", "IntegerField", float64(512)),
			testutil.WithOutput("image", "ImageField"),
		),
	}
}

func newTestLoader(notifier Notifier) *Loader {
	validator, err := validation.NewValidator()
	if err != nil {
		panic(err)
	}

	return NewLoader(validator, access.Checkers{}, notifier, slog.Default())
}

func stringPtr(s string) *string {
	return &s
}

func workflowJSON(t *testing.T, workflow *models.Workflow) string {
	t.Helper()

	data, err := json.Marshal(workflow)
	require.NoError(t, err)

	return string(data)
}

func TestLoader_Load_CurrentVersionWorkflow(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	workflow := testutil.CreateTestWorkflow(
		testutil.WithWorkflowID("wf-1"),
		testutil.WithWorkflowName("Plain"),
		testutil.WithNodes(testutil.CreateTestNode(testutil.WithNodeID("a"))),
	)

	result := l.Load(context.Background(), RawInput{Workflow: stringPtr(workflowJSON(t, workflow))}, testTemplates())

	require.NotNil(t, result)
	assert.Equal(t, "wf-1", result.Workflow.ID)
	assert.Equal(t, "Plain", result.Workflow.Name)
	assert.Equal(t, models.CurrentVersion, result.Workflow.Version)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, SourceWorkflow, result.Source)
	assert.True(t, result.Effects.ResetExecutionState)
	assert.True(t, result.Effects.FitView)

	require.Len(t, notifier.loaded, 1)
	assert.Equal(t, 1, notifier.total())
}

func TestLoader_Load_GraphInput(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	input := RawInput{Graph: stringPtr(`{"nodes":[{"id":"a","type":"noop"}],"edges":[]}`)}

	result := l.Load(context.Background(), input, testTemplates())

	require.NotNil(t, result)
	assert.Equal(t, models.CurrentVersion, result.Workflow.Version)
	require.Len(t, result.Workflow.Nodes, 1)
	assert.Equal(t, "a", result.Workflow.Nodes[0].ID)
	assert.Equal(t, models.Position{X: 0, Y: 0}, result.Workflow.Nodes[0].Position)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, SourceGraph, result.Source)
	assert.True(t, result.Effects.ResetExecutionState)
	assert.True(t, result.Effects.FitView)

	require.Len(t, notifier.loaded, 1)
}

func TestLoader_Load_LegacyVersionMigrates(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	raw := `{
		"version": "1.0.0",
		"nodes": [
			{"id": "img", "type": "image", "position_x": 10, "position_y": 20},
			{"id": "resize", "type": "resize_image", "position_x": 30, "position_y": 40}
		],
		"edges": [
			{"source_port": "img:image", "target_port": "resize:image"}
		]
	}`

	result := l.Load(context.Background(), RawInput{Workflow: &raw}, testTemplates())

	require.NotNil(t, result)
	assert.Equal(t, models.CurrentVersion, result.Workflow.Version)
	require.Len(t, result.Workflow.Edges, 1)
	assert.Equal(t, "img", result.Workflow.Edges[0].Source.NodeID)
	assert.Equal(t, "image", result.Workflow.Edges[0].Source.Field)
	assert.Equal(t, "resize", result.Workflow.Edges[0].Target.NodeID)
	assert.Equal(t, models.Position{X: 10, Y: 20}, result.Workflow.Nodes[0].Position)

	require.Len(t, notifier.loaded, 1)
}

func TestLoader_Load_UnbridgeableVersion(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	raw := `{"version": "0.1", "nodes": [], "edges": []}`

	result := l.Load(context.Background(), RawInput{Workflow: &raw}, testTemplates())

	assert.Nil(t, result)
	require.Len(t, notifier.failedKinds, 1)
	assert.Equal(t, validation.KindMigration, notifier.failedKinds[0])
	assert.Equal(t, 1, notifier.total())
}

func TestLoader_Load_UnrecognizedVersion(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	raw := `{"version": "9.9.9", "nodes": [], "edges": []}`

	result := l.Load(context.Background(), RawInput{Workflow: &raw}, testTemplates())

	assert.Nil(t, result)
	require.Len(t, notifier.failedKinds, 1)
	assert.Equal(t, validation.KindVersion, notifier.failedKinds[0])
	assert.Contains(t, notifier.failedMsgs[0], "9.9.9")
}

func TestLoader_Load_MissingInput(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	result := l.Load(context.Background(), RawInput{}, testTemplates())

	assert.Nil(t, result)
	require.Len(t, notifier.failedKinds, 1)
	assert.Equal(t, validation.KindMissingInput, notifier.failedKinds[0])
}

func TestLoader_Load_EmptyStringsCountAsMissing(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	result := l.Load(context.Background(), RawInput{Workflow: stringPtr(""), Graph: stringPtr("")}, testTemplates())

	assert.Nil(t, result)
	require.Len(t, notifier.failedKinds, 1)
	assert.Equal(t, validation.KindMissingInput, notifier.failedKinds[0])
}

func TestLoader_Load_MalformedInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input RawInput
	}{
		{
			name:  "workflow not json",
			input: RawInput{Workflow: stringPtr("{not json")},
		},
		{
			name:  "graph not json",
			input: RawInput{Graph: stringPtr("[broken")},
		},
		{
			name:  "graph wrong shape",
			input: RawInput{Graph: stringPtr(`{"nodes": "not-an-array"}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			notifier := &recordingNotifier{}
			l := newTestLoader(notifier)

			result := l.Load(context.Background(), tt.input, testTemplates())

			assert.Nil(t, result)
			require.Len(t, notifier.failedKinds, 1)
			assert.Equal(t, validation.KindMalformedInput, notifier.failedKinds[0])
		})
	}
}

func TestLoader_Load_WorkflowWinsOverGraph(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	workflow := testutil.CreateTestWorkflow(
		testutil.WithWorkflowName("From workflow branch"),
		testutil.WithNodes(testutil.CreateTestNode(testutil.WithNodeID("w"))),
	)

	input := RawInput{
		Workflow: stringPtr(workflowJSON(t, workflow)),
		Graph:    stringPtr(`{"nodes":[{"id":"g","type":"noop"}],"edges":[]}`),
	}

	result := l.Load(context.Background(), input, testTemplates())

	require.NotNil(t, result)
	assert.Equal(t, SourceWorkflow, result.Source)
	assert.Equal(t, "From workflow branch", result.Workflow.Name)
	assert.Equal(t, "w", result.Workflow.Nodes[0].ID)
}

func TestLoader_Load_WarningsNotifyOnce(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	workflow := testutil.CreateTestWorkflow(
		testutil.WithNodes(
			testutil.CreateTestNode(
				testutil.WithNodeID("a"),
				testutil.WithFields(map[string]any{"stray": 1, "extra": 2}),
			),
		),
	)

	result := l.Load(context.Background(), RawInput{Workflow: stringPtr(workflowJSON(t, workflow))}, testTemplates())

	require.NotNil(t, result)
	assert.Len(t, result.Warnings, 2)

	require.Len(t, notifier.warned, 1)
	assert.Empty(t, notifier.loaded)
	assert.Equal(t, 1, notifier.total())
}

func TestLoader_Load_NilNotifier(t *testing.T) {
	t.Parallel()

	l := newTestLoader(nil)

	result := l.Load(context.Background(), RawInput{Workflow: stringPtr(`{"version": "0.1"}`)}, testTemplates())
	assert.Nil(t, result)

	workflow := testutil.CreateTestWorkflow()
	result = l.Load(context.Background(), RawInput{Workflow: stringPtr(workflowJSON(t, workflow))}, testTemplates())
	assert.NotNil(t, result)
}

func TestLoader_Run_SurfacesError(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestLoader(notifier)

	raw := `{"version": "9.9.9", "nodes": [], "edges": []}`

	result, err := l.Run(context.Background(), RawInput{Workflow: &raw}, testTemplates())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, validation.IsVersionError(err))
	assert.Equal(t, 0, notifier.total())
}

func TestLoader_Run_SchemaViolation(t *testing.T) {
	t.Parallel()

	l := newTestLoader(nil)

	raw := `{"version": "3.0.0", "nodes": [{"id": "", "type": "noop"}], "edges": []}`

	result, err := l.Run(context.Background(), RawInput{Workflow: &raw}, testTemplates())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Equal(t, validation.KindSchema, validation.KindOf(err))
}

func TestDescribeLoadFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "missing input",
			err:  validation.NewMissingInputError(),
			want: "no workflow or graph data to load",
		},
		{
			name: "malformed input",
			err:  validation.NewMalformedInputError(assert.AnError),
			want: "the document is not valid JSON",
		},
		{
			name: "version error keeps its message",
			err:  validation.NewVersionError("9.9"),
			want: `workflow version "9.9" is not recognized`,
		},
		{
			name: "unexpected error",
			err:  assert.AnError,
			want: "an unexpected error occurred while loading the workflow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, describeLoadFailure(tt.err))
		})
	}
}
