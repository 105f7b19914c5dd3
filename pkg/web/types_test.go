package web_test

import (
	"encoding/json"
	"testing"

	"github.com/blessedcoolant/InvokeAI/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWorkflowRequest_Validation(t *testing.T) {
	t.Parallel()

	validate := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name    string
		request web.LoadWorkflowRequest
		wantErr bool
	}{
		{
			name:    "workflow only",
			request: web.LoadWorkflowRequest{Workflow: `{"version": "3.0.0"}`},
			wantErr: false,
		},
		{
			name:    "graph only",
			request: web.LoadWorkflowRequest{Graph: `{"nodes": []}`},
			wantErr: false,
		},
		{
			name:    "both branches",
			request: web.LoadWorkflowRequest{Workflow: `{}`, Graph: `{}`},
			wantErr: false,
		},
		{
			name:    "neither branch",
			request: web.LoadWorkflowRequest{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validate.Struct(tt.request)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadWorkflowRequest_RawInput(t *testing.T) {
	t.Parallel()

	empty := web.LoadWorkflowRequest{}.RawInput()
	assert.Nil(t, empty.Workflow)
	assert.Nil(t, empty.Graph)

	workflowOnly := web.LoadWorkflowRequest{Workflow: `{"version": "3.0.0"}`}.RawInput()
	require.NotNil(t, workflowOnly.Workflow)
	assert.Equal(t, `{"version": "3.0.0"}`, *workflowOnly.Workflow)
	assert.Nil(t, workflowOnly.Graph)

	graphOnly := web.LoadWorkflowRequest{Graph: `{"nodes": []}`}.RawInput()
	assert.Nil(t, graphOnly.Workflow)
	require.NotNil(t, graphOnly.Graph)
	assert.Equal(t, `{"nodes": []}`, *graphOnly.Graph)
}

func TestConvertGraphRequest_Validation(t *testing.T) {
	t.Parallel()

	validate := validator.New(validator.WithRequiredStructEnabled())

	valid := web.ConvertGraphRequest{Graph: json.RawMessage(`{"nodes": []}`), DoLayout: true}
	assert.NoError(t, validate.Struct(valid))

	missing := web.ConvertGraphRequest{DoLayout: true}
	assert.Error(t, validate.Struct(missing))
}
