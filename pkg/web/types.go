// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"encoding/json"

	"github.com/blessedcoolant/InvokeAI/pkg/loader"
	"github.com/blessedcoolant/InvokeAI/pkg/models"
)

// LoadWorkflowRequest represents the request body for loading a workflow
// document. Workflow and Graph hold serialized JSON documents; at least one
// must be present, and Workflow wins when both are.
type LoadWorkflowRequest struct {
	Workflow string `json:"workflow,omitempty" validate:"required_without=Graph"`
	Graph    string `json:"graph,omitempty"    validate:"required_without=Workflow"`
}

// RawInput converts the request into the loader input shape.
func (r LoadWorkflowRequest) RawInput() loader.RawInput {
	input := loader.RawInput{}

	if r.Workflow != "" {
		input.Workflow = &r.Workflow
	}

	if r.Graph != "" {
		input.Graph = &r.Graph
	}

	return input
}

// ConvertGraphRequest represents the request body for converting an
// execution graph into an editable workflow.
type ConvertGraphRequest struct {
	Graph    json.RawMessage `json:"graph"     validate:"required"`
	DoLayout bool            `json:"do_layout"`
}

// SaveWorkflowResponse pairs a stored workflow with the warnings its
// validation pass produced.
type SaveWorkflowResponse struct {
	Workflow *models.Workflow `json:"workflow"`
	Warnings []models.Warning `json:"warnings"`
}
