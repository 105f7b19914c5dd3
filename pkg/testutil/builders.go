// Package testutil provides test data builders for workflow documents and
// templates.
package testutil

import (
	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/google/uuid"
)

// CreateTestWorkflow builds a minimal valid current-version workflow that
// can be adjusted through overrides.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := &models.Workflow{
		Version: models.CurrentVersion,
		Name:    "Test Workflow",
		Nodes: []*models.Node{
			CreateTestNode(),
		},
		Edges: []*models.Edge{},
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithWorkflowID sets the workflow id.
func WithWorkflowID(id string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.ID = id
	}
}

// WithWorkflowName sets the workflow name.
func WithWorkflowName(name string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Name = name
	}
}

// WithNodes replaces the workflow's nodes.
func WithNodes(nodes ...*models.Node) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Nodes = nodes
	}
}

// WithEdges replaces the workflow's edges.
func WithEdges(edges ...*models.Edge) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Edges = edges
	}
}

// CreateTestNode builds a noop node with a random id that can be adjusted
// through overrides.
func CreateTestNode(overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:   uuid.New().String(),
		Type: "noop",
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithNodeID sets the node id.
func WithNodeID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// WithNodeType sets the node type.
func WithNodeType(nodeType string) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
	}
}

// WithFields sets the node's field overrides.
func WithFields(fields map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Fields = fields
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.Node) {
	return func(n *models.Node) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// CreateTestEdge builds an edge between two node fields.
func CreateTestEdge(sourceNode, sourceField, targetNode, targetField string) *models.Edge {
	return &models.Edge{
		Source: models.EdgeEndpoint{NodeID: sourceNode, Field: sourceField},
		Target: models.EdgeEndpoint{NodeID: targetNode, Field: targetField},
	}
}

// CreateTestTemplate builds a template for the given node type that can be
// adjusted through overrides.
func CreateTestTemplate(nodeType string, overrides ...func(*models.Template)) *models.Template {
	template := &models.Template{
		Type:    nodeType,
		Title:   nodeType,
		Inputs:  map[string]*models.FieldTemplate{},
		Outputs: map[string]*models.FieldTemplate{},
	}

	for _, override := range overrides {
		override(template)
	}

	return template
}

// WithInput declares an input field on the template.
func WithInput(name, fieldType string, def any) func(*models.Template) {
	return func(t *models.Template) {
		t.Inputs[name] = &models.FieldTemplate{Name: name, Type: fieldType, Default: def}
	}
}

// WithOutput declares an output field on the template.
func WithOutput(name, fieldType string) func(*models.Template) {
	return func(t *models.Template) {
		t.Outputs[name] = &models.FieldTemplate{Name: name, Type: fieldType}
	}
}
