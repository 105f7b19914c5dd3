package models

import "fmt"

// EdgeEndpoint names one side of an edge: a node and a field on that node's
// template (an output field on the source side, an input field on the
// target side).
type EdgeEndpoint struct {
	NodeID string `json:"node_id" validate:"required"`
	Field  string `json:"field"   validate:"required"`
}

// String renders the endpoint as "{node_id}.{field}" for logs and messages.
func (e EdgeEndpoint) String() string {
	return fmt.Sprintf("%s.%s", e.NodeID, e.Field)
}

// Edge connects a source node output to a target node input.
type Edge struct {
	ID     string       `json:"id,omitempty"`
	Source EdgeEndpoint `json:"source" validate:"required"`
	Target EdgeEndpoint `json:"target" validate:"required"`
}
