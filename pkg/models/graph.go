package models

// Graph is the legacy execution-graph document: nodes and edges without any
// workflow metadata, form layout, or canvas positions. Graphs are never
// persisted as-is; they are converted to workflows at load time.
type Graph struct {
	ID    string       `json:"id,omitempty"`
	Nodes []*GraphNode `json:"nodes"`
	Edges []*GraphEdge `json:"edges"`
}

// GraphNode is a node as it appears in a legacy graph document. Unlike a
// workflow node it carries every field value, defaults included.
type GraphNode struct {
	ID     string         `json:"id"   validate:"required"`
	Type   string         `json:"type" validate:"required"`
	Fields map[string]any `json:"fields,omitempty"`
}

// GraphEdge connects two graph nodes by node id and field name.
type GraphEdge struct {
	Source EdgeEndpoint `json:"source"`
	Target EdgeEndpoint `json:"target"`
}
