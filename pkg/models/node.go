package models

// Position is a node's placement on the editor canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single invocation instance inside a workflow document. Fields
// holds only the input values that differ from the template defaults, keyed
// by field name.
type Node struct {
	ID       string         `json:"id"       validate:"required"`
	Type     string         `json:"type"     validate:"required"`
	Label    string         `json:"label,omitempty"`
	Notes    string         `json:"notes,omitempty"`
	Position Position       `json:"position"`
	Fields   map[string]any `json:"fields,omitempty"`
}
