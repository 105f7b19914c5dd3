package models

// ResourceKind classifies an external resource a workflow field can
// reference.
type ResourceKind string

const (
	ResourceKindImage ResourceKind = "image"
	ResourceKindBoard ResourceKind = "board"
	ResourceKindModel ResourceKind = "model"
)

// Warning is a non-fatal validation finding. It never blocks a load. The
// resource fields are populated only for access warnings so collaborators
// can act on them without parsing the message.
type Warning struct {
	Message      string       `json:"message"`
	NodeID       string       `json:"node_id,omitempty"`
	Field        string       `json:"field,omitempty"`
	ResourceKind ResourceKind `json:"resource_kind,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`
}
