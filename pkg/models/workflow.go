// Package models defines the core domain models for versioned workflow documents.
package models

import "time"

// Schema versions a workflow document may declare. Documents at older
// versions are migrated forward at load time; see pkg/validation.
const (
	// VersionAlpha predates the migration chain. It is recognized so the
	// loader can tell "ancient document" apart from "not a workflow", but
	// no migration bridges it to the current shape.
	VersionAlpha = "0.1"

	// VersionV1 documents pack edge endpoints into "{node_id}:{field}"
	// port strings and store positions as integer position_x/position_y.
	VersionV1 = "1.0.0"

	// VersionV2 documents carry explicit edge endpoints and a workflow
	// level exposed_fields list.
	VersionV2 = "2.0.0"

	// CurrentVersion is the schema version this package models.
	CurrentVersion = "3.0.0"
)

// knownVersions is every version the loader recognizes, oldest first.
var knownVersions = []string{VersionAlpha, VersionV1, VersionV2, CurrentVersion}

// KnownVersions returns every recognized schema version, oldest first.
func KnownVersions() []string {
	out := make([]string, len(knownVersions))
	copy(out, knownVersions)

	return out
}

// IsKnownVersion reports whether v is a recognized schema version.
func IsKnownVersion(v string) bool {
	for _, known := range knownVersions {
		if v == known {
			return true
		}
	}

	return false
}

// Workflow is the canonical, current-version workflow document: the node
// graph plus the metadata and form layout the editor persists alongside it.
type Workflow struct {
	Version     string    `json:"version"               validate:"required"`
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Nodes       []*Node   `json:"nodes"`
	Edges       []*Edge   `json:"edges"`
	Form        *Form     `json:"form,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Form is the simplified linear UI: an ordered list of node fields the
// workflow author exposed for direct editing.
type Form struct {
	Elements []FormElement `json:"elements"`
}

// FormElement exposes a single node field in the form.
type FormElement struct {
	ID     string `json:"id"`
	Type   string `json:"type"` // "node-field" is the only type in use
	NodeID string `json:"node_id"`
	Field  string `json:"field"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
