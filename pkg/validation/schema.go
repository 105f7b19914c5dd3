package validation

import (
	"fmt"
	"strings"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// buildWorkflowSchema returns the structural JSON Schema every document
// must satisfy once migrated to the current version. Unknown properties are
// tolerated; cross-reference rules (template lookups, edge resolution) are
// enforced separately because they depend on registry state.
func buildWorkflowSchema() map[string]any {
	return map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"type":     "object",
		"required": []any{"version", "nodes", "edges"},
		"properties": map[string]any{
			"version":     map[string]any{"const": models.CurrentVersion},
			"id":          map[string]any{"type": "string"},
			"name":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"author":      map[string]any{"type": "string"},
			"tags":        map[string]any{"type": "string"},
			"notes":       map[string]any{"type": "string"},
			"nodes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"id", "type"},
					"properties": map[string]any{
						"id":    map[string]any{"type": "string", "minLength": 1},
						"type":  map[string]any{"type": "string", "minLength": 1},
						"label": map[string]any{"type": "string"},
						"notes": map[string]any{"type": "string"},
						"position": map[string]any{
							"type":     "object",
							"required": []any{"x", "y"},
							"properties": map[string]any{
								"x": map[string]any{"type": "number"},
								"y": map[string]any{"type": "number"},
							},
						},
						"fields": map[string]any{"type": "object"},
					},
				},
			},
			"edges": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"source", "target"},
					"properties": map[string]any{
						"id":     map[string]any{"type": "string"},
						"source": endpointSchema(),
						"target": endpointSchema(),
					},
				},
			},
			"form": map[string]any{
				"type":     "object",
				"required": []any{"elements"},
				"properties": map[string]any{
					"elements": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"id", "type", "node_id", "field"},
							"properties": map[string]any{
								"id":      map[string]any{"type": "string", "minLength": 1},
								"type":    map[string]any{"type": "string", "enum": []any{"node-field"}},
								"node_id": map[string]any{"type": "string", "minLength": 1},
								"field":   map[string]any{"type": "string", "minLength": 1},
							},
						},
					},
				},
			},
		},
	}
}

func endpointSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"node_id", "field"},
		"properties": map[string]any{
			"node_id": map[string]any{"type": "string", "minLength": 1},
			"field":   map[string]any{"type": "string", "minLength": 1},
		},
	}
}

// checkStructure validates the migrated document against the compiled
// schema and folds every violation into a single schema error.
func (v *Validator) checkStructure(doc map[string]any) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return NewUnknownError(fmt.Errorf("run schema validation: %w", err))
	}

	if result.Valid() {
		return nil
	}

	violations := result.Errors()
	schemaErr := NewSchemaError(violations[0].Field(), violations[0].Description())

	if len(violations) > 1 {
		descriptions := make([]string, 0, len(violations))
		for _, violation := range violations {
			descriptions = append(descriptions, fmt.Sprintf("%s: %s", violation.Field(), violation.Description()))
		}

		schemaErr.Message = strings.Join(descriptions, "; ")
	}

	return schemaErr
}
