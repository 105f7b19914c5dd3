package validation

import (
	"fmt"
	"strings"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
)

// migration is one step of the version chain: a pure transform taking a
// document at version from to version to. Steps receive their own copy of
// the document and may mutate it freely.
type migration struct {
	from  string
	to    string
	apply func(doc map[string]any) (map[string]any, error)
}

// migrations is the ordered chain, oldest first. A recognized version with
// no step here (the pre-chain alpha) cannot be brought to the current
// shape.
var migrations = []migration{
	{from: models.VersionV1, to: models.VersionV2, apply: migrateV1EdgePorts},
	{from: models.VersionV2, to: models.CurrentVersion, apply: migrateV2PositionsAndForm},
}

func migrationFrom(version string) (migration, bool) {
	for _, step := range migrations {
		if step.from == version {
			return step, true
		}
	}

	return migration{}, false
}

// Migrate folds doc through the registered migration steps until it reaches
// models.CurrentVersion. The input document is never mutated. An
// unrecognized version fails with KindVersion; a recognized version that
// cannot reach the current one, or a step that cannot be applied, fails
// with KindMigration.
func Migrate(doc map[string]any) (map[string]any, error) {
	version, _ := doc["version"].(string)
	if !models.IsKnownVersion(version) {
		return nil, NewVersionError(version)
	}

	for version != models.CurrentVersion {
		step, ok := migrationFrom(version)
		if !ok {
			return nil, NewMigrationError(version, ErrNoMigrationPath)
		}

		next, err := step.apply(copyDocument(doc))
		if err != nil {
			return nil, NewMigrationError(version, err)
		}

		next["version"] = step.to
		doc = next
		version = step.to
	}

	return doc, nil
}

// migrateV1EdgePorts unpacks the packed "{node_id}:{field}" edge port
// strings of 1.0.0 documents into explicit endpoint objects.
func migrateV1EdgePorts(doc map[string]any) (map[string]any, error) {
	edges, _ := doc["edges"].([]any)
	for i, raw := range edges {
		edge, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("edge %d is not an object", i)
		}

		source, err := unpackPort(edge, "source_port")
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}

		target, err := unpackPort(edge, "target_port")
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}

		edge["source"] = source
		edge["target"] = target
		delete(edge, "source_port")
		delete(edge, "target_port")
	}

	return doc, nil
}

func unpackPort(edge map[string]any, key string) (map[string]any, error) {
	port, ok := edge[key].(string)
	if !ok {
		return nil, fmt.Errorf("missing %s", key)
	}

	nodeID, field, found := strings.Cut(port, ":")
	if !found || nodeID == "" || field == "" {
		return nil, fmt.Errorf("%s %q is not in \"{node_id}:{field}\" form", key, port)
	}

	return map[string]any{"node_id": nodeID, "field": field}, nil
}

// migrateV2PositionsAndForm converts the integer position_x/position_y node
// coordinates of 2.0.0 documents into position objects and lifts the
// workflow-level exposed_fields list into the form element model.
func migrateV2PositionsAndForm(doc map[string]any) (map[string]any, error) {
	nodes, _ := doc["nodes"].([]any)
	for i, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("node %d is not an object", i)
		}

		node["position"] = map[string]any{
			"x": numberProp(node, "position_x"),
			"y": numberProp(node, "position_y"),
		}
		delete(node, "position_x")
		delete(node, "position_y")
	}

	exposed, ok := doc["exposed_fields"].([]any)
	if ok {
		elements := make([]any, 0, len(exposed))

		for i, raw := range exposed {
			exposedField, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("exposed field %d is not an object", i)
			}

			nodeID, ok := exposedField["node_id"].(string)
			if !ok {
				return nil, fmt.Errorf("exposed field %d has no node_id", i)
			}

			field, ok := exposedField["field"].(string)
			if !ok {
				return nil, fmt.Errorf("exposed field %d has no field", i)
			}

			elements = append(elements, map[string]any{
				"id":      fmt.Sprintf("node-field-%d", i),
				"type":    "node-field",
				"node_id": nodeID,
				"field":   field,
			})
		}

		doc["form"] = map[string]any{"elements": elements}
	}

	delete(doc, "exposed_fields")

	return doc, nil
}

func numberProp(obj map[string]any, key string) float64 {
	switch v := obj[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}

	return 0
}

// copyDocument deep copies a decoded JSON document so migration steps never
// touch the caller's value.
func copyDocument(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}

	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}

	return out
}

func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return copyDocument(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}

		return out
	default:
		return v
	}
}
