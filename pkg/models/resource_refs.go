package models

import "sort"

// ResourceRef is an embedded reference to an external resource found inside
// a node's field values.
type ResourceRef struct {
	NodeID string
	Field  string
	Kind   ResourceKind
	ID     string
}

// ResourceRefs scans every node's field values for embedded image, board,
// and model references. The order is deterministic: nodes in document
// order, fields sorted by name within each node.
func (w *Workflow) ResourceRefs() []ResourceRef {
	var refs []ResourceRef

	for _, node := range w.Nodes {
		fields := make([]string, 0, len(node.Fields))
		for name := range node.Fields {
			fields = append(fields, name)
		}

		sort.Strings(fields)

		for _, name := range fields {
			kind, id, ok := classifyResourceValue(node.Fields[name])
			if !ok {
				continue
			}

			refs = append(refs, ResourceRef{
				NodeID: node.ID,
				Field:  name,
				Kind:   kind,
				ID:     id,
			})
		}
	}

	return refs
}

// classifyResourceValue recognizes the serialized field shapes that point at
// external resources: image fields carry image_name, board fields carry
// board_id, and model identifiers carry both key and base.
func classifyResourceValue(value any) (ResourceKind, string, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		return "", "", false
	}

	if name, ok := stringProp(obj, "image_name"); ok {
		return ResourceKindImage, name, true
	}

	if id, ok := stringProp(obj, "board_id"); ok {
		return ResourceKindBoard, id, true
	}

	if key, ok := stringProp(obj, "key"); ok {
		if _, ok := stringProp(obj, "base"); ok {
			return ResourceKindModel, key, true
		}
	}

	return "", "", false
}

func stringProp(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key]
	if !ok {
		return "", false
	}

	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}

	return s, true
}
