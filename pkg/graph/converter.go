// Package graph converts legacy execution-graph documents into canonical
// workflow documents.
package graph

import (
	"fmt"
	"reflect"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
)

// Convert produces a current-version workflow from a legacy graph: one
// workflow node per graph node (ids and types preserved, default-valued
// fields dropped) and one workflow edge per graph edge. With doLayout the
// nodes get deterministic canvas positions. Conversion never fails on a
// well-formed graph; a nil or empty graph yields an empty workflow. The
// result has not been validated.
func Convert(graph *models.Graph, templates models.TemplateMap, doLayout bool) *models.Workflow {
	workflow := &models.Workflow{
		Version: models.CurrentVersion,
		Nodes:   []*models.Node{},
		Edges:   []*models.Edge{},
	}

	if graph == nil {
		return workflow
	}

	for _, graphNode := range graph.Nodes {
		if graphNode == nil {
			continue
		}

		workflow.Nodes = append(workflow.Nodes, &models.Node{
			ID:     graphNode.ID,
			Type:   graphNode.Type,
			Fields: overriddenFields(graphNode, templates[graphNode.Type]),
		})
	}

	for _, graphEdge := range graph.Edges {
		if graphEdge == nil {
			continue
		}

		workflow.Edges = append(workflow.Edges, &models.Edge{
			ID:     edgeID(graphEdge.Source, graphEdge.Target),
			Source: graphEdge.Source,
			Target: graphEdge.Target,
		})
	}

	if doLayout {
		applyLayout(workflow)
	}

	return workflow
}

// overriddenFields keeps only the field values that differ from the
// template defaults. Without a template every value is kept verbatim; the
// validator decides later whether the type is acceptable.
func overriddenFields(node *models.GraphNode, template *models.Template) map[string]any {
	if len(node.Fields) == 0 {
		return nil
	}

	fields := make(map[string]any, len(node.Fields))

	for name, value := range node.Fields {
		if template != nil {
			if def, ok := template.InputDefault(name); ok && reflect.DeepEqual(value, def) {
				continue
			}
		}

		fields[name] = value
	}

	if len(fields) == 0 {
		return nil
	}

	return fields
}

// edgeID derives a stable edge id from the endpoints so converting the same
// graph twice yields identical documents.
func edgeID(source, target models.EdgeEndpoint) string {
	return fmt.Sprintf("edge-%s.%s-%s.%s", source.NodeID, source.Field, target.NodeID, target.Field)
}
