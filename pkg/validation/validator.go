package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/blessedcoolant/InvokeAI/pkg/access"
	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// Result is a successful validation outcome: the fully migrated document
// plus every non-fatal finding, in deterministic order.
type Result struct {
	Workflow *models.Workflow `json:"workflow"`
	Warnings []models.Warning `json:"warnings"`
}

// Validator brings workflow documents to the current version and validates
// them against the structural schema, the supplied node templates, and the
// resource access checkers. It holds no per-call state and is safe for
// concurrent use.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the structural schema once for the validator's
// lifetime.
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(buildWorkflowSchema()))
	if err != nil {
		return nil, fmt.Errorf("compile workflow schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateJSON parses raw document bytes and validates them. A parse
// failure is classified as malformed input.
func (v *Validator) ValidateJSON(ctx context.Context, data []byte, templates models.TemplateMap, checkers access.Checkers) (*Result, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewMalformedInputError(err)
	}

	return v.Validate(ctx, doc, templates, checkers)
}

// ValidateWorkflow validates an in-memory workflow value, typically one the
// graph converter just produced.
func (v *Validator) ValidateWorkflow(ctx context.Context, workflow *models.Workflow, templates models.TemplateMap, checkers access.Checkers) (*Result, error) {
	data, err := json.Marshal(workflow)
	if err != nil {
		return nil, NewUnknownError(fmt.Errorf("encode workflow: %w", err))
	}

	return v.ValidateJSON(ctx, data, templates, checkers)
}

// Validate migrates doc to the current version, checks its structure and
// cross-references, and verifies resource access. Warnings never fail the
// validation; every returned error carries a Kind.
func (v *Validator) Validate(ctx context.Context, doc map[string]any, templates models.TemplateMap, checkers access.Checkers) (*Result, error) {
	migrated, err := Migrate(doc)
	if err != nil {
		return nil, err
	}

	if err := v.checkStructure(migrated); err != nil {
		return nil, err
	}

	workflow, err := decodeWorkflow(migrated)
	if err != nil {
		return nil, NewUnknownError(err)
	}

	warnings, err := checkReferences(workflow, templates)
	if err != nil {
		return nil, err
	}

	warnings = append(warnings, checkResourceAccess(ctx, workflow, checkers)...)

	return &Result{Workflow: workflow, Warnings: warnings}, nil
}

// decodeWorkflow maps the migrated document onto the typed model. The
// document already passed structural validation, so a failure here is a
// defect, not bad input.
func decodeWorkflow(doc map[string]any) (*models.Workflow, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode migrated document: %w", err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("decode migrated document: %w", err)
	}

	return &workflow, nil
}

// checkReferences verifies the document against the template map: node
// types must resolve, edge endpoints must land on existing nodes and
// declared template fields. Unknown field overrides are warnings because
// templates evolve independently of stored documents.
func checkReferences(workflow *models.Workflow, templates models.TemplateMap) ([]models.Warning, error) {
	warnings := make([]models.Warning, 0)
	nodesByID := make(map[string]*models.Node, len(workflow.Nodes))

	for i, node := range workflow.Nodes {
		if _, exists := nodesByID[node.ID]; exists {
			return nil, NewSchemaError(
				fmt.Sprintf("nodes.%d.id", i),
				fmt.Sprintf("node id %q is already used by an earlier node", node.ID),
			)
		}

		nodesByID[node.ID] = node

		template, ok := templates[node.Type]
		if !ok {
			return nil, NewSchemaError(
				fmt.Sprintf("nodes.%d.type", i),
				fmt.Sprintf("node type %q has no registered template", node.Type),
			)
		}

		fields := make([]string, 0, len(node.Fields))
		for name := range node.Fields {
			fields = append(fields, name)
		}

		sort.Strings(fields)

		for _, name := range fields {
			if template.HasInput(name) {
				continue
			}

			warnings = append(warnings, models.Warning{
				Message: fmt.Sprintf("node %q: field %q is not declared on type %q", node.ID, name, node.Type),
				NodeID:  node.ID,
				Field:   name,
			})
		}
	}

	for i, edge := range workflow.Edges {
		sourceNode, ok := nodesByID[edge.Source.NodeID]
		if !ok {
			return nil, NewSchemaError(
				fmt.Sprintf("edges.%d.source.node_id", i),
				fmt.Sprintf("an existing node id (no node %q)", edge.Source.NodeID),
			)
		}

		targetNode, ok := nodesByID[edge.Target.NodeID]
		if !ok {
			return nil, NewSchemaError(
				fmt.Sprintf("edges.%d.target.node_id", i),
				fmt.Sprintf("an existing node id (no node %q)", edge.Target.NodeID),
			)
		}

		if !templates[sourceNode.Type].HasOutput(edge.Source.Field) {
			return nil, NewSchemaError(
				fmt.Sprintf("edges.%d.source.field", i),
				fmt.Sprintf("an output field of type %q (no field %q)", sourceNode.Type, edge.Source.Field),
			)
		}

		if !templates[targetNode.Type].HasInput(edge.Target.Field) {
			return nil, NewSchemaError(
				fmt.Sprintf("edges.%d.target.field", i),
				fmt.Sprintf("an input field of type %q (no field %q)", targetNode.Type, edge.Target.Field),
			)
		}
	}

	return warnings, nil
}

// checkResourceAccess runs one access check per embedded resource
// reference. Checks run concurrently and all complete before warnings are
// decided; a check failure degrades to an inaccessible warning so a slow or
// broken catalog never fails a load.
func checkResourceAccess(ctx context.Context, workflow *models.Workflow, checkers access.Checkers) []models.Warning {
	refs := workflow.ResourceRefs()
	if len(refs) == 0 {
		return nil
	}

	results := make([]*models.Warning, len(refs))

	var wg sync.WaitGroup

	for i, ref := range refs {
		checker := checkers.ForKind(ref.Kind)
		if checker == nil {
			continue
		}

		wg.Add(1)

		go func(i int, ref models.ResourceRef) {
			defer wg.Done()

			ok, err := checker.Check(ctx, ref.ID)

			switch {
			case err != nil:
				results[i] = &models.Warning{
					Message:      fmt.Sprintf("could not verify access to %s %q referenced by node %q field %q: %v", ref.Kind, ref.ID, ref.NodeID, ref.Field, err),
					NodeID:       ref.NodeID,
					Field:        ref.Field,
					ResourceKind: ref.Kind,
					ResourceID:   ref.ID,
				}
			case !ok:
				results[i] = &models.Warning{
					Message:      fmt.Sprintf("%s %q referenced by node %q field %q is not accessible", ref.Kind, ref.ID, ref.NodeID, ref.Field),
					NodeID:       ref.NodeID,
					Field:        ref.Field,
					ResourceKind: ref.Kind,
					ResourceID:   ref.ID,
				}
			}
		}(i, ref)
	}

	wg.Wait()

	warnings := make([]models.Warning, 0, len(refs))

	for _, result := range results {
		if result != nil {
			warnings = append(warnings, *result)
		}
	}

	return warnings
}
