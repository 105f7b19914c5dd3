// Package loader implements the workflow load pipeline: it accepts raw
// editor payloads, routes them through migration and validation or graph
// conversion, and reports the outcome to the configured notifier.
package loader

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/blessedcoolant/InvokeAI/pkg/access"
	"github.com/blessedcoolant/InvokeAI/pkg/graph"
	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/blessedcoolant/InvokeAI/pkg/otelhelper"
	"github.com/blessedcoolant/InvokeAI/pkg/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Sources a load result can originate from.
const (
	SourceWorkflow = "workflow"
	SourceGraph    = "graph"
)

// RawInput is the payload handed to the loader by the editor or the API. At
// most one branch is used: Workflow carries a stringified workflow document,
// Graph a stringified execution graph. When both are set the workflow wins.
// Empty strings count as absent.
type RawInput struct {
	Workflow *string `json:"workflow,omitempty"`
	Graph    *string `json:"graph,omitempty"`
}

// Effects tells the caller which editor side effects to apply after a
// successful load.
type Effects struct {
	ResetExecutionState bool `json:"reset_execution_state"`
	FitView             bool `json:"fit_view"`
}

// LoadResult is the outcome of a successful load: the current-version
// workflow, every warning collected on the way, and the effects the caller
// should apply.
type LoadResult struct {
	Workflow *models.Workflow `json:"workflow"`
	Warnings []models.Warning `json:"warnings,omitempty"`
	Effects  Effects          `json:"effects"`
	Source   string           `json:"source"`
}

// Loader orchestrates a single load: branch selection, graph conversion,
// migration, validation, notification. It is stateless across calls and safe
// for concurrent use.
type Loader struct {
	validator *validation.Validator
	checkers  access.Checkers
	notifier  Notifier
	logger    *slog.Logger
}

func NewLoader(validator *validation.Validator, checkers access.Checkers, notifier Notifier, logger *slog.Logger) *Loader {
	return &Loader{
		validator: validator,
		checkers:  checkers,
		notifier:  notifier,
		logger:    logger,
	}
}

// Run executes the load pipeline and surfaces the failure to the caller. Use
// Load for the fire-and-notify contract the editor expects; Run is for
// callers that map errors themselves, such as the HTTP handlers.
func (l *Loader) Run(ctx context.Context, input RawInput, templates models.TemplateMap) (*LoadResult, error) {
	tracer := otel.Tracer("invokeai.loader")

	ctx, span := otelhelper.StartSpan(ctx, tracer, "loader.run")
	defer span.End()

	result, err := l.run(ctx, input, templates)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ErrorKindKey, string(validation.KindOf(err))))

		return nil, err
	}

	span.SetAttributes(
		attribute.String(otelhelper.SourceKey, result.Source),
		attribute.String(otelhelper.WorkflowIDKey, result.Workflow.ID),
		attribute.Int(otelhelper.WarningCountKey, len(result.Warnings)),
	)

	return result, nil
}

func (l *Loader) run(ctx context.Context, input RawInput, templates models.TemplateMap) (*LoadResult, error) {
	switch {
	case input.Workflow != nil && *input.Workflow != "":
		return l.loadWorkflow(ctx, *input.Workflow, templates)
	case input.Graph != nil && *input.Graph != "":
		return l.loadGraph(ctx, *input.Graph, templates)
	default:
		return nil, validation.NewMissingInputError()
	}
}

// Load runs the pipeline and never returns an error: failures are logged and
// reported through the notifier, and the caller receives nil. Exactly one
// notification is emitted per call; warnings are additionally logged one by
// one.
func (l *Loader) Load(ctx context.Context, input RawInput, templates models.TemplateMap) *LoadResult {
	result, err := l.Run(ctx, input, templates)
	if err != nil {
		kind := validation.KindOf(err)
		message := describeLoadFailure(err)

		l.logger.ErrorContext(ctx, "Workflow load failed", "kind", kind, "error", err)

		if l.notifier != nil {
			l.notifier.LoadFailed(ctx, kind, message)
		}

		return nil
	}

	for _, warning := range result.Warnings {
		l.logger.WarnContext(ctx, "Workflow loaded with warning",
			"workflow_id", result.Workflow.ID,
			"message", warning.Message,
			"node_id", warning.NodeID,
			"field", warning.Field,
		)
	}

	if l.notifier != nil {
		if len(result.Warnings) > 0 {
			l.notifier.LoadedWithWarnings(ctx, result)
		} else {
			l.notifier.Loaded(ctx, result)
		}
	}

	return result
}

func (l *Loader) loadWorkflow(ctx context.Context, raw string, templates models.TemplateMap) (*LoadResult, error) {
	validated, err := l.validator.ValidateJSON(ctx, []byte(raw), templates, l.checkers)
	if err != nil {
		return nil, err
	}

	return newLoadResult(validated, SourceWorkflow), nil
}

func (l *Loader) loadGraph(ctx context.Context, raw string, templates models.TemplateMap) (*LoadResult, error) {
	var g models.Graph
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, validation.NewMalformedInputError(err)
	}

	workflow := graph.Convert(&g, templates, true)

	validated, err := l.validator.ValidateWorkflow(ctx, workflow, templates, l.checkers)
	if err != nil {
		return nil, err
	}

	return newLoadResult(validated, SourceGraph), nil
}

func newLoadResult(validated *validation.Result, source string) *LoadResult {
	return &LoadResult{
		Workflow: validated.Workflow,
		Warnings: validated.Warnings,
		Effects: Effects{
			ResetExecutionState: true,
			FitView:             true,
		},
		Source: source,
	}
}

// describeLoadFailure maps a pipeline error to the message shown to the
// user. Version, migration and schema errors already carry a precise
// self-contained message.
func describeLoadFailure(err error) string {
	switch validation.KindOf(err) {
	case validation.KindMissingInput:
		return "no workflow or graph data to load"
	case validation.KindMalformedInput:
		return "the document is not valid JSON"
	case validation.KindVersion, validation.KindMigration, validation.KindSchema:
		return err.Error()
	default:
		return "an unexpected error occurred while loading the workflow"
	}
}
