package loader

import (
	"context"
	"log/slog"

	"github.com/blessedcoolant/InvokeAI/pkg/eventbus"
	"github.com/blessedcoolant/InvokeAI/pkg/events"
	"github.com/blessedcoolant/InvokeAI/pkg/validation"
)

// Notifier receives the single end-of-load notification. Implementations
// must not block; the loader calls them on the request path.
type Notifier interface {
	Loaded(ctx context.Context, result *LoadResult)
	LoadedWithWarnings(ctx context.Context, result *LoadResult)
	LoadFailed(ctx context.Context, kind validation.Kind, message string)
}

// SlogNotifier reports load outcomes to the log. It is the default notifier
// for the CLI, where there is no event bus to publish to.
type SlogNotifier struct {
	logger *slog.Logger
}

func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	return &SlogNotifier{logger: logger}
}

func (n *SlogNotifier) Loaded(ctx context.Context, result *LoadResult) {
	n.logger.InfoContext(ctx, "Workflow loaded",
		"workflow_id", result.Workflow.ID,
		"workflow_name", result.Workflow.Name,
		"source", result.Source,
	)
}

func (n *SlogNotifier) LoadedWithWarnings(ctx context.Context, result *LoadResult) {
	n.logger.WarnContext(ctx, "Workflow loaded with warnings",
		"workflow_id", result.Workflow.ID,
		"workflow_name", result.Workflow.Name,
		"source", result.Source,
		"warning_count", len(result.Warnings),
	)
}

func (n *SlogNotifier) LoadFailed(ctx context.Context, kind validation.Kind, message string) {
	n.logger.ErrorContext(ctx, "Workflow load failed", "kind", kind, "message", message)
}

// EventNotifier publishes load outcomes on the event bus. Publish failures
// are logged and swallowed; a broken bus must not break loading.
type EventNotifier struct {
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func NewEventNotifier(publisher eventbus.EventPublisher, logger *slog.Logger) *EventNotifier {
	return &EventNotifier{
		publisher: publisher,
		logger:    logger,
	}
}

func (n *EventNotifier) Loaded(ctx context.Context, result *LoadResult) {
	n.publish(ctx, result.Workflow.ID, events.WorkflowLoaded{
		BaseEvent:    events.NewBaseEvent(events.WorkflowLoadedEvent, result.Workflow.ID),
		WorkflowName: result.Workflow.Name,
		Version:      result.Workflow.Version,
		Source:       result.Source,
		WarningCount: len(result.Warnings),
	})
}

func (n *EventNotifier) LoadedWithWarnings(ctx context.Context, result *LoadResult) {
	n.Loaded(ctx, result)
}

func (n *EventNotifier) LoadFailed(ctx context.Context, kind validation.Kind, message string) {
	n.publish(ctx, "", events.WorkflowLoadFailed{
		BaseEvent: events.NewBaseEvent(events.WorkflowLoadFailedEvent, ""),
		Kind:      string(kind),
		Message:   message,
	})
}

func (n *EventNotifier) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := n.publisher.Publish(ctx, key, event); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish load event", "event_type", event.GetType(), "error", err)
	}
}

// MultiNotifier fans a notification out to every wrapped notifier in order.
type MultiNotifier []Notifier

func (m MultiNotifier) Loaded(ctx context.Context, result *LoadResult) {
	for _, n := range m {
		n.Loaded(ctx, result)
	}
}

func (m MultiNotifier) LoadedWithWarnings(ctx context.Context, result *LoadResult) {
	for _, n := range m {
		n.LoadedWithWarnings(ctx, result)
	}
}

func (m MultiNotifier) LoadFailed(ctx context.Context, kind validation.Kind, message string) {
	for _, n := range m {
		n.LoadFailed(ctx, kind, message)
	}
}
