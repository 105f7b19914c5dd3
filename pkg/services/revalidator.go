package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/blessedcoolant/InvokeAI/pkg/events"
	"github.com/robfig/cron/v3"
)

// RevalidationSummary reports one sweep over the library. Drifted workflows
// still load but picked up warnings; invalid ones no longer pass the
// pipeline, typically after a template change.
type RevalidationSummary struct {
	Checked int `json:"checked"`
	Drifted int `json:"drifted"`
	Invalid int `json:"invalid"`
}

// Revalidator periodically re-runs the validation pipeline over every stored
// workflow. Stored documents are immutable between saves, but the template
// registry and the resource catalog are not; a sweep surfaces the drift.
type Revalidator struct {
	library  *Library
	logger   *slog.Logger
	cronExpr string
	cron     *cron.Cron
}

// NewRevalidator creates a revalidator sweeping the given library. The cron
// expression is only needed when Start is used; RunOnce works without it.
func NewRevalidator(library *Library, cronExpr string, logger *slog.Logger) *Revalidator {
	return &Revalidator{
		library:  library,
		logger:   logger,
		cronExpr: cronExpr,
	}
}

// RunOnce sweeps the library once, publishing a revalidated event for every
// workflow that drifted or turned invalid.
func (r *Revalidator) RunOnce(ctx context.Context) (RevalidationSummary, error) {
	workflows, err := r.library.List(ctx)
	if err != nil {
		return RevalidationSummary{}, fmt.Errorf("failed to list workflows for revalidation: %w", err)
	}

	summary := RevalidationSummary{}

	for _, workflow := range workflows {
		summary.Checked++

		raw, err := json.Marshal(workflow)
		if err != nil {
			summary.Invalid++
			r.publishRevalidated(ctx, workflow.ID, false, 0, fmt.Sprintf("failed to encode stored document: %v", err))

			continue
		}

		result, err := r.library.validator.ValidateJSON(ctx, raw, r.library.registry.Snapshot(), r.library.checkers)

		switch {
		case err != nil:
			summary.Invalid++
			r.logger.WarnContext(ctx, "Stored workflow no longer validates", "workflow_id", workflow.ID, "error", err)
			r.publishRevalidated(ctx, workflow.ID, false, 0, err.Error())
		case len(result.Warnings) > 0:
			summary.Drifted++
			r.publishRevalidated(ctx, workflow.ID, true, len(result.Warnings), "")
		}
	}

	r.logger.InfoContext(ctx, "Workflow revalidation completed",
		"checked", summary.Checked,
		"drifted", summary.Drifted,
		"invalid", summary.Invalid,
	)

	return summary, nil
}

// Start schedules RunOnce on the configured cron expression.
func (r *Revalidator) Start(ctx context.Context) error {
	if _, err := cron.ParseStandard(r.cronExpr); err != nil {
		return fmt.Errorf("invalid revalidation cron expression %q: %w", r.cronExpr, err)
	}

	r.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := r.cron.AddFunc(r.cronExpr, func() {
		if _, err := r.RunOnce(context.Background()); err != nil {
			r.logger.Error("Scheduled revalidation failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule revalidation: %w", err)
	}

	r.cron.Start()
	r.logger.InfoContext(ctx, "Revalidation schedule started", "cron", r.cronExpr)

	return nil
}

// Stop halts the revalidation schedule. Safe to call when Start never ran.
func (r *Revalidator) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Revalidator) publishRevalidated(ctx context.Context, workflowID string, valid bool, warningCount int, message string) {
	if r.library.publisher == nil {
		return
	}

	event := events.WorkflowRevalidated{
		BaseEvent:    events.NewBaseEvent(events.WorkflowRevalidatedEvent, workflowID),
		Valid:        valid,
		WarningCount: warningCount,
		Message:      message,
	}

	if err := r.library.publisher.Publish(ctx, workflowID, event); err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish revalidated event", "workflow_id", workflowID, "error", err)
	}
}
