package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blessedcoolant/InvokeAI/pkg/access"
	"github.com/blessedcoolant/InvokeAI/pkg/eventbus"
	"github.com/blessedcoolant/InvokeAI/pkg/events"
	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/blessedcoolant/InvokeAI/pkg/persistence"
	"github.com/blessedcoolant/InvokeAI/pkg/registry"
	"github.com/blessedcoolant/InvokeAI/pkg/validation"
	"github.com/google/uuid"
)

// Library is the persisted collection of validated workflows. Every document
// passes the full load pipeline before it is stored, so the library never
// holds a workflow that would fail to load.
type Library struct {
	persistence persistence.Persistence
	validator   *validation.Validator
	checkers    access.Checkers
	registry    *registry.Registry
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

// NewLibrary creates a new workflow library service. The publisher may be
// nil, in which case no lifecycle events are emitted.
func NewLibrary(
	p persistence.Persistence,
	validator *validation.Validator,
	checkers access.Checkers,
	reg *registry.Registry,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Library {
	return &Library{
		persistence: p,
		validator:   validator,
		checkers:    checkers,
		registry:    reg,
		publisher:   publisher,
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (l *Library) HealthCheck(ctx context.Context) (string, bool) {
	if l.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := l.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Create validates the raw document and stores it under a fresh id. The
// document may be at any recognized version; it is stored migrated. The
// returned warnings did not block the save.
func (l *Library) Create(ctx context.Context, raw []byte) (*models.Workflow, []models.Warning, error) {
	result, err := l.validator.ValidateJSON(ctx, raw, l.registry.Snapshot(), l.checkers)
	if err != nil {
		return nil, nil, err
	}

	workflow := result.Workflow

	now := time.Now().UTC()
	workflow.ID = uuid.New().String()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	err = l.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	l.publishSaved(ctx, workflow)

	return workflow, result.Warnings, nil
}

// Update validates the raw document and stores it over an existing workflow,
// keeping the original creation time.
func (l *Library) Update(ctx context.Context, workflowID string, raw []byte) (*models.Workflow, []models.Warning, error) {
	if workflowID == "" {
		return nil, nil, ErrEmptyWorkflowID
	}

	existing, err := l.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, nil, err
	}

	if existing == nil {
		return nil, nil, ErrWorkflowNotFound
	}

	result, err := l.validator.ValidateJSON(ctx, raw, l.registry.Snapshot(), l.checkers)
	if err != nil {
		return nil, nil, err
	}

	workflow := result.Workflow
	workflow.ID = workflowID
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	err = l.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	l.publishSaved(ctx, workflow)

	return workflow, result.Warnings, nil
}

// FetchByID retrieves a workflow by its ID.
func (l *Library) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	if id == "" {
		return nil, ErrEmptyWorkflowID
	}

	workflow, err := l.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

// List returns every stored workflow, newest first.
func (l *Library) List(ctx context.Context) ([]*models.Workflow, error) {
	return l.persistence.WorkflowRepository().List(ctx)
}

// Delete removes a workflow by its ID.
func (l *Library) Delete(ctx context.Context, workflowID string) error {
	if workflowID == "" {
		return ErrEmptyWorkflowID
	}

	existing, err := l.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrWorkflowNotFound
	}

	err = l.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	l.publishDeleted(ctx, workflowID)

	return nil
}

func (l *Library) publishSaved(ctx context.Context, workflow *models.Workflow) {
	if l.publisher == nil {
		return
	}

	event := events.WorkflowSaved{
		BaseEvent:    events.NewBaseEvent(events.WorkflowSavedEvent, workflow.ID),
		WorkflowName: workflow.Name,
		Version:      workflow.Version,
	}

	if err := l.publisher.Publish(ctx, workflow.ID, event); err != nil {
		l.logger.ErrorContext(ctx, "Failed to publish workflow saved event", "workflow_id", workflow.ID, "error", err)
	}
}

func (l *Library) publishDeleted(ctx context.Context, workflowID string) {
	if l.publisher == nil {
		return
	}

	event := events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, workflowID),
	}

	if err := l.publisher.Publish(ctx, workflowID, event); err != nil {
		l.logger.ErrorContext(ctx, "Failed to publish workflow deleted event", "workflow_id", workflowID, "error", err)
	}
}
