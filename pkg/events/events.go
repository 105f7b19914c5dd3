// Package events defines event types and structures for workflow lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic is the channel all workflow lifecycle events are published on.
const Topic = "invokeai.workflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Load pipeline events.
	WorkflowLoadedEvent     EventType = "workflow.loaded"
	WorkflowLoadFailedEvent EventType = "workflow.load_failed"

	// Library lifecycle events.
	WorkflowSavedEvent       EventType = "workflow.saved"
	WorkflowDeletedEvent     EventType = "workflow.deleted"
	WorkflowRevalidatedEvent EventType = "workflow.revalidated"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WorkflowLoaded is published after a document passed validation and an
// editable workflow was handed back to the caller.
type WorkflowLoaded struct {
	BaseEvent

	WorkflowName string `json:"workflow_name,omitempty"`
	Version      string `json:"version"`
	Source       string `json:"source"`
	WarningCount int    `json:"warning_count"`
}

func (w WorkflowLoaded) GetType() EventType {
	return WorkflowLoadedEvent
}

// WorkflowLoadFailed is published when a document was rejected. Kind carries
// the failure classification, Message the user-facing summary.
type WorkflowLoadFailed struct {
	BaseEvent

	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (w WorkflowLoadFailed) GetType() EventType {
	return WorkflowLoadFailedEvent
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}
