package events

// WorkflowSaved is published after the library persisted a workflow.
type WorkflowSaved struct {
	BaseEvent

	WorkflowName string `json:"workflow_name,omitempty"`
	Version      string `json:"version"`
}

func (w WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

// WorkflowDeleted is published after the library removed a workflow.
type WorkflowDeleted struct {
	BaseEvent
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

// WorkflowRevalidated is published for each stored workflow visited by a
// revalidation sweep. Valid reports whether the stored document still passes
// the load pipeline; Message carries the failure summary when it does not.
type WorkflowRevalidated struct {
	BaseEvent

	Valid        bool   `json:"valid"`
	WarningCount int    `json:"warning_count"`
	Message      string `json:"message,omitempty"`
}

func (w WorkflowRevalidated) GetType() EventType {
	return WorkflowRevalidatedEvent
}
