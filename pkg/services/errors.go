// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/blessedcoolant/InvokeAI/pkg/persistence"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	// ErrWorkflowNil is returned when a nil workflow is passed to an operation.
	ErrWorkflowNil = errors.New("workflow cannot be nil")

	// ErrEmptyWorkflowID is returned when an operation requires an id and none was given.
	ErrEmptyWorkflowID = errors.New("workflow id cannot be empty")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a request validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrEmptyWorkflowID)
}

// IsNotFoundError checks if an error indicates a missing workflow.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}
