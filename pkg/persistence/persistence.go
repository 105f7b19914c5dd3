// Package persistence provides the storage abstraction for the workflow library.
package persistence

import (
	"context"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
)

// WorkflowRepository stores workflow documents. GetByID returns (nil, nil)
// when no workflow exists under the id; callers decide whether that is an
// error.
type WorkflowRepository interface {
	List(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
