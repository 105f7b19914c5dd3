// Package access answers whether the current actor may use the external
// resources a workflow references: images, boards, and models.
package access

import (
	"context"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
)

// Checker reports whether a single resource id is accessible. A false
// result means the resource is missing or not visible to the actor; an
// error means the question could not be answered.
type Checker interface {
	Check(ctx context.Context, id string) (bool, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, id string) (bool, error)

func (f CheckerFunc) Check(ctx context.Context, id string) (bool, error) {
	return f(ctx, id)
}

// Checkers bundles the per-kind checkers handed to the validator. A nil
// entry disables checks for that kind.
type Checkers struct {
	Images Checker
	Boards Checker
	Models Checker
}

// ForKind returns the checker responsible for the given resource kind, or
// nil when the kind is unknown or unconfigured.
func (c Checkers) ForKind(kind models.ResourceKind) Checker {
	switch kind {
	case models.ResourceKindImage:
		return c.Images
	case models.ResourceKindBoard:
		return c.Boards
	case models.ResourceKindModel:
		return c.Models
	}

	return nil
}

// AllowAll returns checkers that accept every reference. Used by the CLI
// and by tests that exercise validation without a resource catalog.
func AllowAll() Checkers {
	allow := CheckerFunc(func(context.Context, string) (bool, error) {
		return true, nil
	})

	return Checkers{Images: allow, Boards: allow, Models: allow}
}
