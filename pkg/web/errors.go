package web

import (
	"github.com/blessedcoolant/InvokeAI/pkg/services"
	"github.com/blessedcoolant/InvokeAI/pkg/validation"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("workflow_not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func unprocessable(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(422).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleLoadError maps a load pipeline failure onto a problem response.
// Input problems are the client's fault; version, migration, and schema
// failures mean the document was understood but cannot be accepted.
func handleLoadError(c fiber.Ctx, err error) error {
	kind := validation.KindOf(err)

	switch kind {
	case validation.KindMissingInput, validation.KindMalformedInput:
		return badRequest(c, string(kind), err.Error())

	case validation.KindVersion, validation.KindMigration, validation.KindSchema:
		return unprocessable(c, string(kind), err.Error())

	case validation.KindUnknown:
		return internalError(c, err)

	default:
		return internalError(c, err)
	}
}

// handleServiceError provides typed error handling for library service errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, "validation_error", err.Error())

	case services.IsNotFoundError(err):
		return notFound(c, "Workflow not found")

	case validation.KindOf(err) != validation.KindUnknown:
		return handleLoadError(c, err)

	default:
		return internalError(c, err)
	}
}
