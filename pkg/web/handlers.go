// Package web provides HTTP handlers and REST API endpoints for workflow
// loading, conversion, and library management.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/blessedcoolant/InvokeAI/pkg/graph"
	"github.com/blessedcoolant/InvokeAI/pkg/loader"
	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/blessedcoolant/InvokeAI/pkg/registry"
	"github.com/blessedcoolant/InvokeAI/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	loader    *loader.Loader
	library   *services.Library
	registry  *registry.Registry
	validator *validator.Validate
}

func NewAPIHandlers(
	workflowLoader *loader.Loader,
	library *services.Library,
	reg *registry.Registry,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		loader:    workflowLoader,
		library:   library,
		registry:  reg,
		validator: validate,
	}
}

// LoadWorkflow runs the full load pipeline over the posted document and
// returns the migrated, validated workflow without storing it.
func (h *APIHandlers) LoadWorkflow(c fiber.Ctx) error {
	var req LoadWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "validation_error", "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	result, err := h.loader.Run(c.Context(), req.RawInput(), h.registry.Snapshot())
	if err != nil {
		return handleLoadError(c, err)
	}

	return c.JSON(result)
}

// ConvertGraph builds an editable workflow from an execution graph. The
// result is not validated or stored; callers load or save it separately.
func (h *APIHandlers) ConvertGraph(c fiber.Ctx) error {
	var req ConvertGraphRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "validation_error", "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	var g models.Graph
	if err := json.Unmarshal(req.Graph, &g); err != nil {
		return badRequest(c, "malformed_input", "Graph document is not valid JSON")
	}

	workflow := graph.Convert(&g, h.registry.Snapshot(), req.DoLayout)

	return c.JSON(workflow)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.library.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "validation_error", "Workflow ID is required")
	}

	workflow, err := h.library.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

// CreateWorkflow validates the posted document and stores it. The body is
// the workflow document itself, at any recognized schema version.
func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "validation_error", "Request body is required")
	}

	workflow, warnings, err := h.library.Create(c.Context(), body)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(SaveWorkflowResponse{
		Workflow: workflow,
		Warnings: warnings,
	})
}

// UpdateWorkflow validates the posted document and stores it over an
// existing workflow.
func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "validation_error", "Workflow ID is required")
	}

	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "validation_error", "Request body is required")
	}

	workflow, warnings, err := h.library.Update(c.Context(), id, body)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(SaveWorkflowResponse{
		Workflow: workflow,
		Warnings: warnings,
	})
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "validation_error", "Workflow ID is required")
	}

	err := h.library.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	libraryCheck, libOk := h.library.HealthCheck(c.Context())

	status := "unhealthy"
	message := "InvokeAI workflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && libOk {
		status = "healthy"
		message = "InvokeAI workflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry": registryCheck,
			"library":  libraryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
