// Package main provides the InvokeAI workflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/blessedcoolant/InvokeAI/pkg/loader"
	"github.com/blessedcoolant/InvokeAI/pkg/registry"
	"github.com/blessedcoolant/InvokeAI/pkg/services"
	"github.com/blessedcoolant/InvokeAI/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	loader   *loader.Loader
	library  *services.Library
	registry *registry.Registry
	validate *validator.Validate
}

func NewAPI(
	log *slog.Logger,
	workflowLoader *loader.Loader,
	library *services.Library,
	reg *registry.Registry,
) *API {
	return &API{
		logger:   log,
		loader:   workflowLoader,
		library:  library,
		registry: reg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.loader, a.library, a.registry, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("InvokeAI Workflow API")
	})

	api := app.Group("/api/v1")
	w := api.Group("/workflows")
	w.Post("/load", handlers.LoadWorkflow)
	w.Post("/convert", handlers.ConvertGraph)
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
