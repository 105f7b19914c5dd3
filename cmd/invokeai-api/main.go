package main

import (
	"context"
	"os"

	"github.com/blessedcoolant/InvokeAI/pkg/cmd"
	"github.com/blessedcoolant/InvokeAI/pkg/config"
	"github.com/blessedcoolant/InvokeAI/pkg/loader"
	"github.com/blessedcoolant/InvokeAI/pkg/log"
	"github.com/blessedcoolant/InvokeAI/pkg/otelhelper"
	"github.com/blessedcoolant/InvokeAI/pkg/services"
	"github.com/blessedcoolant/InvokeAI/pkg/validation"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9090

func main() {
	command := &cli.Command{
		Name:                  "invokeai-api",
		Usage:                 "Serve the workflow load, validation, and library API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL (file:// root or postgres:// DSN)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (memory, kafka)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the invokeai.yaml service config",
				Sources: cli.EnvVars("INVOKEAI_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "catalog-url",
				Usage:   "Resource catalog base URL (overrides the config file)",
				Sources: cli.EnvVars("CATALOG_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the access check cache (overrides the config file)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "templates-path",
				Usage:   "Path to an extra JSON template pack",
				Sources: cli.EnvVars("TEMPLATES_PATH"),
			},
			&cli.StringFlag{
				Name:    "revalidate-cron",
				Usage:   "Cron expression for library revalidation sweeps (enables the sweeps)",
				Sources: cli.EnvVars("REVALIDATE_CRON"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: runAPI,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func runAPI(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing InvokeAI workflow API")

	cfg, err := resolveServiceConfig(command)
	if err != nil {
		return err
	}

	if _, err := otelhelper.NewTracer(ctx, "invokeai-api"); err != nil {
		logger.WarnContext(ctx, "Tracing disabled", "error", err)
	}

	registry := cmd.NewRegistry(logger, command.String("templates-path"))
	persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

	defer func() {
		err := persistence.Close(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus := cmd.NewEventBus(command.String("event-bus"), logger)

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	checkers := cmd.NewCheckers(cfg, logger)

	documentValidator, err := validation.NewValidator()
	if err != nil {
		return err
	}

	library := services.NewLibrary(persistence, documentValidator, checkers, registry, eventBus, logger)

	notifier := loader.MultiNotifier{
		loader.NewSlogNotifier(logger),
		loader.NewEventNotifier(eventBus, logger),
	}
	workflowLoader := loader.NewLoader(documentValidator, checkers, notifier, logger)

	if cfg.Revalidation.Enabled {
		revalidator := services.NewRevalidator(library, cfg.Revalidation.Cron, logger)
		if err := revalidator.Start(ctx); err != nil {
			return err
		}

		defer revalidator.Stop()
	}

	api := NewAPI(logger, workflowLoader, library, registry)

	err = api.Start(command.Int("port"))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start API server", "error", err)
	}

	return nil
}

// resolveServiceConfig loads the YAML service config when one is given and
// layers the command line overrides on top.
func resolveServiceConfig(command *cli.Command) (config.ServiceConfig, error) {
	cfg := config.DefaultServiceConfig()

	if path := command.String("config"); path != "" {
		loaded, err := config.LoadServiceConfig(path)
		if err != nil {
			return config.ServiceConfig{}, err
		}

		cfg = loaded
	}

	if catalogURL := command.String("catalog-url"); catalogURL != "" {
		cfg.Catalog.BaseURL = catalogURL
	}

	if redisURL := command.String("redis-url"); redisURL != "" {
		cfg.AccessCache.RedisURL = redisURL
	}

	if cronExpr := command.String("revalidate-cron"); cronExpr != "" {
		cfg.Revalidation.Enabled = true
		cfg.Revalidation.Cron = cronExpr
	}

	if err := config.ValidateServiceConfig(cfg); err != nil {
		return config.ServiceConfig{}, err
	}

	return cfg, nil
}
