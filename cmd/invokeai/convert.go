package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/blessedcoolant/InvokeAI/pkg/cmd"
	"github.com/blessedcoolant/InvokeAI/pkg/graph"
	"github.com/blessedcoolant/InvokeAI/pkg/log"
	"github.com/blessedcoolant/InvokeAI/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func newConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Aliases:   []string{"c"},
		Usage:     "Convert a legacy graph document into a workflow document",
		ArgsUsage: "<graph-file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "layout",
				Usage: "Compute canvas positions for the converted nodes",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the workflow to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:    "templates-path",
				Usage:   "Path to an extra JSON template pack",
				Sources: cli.EnvVars("TEMPLATES_PATH"),
			},
		},
		Action: runConvert,
	}
}

func runConvert(_ context.Context, command *cli.Command) error {
	log.Setup(command.Root().String("log-level"))
	logger := log.WithModule("cli")

	path := command.Args().First()
	if path == "" {
		return cli.Exit("a graph file is required", 1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read graph: %w", err)
	}

	var g models.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("parse graph: %w", err)
	}

	templates := cmd.NewRegistry(logger, command.String("templates-path")).Snapshot()

	workflow := graph.Convert(&g, templates, command.Bool("layout"))

	out, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}

	if output := command.String("output"); output != "" {
		return os.WriteFile(output, append(out, '\n'), 0o644)
	}

	fmt.Println(string(out))

	return nil
}
