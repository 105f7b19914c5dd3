// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/blessedcoolant/InvokeAI/pkg/registry"
)

// NewRegistry builds the template registry the binaries share: the built-in
// invocation templates plus an optional JSON template pack from disk.
func NewRegistry(logger *slog.Logger, templatesPath string) *registry.Registry {
	reg := registry.NewRegistry(logger)

	if err := registry.RegisterBuiltins(reg); err != nil {
		panic(fmt.Errorf("failed to register built-in templates: %w", err))
	}

	if templatesPath != "" {
		if err := reg.LoadFile(templatesPath); err != nil {
			panic(fmt.Errorf("failed to load template pack: %w", err))
		}
	}

	return reg
}
