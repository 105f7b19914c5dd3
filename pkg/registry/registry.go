// Package registry holds the node templates known to this deployment:
// the built-in invocation set plus any JSON template packs loaded at boot.
package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
)

// Registry owns the template map handed to each load. Registration happens
// at boot; the pipeline only ever sees read-only snapshots.
type Registry struct {
	logger    *slog.Logger
	templates map[string]*models.Template
}

// NewRegistry creates an empty template registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		templates: make(map[string]*models.Template),
	}
}

// Register adds a template. Registering a type twice is an error: template
// keys are unique and silently replacing one hides deployment mistakes.
func (r *Registry) Register(template *models.Template) error {
	if template == nil || template.Type == "" {
		return fmt.Errorf("template must declare a type")
	}

	if _, exists := r.templates[template.Type]; exists {
		return fmt.Errorf("template %q already registered", template.Type)
	}

	r.templates[template.Type] = template
	r.logger.Debug("registered node template", "type", template.Type)

	return nil
}

// Get returns the template for a node type.
func (r *Registry) Get(nodeType string) (*models.Template, bool) {
	template, ok := r.templates[nodeType]

	return template, ok
}

// Count returns the number of registered templates.
func (r *Registry) Count() int {
	return len(r.templates)
}

// HealthCheck reports whether the registry can serve loads. An empty
// registry means every document would fail the template check.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.templates) == 0 {
		return "Template registry has no templates", false
	}

	return fmt.Sprintf("Template registry serving %d templates", len(r.templates)), true
}

// Snapshot returns a copy of the template map for one load invocation.
// Later registrations do not affect handed-out snapshots.
func (r *Registry) Snapshot() models.TemplateMap {
	snapshot := make(models.TemplateMap, len(r.templates))
	for nodeType, template := range r.templates {
		snapshot[nodeType] = template
	}

	return snapshot
}

// LoadJSON registers every template in a serialized template pack (a JSON
// array of templates).
func (r *Registry) LoadJSON(data []byte) error {
	var pack []*models.Template
	if err := json.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("parse template pack: %w", err)
	}

	for _, template := range pack {
		if err := r.Register(template); err != nil {
			return err
		}
	}

	return nil
}

// LoadFile registers every template from a JSON template pack on disk.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template pack: %w", err)
	}

	if err := r.LoadJSON(data); err != nil {
		return fmt.Errorf("template pack %s: %w", path, err)
	}

	r.logger.Info("loaded template pack", "path", path)

	return nil
}
