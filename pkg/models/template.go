package models

// FieldTemplate describes one input or output field of a node type.
type FieldTemplate struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
	Default  any    `json:"default,omitempty"`
}

// Template describes a node type independently of any one workflow: its
// identity plus the fields it accepts and produces. Templates are owned by
// the registry and read-only to the load pipeline.
type Template struct {
	Type     string                    `json:"type"     validate:"required"`
	Title    string                    `json:"title"`
	Category string                    `json:"category,omitempty"`
	Version  string                    `json:"version,omitempty"`
	Inputs   map[string]*FieldTemplate `json:"inputs"`
	Outputs  map[string]*FieldTemplate `json:"outputs"`
}

// HasInput reports whether the template declares the named input field.
func (t *Template) HasInput(field string) bool {
	_, ok := t.Inputs[field]

	return ok
}

// HasOutput reports whether the template declares the named output field.
func (t *Template) HasOutput(field string) bool {
	_, ok := t.Outputs[field]

	return ok
}

// InputDefault returns the declared default for an input field, and whether
// the field exists on the template.
func (t *Template) InputDefault(field string) (any, bool) {
	ft, ok := t.Inputs[field]
	if !ok {
		return nil, false
	}

	return ft.Default, true
}

// TemplateMap maps node-type names to their templates. Keys are unique by
// construction (the registry rejects duplicate registrations).
type TemplateMap map[string]*Template
