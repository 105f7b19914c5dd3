package registry

import "github.com/blessedcoolant/InvokeAI/pkg/models"

// RegisterBuiltins installs the built-in invocation templates. The set
// covers the primitives plus the image, board, and model touching nodes the
// default pipelines use.
func RegisterBuiltins(r *Registry) error {
	for _, template := range builtinTemplates() {
		if err := r.Register(template); err != nil {
			return err
		}
	}

	return nil
}

func builtinTemplates() []*models.Template {
	return []*models.Template{
		{
			Type:    "noop",
			Title:   "No-op",
			Version: "1.0.0",
			Inputs:  map[string]*models.FieldTemplate{},
			Outputs: map[string]*models.FieldTemplate{},
		},
		{
			Type:    "string",
			Title:   "String Primitive",
			Version: "1.0.0",
			Inputs: map[string]*models.FieldTemplate{
				"value": {Name: "value", Type: "string", Default: ""},
			},
			Outputs: map[string]*models.FieldTemplate{
				"value": {Name: "value", Type: "string"},
			},
		},
		{
			Type:    "integer",
			Title:   "Integer Primitive",
			Version: "1.0.0",
			Inputs: map[string]*models.FieldTemplate{
				"value": {Name: "value", Type: "integer", Default: float64(0)},
			},
			Outputs: map[string]*models.FieldTemplate{
				"value": {Name: "value", Type: "integer"},
			},
		},
		{
			Type:    "image",
			Title:   "Image Primitive",
			Version: "1.0.1",
			Inputs: map[string]*models.FieldTemplate{
				"image": {Name: "image", Type: "ImageField", Required: true},
			},
			Outputs: map[string]*models.FieldTemplate{
				"image":  {Name: "image", Type: "ImageField"},
				"width":  {Name: "width", Type: "integer"},
				"height": {Name: "height", Type: "integer"},
			},
		},
		{
			Type:    "resize_image",
			Title:   "Resize Image",
			Version: "1.2.0",
			Inputs: map[string]*models.FieldTemplate{
				"image":  {Name: "image", Type: "ImageField", Required: true},
				"width":  {Name: "width", Type: "integer", Default: float64(512)},
				"height": {Name: "height", Type: "integer", Default: float64(512)},
			},
			Outputs: map[string]*models.FieldTemplate{
				"image": {Name: "image", Type: "ImageField"},
			},
		},
		{
			Type:    "save_image",
			Title:   "Save Image",
			Version: "1.1.0",
			Inputs: map[string]*models.FieldTemplate{
				"image": {Name: "image", Type: "ImageField", Required: true},
				"board": {Name: "board", Type: "BoardField"},
			},
			Outputs: map[string]*models.FieldTemplate{},
		},
		{
			Type:    "main_model_loader",
			Title:   "Main Model Loader",
			Version: "1.0.2",
			Inputs: map[string]*models.FieldTemplate{
				"model": {Name: "model", Type: "ModelIdentifierField", Required: true},
			},
			Outputs: map[string]*models.FieldTemplate{
				"unet": {Name: "unet", Type: "UNetField"},
				"clip": {Name: "clip", Type: "CLIPField"},
				"vae":  {Name: "vae", Type: "VAEField"},
			},
		},
	}
}
