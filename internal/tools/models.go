package tools

// modelConfig ties a tool name to its fixed BFL endpoint and the defaults
// echoed in generation reports.
type modelConfig struct {
	Endpoint        string
	DisplayName     string
	DefaultSteps    int
	DefaultGuidance float64
	Schema          map[string]interface{}
}

// toolOrder fixes the listing order of the tools.
var toolOrder = []string{
	"flux_pro_generate",
	"flux_dev_generate",
	"flux_pro_11_generate",
	"flux_kontext_pro_generate",
	"flux_kontext_max_generate",
}

var models = map[string]modelConfig{
	"flux_pro_generate": {
		Endpoint:        "flux-pro",
		DisplayName:     "FLUX.1 [pro]",
		DefaultSteps:    40,
		DefaultGuidance: 2.5,
		Schema: generationSchema("Generates an image with FLUX.1 [pro], the flagship text-to-image model.", map[string]interface{}{
			"image_prompt": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Base64 encoded image to use with Flux Redux.",
			},
			"width":             widthProperty,
			"height":            heightProperty,
			"steps":             stepsProperty,
			"guidance":          guidanceProperty,
			"seed":              seedProperty,
			"prompt_upsampling": upsamplingProperty,
			"safety_tolerance":  safetyToleranceProperty,
		}),
	},
	"flux_dev_generate": {
		Endpoint:        "flux-dev",
		DisplayName:     "FLUX.1 [dev]",
		DefaultSteps:    28,
		DefaultGuidance: 3.0,
		Schema: generationSchema("Generates an image with FLUX.1 [dev], the open-weight distilled model.", map[string]interface{}{
			"image_prompt": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Base64 encoded image to use with Flux Redux.",
			},
			"width":             widthProperty,
			"height":            heightProperty,
			"steps":             stepsProperty,
			"guidance":          guidanceProperty,
			"seed":              seedProperty,
			"prompt_upsampling": upsamplingProperty,
			"safety_tolerance":  safetyToleranceProperty,
		}),
	},
	"flux_pro_11_generate": {
		Endpoint:        "flux-pro-1.1",
		DisplayName:     "FLUX 1.1 [pro]",
		DefaultSteps:    40,
		DefaultGuidance: 2.5,
		Schema: generationSchema("Generates an image with FLUX 1.1 [pro], the faster successor to FLUX.1 [pro].", map[string]interface{}{
			"image_prompt": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Base64 encoded image to use with Flux Redux.",
			},
			"width":             widthProperty,
			"height":            heightProperty,
			"seed":              seedProperty,
			"prompt_upsampling": upsamplingProperty,
			"safety_tolerance":  safetyToleranceProperty,
		}),
	},
	"flux_kontext_pro_generate": {
		Endpoint:        "flux-kontext-pro",
		DisplayName:     "FLUX.1 Kontext [pro]",
		DefaultSteps:    30,
		DefaultGuidance: 2.5,
		Schema: generationSchema("Generates or edits an image with FLUX.1 Kontext [pro]. Accepts an input image for in-context editing.", map[string]interface{}{
			"input_image": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Base64 encoded image to edit in context.",
			},
			"aspect_ratio": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Aspect ratio of the output, between 21:9 and 9:21 (e.g. '16:9').",
			},
			"seed":              seedProperty,
			"prompt_upsampling": upsamplingProperty,
			"safety_tolerance":  safetyToleranceProperty,
		}),
	},
	"flux_kontext_max_generate": {
		Endpoint:        "flux-kontext-max",
		DisplayName:     "FLUX.1 Kontext [max]",
		DefaultSteps:    30,
		DefaultGuidance: 2.5,
		Schema: generationSchema("Generates or edits an image with FLUX.1 Kontext [max], the highest quality Kontext model.", map[string]interface{}{
			"input_image": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Base64 encoded image to edit in context.",
			},
			"aspect_ratio": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Aspect ratio of the output, between 21:9 and 9:21 (e.g. '16:9').",
			},
			"seed":              seedProperty,
			"prompt_upsampling": upsamplingProperty,
			"safety_tolerance":  safetyToleranceProperty,
		}),
	},
}

// Shared schema fragments.
var (
	widthProperty = map[string]interface{}{
		"type":        "integer",
		"description": "Optional: Image width in pixels. Must be a multiple of 32. Defaults to 1024.",
	}
	heightProperty = map[string]interface{}{
		"type":        "integer",
		"description": "Optional: Image height in pixels. Must be a multiple of 32. Defaults to 768.",
	}
	stepsProperty = map[string]interface{}{
		"type":        "integer",
		"description": "Optional: Number of diffusion steps.",
	}
	guidanceProperty = map[string]interface{}{
		"type":        "number",
		"description": "Optional: Guidance scale for prompt adherence.",
	}
	seedProperty = map[string]interface{}{
		"type":        "integer",
		"description": "Optional: Seed for reproducible generation. Random when omitted.",
	}
	upsamplingProperty = map[string]interface{}{
		"type":        "boolean",
		"description": "Optional: Whether to perform automatic prompt improvement.",
	}
	safetyToleranceProperty = map[string]interface{}{
		"type":        "integer",
		"description": "Optional: Moderation tolerance, 0 (strict) to 6 (permissive). Defaults to 2.",
	}
)

// generationSchema builds a tool definition from the model-specific optional
// properties plus the fields every generation tool shares: the required
// prompt and the two local-only save fields.
func generationSchema(description string, properties map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"prompt": map[string]interface{}{
			"type":        "string",
			"description": "Text prompt describing the desired image.",
		},
		"output_path": map[string]interface{}{
			"type":        "string",
			"description": "Optional: Directory to save the image to. Absolute, ~-prefixed, or relative to the configured output directory. Never sent to the API.",
		},
		"filename": map[string]interface{}{
			"type":        "string",
			"description": "Optional: Filename for the saved image. Derived from the prompt when omitted. Never sent to the API.",
		},
	}
	for name, prop := range properties {
		props[name] = prop
	}

	return map[string]interface{}{
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   []string{"prompt"},
		},
	}
}
