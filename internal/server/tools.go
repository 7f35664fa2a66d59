package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func paletteSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items": map[string]interface{}{
			"type":    "string",
			"pattern": "^#?[0-9A-Fa-f]{6}$",
		},
		"minItems": 1,
	}
}

func pathSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Inspection
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and whether it has transparency.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_pixel",
			Description: "Inspect one pixel: its stored color and alpha, whether the recolorer treats it as transparent, translucent or opaque, and the color it would be matched as.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema("Absolute path to the image file"),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_sample_pixels",
			Description: "Inspect several labeled pixels at once, e.g. to compare a source cursor with its recolored output.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema("Absolute path to the image file"),
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"path", "points"},
			},
		},

		// Palette Operations
		{
			Name:        "palette_blend",
			Description: "Show what a source color becomes under a palette mapping: the blended target color and the weight of every palette entry.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"base_palette":   paletteSchema("Source palette, hex colors"),
					"target_palette": paletteSchema("Target palette, same length as base_palette"),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Source color as hex (#RRGGBB)",
					},
				},
				"required": []string{"base_palette", "target_palette", "color"},
			},
		},

		// Recolor Operations
		{
			Name:        "recolor_image",
			Description: "Recolor one image from the base palette to the target palette and write it as PNG. Transparent pixels and alpha are preserved.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"img_path":       pathSchema("Absolute path to the source image"),
					"out_path":       pathSchema("Absolute path of the PNG to write; parent directories are created"),
					"base_palette":   paletteSchema("Source palette, hex colors"),
					"target_palette": paletteSchema("Target palette, same length as base_palette"),
				},
				"required": []string{"img_path", "out_path", "base_palette", "target_palette"},
			},
		},
		{
			Name:        "recolor_preview",
			Description: "Recolor an image in memory and return it as base64-encoded PNG without writing any file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"img_path":       pathSchema("Absolute path to the source image"),
					"base_palette":   paletteSchema("Source palette, hex colors"),
					"target_palette": paletteSchema("Target palette, same length as base_palette"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor, nearest-neighbour (e.g., 4.0 to enlarge a cursor). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"img_path", "base_palette", "target_palette"},
			},
		},
		{
			Name:        "recolor_batch",
			Description: "Recolor many images with one palette pair. Failing images are reported and do not stop the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"base_palette":   paletteSchema("Source palette, hex colors"),
					"target_palette": paletteSchema("Target palette, same length as base_palette"),
					"jobs": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"img_path": pathSchema("Source image"),
								"out_path": pathSchema("Destination PNG"),
							},
							"required": []string{"img_path", "out_path"},
						},
						"minItems": 1,
					},
				},
				"required": []string{"base_palette", "target_palette", "jobs"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
