package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/cursor-recolor/internal/batch"
	"github.com/ironsheep/cursor-recolor/internal/imaging"
	"github.com/ironsheep/cursor-recolor/internal/palette"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "recolor_batch").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors, including a panicking tool, return a JSON-RPC error
// response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.guardTool(params.Name, func() (interface{}, error) {
		return s.executeTool(params.Name, params.Arguments)
	})
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// guardTool runs fn and turns a panic into an error so one bad call cannot
// take down the server.
func (s *Server) guardTool(name string, fn func() (interface{}, error)) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool panicked", "tool", name, "panic", r)
			result, err = nil, fmt.Errorf("%s: panic: %v", name, r)
		}
	}()
	return fn()
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Inspection
	case "image_load":
		return s.handleImageLoad(args)
	case "image_sample_pixel":
		return s.handleImageSamplePixel(args)
	case "image_sample_pixels":
		return s.handleImageSamplePixels(args)

	// Palette Operations
	case "palette_blend":
		return s.handlePaletteBlend(args)

	// Recolor Operations
	case "recolor_image":
		return s.handleRecolorImage(args)
	case "recolor_preview":
		return s.handleRecolorPreview(args)
	case "recolor_batch":
		return s.handleRecolorBatch(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Inspection Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageSamplePixelArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSamplePixel(args json.RawMessage) (interface{}, error) {
	var a imageSamplePixelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SamplePixel(img, a.X, a.Y)
}

type imageSamplePixelsArgs struct {
	Path   string `json:"path"`
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label,omitempty"`
	} `json:"points"`
}

// SamplePixelsResult lists samples in the order the points were given.
type SamplePixelsResult struct {
	Samples []imaging.LabeledSample `json:"samples"`
}

func (s *Server) handleImageSamplePixels(args json.RawMessage) (interface{}, error) {
	var a imageSamplePixelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	samples, err := imaging.SamplePixels(img, points)
	if err != nil {
		return nil, err
	}
	return &SamplePixelsResult{Samples: samples}, nil
}

// === Palette Operation Handlers ===

type paletteArgs struct {
	BasePalette   []string `json:"base_palette"`
	TargetPalette []string `json:"target_palette"`
}

func (a paletteArgs) mapping() (*palette.Mapping, error) {
	return palette.MapHexPalettes(a.BasePalette, a.TargetPalette)
}

type paletteBlendArgs struct {
	paletteArgs
	Color string `json:"color"`
}

// PaletteWeight is the share one palette entry contributes to a blend.
type PaletteWeight struct {
	Base   string  `json:"base"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// PaletteBlendResult describes how one source color is recolored.
type PaletteBlendResult struct {
	Color   string          `json:"color"`
	Lab     palette.Lab     `json:"lab"`
	Blended string          `json:"blended"`
	Weights []PaletteWeight `json:"weights"`
}

func (s *Server) handlePaletteBlend(args json.RawMessage) (interface{}, error) {
	var a paletteBlendArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := a.mapping()
	if err != nil {
		return nil, err
	}
	c, err := palette.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}

	lab := c.Lab()
	w := m.Weights(lab, nil)
	base, target := m.Base(), m.Target()
	weights := make([]PaletteWeight, len(w))
	for i := range w {
		weights[i] = PaletteWeight{Base: base[i].Hex(), Target: target[i].Hex(), Weight: w[i]}
	}

	return &PaletteBlendResult{
		Color:   c.Hex(),
		Lab:     lab,
		Blended: m.Blend(lab).Hex(),
		Weights: weights,
	}, nil
}

// === Recolor Operation Handlers ===

type recolorImageArgs struct {
	paletteArgs
	ImgPath string `json:"img_path"`
	OutPath string `json:"out_path"`
}

// RecolorImageResult reports a single written image.
type RecolorImageResult struct {
	OutPath string               `json:"out_path"`
	Stats   imaging.RecolorStats `json:"stats"`
}

func (s *Server) handleRecolorImage(args json.RawMessage) (interface{}, error) {
	var a recolorImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImgPath == "" || a.OutPath == "" {
		return nil, fmt.Errorf("img_path and out_path are required")
	}
	m, err := a.mapping()
	if err != nil {
		return nil, err
	}

	stats, err := batch.Process(batch.Job{ImgPath: a.ImgPath, OutPath: a.OutPath}, m)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(a.OutPath)

	return &RecolorImageResult{OutPath: a.OutPath, Stats: stats}, nil
}

type recolorPreviewArgs struct {
	paletteArgs
	ImgPath string  `json:"img_path"`
	Scale   float64 `json:"scale"`
}

// RecolorPreviewResult is an in-memory recolor encoded for display.
type RecolorPreviewResult struct {
	imaging.PreviewResult
	Stats imaging.RecolorStats `json:"stats"`
}

func (s *Server) handleRecolorPreview(args json.RawMessage) (interface{}, error) {
	var a recolorPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	m, err := a.mapping()
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.ImgPath)
	if err != nil {
		return nil, err
	}

	recolored, stats := imaging.RecolorWithStats(img, m)
	preview, err := imaging.EncodePreview(recolored, a.Scale)
	if err != nil {
		return nil, err
	}
	return &RecolorPreviewResult{PreviewResult: *preview, Stats: stats}, nil
}

type recolorBatchArgs struct {
	paletteArgs
	Jobs []batch.Job `json:"jobs"`
}

// BatchFailure names one job that could not be processed.
type BatchFailure struct {
	ImgPath string `json:"img_path"`
	Error   string `json:"error"`
}

// BatchSummary reports the outcome of recolor_batch.
type BatchSummary struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	ElapsedMS int64          `json:"elapsed_ms"`
	Failures  []BatchFailure `json:"failures,omitempty"`
}

func (s *Server) handleRecolorBatch(args json.RawMessage) (interface{}, error) {
	var a recolorBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	b := &batch.Batch{BasePalette: a.BasePalette, TargetPalette: a.TargetPalette, Jobs: a.Jobs}
	report, err := batch.Run(b, batch.Options{Workers: s.workers, Logger: s.logger})
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		ElapsedMS: report.Elapsed.Milliseconds(),
	}
	for _, o := range report.Outcomes {
		if o.Err != nil {
			summary.Failures = append(summary.Failures, BatchFailure{ImgPath: o.Job.ImgPath, Error: o.Err.Error()})
		} else {
			s.cache.Evict(o.Job.OutPath)
		}
	}
	return summary, nil
}
