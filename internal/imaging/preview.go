package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// MaxPreviewSide bounds the width and height of a scaled preview.
const MaxPreviewSide = 4096

// PreviewResult contains an image encoded for inline display.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePreview encodes img as a base64 PNG, optionally scaled.
//
// Cursors are small pixel art, so scaling uses nearest-neighbour sampling to
// keep hard pixel edges visible. A scale of 0 or 1 leaves the size unchanged.
// A scaled preview larger than MaxPreviewSide on either side is an error.
func EncodePreview(img image.Image, scale float64) (*PreviewResult, error) {
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("invalid preview scale %g", scale)
	}

	out := img
	if scale != 0 && scale != 1.0 {
		fw := float64(img.Bounds().Dx()) * scale
		fh := float64(img.Bounds().Dy()) * scale
		if fw > MaxPreviewSide || fh > MaxPreviewSide {
			return nil, fmt.Errorf("preview scale %g gives %.0fx%.0f, limit is %dx%d", scale, fw, fh, MaxPreviewSide, MaxPreviewSide)
		}
		w, h := int(fw), int(fh)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("preview scale %g leaves no pixels", scale)
		}
		out = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
