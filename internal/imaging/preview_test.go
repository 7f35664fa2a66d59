package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func TestEncodePreview(t *testing.T) {
	img := createInMemoryImage(8, 6, color.NRGBA{255, 0, 0, 255})

	tests := []struct {
		name          string
		scale         float64
		width, height int
	}{
		{"default scale", 0, 8, 6},
		{"unit scale", 1, 8, 6},
		{"upscale", 4, 32, 24},
		{"downscale", 0.5, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EncodePreview(img, tt.scale)
			if err != nil {
				t.Fatalf("EncodePreview failed: %v", err)
			}
			if result.Width != tt.width || result.Height != tt.height {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.width, tt.height)
			}
			if result.MimeType != "image/png" {
				t.Errorf("MimeType: got %s, want image/png", result.MimeType)
			}

			data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
			if err != nil {
				t.Fatalf("invalid base64: %v", err)
			}
			decoded, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("invalid PNG: %v", err)
			}
			if decoded.Bounds() != image.Rect(0, 0, tt.width, tt.height) {
				t.Errorf("decoded bounds: got %v", decoded.Bounds())
			}
		})
	}
}

func TestEncodePreview_NearestNeighbourKeepsColors(t *testing.T) {
	img := createPatternImage(4, 4)

	result, err := EncodePreview(img, 8)
	if err != nil {
		t.Fatalf("EncodePreview failed: %v", err)
	}
	data, _ := base64.StdEncoding.DecodeString(result.ImageBase64)
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}

	// Every pixel must be one of the four source colors, no blends
	allowed := map[color.NRGBA]bool{
		{255, 0, 0, 255}:     true,
		{0, 255, 0, 255}:     true,
		{0, 0, 255, 255}:     true,
		{255, 255, 255, 255}: true,
	}
	b := decoded.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(decoded.At(x, y)).(color.NRGBA)
			if !allowed[c] {
				t.Fatalf("pixel (%d,%d) has blended color %v", x, y, c)
			}
		}
	}
}

func TestEncodePreview_InvalidScale(t *testing.T) {
	img := createInMemoryImage(4, 4, color.NRGBA{0, 0, 0, 255})

	for _, scale := range []float64{-1, 0.01, math.NaN(), math.Inf(1)} {
		if _, err := EncodePreview(img, scale); err == nil {
			t.Errorf("EncodePreview(scale=%g) should fail", scale)
		}
	}
}

func TestEncodePreview_TooLarge(t *testing.T) {
	img := createInMemoryImage(32, 1, color.NRGBA{0, 0, 0, 255})

	tests := []struct {
		name  string
		scale float64
		ok    bool
	}{
		{"at limit", MaxPreviewSide / 32, true},
		{"just over limit", MaxPreviewSide/32 + 1, false},
		{"huge", 1e6, false},
		{"beyond int range", 1e300, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EncodePreview(img, tt.scale)
			if (err == nil) != tt.ok {
				t.Fatalf("EncodePreview(scale=%g): err = %v, want ok=%v", tt.scale, err, tt.ok)
			}
			if tt.ok && (result.Width != MaxPreviewSide || result.Height != MaxPreviewSide/32) {
				t.Errorf("dimensions: got %dx%d", result.Width, result.Height)
			}
		})
	}
}
