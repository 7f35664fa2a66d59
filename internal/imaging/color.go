package imaging

import (
	"fmt"
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/cursor-recolor/internal/palette"
)

// AlphaClass is how the recolorer treats a pixel, decided by its alpha alone.
type AlphaClass string

const (
	// Transparent pixels (alpha 0) pass through untouched.
	Transparent AlphaClass = "transparent"
	// Translucent pixels (alpha 1-254) are matched as black.
	Translucent AlphaClass = "translucent"
	// Opaque pixels (alpha 255) are matched by their own color.
	Opaque AlphaClass = "opaque"
)

// ClassifyAlpha returns the class of a pixel with alpha a.
func ClassifyAlpha(a uint8) AlphaClass {
	switch a {
	case 0:
		return Transparent
	case 255:
		return Opaque
	}
	return Translucent
}

// HSL is a color in integer degrees and percents.
type HSL struct {
	H int `json:"h"` // 0-360
	S int `json:"s"` // 0-100
	L int `json:"l"` // 0-100
}

// PixelSample describes one pixel as the recolorer sees it.
type PixelSample struct {
	X int `json:"x"`
	Y int `json:"y"`

	// Hex is the stored RGB as "#RRGGBB". Pixels are not premultiplied, so
	// the RGB under a transparent pixel is reported as the file has it.
	Hex   string `json:"hex"`
	Alpha uint8  `json:"alpha"`
	HSL   HSL    `json:"hsl"`

	Class AlphaClass `json:"class"`

	// Match is the color that gets blended against the palette, and Lab its
	// L*a*b* value. Both are absent for transparent pixels.
	Match string       `json:"match,omitempty"`
	Lab   *palette.Lab `json:"lab,omitempty"`
}

// SamplePixel reports the pixel at (x,y).
func SamplePixel(img *image.NRGBA, x, y int) (*PixelSample, error) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %v", x, y, img.Bounds())
	}

	c := img.NRGBAAt(x, y)
	s := &PixelSample{
		X:     x,
		Y:     y,
		Hex:   palette.Color{R: c.R, G: c.G, B: c.B}.Hex(),
		Alpha: c.A,
		HSL:   rgbToHSL(c.R, c.G, c.B),
		Class: ClassifyAlpha(c.A),
	}

	var match palette.Color
	switch s.Class {
	case Transparent:
		return s, nil
	case Opaque:
		match = palette.Color{R: c.R, G: c.G, B: c.B}
	}
	lab := match.Lab()
	s.Match = match.Hex()
	s.Lab = &lab
	return s, nil
}

// LabeledPoint is a pixel coordinate with an optional label.
type LabeledPoint struct {
	X     int
	Y     int
	Label string
}

// LabeledSample is a PixelSample tagged with the label of its point.
type LabeledSample struct {
	Label string `json:"label,omitempty"`
	PixelSample
}

// SamplePixels samples every point in order. Any point outside the image
// fails the whole call.
func SamplePixels(img *image.NRGBA, points []LabeledPoint) ([]LabeledSample, error) {
	samples := make([]LabeledSample, 0, len(points))
	for _, p := range points {
		s, err := SamplePixel(img, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", p.Label, err)
		}
		samples = append(samples, LabeledSample{Label: p.Label, PixelSample: *s})
	}
	return samples, nil
}

func rgbToHSL(r, g, b uint8) HSL {
	h, s, l := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hsl()
	return HSL{H: int(h + 0.5), S: int(s*100 + 0.5), L: int(l*100 + 0.5)}
}
