package palette

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit RGB color parsed from a hex string.
type Color struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

const hexDigits = "0123456789abcdefABCDEF"

// ParseColor parses a 6 digit hex color. The leading '#' is optional and
// digits are case insensitive, so "FF8040", "#ff8040" and "#FF8040" are equal.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 || strings.Trim(hex, hexDigits) != "" {
		return Color{}, &PaletteError{Reason: fmt.Sprintf("invalid hex color %q: want 6 hex digits", s)}
	}

	c, err := colorful.Hex("#" + strings.ToLower(hex))
	if err != nil {
		return Color{}, &PaletteError{Reason: fmt.Sprintf("invalid hex color %q", s), Err: err}
	}

	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex returns the color as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Lab converts the color to CIE L*a*b*.
func (c Color) Lab() Lab {
	return LabFromRGB8(c.R, c.G, c.B)
}

// ParsePalette parses an ordered list of hex colors. Every entry is checked
// and all invalid indexes are reported together.
func ParsePalette(hexes []string) ([]Color, error) {
	colors := make([]Color, len(hexes))
	var bad []string
	for i, h := range hexes {
		c, err := ParseColor(h)
		if err != nil {
			bad = append(bad, fmt.Sprintf("[%d] %q", i, h))
			continue
		}
		colors[i] = c
	}

	if len(bad) > 0 {
		return nil, &PaletteError{Reason: "invalid palette entries " + strings.Join(bad, ", ")}
	}
	return colors, nil
}

// Lab is a color in CIE L*a*b* (D65), in the conventional units where L runs
// from 0 to 100. go-colorful reports L*a*b* divided by 100; LabFromRGB8 scales
// it back so distances match published CIE76 values.
type Lab struct {
	L float64 `json:"l"` // Lightness, 0-100
	A float64 `json:"a"` // Green-red axis
	B float64 `json:"b"` // Blue-yellow axis
}

// LabFromRGB8 converts 8-bit sRGB components to CIE L*a*b*.
func LabFromRGB8(r, g, b uint8) Lab {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	l, a, bb := c.Lab()
	return Lab{L: l * 100, A: a * 100, B: bb * 100}
}

// Distance returns the Euclidean (CIE76) distance between two Lab colors.
func (p Lab) Distance(q Lab) float64 {
	dl, da, db := p.L-q.L, p.A-q.A, p.B-q.B
	return math.Sqrt(dl*dl + da*da + db*db)
}
