package palette

import (
	"fmt"
	"math"
)

// Epsilon is added to every anchor distance before inversion so a pixel that
// lands exactly on an anchor gets a finite, dominant weight.
const Epsilon = 1e-6

// Mapping is the precomputed form of a base/target palette pair.
//
// Anchors holds the base palette in L*a*b* and is the only operand of the
// distance computation. Targets holds the target palette in raw 0-255 RGB and
// is only ever interpolated. Both slices have the same length and are never
// modified after MapPalette returns.
type Mapping struct {
	anchors []Lab
	targets [][3]float64
	base    []Color
	target  []Color
}

// MapPalette builds the Mapping for a base palette and its target palette.
//
// Returns a *PaletteError if either palette is empty or the lengths differ.
func MapPalette(base, target []Color) (*Mapping, error) {
	if len(base) == 0 || len(target) == 0 {
		return nil, &PaletteError{Reason: fmt.Sprintf("empty palette (base %d colors, target %d colors)", len(base), len(target))}
	}
	if len(base) != len(target) {
		return nil, &PaletteError{Reason: fmt.Sprintf("palette length mismatch: base has %d colors, target has %d", len(base), len(target))}
	}

	m := &Mapping{
		anchors: make([]Lab, len(base)),
		targets: make([][3]float64, len(target)),
		base:    append([]Color(nil), base...),
		target:  append([]Color(nil), target...),
	}
	for i, c := range base {
		m.anchors[i] = c.Lab()
	}
	for i, c := range target {
		m.targets[i] = [3]float64{float64(c.R), float64(c.G), float64(c.B)}
	}
	return m, nil
}

// MapHexPalettes parses both hex palettes and builds their Mapping.
func MapHexPalettes(base, target []string) (*Mapping, error) {
	b, err := ParsePalette(base)
	if err != nil {
		return nil, fmt.Errorf("base palette: %w", err)
	}
	t, err := ParsePalette(target)
	if err != nil {
		return nil, fmt.Errorf("target palette: %w", err)
	}
	return MapPalette(b, t)
}

// Len returns the number of anchors.
func (m *Mapping) Len() int {
	return len(m.anchors)
}

// Anchor returns the L*a*b* anchor for base color i.
func (m *Mapping) Anchor(i int) Lab {
	return m.anchors[i]
}

// Base returns a copy of the base palette.
func (m *Mapping) Base() []Color {
	return append([]Color(nil), m.base...)
}

// Target returns a copy of the target palette.
func (m *Mapping) Target() []Color {
	return append([]Color(nil), m.target...)
}

// Weights computes the normalized inverse-distance weights of p against every
// anchor:
//
//	w_i = (1/(d_i+Epsilon)) / sum_j(1/(d_j+Epsilon))
//
// The weights are written into dst when it has room for Len() values, so a
// caller looping over pixels can reuse one buffer. The result always sums to 1.
func (m *Mapping) Weights(p Lab, dst []float64) []float64 {
	if cap(dst) < len(m.anchors) {
		dst = make([]float64, len(m.anchors))
	}
	dst = dst[:len(m.anchors)]

	var sum float64
	for i, a := range m.anchors {
		inv := 1 / (p.Distance(a) + Epsilon)
		dst[i] = inv
		sum += inv
	}
	for i := range dst {
		dst[i] /= sum
	}
	return dst
}

// Blend returns the target color for p: the weighted sum of the target
// palette, clipped to [0,255] and rounded to the nearest integer.
func (m *Mapping) Blend(p Lab) Color {
	var buf [16]float64
	return m.blendWith(p, buf[:0])
}

// blendWith is Blend with a caller supplied weight buffer.
func (m *Mapping) blendWith(p Lab, buf []float64) Color {
	w := m.Weights(p, buf)

	var r, g, b float64
	for i, t := range m.targets {
		r += w[i] * t[0]
		g += w[i] * t[1]
		b += w[i] * t[2]
	}
	return Color{R: clip8(r), G: clip8(g), B: clip8(b)}
}

// Blender blends pixels against a Mapping with a reusable weight buffer. It is
// not safe for concurrent use; give each goroutine its own.
type Blender struct {
	m   *Mapping
	buf []float64
}

// NewBlender returns a Blender for m.
func (m *Mapping) NewBlender() *Blender {
	return &Blender{m: m, buf: make([]float64, len(m.anchors))}
}

// BlendRGB converts an 8-bit sRGB color to L*a*b* and blends it.
func (b *Blender) BlendRGB(r, g, bl uint8) Color {
	return b.m.blendWith(LabFromRGB8(r, g, bl), b.buf)
}

func clip8(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}
