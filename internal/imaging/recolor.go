package imaging

import (
	"image"
	"sync/atomic"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/cursor-recolor/internal/palette"
)

// RecolorStats counts the pixels of a recolored image by alpha class.
type RecolorStats struct {
	// Transparent pixels (alpha 0) are copied unchanged.
	Transparent int `json:"transparent"`

	// Translucent pixels (alpha 1-254) are matched as black.
	Translucent int `json:"translucent"`

	// Opaque pixels (alpha 255) are matched by their own color.
	Opaque int `json:"opaque"`

	// DistinctColors is the number of distinct match colors blended. Rows
	// are split across goroutines with separate memos, so a color that
	// appears in several row bands is counted once per band.
	DistinctColors int `json:"distinct_colors"`
}

// Recolor remaps every visible pixel of img through m and returns the result.
//
// See RecolorWithStats for the exact pixel rules.
func Recolor(img image.Image, m *palette.Mapping) *image.NRGBA {
	out, _ := RecolorWithStats(img, m)
	return out
}

// RecolorWithStats remaps every visible pixel of img through m.
//
// # Pixel Rules
//
// Pixels are handled by alpha class:
//   - alpha 0: copied byte for byte, never converted or blended
//   - alpha 1-254: matched as if their color were black (0,0,0), which keeps
//     anti-aliased edges from picking up whatever color the source left under
//     them; the output keeps the original alpha
//   - alpha 255: matched by their own color
//
// Matching converts the color to CIE L*a*b* and blends the target palette
// with inverse-distance weights (palette.Mapping.Blend). The output has the
// same dimensions and the identical alpha channel as img, with its origin at
// (0,0). img itself is never modified.
//
// # Performance
//
// Rows are split into bands processed on separate goroutines. Each band
// memoizes blended colors, which makes sprite sheets with a few hundred
// distinct colors cost little more than a copy.
func RecolorWithStats(img image.Image, m *palette.Mapping) (*image.NRGBA, RecolorStats) {
	dst := imaging.Clone(img)
	width, height := dst.Rect.Dx(), dst.Rect.Dy()

	var transparent, translucent, opaque, distinct atomic.Int64
	parallel.Line(height, func(start, end int) {
		blender := m.NewBlender()
		memo := make(map[uint32]palette.Color)
		var nt, ns, no int

		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
			for i := 0; i < len(row); i += 4 {
				var key uint32
				switch row[i+3] {
				case 0:
					nt++
					continue
				case 255:
					no++
					key = uint32(row[i])<<16 | uint32(row[i+1])<<8 | uint32(row[i+2])
				default:
					ns++
				}

				c, ok := memo[key]
				if !ok {
					c = blender.BlendRGB(uint8(key>>16), uint8(key>>8), uint8(key))
					memo[key] = c
				}
				row[i], row[i+1], row[i+2] = c.R, c.G, c.B
			}
		}

		transparent.Add(int64(nt))
		translucent.Add(int64(ns))
		opaque.Add(int64(no))
		distinct.Add(int64(len(memo)))
	})

	return dst, RecolorStats{
		Transparent:    int(transparent.Load()),
		Translucent:    int(translucent.Load()),
		Opaque:         int(opaque.Load()),
		DistinctColors: int(distinct.Load()),
	}
}
