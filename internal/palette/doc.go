// Package palette maps a base palette onto a target palette for recoloring.
//
// A palette is an ordered list of hex colors. The base and target palettes
// correspond positionally: base[i] is the anchor color that is recolored to
// target[i]. Colors in between anchors are blended with inverse-distance
// weighting so gradients stay smooth instead of snapping to the nearest entry.
//
// # Color Space
//
// Distances are measured in CIE L*a*b* with the D65 reference white and the
// standard sRGB transfer function, as implemented by go-colorful's Color.Lab.
// The constants are part of the output contract: two runs with the same
// palettes produce byte-identical images.
//
// # Thread Safety
//
// A Mapping is immutable once built by MapPalette and may be shared by any
// number of goroutines.
package palette
