// Package imaging provides the image side of cursor recoloring.
//
// This package loads images into a uniform non-premultiplied RGBA form,
// recolors them through a palette.Mapping, writes them back as PNG, and offers
// the small inspection helpers (info, color sampling, previews) used by the
// MCP server.
//
// # Pixel Model
//
// Every image is handled as *image.NRGBA with 8-bit channels and its origin at
// (0,0). Alpha is load-bearing:
//   - 0: fully transparent, passed through byte for byte
//   - 1-254: translucent, matched as black so anti-aliased edges do not
//     inherit noisy source colors; alpha itself is kept
//   - 255: opaque, recolored normally
//
// Using NRGBA rather than premultiplied RGBA is what makes the passthrough
// exact: the color stored under a transparent pixel is not lost to
// premultiplication.
//
// # Thread Safety
//
// Load, SavePNG and Recolor are stateless and can be called concurrently on
// different images. Recolor never modifies its input. The ImageCache type is
// safe for concurrent use.
//
// # Error Handling
//
// File and codec failures are returned as *ImageError, which names the failed
// operation and path. They are per-image errors: callers processing a batch
// record them and continue.
package imaging
