package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Load reads an image file and returns it as non-premultiplied RGBA.
//
// Any format with a registered decoder is accepted (PNG, JPEG, GIF, BMP, TIFF,
// WebP). The result always has its origin at (0,0). For decoders that return
// non-premultiplied pixels (PNG, GIF) the color channels of fully transparent
// pixels are kept as the file stores them; premultiplied sources have no color
// under alpha 0 and come back as zero.
//
// Errors are returned as *ImageError.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ImageError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, &ImageError{Op: "decode", Path: path, Err: err}
	}

	return imaging.Clone(img), nil
}

// SavePNG writes img to path as a PNG, creating missing parent directories.
//
// The image is encoded into a temporary file in the destination directory and
// renamed over path once it is complete, so a failed write never leaves a
// truncated image behind. Errors are returned as *ImageError.
func SavePNG(img image.Image, path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ImageError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &ImageError{Op: "write", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = imaging.Encode(tmp, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return &ImageError{Op: "encode", Path: path, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &ImageError{Op: "write", Path: path, Err: fmt.Errorf("flush: %w", err)}
	}
	if err = tmp.Close(); err != nil {
		return &ImageError{Op: "write", Path: path, Err: fmt.Errorf("close: %w", err)}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &ImageError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The cache stores images normalized by Load, keyed by their file path. The
// batch dispatcher does not use it since every job reads a distinct file once;
// the MCP server does, because a client typically inspects the same source
// image several times (load, sample, preview) before recoloring it.
//
// ImageCache is safe for concurrent use by multiple goroutines. Cached images
// must be treated as read-only.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*image.NRGBA
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*image.NRGBA),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// The image is cached using the exact path string provided. Different paths to the
// same file (e.g., relative vs absolute) will result in separate cache entries.
func (c *ImageCache) Load(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes a specific image from the cache by its path.
//
// The server evicts a path after writing a recolored image to it so a later
// load sees the new file.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that recognized the file: "png", "jpeg", "gif",
	// "bmp", "tiff" or "webp". Detection is based on file contents.
	Format string `json:"format"`

	// HasAlpha indicates whether the file's color model carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// Opaque is true when every pixel has alpha 255.
	Opaque bool `json:"opaque"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and returns metadata about it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ImageError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &ImageError{Op: "decode", Path: path, Err: err}
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		HasAlpha:      modelHasAlpha(cfg.ColorModel),
		Opaque:        img.Opaque(),
		FileSizeBytes: stat.Size(),
	}, nil
}

// modelHasAlpha reports whether a decoder's color model can carry transparency.
func modelHasAlpha(m color.Model) bool {
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}

	switch m {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	return false
}
