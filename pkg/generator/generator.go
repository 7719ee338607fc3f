// Package generator writes composited canvases to image files.
//
// All output follows a unified pipeline: resolve an image.Image first (the
// caller's canvas or a solid-color placeholder), then encode it in the format
// named by the output extension.
package generator

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when Config.JPEGQuality is unset. Matches the
// Pillow encoder default so re-encoded posts keep their usual file size.
const DefaultJPEGQuality = 75

// ErrUnsupportedFormat is returned for output extensions with no encoder.
var ErrUnsupportedFormat = errors.New("generator: unsupported output format")

// Config holds parameters for image output.
type Config struct {
	Width       int         // Pixel width of a placeholder (default: 1080)
	Height      int         // Pixel height of a placeholder (default: 1350)
	Color       string      // Placeholder fill, hex "#rrggbb" or "random"
	JPEGQuality int         // 1-100, JPEG only (default: 75)
	Image       image.Image // Pre-rendered image; overrides Width/Height/Color
}

// Generate writes an output file. The format is inferred from the file extension:
// .jpg/.jpeg, .png, .gif, .tif/.tiff or .bmp.
// The parent directory is created when missing.
func Generate(output string, cfg Config) error {
	format, err := imaging.FormatFromFilename(output)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(output))
	}

	img, err := resolveImage(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := encode(f, img, format, cfg); err != nil {
		f.Close()
		os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}
	return nil
}

// GenerateToWriter writes an image to an io.Writer. The format is given by ext (".png", ".jpg", ...).
func GenerateToWriter(w io.Writer, ext string, cfg Config) error {
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	img, err := resolveImage(cfg)
	if err != nil {
		return err
	}
	return encode(w, img, format, cfg)
}

func encode(w io.Writer, img image.Image, format imaging.Format, cfg Config) error {
	quality := cfg.JPEGQuality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(min(quality, 100))); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// resolveImage returns the source image from config, creating a solid-color
// image if none is provided.
func resolveImage(cfg Config) (image.Image, error) {
	if cfg.Image != nil {
		return cfg.Image, nil
	}

	w := cfg.Width
	if w <= 0 {
		w = 1080
	}
	h := cfg.Height
	if h <= 0 {
		h = 1350
	}

	r, g, b, err := ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}

	return NewSolidImage(w, h, toRGBA(r, g, b)), nil
}
