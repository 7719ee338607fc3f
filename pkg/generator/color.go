// color.go - Color parsing for caption styling and solid placeholder canvases.
package generator

import (
	"crypto/rand"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"
)

// ParseColor parses a color string. Accepts "#rrggbb", "rrggbb", "#rgb",
// "random", or "". Empty string is treated as "random". The short form
// requires the leading '#' so that three-letter words are not read as hex.
func ParseColor(s string) (r, g, b uint8, err error) {
	if s == "" || s == "random" {
		buf := make([]byte, 3)
		if _, err := rand.Read(buf); err != nil {
			return 0, 0, 0, fmt.Errorf("random color: %w", err)
		}
		return buf[0], buf[1], buf[2], nil
	}

	trimmed := strings.TrimSpace(s)
	hex := strings.TrimPrefix(trimmed, "#")
	if len(hex) == 3 && hex != trimmed {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid color %q: expected #rrggbb or #rgb", s)
	}

	var rgb [3]uint8
	for i, name := range []string{"red", "green", "blue"} {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid %s channel in %q: %w", name, s, err)
		}
		rgb[i] = uint8(v)
	}

	return rgb[0], rgb[1], rgb[2], nil
}

// ParseHexRGBA converts a "#rrggbb" string to color.RGBA.
// Returns fallback on any parse error and for the empty string.
func ParseHexRGBA(hex string, fallback color.RGBA) color.RGBA {
	if hex == "" {
		return fallback
	}
	r, g, b, err := ParseColor(hex)
	if err != nil {
		return fallback
	}
	return toRGBA(r, g, b)
}

// toRGBA is a convenience to construct color.RGBA with full alpha.
func toRGBA(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// NewSolidImage creates a uniform solid-color image using draw.Draw (O(1) fill).
func NewSolidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}
