// canonical.go - Crop and resample source photos to the fixed portrait canvas.
package caption

import (
	"errors"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage is returned when the source image has no pixels.
var ErrEmptyImage = errors.New("caption: empty source image")

// Canonicalize crops img to the default canvas ratio around its centre and
// resamples it to exactly 1080x1350 with a Lanczos filter.
func Canonicalize(img image.Image) (*image.RGBA, error) {
	return DefaultGeometry.Canonicalize(img)
}

// Canonicalize crops img to the canvas ratio and resamples it to the canvas size.
func (g Geometry) Canonicalize(img image.Image) (*image.RGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	cropped := imaging.Crop(img, g.CropRect(img.Bounds()))
	resized := imaging.Resize(cropped, g.Width, g.Height, imaging.Lanczos)

	canvas := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	draw.Draw(canvas, canvas.Bounds(), resized, resized.Bounds().Min, draw.Src)
	return canvas, nil
}

// CropRect returns the centered region of bounds that matches the canvas ratio.
// Wider sources lose columns, taller sources lose rows; the removed margin is
// split evenly and an odd remainder comes off the trailing edge.
func (g Geometry) CropRect(bounds image.Rectangle) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()

	// w/h > Width/Height, compared without floats.
	if w*g.Height > h*g.Width {
		newW := max(h*g.Width/g.Height, 1)
		left := bounds.Min.X + (w-newW)/2
		return image.Rect(left, bounds.Min.Y, left+newW, bounds.Max.Y)
	}

	newH := max(w*g.Height/g.Width, 1)
	top := bounds.Min.Y + (h-newH)/2
	return image.Rect(bounds.Min.X, top, bounds.Max.X, top+newH)
}
