// renderer.go - Caption compositing engine.
// Canonicalizes the photo, plans every caption group, then draws header,
// wrapped subheader lines and the emoji glyph, in that order, onto one canvas.
package caption

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	colorWhite = color.RGBA{255, 255, 255, 255}
	colorBlack = color.RGBA{0, 0, 0, 255}
)

// ErrNoFonts is returned by a Renderer built without a FontSet.
var ErrNoFonts = errors.New("caption: renderer has no font set")

// Renderer composites caption groups onto photos.
type Renderer struct {
	fonts *FontSet

	Fill   color.Color // text fill, white by default
	Stroke color.Color // outline, black by default
	Logger *slog.Logger
}

// NewRenderer creates a renderer drawing with fonts.
func NewRenderer(fonts *FontSet) *Renderer {
	return &Renderer{
		fonts:  fonts,
		Fill:   colorWhite,
		Stroke: colorBlack,
	}
}

// Fonts returns the font set the renderer draws with.
func (r *Renderer) Fonts() *FontSet { return r.fonts }

func (r *Renderer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Render canonicalizes img and draws every group onto it in order.
// The returned canvas is a fresh image; img is not modified.
func (r *Renderer) Render(img image.Image, groups []CaptionGroup) (*image.RGBA, error) {
	if r.fonts == nil {
		return nil, ErrNoFonts
	}

	canvas, err := r.fonts.Geometry.Canonicalize(img)
	if err != nil {
		return nil, err
	}

	plans := r.PlanAll(groups, canvas.Bounds().Size())
	for i, group := range groups {
		plan := plans[i]
		r.logger().Debug("compositing caption",
			"index", i,
			"variant", plan.Variant,
			"header", plan.HeaderPos,
			"subheader", plan.SubheaderPos,
			"emoji", plan.EmojiPos,
			"lines", len(plan.Lines))

		if err := r.Composite(canvas, group, plan, r.fonts.Faces(plan.Variant)); err != nil {
			return nil, fmt.Errorf("caption %d: %w", i, err)
		}
	}

	return canvas, nil
}

// PlanAll computes the layout of every group on a canvas of the given size
// without drawing anything.
func (r *Renderer) PlanAll(groups []CaptionGroup, canvas image.Point) []LayoutPlan {
	plans := make([]LayoutPlan, len(groups))
	for i, group := range groups {
		plans[i] = Plan(i, group, r.fonts, r.MeasureHeader(i, group), canvas)
	}
	return plans
}

// MeasureHeader returns the ink width of the group's header in the face for idx.
func (r *Renderer) MeasureHeader(idx int, group CaptionGroup) int {
	if r.fonts == nil {
		return 0
	}
	return Width(r.fonts.Faces(VariantFor(idx)).Header, group.Header)
}

// Composite draws one caption group: header, then each subheader line, then the emoji.
func (r *Renderer) Composite(canvas draw.Image, group CaptionGroup, plan LayoutPlan, faces FacePair) error {
	r.drawText(canvas, group.Header, plan.HeaderPos, faces.Header)

	for i, line := range plan.Lines {
		r.drawText(canvas, line, plan.LinePos(i), faces.Subheader)
	}

	if group.HeaderEmoji == "" {
		return nil
	}
	if r.fonts == nil || r.fonts.Emoji == nil {
		return fmt.Errorf("draw emoji %q: %w", group.HeaderEmoji, ErrEmojiCapability)
	}
	return r.fonts.Emoji.DrawGlyph(canvas, group.HeaderEmoji, plan.EmojiPos)
}

// drawText draws s with its ascender line at at.Y, stroked then filled.
func (r *Renderer) drawText(dst draw.Image, s string, at image.Point, face Face) {
	if s == "" || face == nil {
		return
	}

	strokeWidth := DefaultGeometry.StrokeWidth
	if r.fonts != nil {
		strokeWidth = r.fonts.Geometry.StrokeWidth
	}

	// Mask coordinates are relative to the baseline origin.
	bounds := face.Bounds(s).Inset(-strokeWidth)
	if bounds.Empty() {
		return
	}
	mask := image.NewAlpha(bounds)
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face.FontFace(),
		Dot:  fixed.P(0, 0),
	}
	d.DrawString(s)

	origin := image.Pt(at.X, at.Y+Ascent(face))

	if strokeWidth > 0 {
		outline := dilate(mask, strokeWidth)
		draw.DrawMask(dst, outline.Bounds().Add(origin), image.NewUniform(r.Stroke), image.Point{},
			outline, outline.Bounds().Min, draw.Over)
	}
	draw.DrawMask(dst, mask.Bounds().Add(origin), image.NewUniform(r.Fill), image.Point{},
		mask, mask.Bounds().Min, draw.Over)
}

// dilate grows the coverage of src by a disk of the given radius.
func dilate(src *image.Alpha, radius int) *image.Alpha {
	b := src.Bounds()
	dst := image.NewAlpha(b)
	r2 := radius * radius

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := src.Pix[src.PixOffset(x, y)]
			if a == 0 {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if dx*dx+dy*dy > r2 {
						continue
					}
					p := image.Pt(x+dx, y+dy)
					if !p.In(b) {
						continue
					}
					if i := dst.PixOffset(p.X, p.Y); dst.Pix[i] < a {
						dst.Pix[i] = a
					}
				}
			}
		}
	}

	return dst
}
