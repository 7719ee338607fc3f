// layout.go - Resolve caption group positions from index and measured header width.
package caption

import "image"

// Plan computes the layout of caption group idx with the default geometry.
// headerWidth is the measured ink width of the unwrapped header in the face
// selected for idx; canvas is the canvas size.
func Plan(idx int, group CaptionGroup, fonts *FontSet, headerWidth int, canvas image.Point) LayoutPlan {
	g := DefaultGeometry
	if fonts != nil {
		g = fonts.Geometry
	}
	g.Width, g.Height = canvas.X, canvas.Y
	return g.Plan(idx, group, headerWidth)
}

// BaseY returns the header anchor row for caption idx.
// Every caption after the first is pushed down by FirstOffset exactly once.
func (g Geometry) BaseY(idx int) int {
	y := g.TopMargin + idx*g.LineSpacing
	if idx > 0 {
		y += g.FirstOffset
	}
	return y
}

// Plan computes the layout of caption group idx.
func (g Geometry) Plan(idx int, group CaptionGroup, headerWidth int) LayoutPlan {
	variant := VariantFor(idx)
	baseY := g.BaseY(idx)

	var x, subY int
	switch variant {
	case First:
		x = (g.Width - headerWidth) / 2
		// Measured from the regular header size, not the larger first one.
		subY = baseY + int(g.HeaderSize) + g.FirstSubheaderGap
	case LeftAligned:
		x = g.EdgePadding
		subY = baseY + int(g.HeaderSize) + g.SubheaderGap
	case RightAligned:
		x = g.Width - headerWidth - g.RightEdgePadding
		subY = baseY + int(g.HeaderSize) + g.SubheaderGap
	}

	_, subSize := g.sizes(variant)
	return LayoutPlan{
		Variant:      variant,
		HeaderPos:    image.Pt(x, baseY),
		SubheaderPos: image.Pt(x, subY),
		EmojiPos:     image.Pt(x-g.EmojiOffset, baseY),
		Lines:        Wrap(group.Subheader, g.WrapWidth),
		LineAdvance:  int(subSize) + g.LineGap,
	}
}

// sizes returns the header and subheader font sizes for a variant.
func (g Geometry) sizes(v Variant) (header, subheader float64) {
	if v == First {
		return g.FirstHeaderSize, g.FirstSubheaderSize
	}
	return g.HeaderSize, g.SubheaderSize
}
