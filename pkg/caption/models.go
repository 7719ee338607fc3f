// Package caption composites emoji/header/subheader caption groups onto photos.
//
// A photo is first canonicalized to a fixed 1080x1350 portrait canvas, then every
// caption group is measured, planned and drawn in order onto that canvas.
package caption

import "image"

// ── Caption types ──

// CaptionGroup is one emoji + header + subheader block drawn on an image.
// Order within an image is significant: the first group is drawn larger and centered.
type CaptionGroup struct {
	HeaderEmoji string `json:"headeremoji"`
	Header      string `json:"header"`
	Subheader   string `json:"subheader"`
}

// CaptionFile is the top-level structure of captions.json.
// Images holds one caption-group list per image, matched to the sorted image filenames by position.
type CaptionFile struct {
	Images [][]CaptionGroup `json:"images"`
}

// ── Layout types ──

// Variant is the alignment case a caption group resolves to.
type Variant int

const (
	// First is the centered, larger caption at index 0.
	First Variant = iota
	// LeftAligned is used for odd indices.
	LeftAligned
	// RightAligned is used for even indices above zero.
	RightAligned
)

var variantNames = [...]string{
	First:        "first",
	LeftAligned:  "left",
	RightAligned: "right",
}

func (v Variant) String() string {
	if int(v) >= 0 && int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "unknown"
}

// VariantFor resolves the alignment case for a caption index.
func VariantFor(idx int) Variant {
	switch {
	case idx <= 0:
		return First
	case idx%2 == 1:
		return LeftAligned
	default:
		return RightAligned
	}
}

// LayoutPlan holds the pixel positions computed for one caption group.
// Positions are top-left text anchors (the ascender line), not baselines.
type LayoutPlan struct {
	Variant      Variant
	HeaderPos    image.Point
	SubheaderPos image.Point
	EmojiPos     image.Point
	Lines        []string // wrapped subheader
	LineAdvance  int      // vertical step between subheader lines
}

// LinePos returns the anchor of the i-th wrapped subheader line.
func (p LayoutPlan) LinePos(i int) image.Point {
	return image.Pt(p.SubheaderPos.X, p.SubheaderPos.Y+i*p.LineAdvance)
}

// ── Geometry ──

// Geometry holds every constant the planner and compositor use.
// The engine is fixed-geometry; DefaultGeometry is the only supported layout.
type Geometry struct {
	Width, Height int // canvas size

	TopMargin         int
	LineSpacing       int // vertical stride between caption groups
	FirstOffset       int // added once for every index after the first
	EmojiOffset       int // emoji sits this far left of the header
	EdgePadding       int // x of left-aligned captions
	RightEdgePadding  int // right margin of right-aligned captions
	FirstSubheaderGap int // header-to-subheader gap for the first caption
	SubheaderGap      int // header-to-subheader gap for later captions
	LineGap           int // added to the subheader size between wrapped lines
	WrapWidth         int // characters per subheader line

	FirstHeaderSize    float64
	FirstSubheaderSize float64
	HeaderSize         float64
	SubheaderSize      float64
	EmojiSize          float64

	StrokeWidth int
}

// DefaultGeometry is the portrait post layout.
var DefaultGeometry = Geometry{
	Width:  1080,
	Height: 1350,

	TopMargin:         100,
	LineSpacing:       180,
	FirstOffset:       50,
	EmojiOffset:       70,
	EdgePadding:       150,
	RightEdgePadding:  180,
	FirstSubheaderGap: 30,
	SubheaderGap:      10,
	LineGap:           4,
	WrapWidth:         DefaultWrapWidth,

	FirstHeaderSize:    40,
	FirstSubheaderSize: 30,
	HeaderSize:         25,
	SubheaderSize:      20,
	EmojiSize:          64,

	StrokeWidth: 2,
}

// Size returns the canvas size as a point.
func (g Geometry) Size() image.Point {
	return image.Pt(g.Width, g.Height)
}
