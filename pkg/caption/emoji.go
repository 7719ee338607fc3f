// emoji.go - Color emoji glyph resolution and painting.
// Clusters are shaped with the HarfBuzz shaper from go-text/typesetting so that
// ZWJ, flag, keycap and VS16 sequences resolve to their ligature glyph; the
// glyph image is then pulled from CBDT, sbix or COLR via gogpu/gg text/emoji.
package caption

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"
	"strconv"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/font/opentype/tables"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/gogpu/gg/text/emoji"
	"github.com/patrickmn/go-cache"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// ErrEmojiCapability is returned when the emoji font cannot paint color glyphs.
var ErrEmojiCapability = errors.New("caption: emoji font cannot render color glyphs")

var errNoColorGlyph = errors.New("no color glyph")

// PreflightSet is the known-good emoji checked before any compositing starts.
var PreflightSet = []string{"😀", "🎉", "❤️"}

// DefaultEmojiFontPaths lists well-known color emoji font locations, searched in order.
var DefaultEmojiFontPaths = []string{
	"/usr/share/fonts/truetype/noto/NotoColorEmoji.ttf",
	"/usr/share/fonts/noto/NotoColorEmoji.ttf",
	"/usr/share/fonts/google-noto-emoji/NotoColorEmoji.ttf",
	"/usr/local/share/fonts/NotoColorEmoji.ttf",
	"/System/Library/Fonts/Apple Color Emoji.ttc",
	`C:\Windows\Fonts\seguiemj.ttf`,
}

// FindEmojiFont returns the first existing path of DefaultEmojiFontPaths, or "".
func FindEmojiFont() string {
	for _, p := range DefaultEmojiFontPaths {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// GlyphPainter paints one emoji grapheme cluster with its top-left corner at a point.
type GlyphPainter interface {
	DrawGlyph(dst draw.Image, cluster string, at image.Point) error
}

var (
	tagCBDT = ot.MustNewTag("CBDT")
	tagCBLC = ot.MustNewTag("CBLC")
	tagSbix = ot.MustNewTag("sbix")
	tagCOLR = ot.MustNewTag("COLR")
	tagCPAL = ot.MustNewTag("CPAL")
	tagMaxp = ot.MustNewTag("maxp")
)

// EmojiFont renders color emoji clusters at a fixed pixel size.
// It is safe for concurrent use.
type EmojiFont struct {
	path string
	size float64

	mu     sync.Mutex // guards face and shaper
	face   *gtfont.Face
	shaper shaping.HarfbuzzShaper

	cbdt *emoji.CBDTExtractor
	sbix *emoji.SBIXParser
	colr *emoji.COLRParser

	glyphs *cache.Cache
}

// LoadEmojiFont opens a color emoji font (TTF, OTF or a TTC collection).
// In a collection the first face carrying color tables is used.
// A font without any color table loads fine and fails Preflight.
func LoadEmojiFont(path string, size float64) (*EmojiFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read emoji font %s: %w", ErrFontLoad, path, err)
	}

	loaders, err := ot.NewLoaders(bytes.NewReader(data))
	if err != nil || len(loaders) == 0 {
		return nil, fmt.Errorf("%w: parse emoji font %s: %v", ErrFontLoad, path, err)
	}
	ld := loaders[0]
	for _, l := range loaders {
		if l.HasTable(tagCBDT) || l.HasTable(tagSbix) || l.HasTable(tagCOLR) {
			ld = l
			break
		}
	}

	ft, err := gtfont.NewFont(ld)
	if err != nil {
		return nil, fmt.Errorf("%w: load emoji font %s: %w", ErrFontLoad, path, err)
	}

	ef := &EmojiFont{
		path:   path,
		size:   size,
		face:   gtfont.NewFace(ft),
		glyphs: cache.New(cache.NoExpiration, 0),
	}
	ppem := ef.ppem()
	ef.face.SetPpem(ppem, ppem)

	if cbdt, err := ld.RawTable(tagCBDT); err == nil {
		if cblc, err := ld.RawTable(tagCBLC); err == nil {
			ef.cbdt, _ = emoji.NewCBDTExtractor(cbdt, cblc)
		}
	}
	if sbix, err := ld.RawTable(tagSbix); err == nil {
		if n := numGlyphs(ld); n > 0 {
			ef.sbix, _ = emoji.NewSBIXParser(sbix, n)
		}
	}
	if colr, err := ld.RawTable(tagCOLR); err == nil {
		if cpal, err := ld.RawTable(tagCPAL); err == nil {
			ef.colr, _ = emoji.NewCOLRParser(colr, cpal)
		}
	}

	return ef, nil
}

func numGlyphs(ld *ot.Loader) uint16 {
	maxp, err := ld.RawTable(tagMaxp)
	if err != nil || len(maxp) < 6 {
		return 0
	}
	return binary.BigEndian.Uint16(maxp[4:6])
}

// Path returns the font file the emoji font was loaded from.
func (ef *EmojiFont) Path() string { return ef.path }

// Size returns the rendered emoji height in pixels.
func (ef *EmojiFont) Size() float64 { return ef.size }

func (ef *EmojiFont) ppem() uint16 {
	return uint16(math.Ceil(ef.size))
}

// Preflight renders every cluster and fails with ErrEmojiCapability on the first
// one that yields no visible color glyph.
func (ef *EmojiFont) Preflight(clusters ...string) error {
	for _, c := range clusters {
		img, err := ef.Render(c)
		if err != nil {
			return fmt.Errorf("%w: %s: check %q: %v", ErrEmojiCapability, ef.path, c, err)
		}
		if !hasInk(img) {
			return fmt.Errorf("%w: %s: check %q rendered blank", ErrEmojiCapability, ef.path, c)
		}
	}
	return nil
}

// DrawGlyph paints cluster with its top-left corner at at. An empty cluster is a no-op.
func (ef *EmojiFont) DrawGlyph(dst draw.Image, cluster string, at image.Point) error {
	if cluster == "" {
		return nil
	}
	img, err := ef.Render(cluster)
	if err != nil {
		return fmt.Errorf("draw emoji %q: %w", cluster, err)
	}
	r := image.Rectangle{Min: at, Max: at.Add(img.Bounds().Size())}
	draw.Draw(dst, r, img, img.Bounds().Min, draw.Over)
	return nil
}

// Render returns the color image of cluster scaled to the emoji size.
// Results are cached per cluster and size.
func (ef *EmojiFont) Render(cluster string) (*image.RGBA, error) {
	key := cluster + "@" + strconv.FormatFloat(ef.size, 'f', -1, 64)
	if v, ok := ef.glyphs.Get(key); ok {
		return v.(*image.RGBA), nil
	}

	ef.mu.Lock()
	parts, err := ef.renderLocked(cluster)
	ef.mu.Unlock()
	if err != nil {
		return nil, err
	}

	img := ef.join(parts)
	ef.glyphs.Set(key, img, cache.NoExpiration)
	return img, nil
}

func (ef *EmojiFont) renderLocked(cluster string) ([]image.Image, error) {
	runes := []rune(cluster)
	if len(runes) == 0 {
		return nil, errNoColorGlyph
	}

	out := ef.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      ef.face,
		Size:      fixed.I(int(ef.ppem())),
		Script:    language.Common,
		Language:  language.NewLanguage("en"),
	})

	var parts []image.Image
	for _, g := range out.Glyphs {
		if g.GlyphID == 0 {
			continue
		}
		img, err := ef.glyphImage(uint16(g.GlyphID))
		if err != nil {
			// Zero-advance marks such as a VS16 glyph carry no image.
			if g.XAdvance == 0 {
				continue
			}
			return nil, err
		}
		parts = append(parts, img)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%q: %w", cluster, errNoColorGlyph)
	}
	return parts, nil
}

// glyphImage resolves gid through CBDT, sbix, then COLR.
func (ef *EmojiFont) glyphImage(gid uint16) (image.Image, error) {
	ppem := ef.ppem()

	if ef.cbdt != nil {
		if bg, err := ef.cbdt.GetGlyph(gid, ppem); err == nil {
			return bg.Decode()
		}
	}

	if ef.sbix != nil {
		strike := ef.sbix.BestStrikeForPPEM(ppem)
		bg, err := ef.sbix.GetGlyph(int(gid), strike)
		if err == nil && bg.Format == emoji.FormatDUPE && len(bg.Data) >= 2 {
			bg, err = ef.sbix.GetGlyph(int(binary.BigEndian.Uint16(bg.Data)), strike)
		}
		if err == nil {
			return bg.Decode()
		}
	}

	if ef.colr != nil && ef.colr.HasGlyph(gid) {
		cg, err := ef.colr.GetGlyph(gid, 0)
		if err != nil {
			return nil, err
		}
		return ef.renderCOLR(cg)
	}

	return nil, fmt.Errorf("glyph %d: %w", gid, errNoColorGlyph)
}

// renderCOLR rasterizes each layer outline into an em-square mask and lets
// the emoji package composite the palette colors. A glyph without layers
// has no color image.
func (ef *EmojiFont) renderCOLR(cg *emoji.COLRGlyph) (*image.RGBA, error) {
	px := int(ef.ppem())
	upem := float32(ef.face.Upem())
	scale := float32(px) / upem

	baseline := float32(px)
	if ext, ok := ef.face.FontHExtents(); ok && ext.Ascender-ext.Descender > 0 {
		baseline = float32(px) * ext.Ascender / (ext.Ascender - ext.Descender)
	}

	layer := func(gid uint16) *image.Alpha {
		outline, ok := ef.face.GlyphDataOutline(tables.GlyphID(gid))
		if !ok {
			return nil
		}
		z := vector.NewRasterizer(px, px)
		pt := func(p ot.SegmentPoint) (float32, float32) {
			return p.X * scale, baseline - p.Y*scale
		}
		started := false
		for _, seg := range outline.Segments {
			switch seg.Op {
			case ot.SegmentOpMoveTo:
				if started {
					z.ClosePath()
				}
				z.MoveTo(pt(seg.Args[0]))
				started = true
			case ot.SegmentOpLineTo:
				z.LineTo(pt(seg.Args[0]))
			case ot.SegmentOpQuadTo:
				bx, by := pt(seg.Args[0])
				cx, cy := pt(seg.Args[1])
				z.QuadTo(bx, by, cx, cy)
			case ot.SegmentOpCubeTo:
				bx, by := pt(seg.Args[0])
				cx, cy := pt(seg.Args[1])
				dx, dy := pt(seg.Args[2])
				z.CubeTo(bx, by, cx, cy, dx, dy)
			}
		}
		if started {
			z.ClosePath()
		}
		mask := image.NewAlpha(image.Rect(0, 0, px, px))
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
		return mask
	}

	img := emoji.RenderCOLRToImage(cg, layer, px, px, colorBlack)
	if img == nil {
		return nil, fmt.Errorf("glyph %d: %w", cg.GlyphID, errNoColorGlyph)
	}
	return img, nil
}

// join scales every part to the emoji height and lays them out left to right.
func (ef *EmojiFont) join(parts []image.Image) *image.RGBA {
	h := int(math.Round(ef.size))
	widths := make([]int, len(parts))
	total := 0
	for i, p := range parts {
		b := p.Bounds()
		w := h
		if b.Dy() > 0 {
			w = max(int(math.Round(float64(b.Dx())*float64(h)/float64(b.Dy()))), 1)
		}
		widths[i] = w
		total += w
	}

	dst := image.NewRGBA(image.Rect(0, 0, total, h))
	x := 0
	for i, p := range parts {
		r := image.Rect(x, 0, x+widths[i], h)
		xdraw.CatmullRom.Scale(dst, r, p, p.Bounds(), xdraw.Over, nil)
		x += widths[i]
	}
	return dst
}

func hasInk(img *image.RGBA) bool {
	if img == nil {
		return false
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return true
		}
	}
	return false
}
