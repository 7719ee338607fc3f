// fonts.go - Text font loading with custom TTF/OTF support and an embedded fallback.
// Uses golang.org/x/image/font for OpenType rendering. Defaults to Go Bold when no
// custom font path is configured; a configured path that fails to load is fatal.
package caption

import (
	"errors"
	"fmt"
	"image"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrFontLoad marks any failure to load a font resource. It aborts the whole run.
var ErrFontLoad = errors.New("caption: font load failed")

// FontManager parses one font file and hands out sized faces.
type FontManager struct {
	parsed *opentype.Font
}

// NewFontManager creates a font manager for the font at path.
// An empty path selects the embedded Go Bold font.
func NewFontManager(path string) (*FontManager, error) {
	fontData := gobold.TTF
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrFontLoad, path, err)
		}
		fontData = data
	}

	parsed, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %q: %w", ErrFontLoad, path, err)
	}

	return &FontManager{parsed: parsed}, nil
}

// GetFace returns a font.Face at the specified size.
func (fm *FontManager) GetFace(size float64, dpi float64) (font.Face, error) {
	if dpi <= 0 {
		dpi = 72
	}

	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create face: %w", ErrFontLoad, err)
	}

	return face, nil
}

// TextFace returns a sized face wrapped for measuring and drawing.
func (fm *FontManager) TextFace(size float64) (*TextFace, error) {
	face, err := fm.GetFace(size, 72)
	if err != nil {
		return nil, err
	}
	return NewTextFace(face, size), nil
}

// Metrics reports the ink bounds of text set in a face.
type Metrics interface {
	// Bounds returns the ink box of s relative to its baseline origin.
	Bounds(s string) image.Rectangle
}

// Face is a sized caption font.
type Face interface {
	Metrics
	Size() float64
	FontFace() font.Face
}

// TextFace is a Face backed by an x/image font.Face.
type TextFace struct {
	face font.Face
	size float64
}

// NewTextFace wraps face, which was created at size pixels.
func NewTextFace(face font.Face, size float64) *TextFace {
	return &TextFace{face: face, size: size}
}

// Size returns the nominal pixel size.
func (f *TextFace) Size() float64 { return f.size }

// FontFace returns the underlying face.
func (f *TextFace) FontFace() font.Face { return f.face }

// Bounds returns the ink box of s relative to its baseline origin.
func (f *TextFace) Bounds(s string) image.Rectangle {
	b, _ := font.BoundString(f.face, s)
	return fixedRect(b)
}

// Width returns the ink width of s.
func Width(m Metrics, s string) int {
	return m.Bounds(s).Dx()
}

// Ascent returns the distance in pixels from the top anchor to the baseline.
func Ascent(f Face) int {
	return f.FontFace().Metrics().Ascent.Ceil()
}

func fixedRect(r fixed.Rectangle26_6) image.Rectangle {
	return image.Rect(r.Min.X.Floor(), r.Min.Y.Floor(), r.Max.X.Ceil(), r.Max.Y.Ceil())
}

// FacePair is the header and subheader faces used for one caption variant.
type FacePair struct {
	Header    Face
	Subheader Face
}

// FontSet holds every font a run needs. It is built once and shared read-only.
type FontSet struct {
	FirstHeader    Face
	FirstSubheader Face
	Header         Face
	Subheader      Face
	Emoji          GlyphPainter
	Geometry       Geometry
}

// Faces returns the face pair for a variant.
func (fs *FontSet) Faces(v Variant) FacePair {
	if v == First {
		return FacePair{Header: fs.FirstHeader, Subheader: fs.FirstSubheader}
	}
	return FacePair{Header: fs.Header, Subheader: fs.Subheader}
}

// FontConfig names the font files of a run. Empty text paths fall back to
// FontPath, then to the embedded font. An empty EmojiPath searches the
// well-known system emoji font locations.
type FontConfig struct {
	FontPath           string
	FirstHeaderPath    string
	FirstSubheaderPath string
	HeaderPath         string
	SubheaderPath      string
	EmojiPath          string
}

// LoadFontSet loads all text faces and the emoji font, then runs the emoji
// capability preflight. Any error is fatal to the run.
func LoadFontSet(cfg FontConfig, g Geometry) (*FontSet, error) {
	fs, err := LoadTextFaces(cfg, g)
	if err != nil {
		return nil, err
	}

	emojiPath := cfg.EmojiPath
	if emojiPath == "" {
		emojiPath = FindEmojiFont()
		if emojiPath == "" {
			return nil, fmt.Errorf("%w: no color emoji font found", ErrFontLoad)
		}
	}
	ef, err := LoadEmojiFont(emojiPath, g.EmojiSize)
	if err != nil {
		return nil, err
	}
	if err := ef.Preflight(PreflightSet...); err != nil {
		return nil, err
	}
	fs.Emoji = ef

	return fs, nil
}

// LoadTextFaces loads the four text faces only. The returned set has no
// emoji font; it is enough for measuring and planning.
func LoadTextFaces(cfg FontConfig, g Geometry) (*FontSet, error) {
	managers := make(map[string]*FontManager)
	load := func(path string, size float64) (Face, error) {
		if path == "" {
			path = cfg.FontPath
		}
		fm, ok := managers[path]
		if !ok {
			var err error
			fm, err = NewFontManager(path)
			if err != nil {
				return nil, err
			}
			managers[path] = fm
		}
		return fm.TextFace(size)
	}

	fs := &FontSet{Geometry: g}
	var err error
	if fs.FirstHeader, err = load(cfg.FirstHeaderPath, g.FirstHeaderSize); err != nil {
		return nil, err
	}
	if fs.FirstSubheader, err = load(cfg.FirstSubheaderPath, g.FirstSubheaderSize); err != nil {
		return nil, err
	}
	if fs.Header, err = load(cfg.HeaderPath, g.HeaderSize); err != nil {
		return nil, err
	}
	if fs.Subheader, err = load(cfg.SubheaderPath, g.SubheaderSize); err != nil {
		return nil, err
	}

	return fs, nil
}
