package caption

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg/text/emoji"
)

// coloremoji.ttf is a 64 upem font with three color glyphs:
// 😀 as a 32 ppem CBDT orange square, 🎉 as COLR red square under a blue
// inset (x 16..48, y 16..48 at 64 px) and ❤ as a COLR green block
// (x 8..56, y 8..56 at 64 px).
var testEmojiFont = filepath.Join("testdata", "coloremoji.ttf")

var (
	red    = color.RGBA{255, 0, 0, 255}
	blue   = color.RGBA{0, 0, 255, 255}
	green  = color.RGBA{0, 255, 0, 255}
	orange = color.RGBA{255, 165, 0, 255}
)

func loadTestEmojiFont(t *testing.T) *EmojiFont {
	t.Helper()
	ef, err := LoadEmojiFont(testEmojiFont, 64)
	if err != nil {
		t.Fatalf("LoadEmojiFont: %v", err)
	}
	return ef
}

func near(got, want color.RGBA, tol int) bool {
	d := func(a, b uint8) bool {
		diff := int(a) - int(b)
		return diff <= tol && diff >= -tol
	}
	return d(got.R, want.R) && d(got.G, want.G) && d(got.B, want.B) && d(got.A, want.A)
}

func TestColorFontPreflight(t *testing.T) {
	ef := loadTestEmojiFont(t)
	if err := ef.Preflight(PreflightSet...); err != nil {
		t.Fatalf("Preflight: %v", err)
	}
}

func TestColorFontRender(t *testing.T) {
	ef := loadTestEmojiFont(t)

	tests := []struct {
		name    string
		cluster string
		at      image.Point
		want    color.RGBA
	}{
		{"cbdt bitmap", "😀", image.Pt(32, 32), orange},
		{"colr base layer", "🎉", image.Pt(2, 40), red},
		{"colr top layer", "🎉", image.Pt(32, 32), blue},
		{"colr with vs16", "❤️", image.Pt(32, 32), green},
		{"colr outside layer", "❤️", image.Pt(2, 2), color.RGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ef.Render(tt.cluster)
			if err != nil {
				t.Fatalf("Render(%q): %v", tt.cluster, err)
			}
			if got := img.Bounds().Size(); got != image.Pt(64, 64) {
				t.Errorf("size = %v, want 64x64", got)
			}
			if got := img.RGBAAt(tt.at.X, tt.at.Y); !near(got, tt.want, 2) {
				t.Errorf("pixel %v = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestColorFontJoinsGlyphs(t *testing.T) {
	ef := loadTestEmojiFont(t)

	img, err := ef.Render("😀🎉")
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got != image.Pt(128, 64) {
		t.Fatalf("size = %v, want 128x64", got)
	}
	if got := img.RGBAAt(16, 32); !near(got, orange, 2) {
		t.Errorf("left glyph pixel = %v, want orange", got)
	}
	if got := img.RGBAAt(64+32, 32); !near(got, blue, 2) {
		t.Errorf("right glyph pixel = %v, want blue", got)
	}
}

func TestColorFontMissingGlyph(t *testing.T) {
	ef := loadTestEmojiFont(t)
	if _, err := ef.Render("🚀"); !errors.Is(err, errNoColorGlyph) {
		t.Errorf("err = %v, want errNoColorGlyph", err)
	}
	if err := ef.Preflight("😀", "🚀"); !errors.Is(err, ErrEmojiCapability) {
		t.Errorf("Preflight err = %v, want ErrEmojiCapability", err)
	}
}

func TestRenderCOLRWithoutLayers(t *testing.T) {
	ef := loadTestEmojiFont(t)
	img, err := ef.renderCOLR(&emoji.COLRGlyph{GlyphID: 2})
	if !errors.Is(err, errNoColorGlyph) {
		t.Errorf("err = %v, want errNoColorGlyph", err)
	}
	if img != nil {
		t.Error("image returned for a glyph without layers")
	}
}

func TestDrawGlyphAtEmojiPos(t *testing.T) {
	ef := loadTestEmojiFont(t)

	group := CaptionGroup{HeaderEmoji: "🎉", Header: "Two"}
	plan := DefaultGeometry.Plan(1, group, 60)
	if plan.EmojiPos != image.Pt(80, 330) {
		t.Fatalf("EmojiPos = %v, want (80,330)", plan.EmojiPos)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, 1080, 1350))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(colorBlack), image.Point{}, draw.Src)
	if err := ef.DrawGlyph(canvas, group.HeaderEmoji, plan.EmojiPos); err != nil {
		t.Fatal(err)
	}

	at := plan.EmojiPos
	if got := canvas.RGBAAt(at.X+2, at.Y+40); !near(got, red, 2) {
		t.Errorf("base layer pixel = %v, want red", got)
	}
	if got := canvas.RGBAAt(at.X+32, at.Y+32); !near(got, blue, 2) {
		t.Errorf("top layer pixel = %v, want blue", got)
	}
	for _, p := range []image.Point{{at.X - 1, at.Y}, {at.X, at.Y - 1}, {at.X + 64, at.Y + 32}, {at.X + 32, at.Y + 64}} {
		if got := canvas.RGBAAt(p.X, p.Y); got != colorBlack {
			t.Errorf("pixel %v = %v, drawn outside the glyph box", p, got)
		}
	}
}

func TestLoadFontSetWithColorFont(t *testing.T) {
	fs, err := LoadFontSet(FontConfig{EmojiPath: testEmojiFont}, DefaultGeometry)
	if err != nil {
		t.Fatalf("LoadFontSet: %v", err)
	}
	if ef, ok := fs.Emoji.(*EmojiFont); !ok || ef.Path() != testEmojiFont {
		t.Fatalf("Emoji = %#v, want font from %s", fs.Emoji, testEmojiFont)
	}

	groups := []CaptionGroup{
		{HeaderEmoji: "😀", Header: "One", Subheader: "first caption"},
		{HeaderEmoji: "🎉", Header: "Two", Subheader: "second"},
	}
	r := NewRenderer(fs)
	out, err := r.Render(grayCanvas(), groups)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	plans := r.PlanAll(groups, out.Bounds().Size())
	if got := out.RGBAAt(plans[0].EmojiPos.X+32, plans[0].EmojiPos.Y+32); !near(got, orange, 2) {
		t.Errorf("first emoji pixel = %v, want orange", got)
	}
	if got := out.RGBAAt(plans[1].EmojiPos.X+32, plans[1].EmojiPos.Y+32); !near(got, blue, 2) {
		t.Errorf("second emoji pixel = %v, want blue", got)
	}
}
