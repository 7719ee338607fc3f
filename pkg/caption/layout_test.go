package caption

import (
	"image"
	"testing"
	"unicode/utf8"

	"golang.org/x/image/font"
)

// fakeFace measures every rune as a fixed number of pixels.
type fakeFace struct {
	size    float64
	perRune int
}

func (f fakeFace) Bounds(s string) image.Rectangle {
	return image.Rect(0, -int(f.size), f.perRune*utf8.RuneCountInString(s), 0)
}

func (f fakeFace) Size() float64       { return f.size }
func (f fakeFace) FontFace() font.Face { return nil }

func fakeFontSet() *FontSet {
	g := DefaultGeometry
	return &FontSet{
		FirstHeader:    fakeFace{size: g.FirstHeaderSize, perRune: 20},
		FirstSubheader: fakeFace{size: g.FirstSubheaderSize, perRune: 15},
		Header:         fakeFace{size: g.HeaderSize, perRune: 10},
		Subheader:      fakeFace{size: g.SubheaderSize, perRune: 8},
		Geometry:       g,
	}
}

func TestVariantFor(t *testing.T) {
	tests := []struct {
		idx  int
		want Variant
	}{
		{0, First},
		{1, LeftAligned},
		{2, RightAligned},
		{3, LeftAligned},
		{4, RightAligned},
		{7, LeftAligned},
	}
	for _, tt := range tests {
		if got := VariantFor(tt.idx); got != tt.want {
			t.Errorf("VariantFor(%d) = %v, want %v", tt.idx, got, tt.want)
		}
	}
}

func TestBaseY(t *testing.T) {
	g := DefaultGeometry
	want := []int{100, 330, 510, 690, 870}
	for idx, w := range want {
		if got := g.BaseY(idx); got != w {
			t.Errorf("BaseY(%d) = %d, want %d", idx, got, w)
		}
	}
}

func TestPlan(t *testing.T) {
	g := DefaultGeometry
	group := CaptionGroup{HeaderEmoji: "🎉", Header: "Header", Subheader: "This is a long subheader that needs wrapping across multiple lines"}

	tests := []struct {
		name        string
		idx         int
		headerWidth int
		wantVariant Variant
		wantHeader  image.Point
		wantSub     image.Point
		wantEmoji   image.Point
		wantAdvance int
	}{
		{
			name:        "first centered",
			idx:         0,
			headerWidth: 200,
			wantVariant: First,
			wantHeader:  image.Pt(440, 100),
			wantSub:     image.Pt(440, 155),
			wantEmoji:   image.Pt(370, 100),
			wantAdvance: 34,
		},
		{
			name:        "first odd width rounds down",
			idx:         0,
			headerWidth: 201,
			wantVariant: First,
			wantHeader:  image.Pt(439, 100),
			wantSub:     image.Pt(439, 155),
			wantEmoji:   image.Pt(369, 100),
			wantAdvance: 34,
		},
		{
			name:        "left aligned",
			idx:         1,
			headerWidth: 300,
			wantVariant: LeftAligned,
			wantHeader:  image.Pt(150, 330),
			wantSub:     image.Pt(150, 365),
			wantEmoji:   image.Pt(80, 330),
			wantAdvance: 24,
		},
		{
			name:        "right aligned",
			idx:         2,
			headerWidth: 100,
			wantVariant: RightAligned,
			wantHeader:  image.Pt(800, 510),
			wantSub:     image.Pt(800, 545),
			wantEmoji:   image.Pt(730, 510),
			wantAdvance: 24,
		},
		{
			name:        "left aligned ignores width",
			idx:         3,
			headerWidth: 5000,
			wantVariant: LeftAligned,
			wantHeader:  image.Pt(150, 690),
			wantSub:     image.Pt(150, 725),
			wantEmoji:   image.Pt(80, 690),
			wantAdvance: 24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := g.Plan(tt.idx, group, tt.headerWidth)
			if p.Variant != tt.wantVariant {
				t.Errorf("variant = %v, want %v", p.Variant, tt.wantVariant)
			}
			if p.HeaderPos != tt.wantHeader {
				t.Errorf("header = %v, want %v", p.HeaderPos, tt.wantHeader)
			}
			if p.SubheaderPos != tt.wantSub {
				t.Errorf("subheader = %v, want %v", p.SubheaderPos, tt.wantSub)
			}
			if p.EmojiPos != tt.wantEmoji {
				t.Errorf("emoji = %v, want %v", p.EmojiPos, tt.wantEmoji)
			}
			if p.LineAdvance != tt.wantAdvance {
				t.Errorf("line advance = %d, want %d", p.LineAdvance, tt.wantAdvance)
			}
			if len(p.Lines) != 3 {
				t.Fatalf("lines = %q, want 3 lines", p.Lines)
			}
			if got, want := p.LinePos(2), image.Pt(tt.wantSub.X, tt.wantSub.Y+2*tt.wantAdvance); got != want {
				t.Errorf("LinePos(2) = %v, want %v", got, want)
			}
		})
	}
}

func TestPlanEmptySubheader(t *testing.T) {
	p := DefaultGeometry.Plan(1, CaptionGroup{Header: "Only header"}, 50)
	if len(p.Lines) != 0 {
		t.Errorf("lines = %q, want none", p.Lines)
	}
}

func TestPlanUsesCanvasSize(t *testing.T) {
	fonts := fakeFontSet()
	p := Plan(2, CaptionGroup{Header: "x"}, fonts, 100, image.Pt(500, 800))
	if want := image.Pt(500-100-180, 510); p.HeaderPos != want {
		t.Errorf("header = %v, want %v", p.HeaderPos, want)
	}

	p = Plan(0, CaptionGroup{Header: "x"}, nil, 100, image.Pt(500, 800))
	if want := image.Pt(200, 100); p.HeaderPos != want {
		t.Errorf("header with nil fonts = %v, want %v", p.HeaderPos, want)
	}
}

func TestPlanAllMeasuresHeaderPerVariant(t *testing.T) {
	r := NewRenderer(fakeFontSet())
	groups := []CaptionGroup{
		{Header: "Welcome"},   // 7 runes * 20
		{Header: "Thanks"},    // left aligned, width unused
		{Header: "Goodbye!!"}, // 9 runes * 10
	}

	plans := r.PlanAll(groups, DefaultGeometry.Size())
	if len(plans) != 3 {
		t.Fatalf("got %d plans, want 3", len(plans))
	}
	if want := (1080 - 140) / 2; plans[0].HeaderPos.X != want {
		t.Errorf("first x = %d, want %d", plans[0].HeaderPos.X, want)
	}
	if plans[1].HeaderPos != image.Pt(150, 330) {
		t.Errorf("second header = %v, want (150,330)", plans[1].HeaderPos)
	}
	if want := 1080 - 90 - 180; plans[2].HeaderPos.X != want {
		t.Errorf("third x = %d, want %d", plans[2].HeaderPos.X, want)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	r := NewRenderer(fakeFontSet())
	groups := []CaptionGroup{{Header: "A", Subheader: "one two three"}, {Header: "B", Subheader: "four"}}
	a := r.PlanAll(groups, DefaultGeometry.Size())
	b := r.PlanAll(groups, DefaultGeometry.Size())
	for i := range a {
		if a[i].HeaderPos != b[i].HeaderPos || a[i].SubheaderPos != b[i].SubheaderPos || a[i].EmojiPos != b[i].EmojiPos {
			t.Errorf("plan %d differs between calls: %+v vs %+v", i, a[i], b[i])
		}
	}
}
