package caption

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "long subheader",
			text:  "This is a long subheader that needs wrapping across multiple lines",
			width: 30,
			want:  []string{"This is a long subheader that", "needs wrapping across multiple", "lines"},
		},
		{
			name:  "short",
			text:  "short",
			width: 30,
			want:  []string{"short"},
		},
		{
			name:  "empty",
			text:  "",
			width: 30,
			want:  nil,
		},
		{
			name:  "whitespace only",
			text:  " \t\n ",
			width: 30,
			want:  nil,
		},
		{
			name:  "collapses whitespace",
			text:  "  one   two\nthree  ",
			width: 30,
			want:  []string{"one two three"},
		},
		{
			name:  "long word stays whole",
			text:  "a incomprehensibilities b",
			width: 10,
			want:  []string{"a", "incomprehensibilities", "b"},
		},
		{
			name:  "exact fit",
			text:  "abcd efgh",
			width: 9,
			want:  []string{"abcd efgh"},
		},
		{
			name:  "single word at wrap width",
			text:  strings.Repeat("a", 30),
			width: 30,
			want:  []string{strings.Repeat("a", 30)},
		},
		{
			name:  "single word one past wrap width",
			text:  strings.Repeat("a", 31) + " b",
			width: 30,
			want:  []string{strings.Repeat("a", 31), "b"},
		},
		{
			name:  "counts runes not bytes",
			text:  "ñññ ééé",
			width: 7,
			want:  []string{"ñññ ééé"},
		},
		{
			name:  "zero width",
			text:  "a b c",
			width: 0,
			want:  []string{"a b c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapLineWidths(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and keeps on running far beyond the hill"
	for _, line := range Wrap(text, DefaultWrapWidth) {
		if n := utf8.RuneCountInString(line); n > DefaultWrapWidth {
			t.Errorf("line %q has %d chars, want <= %d", line, n, DefaultWrapWidth)
		}
	}
}
