// wrap.go - Character-count word wrapping for subheader paragraphs.
package caption

import (
	"strings"
	"unicode/utf8"
)

// DefaultWrapWidth is the subheader line width in characters.
const DefaultWrapWidth = 30

// Wrap breaks text into lines of at most width characters, greedily filling
// each line with whitespace-delimited words. Widths are rune counts, not pixels.
// A word longer than width gets a line of its own and is never split.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	current := words[0]
	currentLen := utf8.RuneCountInString(current)
	for _, word := range words[1:] {
		wordLen := utf8.RuneCountInString(word)
		if currentLen+1+wordLen > width {
			lines = append(lines, current)
			current = word
			currentLen = wordLen
			continue
		}
		current += " " + word
		currentLen += 1 + wordLen
	}
	lines = append(lines, current)

	return lines
}
