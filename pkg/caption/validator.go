// validator.go - Lint caption files before compositing.
package caption

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg/text/emoji"
)

// ValidateCaptions checks a caption file for content that will render badly.
// Returns warnings (never fatal errors); imageCount < 0 skips the count check.
func ValidateCaptions(cf *CaptionFile, imageCount int) []string {
	if cf == nil {
		return nil
	}

	var warnings []string
	if imageCount >= 0 && len(cf.Images) != imageCount {
		warnings = append(warnings, fmt.Sprintf("caption file has %d entries for %d images", len(cf.Images), imageCount))
	}

	g := DefaultGeometry
	for i, groups := range cf.Images {
		if len(groups) == 0 {
			warnings = append(warnings, fmt.Sprintf("images[%d]: no caption groups, image is copied without captions", i))
		}
		for j, group := range groups {
			where := fmt.Sprintf("images[%d][%d]", i, j)
			if strings.TrimSpace(group.Header) == "" {
				warnings = append(warnings, where+": empty header")
			}
			if w := emojiWarning(group.HeaderEmoji); w != "" {
				warnings = append(warnings, where+": "+w)
			}
			if y := g.BaseY(j); y >= g.Height {
				warnings = append(warnings, fmt.Sprintf("%s: starts at y=%d, below the %dpx canvas", where, y, g.Height))
			}
		}
	}

	return warnings
}

// emojiWarning describes why s is not exactly one emoji cluster, or returns "".
func emojiWarning(s string) string {
	if s == "" {
		return ""
	}
	seqs := emoji.ParseString(s)
	switch {
	case len(seqs) == 0:
		return fmt.Sprintf("headeremoji %q contains no emoji", s)
	case len(seqs) > 1:
		return fmt.Sprintf("headeremoji %q holds %d emoji, all are drawn side by side", s, len(seqs))
	}
	for _, r := range emoji.Segment(s) {
		if !r.IsEmoji {
			return fmt.Sprintf("headeremoji %q mixes text %q with the emoji", s, r.Text)
		}
	}
	return ""
}

// FormatSchema returns a human-readable description of the caption file format.
func FormatSchema() string {
	var s strings.Builder
	s.WriteString("Caption file: captions.json in each post directory\n\n")
	s.WriteString("  images   array, one entry per image in sorted filename order\n")
	s.WriteString("           each entry is a list of caption groups (a single object is accepted)\n\n")
	s.WriteString("Caption group:\n")
	fmt.Fprintf(&s, "    %-12s %s\n", "headeremoji:", "string - one emoji grapheme cluster, drawn left of the header")
	fmt.Fprintf(&s, "    %-12s %s\n", "header:", "string - single line, centered for the first group")
	fmt.Fprintf(&s, "    %-12s %s\n", "subheader:", fmt.Sprintf("string - wrapped at %d characters", DefaultWrapWidth))
	s.WriteString("\nLayout:\n")
	fmt.Fprintf(&s, "    canvas %dx%d, first group %g/%gpx centered, then alternating left/right at %g/%gpx\n",
		DefaultGeometry.Width, DefaultGeometry.Height,
		DefaultGeometry.FirstHeaderSize, DefaultGeometry.FirstSubheaderSize,
		DefaultGeometry.HeaderSize, DefaultGeometry.SubheaderSize)
	return s.String()
}
