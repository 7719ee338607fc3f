// parser.go - Caption file decoding and sample generation.
package caption

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoImagesKey is returned when a caption file has no "images" array.
var ErrNoImagesKey = errors.New(`caption: missing "images" key`)

// UnmarshalJSON accepts "headeremoji" (any case, so "headerEmoji" too) and
// falls back to "emoji".
func (g *CaptionGroup) UnmarshalJSON(b []byte) error {
	var raw struct {
		HeaderEmoji *string `json:"headeremoji"`
		Emoji       string  `json:"emoji"`
		Header      string  `json:"header"`
		Subheader   string  `json:"subheader"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	g.HeaderEmoji = raw.Emoji
	if raw.HeaderEmoji != nil {
		g.HeaderEmoji = *raw.HeaderEmoji
	}
	g.Header = raw.Header
	g.Subheader = raw.Subheader
	return nil
}

// UnmarshalJSON accepts each images entry as either a list of caption groups
// or a single caption group object.
func (f *CaptionFile) UnmarshalJSON(b []byte) error {
	var raw struct {
		Images json.RawMessage `json:"images"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw.Images) == 0 || bytes.Equal(raw.Images, []byte("null")) {
		return ErrNoImagesKey
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw.Images, &entries); err != nil {
		return fmt.Errorf(`"images" must be an array: %w`, err)
	}

	f.Images = make([][]CaptionGroup, len(entries))
	for i, entry := range entries {
		entry = bytes.TrimSpace(entry)
		switch {
		case len(entry) == 0 || bytes.Equal(entry, []byte("null")):
			f.Images[i] = nil
		case entry[0] == '{':
			var g CaptionGroup
			if err := json.Unmarshal(entry, &g); err != nil {
				return fmt.Errorf("images[%d]: %w", i, err)
			}
			f.Images[i] = []CaptionGroup{g}
		default:
			var groups []CaptionGroup
			if err := json.Unmarshal(entry, &groups); err != nil {
				return fmt.Errorf("images[%d]: %w", i, err)
			}
			f.Images[i] = groups
		}
	}
	return nil
}

// ParseCaptionFile decodes caption JSON. A UTF-8 or UTF-16 byte order mark is honored.
func ParseCaptionFile(data []byte) (*CaptionFile, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decode caption file: %w", err)
	}

	var cf CaptionFile
	if err := json.Unmarshal(decoded, &cf); err != nil {
		return nil, fmt.Errorf("parse caption JSON: %w", err)
	}
	return &cf, nil
}

// LoadCaptionFile reads and decodes the caption file at path.
func LoadCaptionFile(path string) (*CaptionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read caption file: %w", err)
	}
	return ParseCaptionFile(data)
}

// GetExampleJSON returns a sample captions.json for gocaption init.
func GetExampleJSON() string {
	return `{
  "images": [
    [
      {
        "headeremoji": "🎉",
        "header": "Welcome",
        "subheader": "This is a long subheader that needs wrapping across multiple lines"
      },
      {
        "headeremoji": "❤️",
        "header": "Thanks",
        "subheader": "short"
      },
      {
        "headeremoji": "👨‍👩‍👧",
        "header": "Family first",
        "subheader": "Right-aligned captions sit 180 pixels from the right edge"
      }
    ],
    [
      {
        "headeremoji": "😀",
        "header": "Second photo",
        "subheader": "One entry per image, in filename order"
      }
    ]
  ]
}
`
}
