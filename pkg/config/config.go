// Package config loads gocaption run settings from an optional JSON file and
// layers command-line overrides on top of it.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xob0t/GoCaption/pkg/caption"
	"github.com/xob0t/GoCaption/pkg/generator"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "gocaption.json"

// Config holds every setting of a batch run.
type Config struct {
	PostsDir      string `json:"posts_dir"`
	CaptionFile   string `json:"caption_file"`
	OutputDirName string `json:"output_dir_name"`
	OutputPrefix  string `json:"output_prefix"`

	FontPath               string `json:"font_path"`
	FirstHeaderFontPath    string `json:"first_header_font_path"`
	FirstSubheaderFontPath string `json:"first_subheader_font_path"`
	HeaderFontPath         string `json:"header_font_path"`
	SubheaderFontPath      string `json:"subheader_font_path"`
	EmojiFontPath          string `json:"emoji_font_path"`

	FillColor   string `json:"fill_color"`
	StrokeColor string `json:"stroke_color"`
	JPEGQuality int    `json:"jpeg_quality"`
	AutoOrient  *bool  `json:"auto_orient,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	orient := false
	return Config{
		PostsDir:      "posts",
		CaptionFile:   "captions.json",
		OutputDirName: "processed_images",
		OutputPrefix:  "processed_",
		FillColor:     "#ffffff",
		StrokeColor:   "#000000",
		JPEGQuality:   generator.DefaultJPEGQuality,
		AutoOrient:    &orient,
	}
}

// Load reads the JSON config at path. An empty path, a missing file or an
// empty file yields a zero Config; callers merge it onto Default.
func Load(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config: open %q: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return cfg, fmt.Errorf("load config: read %q: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("load config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// Resolve merges defaults, the file at path, then flags, and validates the result.
func Resolve(path string, flags Config) (Config, error) {
	file, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Merge(Merge(Default(), file), flags)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge overlays the non-zero fields of over onto base.
func Merge(base, over Config) Config {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	str(&base.PostsDir, over.PostsDir)
	str(&base.CaptionFile, over.CaptionFile)
	str(&base.OutputDirName, over.OutputDirName)
	str(&base.OutputPrefix, over.OutputPrefix)
	str(&base.FontPath, over.FontPath)
	str(&base.FirstHeaderFontPath, over.FirstHeaderFontPath)
	str(&base.FirstSubheaderFontPath, over.FirstSubheaderFontPath)
	str(&base.HeaderFontPath, over.HeaderFontPath)
	str(&base.SubheaderFontPath, over.SubheaderFontPath)
	str(&base.EmojiFontPath, over.EmojiFontPath)
	str(&base.FillColor, over.FillColor)
	str(&base.StrokeColor, over.StrokeColor)

	if over.JPEGQuality > 0 {
		base.JPEGQuality = over.JPEGQuality
	}
	if over.AutoOrient != nil {
		v := *over.AutoOrient
		base.AutoOrient = &v
	}
	return base
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("load config: jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	for name, v := range map[string]string{"fill_color": c.FillColor, "stroke_color": c.StrokeColor} {
		if v == "random" {
			return fmt.Errorf("load config: %s cannot be random", name)
		}
		if _, _, _, err := generator.ParseColor(v); err != nil {
			return fmt.Errorf("load config: %s: %w", name, err)
		}
	}
	if strings.ContainsAny(c.OutputDirName, `/\`) {
		return fmt.Errorf("load config: output_dir_name %q must be a single path element", c.OutputDirName)
	}
	return nil
}

// Orient reports whether EXIF orientation is applied when decoding photos.
func (c Config) Orient() bool {
	return c.AutoOrient != nil && *c.AutoOrient
}

// Fonts returns the font paths as a caption.FontConfig.
func (c Config) Fonts() caption.FontConfig {
	return caption.FontConfig{
		FontPath:           c.FontPath,
		FirstHeaderPath:    c.FirstHeaderFontPath,
		FirstSubheaderPath: c.FirstSubheaderFontPath,
		HeaderPath:         c.HeaderFontPath,
		SubheaderPath:      c.SubheaderFontPath,
		EmojiPath:          c.EmojiFontPath,
	}
}
