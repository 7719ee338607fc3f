// Package batch walks a posts directory and captions every photo in it.
//
// Each direct subdirectory of the posts root is one unit: a set of photos plus
// a captions.json with one caption-group list per photo. Unit-level problems
// are logged and the run moves on; font and emoji failures stop the run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/xob0t/GoCaption/pkg/caption"
	"github.com/xob0t/GoCaption/pkg/generator"
)

var (
	// ErrCaptionFileMissing means the unit has no caption file. The unit is skipped.
	ErrCaptionFileMissing = errors.New("batch: caption file missing")
	// ErrCaptionFileInvalid means the caption file could not be decoded. The unit is skipped.
	ErrCaptionFileInvalid = errors.New("batch: caption file invalid")
	// ErrCountMismatch means image and caption counts differ. Nothing in the unit is written.
	ErrCountMismatch = errors.New("batch: image and caption counts differ")
	// ErrMissingCaption means an image has no caption entry. Remaining images of the unit are skipped.
	ErrMissingCaption = errors.New("batch: no caption data for image")
)

// imageExts are the photo extensions picked up in a unit, compared case-insensitively.
var imageExts = []string{".jpg", ".jpeg", ".png"}

// IsImageFile reports whether name has a supported photo extension.
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}
	return false
}

// Compositor renders caption groups onto a photo. *caption.Renderer implements it.
type Compositor interface {
	Render(img image.Image, groups []caption.CaptionGroup) (*image.RGBA, error)
}

// Options configures a Runner.
type Options struct {
	PostsDir      string
	CaptionFile   string // file name inside each unit
	OutputDirName string // output directory inside each unit
	OutputPrefix  string // prepended to the source file name
	JPEGQuality   int
	AutoOrient    bool // apply EXIF orientation on decode
	Logger        *slog.Logger
}

// Summary reports the outcome of a run.
type Summary struct {
	Units     int // directories visited
	Processed int // units whose every image was written
	Skipped   int // units skipped before any image was written
	Failed    int // units stopped part way
	Images    int // files written
}

// Runner processes units with a shared Compositor.
type Runner struct {
	comp Compositor
	opts Options
	log  *slog.Logger
}

// New creates a Runner. Empty option fields take the usual defaults.
func New(comp Compositor, opts Options) *Runner {
	if opts.PostsDir == "" {
		opts.PostsDir = "posts"
	}
	if opts.CaptionFile == "" {
		opts.CaptionFile = "captions.json"
	}
	if opts.OutputDirName == "" {
		opts.OutputDirName = "processed_images"
	}
	if opts.OutputPrefix == "" {
		opts.OutputPrefix = "processed_"
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{comp: comp, opts: opts, log: log}
}

// Discover returns the unit directories under root in lexicographic order.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read posts dir: %w", err)
	}

	var units []string
	for _, e := range entries {
		if e.IsDir() {
			units = append(units, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(units)
	return units, nil
}

// ListImages returns the photo file names in dir, sorted lexicographically.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read unit dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Run processes every unit under the posts root. It returns an error only for
// conditions fatal to the whole run: an unreadable posts root, a font or emoji
// failure, or ctx being cancelled.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	units, err := Discover(r.opts.PostsDir)
	if err != nil {
		return sum, err
	}

	for _, dir := range units {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Units++

		name := filepath.Base(dir)
		written, err := r.ProcessUnit(ctx, dir)
		sum.Images += written

		switch {
		case err == nil:
			sum.Processed++
		case isFatal(err):
			r.log.Error("run aborted", "unit", name, "err", err)
			return sum, err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return sum, err
		case errors.Is(err, ErrCaptionFileMissing):
			sum.Skipped++
			r.log.Info("skipping unit: no captions file found", "unit", name)
		case errors.Is(err, ErrCountMismatch), errors.Is(err, ErrCaptionFileInvalid):
			sum.Skipped++
			r.log.Error("skipping unit", "unit", name, "err", err)
		default:
			sum.Failed++
			r.log.Error("unit stopped", "unit", name, "err", err)
		}
	}

	r.log.Info("run complete",
		"units", sum.Units,
		"processed", sum.Processed,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"images", sum.Images)
	return sum, nil
}

func isFatal(err error) bool {
	return errors.Is(err, caption.ErrFontLoad) || errors.Is(err, caption.ErrEmojiCapability)
}

// ProcessUnit captions every photo in dir and returns the number of files written.
// The image count must equal the caption entry count or nothing is written.
func (r *Runner) ProcessUnit(ctx context.Context, dir string) (int, error) {
	name := filepath.Base(dir)

	captionPath := filepath.Join(dir, r.opts.CaptionFile)
	if _, err := os.Stat(captionPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", name, ErrCaptionFileMissing)
		}
		return 0, fmt.Errorf("%s: %w: %w", name, ErrCaptionFileInvalid, err)
	}

	cf, err := caption.LoadCaptionFile(captionPath)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", name, ErrCaptionFileInvalid, err)
	}

	images, err := ListImages(dir)
	if err != nil {
		return 0, err
	}

	r.log.Info("processing unit", "unit", name, "images", len(images), "captions", len(cf.Images))
	if len(images) != len(cf.Images) {
		return 0, fmt.Errorf("%s: %w: %d images, %d captions", name, ErrCountMismatch, len(images), len(cf.Images))
	}
	for _, w := range caption.ValidateCaptions(cf, -1) {
		r.log.Warn("caption warning", "unit", name, "warning", w)
	}

	written := 0
	for i, file := range images {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if i >= len(cf.Images) {
			return written, fmt.Errorf("%s: %w: %s", name, ErrMissingCaption, file)
		}

		out, err := r.processImage(filepath.Join(dir, file), cf.Images[i])
		if err != nil {
			return written, fmt.Errorf("%s: %s: %w", name, file, err)
		}
		written++
		r.log.Info("processed image", "unit", name, "image", file, "output", out)
	}

	return written, nil
}

// processImage decodes, captions and writes one photo, returning the output path.
func (r *Runner) processImage(path string, groups []caption.CaptionGroup) (string, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(r.opts.AutoOrient))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	canvas, err := r.comp.Render(src, groups)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}

	out := filepath.Join(filepath.Dir(path), r.opts.OutputDirName, r.opts.OutputPrefix+filepath.Base(path))
	if err := generator.Generate(out, generator.Config{Image: canvas, JPEGQuality: r.opts.JPEGQuality}); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	return out, nil
}
