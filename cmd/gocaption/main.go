// GoCaption - Caption overlays for photo posts.
//
// Usage:
//
//	gocaption run [--posts DIR] [--config FILE] [options]
//	gocaption plan --captions FILE [--image N] [--preview OUT|-]
//	gocaption schema
//	gocaption init [--captions FILE]
package main

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xob0t/GoCaption/pkg/batch"
	"github.com/xob0t/GoCaption/pkg/caption"
	"github.com/xob0t/GoCaption/pkg/config"
	"github.com/xob0t/GoCaption/pkg/generator"
)

// app holds the flag values of one command tree.
type app struct {
	configPath string
	verbose    bool
	flags      config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "gocaption",
		Short:         "Composite emoji, header and subheader captions onto photos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(cmd.ErrOrStderr(), a.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultFile, "Config file (JSON, optional)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log layout details")
	pf.StringVar(&a.flags.FontPath, "font", "", "Text font for all captions (TTF/OTF, default: embedded Go Bold)")
	pf.StringVar(&a.flags.EmojiFontPath, "emoji-font", "", "Color emoji font (default: search system fonts)")

	root.AddCommand(a.newRunCmd(), a.newPlanCmd(), newSchemaCmd(), newInitCmd())
	return root
}

func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func (a *app) newRunCmd() *cobra.Command {
	var orient bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Caption every post directory under the posts root",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("auto-orient") {
				a.flags.AutoOrient = &orient
			}
			return a.runBatch(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&a.flags.PostsDir, "posts", "", "Posts root directory (default: posts)")
	f.IntVar(&a.flags.JPEGQuality, "jpeg-quality", 0, "JPEG output quality 1-100 (default: 75)")
	f.StringVar(&a.flags.FillColor, "fill", "", "Text fill color (default: #ffffff)")
	f.StringVar(&a.flags.StrokeColor, "stroke", "", "Text outline color (default: #000000)")
	f.BoolVar(&orient, "auto-orient", false, "Apply EXIF orientation when decoding photos")
	return cmd
}

func (a *app) runBatch(ctx context.Context) error {
	cfg, err := config.Resolve(a.configPath, a.flags)
	if err != nil {
		return err
	}

	renderer, err := newRenderer(cfg, true)
	if err != nil {
		return err
	}

	runner := batch.New(renderer, batch.Options{
		PostsDir:      cfg.PostsDir,
		CaptionFile:   cfg.CaptionFile,
		OutputDirName: cfg.OutputDirName,
		OutputPrefix:  cfg.OutputPrefix,
		JPEGQuality:   cfg.JPEGQuality,
		AutoOrient:    cfg.Orient(),
	})
	_, err = runner.Run(ctx)
	return err
}

// newRenderer loads fonts once for the whole run. Without withEmoji only the
// text faces are loaded, which is enough for planning.
func newRenderer(cfg config.Config, withEmoji bool) (*caption.Renderer, error) {
	load := caption.LoadTextFaces
	if withEmoji {
		load = caption.LoadFontSet
	}
	fonts, err := load(cfg.Fonts(), caption.DefaultGeometry)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	if ef, ok := fonts.Emoji.(*caption.EmojiFont); ok {
		slog.Debug("emoji font ready", "path", ef.Path(), "size", ef.Size())
	}

	r := caption.NewRenderer(fonts)
	r.Fill = generator.ParseHexRGBA(cfg.FillColor, color.RGBA{255, 255, 255, 255})
	r.Stroke = generator.ParseHexRGBA(cfg.StrokeColor, color.RGBA{0, 0, 0, 255})
	return r, nil
}

// planOptions are the flags of the plan command.
type planOptions struct {
	captionsPath string
	imageIdx     int
	previewPath  string // "-" writes a PNG to stdout
	background   string
}

func (a *app) newPlanCmd() *cobra.Command {
	opts := planOptions{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print computed caption positions without touching any photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlan(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.captionsPath, "captions", "captions.json", "Caption file")
	f.IntVar(&opts.imageIdx, "image", -1, "Only this image entry (default: all)")
	f.StringVar(&opts.previewPath, "preview", "", "Also render the selected entry onto a blank canvas (.png/.jpg, '-' for PNG on stdout)")
	f.StringVar(&opts.background, "background", "#808080", "Preview canvas color: hex or 'random'")
	return cmd
}

// runPlan prints the layout of every selected entry to stdout. When the
// preview goes to stdout the listing moves to stderr.
func (a *app) runPlan(stdout, stderr io.Writer, opts planOptions) error {
	imageIdx, previewPath := opts.imageIdx, opts.previewPath
	w := stdout
	if previewPath == "-" {
		w = stderr
	}

	cf, err := caption.LoadCaptionFile(opts.captionsPath)
	if err != nil {
		return fmt.Errorf("load captions: %w", err)
	}
	if imageIdx >= len(cf.Images) {
		return fmt.Errorf("--image %d out of range: file has %d entries", imageIdx, len(cf.Images))
	}
	for _, warn := range caption.ValidateCaptions(cf, -1) {
		fmt.Fprintf(stderr, "Warning: %s\n", warn)
	}

	cfg, err := config.Resolve(a.configPath, a.flags)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg, previewPath != "")
	if err != nil {
		return err
	}

	canvas := caption.DefaultGeometry.Size()
	for i, groups := range cf.Images {
		if imageIdx >= 0 && i != imageIdx {
			continue
		}
		fmt.Fprintf(w, "images[%d]\n", i)
		for j, plan := range renderer.PlanAll(groups, canvas) {
			fmt.Fprintf(w, "  [%d] %-5s header=%v emoji=%v subheader=%v step=%d\n",
				j, plan.Variant, plan.HeaderPos, plan.EmojiPos, plan.SubheaderPos, plan.LineAdvance)
			for k, line := range plan.Lines {
				fmt.Fprintf(w, "      %v %q\n", plan.LinePos(k), line)
			}
		}
	}

	if previewPath == "" {
		return nil
	}
	idx := max(imageIdx, 0)
	if idx >= len(cf.Images) {
		return fmt.Errorf("no image entries to preview")
	}
	r, g, b, err := generator.ParseColor(opts.background)
	if err != nil {
		return err
	}
	img, err := renderer.Render(generator.NewSolidImage(canvas.X, canvas.Y, color.RGBA{r, g, b, 255}), cf.Images[idx])
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	out := generator.Config{Image: img, JPEGQuality: cfg.JPEGQuality}
	if previewPath == "-" {
		return generator.GenerateToWriter(stdout, ".png", out)
	}
	if err := generator.Generate(previewPath, out); err != nil {
		return err
	}
	fmt.Fprintf(w, "Preview: %s\n", previewPath)
	return nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the captions.json format",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), caption.FormatSchema())
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	var out string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample captions.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(out); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", out)
			}
			if err := os.WriteFile(out, []byte(caption.GetExampleJSON()), 0644); err != nil {
				return fmt.Errorf("write captions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", out)
			fmt.Fprintf(cmd.OutOrStdout(), "Run: gocaption plan --captions %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "captions", "captions.json", "Output path for the sample caption file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
