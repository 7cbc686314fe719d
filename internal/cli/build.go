package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/covercluster/pkg/pipeline"
	"github.com/matzehuels/covercluster/pkg/render"
)

// buildFlags holds the command-line overrides for a build. Only flags the
// user sets replace configured values.
type buildFlags struct {
	index      string
	covers     string
	output     string
	section    string
	encodings  []string
	minSize    int
	maxSize    int
	passes     int
	noTighten  bool
	background string
	format     string
	workers    int
	noCache    bool
	refresh    bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	f := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the cover cluster of an index",
		Long: `Build reads the listening index, loads the cover of every entry in the
selected section, packs the covers and writes the rendered image.

Entries whose cover is missing or unreadable are skipped with a warning.`,
		Example: `  covercluster build
  covercluster build -i index.txt --covers covers -o cluster.jpg
  covercluster build --section artists --min-size 40 --max-size 240 --no-tighten`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, output, err := c.buildOptions(cmd.Flags(), *f)
			if err != nil {
				return err
			}
			return c.runBuild(cmd, opts, output, f.noCache)
		},
	}

	bindBuildFlags(cmd.Flags(), f)
	registerValueCompletions(cmd)

	return cmd
}

// bindBuildFlags registers the build flags on flags.
func bindBuildFlags(flags *pflag.FlagSet, f *buildFlags) {
	flags.StringVarP(&f.index, "index", "i", "", "index file (default from config, index.txt)")
	flags.StringVar(&f.covers, "covers", "", "cover directory (default from config, covers)")
	flags.StringVarP(&f.output, "output", "o", "", "output image (default from config, cluster.png)")
	flags.StringVar(&f.section, "section", "", "index section to render: albums or artists")
	flags.StringSliceVar(&f.encodings, "encoding", nil, "index encodings to try, in order")
	flags.IntVar(&f.minSize, "min-size", 0, "edge length of the least-played cover")
	flags.IntVar(&f.maxSize, "max-size", 0, "edge length of the most-played cover")
	flags.IntVar(&f.passes, "passes", 0, "maximum tightening passes")
	flags.BoolVar(&f.noTighten, "no-tighten", false, "skip the tightening stage")
	flags.StringVar(&f.background, "background", "", "background color (hex)")
	flags.StringVar(&f.format, "format", "", "image format: png or jpg (default from output extension)")
	flags.IntVar(&f.workers, "workers", pipeline.DefaultWorkers, "concurrent cover loads")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable layout and render caching")
	flags.BoolVar(&f.refresh, "refresh", false, "recompute even when a cached result exists")
}

// buildOptions layers the set flags over the configured options and
// returns them with the output path.
func (c *CLI) buildOptions(flags *pflag.FlagSet, f buildFlags) (pipeline.Options, string, error) {
	opts := c.Config.PipelineOptions()
	output := c.Config.Paths.Output
	changed := flags.Changed

	if changed("index") {
		opts.IndexFile = f.index
	}
	if changed("covers") {
		opts.CoversDir = f.covers
	}
	if changed("section") {
		opts.Section = f.section
	}
	if changed("encoding") {
		opts.Encodings = f.encodings
	}
	if changed("min-size") {
		opts.MinSize = f.minSize
	}
	if changed("max-size") {
		opts.MaxSize = f.maxSize
	}
	if changed("passes") {
		opts.TightenPasses = f.passes
		opts.SkipTighten = f.passes == 0
	}
	if f.noTighten {
		opts.SkipTighten = true
	}
	if changed("background") {
		opts.Background = f.background
	}
	opts.Workers = f.workers
	opts.Refresh = f.refresh

	switch {
	case changed("output") && changed("format"):
		output, opts.Format = f.output, f.format
	case changed("output"):
		output = f.output
		format, err := render.FormatFromPath(output)
		if err != nil {
			return opts, "", err
		}
		opts.Format = string(format)
	case changed("format"):
		format, err := render.ParseFormat(f.format)
		if err != nil {
			return opts, "", err
		}
		opts.Format = string(format)
		output = withExt(output, format)
	}

	if output == "" {
		return opts, "", fmt.Errorf("output path is required")
	}
	return opts, output, nil
}

// withExt replaces the extension of path with the one of format.
func withExt(path string, format render.Format) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + string(format)
}

func (c *CLI) runBuild(cmd *cobra.Command, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	out := newPrinter(cmd.OutOrStdout())
	prog := newProgress(logger)
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		if res != nil && len(res.Excluded) > 0 {
			out.warning("%d entries excluded, no cover could be loaded", len(res.Excluded))
		}
		return err
	}
	prog.done("Built cluster")

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(output, res.Artifact, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	out.summary(res.Summary(), res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
	out.file(output)
	return nil
}
