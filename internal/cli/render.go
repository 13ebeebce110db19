package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdsync/pkg/pipeline"
	"github.com/matzehuels/erdsync/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file (single format) or base path (multiple); "-" for stdout
	formats  string // comma-separated formats
	detailed bool   // annotate nodes with id and source line
	noCache  bool   // bypass the artifact cache entirely
	refresh  bool   // ignore cached artifacts but store fresh ones
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a diagram to DOT, SVG, PNG, PDF or JSON",
		Long: `Render a diagram document. Positions are pinned, so the drawing matches
the coordinates in the text; unplaced nodes use the spiral layout.

Multiple formats write one file per format next to the input (or next to
--output with the format extension replaced).`,
		Example: `  erdsync render company.erd
  erdsync render company.erd -f dot,png -o out/company
  cat company.erd | erdsync render - -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, dot, png, pdf, json (comma-separated; default from config)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with id and source line")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

// pipelineOptions merges flags over the config file.
func (c *CLI) pipelineOptions(opts renderOpts) (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	names := cfg.Render.Formats
	if opts.formats != "" {
		names = strings.Split(opts.formats, ",")
	}
	formats := make([]render.Format, 0, len(names))
	for _, n := range names {
		f, err := render.ParseFormat(strings.TrimSpace(n))
		if err != nil {
			return pipeline.Options{}, err
		}
		formats = append(formats, f)
	}
	p := pipeline.Options{
		Formats:  formats,
		Layout:   cfg.LayoutConfig(),
		Detailed: opts.detailed || cfg.Render.Detailed,
		Refresh:  opts.refresh,
		Logger:   c.Logger,
	}
	if err := p.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return p, nil
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	popts, err := c.pipelineOptions(opts)
	if err != nil {
		return err
	}
	if opts.output == "-" && len(popts.Formats) != 1 {
		return fmt.Errorf("--output - needs exactly one format, got %d", len(popts.Formats))
	}

	text, err := readDocument(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, "Rendering "+displayName(input))
	if opts.output != "-" {
		spin.Start()
	}
	res, err := runner.Execute(ctx, text, popts)
	if opts.output != "-" {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := c.stdout.Write(res.Artifacts[popts.Formats[0]])
		return err
	}

	paths := outputPaths(input, opts.output, popts.Formats)
	for _, f := range popts.Formats {
		if err := writeArtifact(paths[f], res.Artifacts[f]); err != nil {
			return err
		}
	}

	prog.done(fmt.Sprintf("Rendered %d artifacts", len(popts.Formats)))
	printSuccess("Rendered %s", displayName(input))
	printStats(res.Stats.Stats, res.Stats.Ignored, res.CacheInfo.AllHit())
	for _, f := range popts.Formats {
		printFile(paths[f])
	}
	return nil
}

// outputPaths decides where each format is written. A single format with an
// explicit output uses it verbatim; otherwise the base path (output or input
// without a known extension) gets one extension per format.
func outputPaths(input, output string, formats []render.Format) map[render.Format]string {
	paths := make(map[render.Format]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + f.Ext()
	}
	return paths
}

// basePath strips a format extension from output, or any extension from
// input when output is empty. Stdin renders to "diagram.<ext>".
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "diagram"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(ext); err == nil && ext != "" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func displayName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}
