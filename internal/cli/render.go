package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prodgraph/pkg/pipeline"
)

// renderOpts holds the render-only flags.
type renderOpts struct {
	output   string // output file (single format) or base path (multiple)
	formats  string // comma-separated output formats
	viz      string // diagram or nodelink
	style    string // diagram theme
	summary  bool   // append the summary block to diagram SVGs
	detailed bool   // show machine counts and keys in node-link labels
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var flags chainFlags
	ro := renderOpts{viz: pipeline.DefaultViz, style: pipeline.DefaultStyle}

	cmd := &cobra.Command{
		Use:   "render <item>",
		Short: "Render the production chain of an item",
		Long: `Render the production chain of an item.

Two visualizations are available: the tiered diagram (default) with floating
rate labels on every edge, and a Graphviz node-link graph. Output formats are
svg, png, pdf, json (the layout) and dot (Graphviz source). PNG and PDF output
of the diagram needs rsvg-convert on the PATH.`,
		Example: `  prodgraph render iron-plate -n 100
  prodgraph render motor --rate -n 5 -f svg,png --style dark --summary
  prodgraph render computer -t nodelink -f svg -o computer.svg`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeItems,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &flags, &ro)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&ro.viz, "type", "t", ro.viz, "visualization type: diagram, nodelink")
	cmd.Flags().StringVar(&ro.style, "style", ro.style, "diagram theme: light, dark")
	cmd.Flags().BoolVar(&ro.summary, "summary", false, "append the summary block (diagram)")
	cmd.Flags().BoolVar(&ro.detailed, "detailed", false, "show machine counts and keys (nodelink)")

	return cmd
}

// runRender executes the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, item string, flags *chainFlags, ro *renderOpts) error {
	logger := loggerFromContext(ctx)

	opts, err := c.options(item, flags)
	if err != nil {
		return err
	}
	opts.Formats = parseFormats(ro.formats)
	opts.Viz = ro.viz
	opts.Style = ro.style
	opts.Summary = ro.summary
	opts.Detailed = ro.detailed
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", item))
	spinner.Start()
	prog := newProgress(logger)

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(ro.output, item, opts.Formats)
	formats := make([]string, 0, len(result.Artifacts))
	for f := range result.Artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	printSuccess("Rendered %s", opts.Catalog.Name(item, opts.Language))
	for _, f := range formats {
		path := paths[f]
		if err := os.WriteFile(path, result.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("wrote artifact", "format", f, "bytes", len(result.Artifacts[f]))
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	printLayoutSummary(result.Layout, opts.Catalog)
	return nil
}

// outputPaths maps every format to its output file.
//
// With a single format an explicit output is used verbatim. Otherwise the
// output (or the item id) is a base path and each file gets its format's
// extension; a known format extension on the base is stripped first.
func outputPaths(output, item string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, item)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path. An empty output means the item id.
func basePath(output, item string) string {
	if output == "" {
		return item
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
