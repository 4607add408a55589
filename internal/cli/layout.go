package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// layoutCommand creates the layout command for computing diagram layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  chainFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout <item>",
		Short: "Compute the diagram layout of a production chain",
		Long: `Compute the diagram layout of a production chain.

The layout assigns every node its machine count and position and every edge its
flow rate and belt or pipe tier. The output is a layout.json file (same format
as 'render -f json').

Results are cached; changing --miner, --lang or --direction reuses the cached
chain and only recomputes the layout.`,
		Example: `  prodgraph layout iron-plate -n 100
  prodgraph layout steel-beam --rate -n 30 --miner iron-ore=Mk.2:pure -o steel.json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeItems,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], &flags, output)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <item>.layout.json)")

	return cmd
}

// runLayout resolves the chain, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, item string, flags *chainFlags, output string) error {
	opts, err := c.options(item, flags)
	if err != nil {
		return err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %s...", item))
	spinner.Start()

	ch, chainHit, err := runner.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Resolve failed")
		return fmt.Errorf("resolve %s: %w", item, err)
	}
	spinner.SetMessage(fmt.Sprintf("Laying out %d nodes...", len(ch.Nodes)))
	l, layoutHit, err := runner.LayoutWithCacheInfo(ctx, ch, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = item + ".layout.json"
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(ch.Nodes), len(ch.Edges), chainHit && layoutHit)
	printLayoutSummary(l, opts.Catalog)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s -n %g", appName, item, flags.amount))

	return nil
}
