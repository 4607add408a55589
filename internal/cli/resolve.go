package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/pipeline"
)

// resolveCommand creates the resolve command for printing a production chain.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		flags  chainFlags
		output string
		keys   bool
		lang   string
	)

	cmd := &cobra.Command{
		Use:   "resolve <item>",
		Short: "Print the production chain of an item",
		Long: `Print the production chain of an item as a tree.

Every node shows the amount of its item that must be produced (or, with --rate,
the rate per minute) and the building that produces it. Extractors are the
leaves. Use --keys to show the settings keys accepted by --miner.

With -o the chain is written as JSON instead.`,
		Example: `  prodgraph resolve iron-plate -n 100
  prodgraph resolve reinforced-iron-plate --rate -n 5 --keys
  prodgraph resolve heavy-modular-frame -o chain.json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeItems,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.language = lang
			return c.runResolve(cmd.Context(), args[0], &flags, output, keys)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the chain as JSON to this file")
	cmd.Flags().BoolVar(&keys, "keys", false, "show settings keys")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "label language: en, de (default from config)")

	return cmd
}

// runResolve resolves the chain and prints or writes it.
func (c *CLI) runResolve(ctx context.Context, item string, flags *chainFlags, output string, keys bool) error {
	logger := loggerFromContext(ctx)

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

	prog := newProgress(logger)
	ch, hit, err := runner.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", item, err)
	}
	prog.done(fmt.Sprintf("Resolved %s", item))

	if output != "" {
		return c.writeChain(ch, output, hit)
	}

	fmt.Fprintln(c.Out, chainTree(ch, opts.Catalog, opts.Language, keys))
	printNewline()
	printStats(len(ch.Nodes), len(ch.Edges), hit)
	for _, t := range ch.Totals() {
		printDetail("%s %s", opts.Catalog.Name(t.ItemID, opts.Language), formatTotal(opts, t))
	}
	return nil
}

func (c *CLI) writeChain(ch *chain.Chain, path string, cached bool) error {
	data, err := chain.Marshal(ch)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Chain resolved")
	printFile(path)
	printStats(len(ch.Nodes), len(ch.Edges), cached)
	return nil
}

// formatTotal formats a raw resource total with its unit.
func formatTotal(opts pipeline.Options, t chain.Total) string {
	s := layout.FormatAmount(opts.Language, t.Amount)
	if opts.Mode == chain.ModeRate {
		s += "/min"
	}
	return fmt.Sprintf("%s (%d extractors)", s, t.Extractors)
}
