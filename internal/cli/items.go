package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prodgraph/pkg/catalog"
)

// itemsCommand creates the items command for searching the catalog.
func (c *CLI) itemsCommand() *cobra.Command {
	var (
		lang      string
		craftable bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "items [query]",
		Short: "Search the item catalog",
		Long: `Search the item catalog.

The query is matched fuzzily against item ids and display names in the chosen
language, so "rip" finds "Reinforced Iron Plate" and "eisen" finds the German
iron items. Without a query every item is listed.`,
		Example: `  prodgraph items
  prodgraph items plate --craftable
  prodgraph items eisen -l de`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			if lang == "" {
				cfg, err := c.config()
				if err != nil {
					return err
				}
				lang = cfg.Language
			}
			matches := searchItems(cat, strings.Join(args, " "), lang, craftable, limit)
			if len(matches) == 0 {
				printWarning("No items match %q", strings.Join(args, " "))
				return nil
			}
			fmt.Fprintln(c.Out, itemsTable(matches, cat, lang))
			printDetail("%d of %d items · catalog %s", len(matches), cat.Len(), cat.Version())
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "display language: en, de (default from config)")
	cmd.Flags().BoolVar(&craftable, "craftable", false, "only items with a recipe")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 = all)")

	return cmd
}

// searchItems runs a catalog search and applies the filters.
func searchItems(cat *catalog.Catalog, query, lang string, craftable bool, limit int) []catalog.Match {
	var out []catalog.Match
	for _, m := range cat.Search(query, lang) {
		if craftable {
			if _, ok := cat.Recipe(m.Item.ID); !ok {
				continue
			}
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
