package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/prodgraph/pkg/catalog"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for prodgraph.

Bash:
  $ source <(prodgraph completion bash)

Zsh:
  $ prodgraph completion zsh > "${fpath[1]}/_prodgraph"

Fish:
  $ prodgraph completion fish > ~/.config/fish/completions/prodgraph.fish

PowerShell:
  PS> prodgraph completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(c.Out, true)
			case "zsh":
				return root.GenZshCompletion(c.Out)
			case "fish":
				return root.GenFishCompletion(c.Out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(c.Out)
			}
			return nil
		},
	}
}

// completeItems offers catalog item ids for positional <item> arguments.
func (c *CLI) completeItems(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cat, err := c.catalog()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	for _, m := range cat.Search(toComplete, catalog.DefaultLanguage) {
		ids = append(ids, m.Item.ID)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
