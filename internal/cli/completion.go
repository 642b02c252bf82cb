package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/specdiff/pkg/similarity"
	"github.com/matzehuels/specdiff/pkg/versions"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for specdiff.

Bash:
  $ source <(specdiff completion bash)

Zsh:
  $ specdiff completion zsh > "${fpath[1]}/_specdiff"

Fish:
  $ specdiff completion fish > ~/.config/fish/completions/specdiff.fish

PowerShell:
  PS> specdiff completion powershell | Out-String | Invoke-Expression

Flag values such as --range-policy and --sort complete as well.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

// completeRangePolicy completes --range-policy values.
func completeRangePolicy(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(versions.RangeSorted) + "\tspan between first and last version in sorted order",
		string(versions.RangeExtrema) + "\tspan between smallest and largest projection",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeMetric completes --sort values with the metric names.
func completeMetric(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return similarity.Metrics, cobra.ShellCompDirectiveNoFileComp
}

// completeDirs restricts positional completion to directories.
func completeDirs(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return nil, cobra.ShellCompDirectiveFilterDirs
}
