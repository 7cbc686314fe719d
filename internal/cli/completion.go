package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/covercluster/pkg/index"
	"github.com/matzehuels/covercluster/pkg/render"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	type generator func(root *cobra.Command, w io.Writer) error
	generators := map[string]generator{
		"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
		"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
		"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
		"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	}

	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for covercluster and print it to stdout.

  $ source <(covercluster completion bash)
  $ covercluster completion zsh > "${fpath[1]}/_covercluster"
  $ covercluster completion fish > ~/.config/fish/completions/covercluster.fish
  PS> covercluster completion powershell | Out-String | Invoke-Expression

Section, format and encoding flags complete their accepted values.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generators[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// registerValueCompletions adds value completion to the cluster flags of cmd
// that exist on it.
func registerValueCompletions(cmd *cobra.Command) {
	values := map[string][]string{
		"section":  sectionNames(),
		"format":   formatNames(),
		"encoding": index.DefaultEncodings,
	}
	for flag, vals := range values {
		if cmd.Flags().Lookup(flag) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(vals, cobra.ShellCompDirectiveNoFileComp))
	}
}

func sectionNames() []string {
	out := make([]string, len(index.Sections))
	for i, s := range index.Sections {
		out[i] = string(s)
	}
	return out
}

func formatNames() []string {
	out := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		out[i] = string(f)
	}
	return out
}
