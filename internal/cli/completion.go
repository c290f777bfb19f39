package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mfdcache/pkg/config"
	"github.com/matzehuels/mfdcache/pkg/provider"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mfdcache.

Besides commands and flags, the scripts complete module names for
--module and configuration names for --config by reading the
configuration path given on the command line.

Bash:
  $ source <(mfdcache completion bash)

Zsh:
  $ mfdcache completion zsh > "${fpath[1]}/_mfdcache"

Fish:
  $ mfdcache completion fish > ~/.config/fish/completions/mfdcache.fish

PowerShell:
  PS> mfdcache completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// registerNameCompletion wires --module and, when present, --config
// completion to the modules found at the command's path argument.
func (c *CLI) registerNameCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("module", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, m := range c.completionModules(args) {
			names = append(names, m.Name)
		}
		return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
	})
	if cmd.Flags().Lookup("config") == nil {
		return
	}
	_ = cmd.RegisterFlagCompletionFunc("config", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		module, _ := cmd.Flags().GetString("module")
		var names []string
		for _, m := range c.completionModules(args) {
			if module != "" && !strings.EqualFold(m.Name, module) {
				continue
			}
			for _, cfg := range m.Configurations {
				names = append(names, cfg.Name)
			}
		}
		return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// completionModules loads modules quietly; completion never reports errors.
func (c *CLI) completionModules(args []string) []*config.Module {
	if len(args) == 0 {
		return nil
	}
	s, err := c.loadSettings()
	if err != nil {
		return nil
	}
	displays, err := c.loadDisplays(s, args[0])
	if err != nil {
		return nil
	}
	modules, err := provider.New(s, nil, displays, nil, nil).GetModules(args[0], "")
	if err != nil {
		return nil
	}
	return modules
}

// filterPrefix keeps the names starting with prefix, ignoring case.
func filterPrefix(names []string, prefix string) []string {
	out := names[:0:0]
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), strings.ToLower(prefix)) {
			out = append(out, n)
		}
	}
	return out
}
