package cli

import "github.com/spf13/cobra"

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for rsolver.

To load completions:

Bash:
  $ source <(rsolver completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ rsolver completion bash > /etc/bash_completion.d/rsolver
  # macOS:
  $ rsolver completion bash > $(brew --prefix)/etc/bash_completion.d/rsolver

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ rsolver completion zsh > "${fpath[1]}/_rsolver"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ rsolver completion fish | source

  # To load completions for each session, execute once:
  $ rsolver completion fish > ~/.config/fish/completions/rsolver.fish

PowerShell:
  PS> rsolver completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> rsolver completion powershell > rsolver.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(w)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}
