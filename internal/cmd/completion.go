package cmd

import (
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewCompletionCmd creates the completion command
func NewCompletionCmd(_ *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for appcenter.

To load completions:

Bash:
  $ source <(appcenter completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ appcenter completion bash > /etc/bash_completion.d/appcenter
  # macOS:
  $ appcenter completion bash > $(brew --prefix)/etc/bash_completion.d/appcenter

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ appcenter completion zsh > "${fpath[1]}/_appcenter"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ appcenter completion fish | source

  # To load completions for each session, execute once:
  $ appcenter completion fish > ~/.config/fish/completions/appcenter.fish

PowerShell:
  PS> appcenter completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> appcenter completion powershell > appcenter.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := args[0]

			switch shell {
			case "bash":
				if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
					ui.PrintError("Failed to generate bash completion: %v", err)
					return err
				}
			case "zsh":
				if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
					ui.PrintError("Failed to generate zsh completion: %v", err)
					return err
				}
			case "fish":
				if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
					ui.PrintError("Failed to generate fish completion: %v", err)
					return err
				}
			case "powershell":
				if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
					ui.PrintError("Failed to generate powershell completion: %v", err)
					return err
				}
			}

			log.Info().Str("shell", shell).Msg("generated shell completion")
			return nil
		},
	}

	return cmd
}
