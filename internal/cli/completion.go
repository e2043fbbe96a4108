package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billmal071/olsearch/internal/config"
	"github.com/billmal071/olsearch/internal/db"
	"github.com/billmal071/olsearch/internal/tui"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for olsearch.

To load completions:

Bash:
  $ source <(olsearch completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ olsearch completion bash > /etc/bash_completion.d/olsearch
  # macOS:
  $ olsearch completion bash > /usr/local/etc/bash_completion.d/olsearch

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ olsearch completion zsh > "${fpath[1]}/_olsearch"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ olsearch completion fish | source

  # To load completions for each session, execute once:
  $ olsearch completion fish > ~/.config/fish/completions/olsearch.fish

PowerShell:
  PS> olsearch completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> olsearch completion powershell > olsearch.ps1
  # and source this file from your PowerShell profile.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.ExactValidArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	savedRemoveCmd.ValidArgsFunction = completeSavedBooks
	savedNoteCmd.ValidArgsFunction = completeSavedBooks
}

// completeSavedBooks provides dynamic completion for saved book IDs
func completeSavedBooks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// Completion runs without the root pre-run hook
	if db.DB() == nil {
		if err := config.Init(cfgFile); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		if err := db.Init(); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer db.Close()
	}

	books, err := db.ListSavedBooks()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for _, b := range books {
		// Format: "ID\tTitle (key)"
		completions = append(completions, fmt.Sprintf("%d\t%s (%s)", b.ID, tui.Truncate(b.Title, 40), b.WorkKey))
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

func completeSortKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"new", "old", "random", "rating", "title", "editions"}, cobra.ShellCompDirectiveNoFileComp
}
