package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/billmal071/olsearch/internal/config"
	"github.com/billmal071/olsearch/internal/db"
	"github.com/billmal071/olsearch/internal/logging"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "olsearch",
	Short: "Search Open Library from the command line",
	Long: `olsearch is a CLI tool for searching books on Open Library.

It builds a search.json request from the given criteria, caches responses
locally, keeps a search history, and lets you save books for later.

Examples:
  olsearch search "the lord of the rings"        Free-text search
  olsearch search -a tolkien -t hobbit           Search by author and title
  olsearch search -f key,title -n 5 dune         Only return some fields
  olsearch search --json --offset 20 dune        Print the raw response
  olsearch history                               List recent searches
  olsearch saved                                 List saved books`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		l, err := logging.New(config.Get().Log.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l

		if err := db.Init(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		db.Close()
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		Errorf("%v", err)
	}
	return err
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/olsearch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(savedCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// Verbose returns whether verbose mode is enabled
func Verbose() bool {
	return verbose
}

// out is where command output goes; tests redirect it with rootCmd.SetOut
func out() io.Writer {
	return rootCmd.OutOrStdout()
}

// Printf prints if verbose mode is enabled
func Printf(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(out(), format, args...)
	}
}

// Errorf prints an error message to stderr
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// Successf prints a success message
func Successf(format string, args ...interface{}) {
	fmt.Fprintf(out(), "✓ "+format+"\n", args...)
}
