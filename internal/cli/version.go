package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/olsearch/internal/config"
)

// Commit is set at build time
var Commit = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(out(), "olsearch version %s (%s)\n", config.Version, Commit)
	},
}
