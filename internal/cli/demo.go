package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/olsearch/internal/openlibrary"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an example search and print the response",
	Long: `Search for "the lord of the rings" with one result per page and print
the decoded response. The local cache and history are not used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := openlibrary.NewDefaultClient(openlibrary.DefaultResource, logger)

		params := openlibrary.DefaultSearchParams()
		params.Query = "the lord of the rings"
		params.Limit = 1

		fmt.Fprintln(cmd.OutOrStdout(), "=== Simple Search ===")
		result, err := client.Search(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("demo search failed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}
