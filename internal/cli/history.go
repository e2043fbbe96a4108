package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/billmal071/olsearch/internal/config"
	"github.com/billmal071/olsearch/internal/db"
	"github.com/billmal071/olsearch/internal/search"
	"github.com/billmal071/olsearch/internal/tui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View and manage search history",
	Long: `Every search is recorded with its parameters and result count, whether
or not it was served from the cache. Run without a subcommand to list
recent distinct searches.

Examples:
  olsearch history                     List recent searches
  olsearch history list -n 50 --all    Include repeated searches
  olsearch history rerun               Pick a past search and run it again
  olsearch history prune 720h          Remove searches older than 30 days
  olsearch history disable             Stop recording searches`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all search history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.ClearSearchHistory(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		Successf("Search history cleared")
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune [age]",
	Short: "Remove searches older than age (e.g. 720h)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		age, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("invalid age %q: %w", args[0], err)
		}
		if age <= 0 {
			return fmt.Errorf("age must be positive, got %s", args[0])
		}
		n, err := db.DeleteSearchHistoryOlderThan(age)
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		Successf("Removed %d %s older than %s", n, plural(n, "search", "searches"), age)
		return nil
	},
}

var historyRerunCmd = &cobra.Command{
	Use:   "rerun",
	Short: "Pick a past search and run it again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := db.GetUniqueSearchHistory(50)
		if err != nil {
			return fmt.Errorf("failed to get search history: %w", err)
		}

		choice, err := tui.RunHistorySelector(history)
		if err != nil {
			return err
		}
		if choice == nil {
			return nil
		}

		noCache, _ := cmd.Flags().GetBool("no-cache")
		return rerunSearch(cmd, choice.History, noCache || choice.Refresh)
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "number of entries to show")
	historyListCmd.Flags().Bool("all", false, "include repeated searches")
	historyRerunCmd.Flags().Bool("no-cache", false, "bypass the local response cache")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyPruneCmd)
	historyCmd.AddCommand(historyRerunCmd)
	historyCmd.AddCommand(newToggleCmd("history.enabled", "search history", true))
	historyCmd.AddCommand(newToggleCmd("history.enabled", "search history", false))
}

// rerunSearch runs a recorded search against the resource it was made on
func rerunSearch(cmd *cobra.Command, h *db.SearchHistory, noCache bool) error {
	fmt.Fprintf(out(), "%s\n  %s\n\n", h.Label(), tui.DescribeHistory(h, time.Now()))

	svc, _ := newSearchService(h.Filters.Resource, config.Get())
	resp, err := svc.Run(cmd.Context(), search.ParamsFromHistory(h), search.Options{NoCache: noCache})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if resp.FromCache {
		Printf("Using cached response\n")
	}

	if len(resp.Summary.Docs) == 0 {
		fmt.Fprintln(out(), "No books found matching your query.")
		return nil
	}
	fmt.Fprintf(out(), "Found %d result(s)\n\n", resp.Summary.NumFound)
	printDocs(out(), resp.Summary.Docs, resp.Summary.Start)
	return nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, all := 20, false
	if cmd.Flags().Lookup("limit") != nil {
		limit, _ = cmd.Flags().GetInt("limit")
		all, _ = cmd.Flags().GetBool("all")
	}

	var (
		history []*db.SearchHistory
		err     error
	)
	if all {
		history, err = db.GetSearchHistory(limit)
	} else {
		history, err = db.GetUniqueSearchHistory(limit)
	}
	if err != nil {
		return fmt.Errorf("failed to get search history: %w", err)
	}

	printHistory(out(), history, config.Get().History.Enabled, time.Now())
	return nil
}

func printHistory(w io.Writer, history []*db.SearchHistory, enabled bool, now time.Time) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No search history.")
		if !enabled {
			fmt.Fprintln(w, "\nRecording is disabled; run 'olsearch history enable' to turn it on.")
		}
		return
	}

	fmt.Fprintf(w, "Recent searches (%d):\n\n", len(history))
	for i, h := range history {
		fmt.Fprintf(w, "  %d. %s\n", i+1, h.Label())
		fmt.Fprintf(w, "     %s\n\n", tui.DescribeHistory(h, now))
	}
}
