package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/billmal071/olsearch/internal/config"
	"github.com/billmal071/olsearch/internal/db"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the response cache",
	Long: `Successful Open Library responses are cached by request URL for
cache.ttl (default 1h). Run without a subcommand to show statistics.

Examples:
  olsearch cache                 Show statistics
  olsearch cache clear --expired Remove expired responses only
  olsearch cache clear           Remove every cached response
  olsearch cache disable         Always query Open Library`,
	Args: cobra.NoArgs,
	RunE: runCacheStats,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached responses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		expiredOnly, _ := cmd.Flags().GetBool("expired")
		if expiredOnly {
			n, err := db.CleanExpiredCache()
			if err != nil {
				return fmt.Errorf("failed to remove expired responses: %w", err)
			}
			Successf("Removed %d expired %s", n, plural(n, "response", "responses"))
			return nil
		}

		if err := db.ClearSearchCache(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		Successf("Cache cleared")
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().Bool("expired", false, "only remove expired responses")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(newToggleCmd("cache.enabled", "response cache", true))
	cacheCmd.AddCommand(newToggleCmd("cache.enabled", "response cache", false))
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	stats, err := db.GetCacheStats()
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}
	cfg := config.Get()

	newest := "never"
	if !stats.Newest.IsZero() {
		newest = humanize.Time(stats.Newest)
	}

	tw := tabwriter.NewWriter(out(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Status:\t%s\n", enabledStatus(cfg.Cache.Enabled))
	fmt.Fprintf(tw, "TTL:\t%v\n", cfg.Cache.TTL)
	fmt.Fprintf(tw, "Responses:\t%d (%d valid, %d expired)\n", stats.Total, stats.Valid(), stats.Expired)
	fmt.Fprintf(tw, "Size:\t%s\n", humanize.Bytes(uint64(stats.Bytes)))
	fmt.Fprintf(tw, "Last cached:\t%s\n", newest)
	if err := tw.Flush(); err != nil {
		return err
	}

	if stats.Expired > 0 {
		fmt.Fprintln(out(), "\nRun 'olsearch cache clear --expired' to drop expired responses.")
	}
	return nil
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
