package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/olsearch/internal/config"
	"github.com/billmal071/olsearch/internal/openlibrary"
	"github.com/billmal071/olsearch/internal/search"
	"github.com/billmal071/olsearch/internal/tui"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for books",
	Long: `Search Open Library for books matching the query.

Any combination of free-text query, --title and --author may be given, but
at least one of them is required. By default an interactive selector is
shown; press m in it to fetch the next page.

--offset supersedes --page when both are set.

Examples:
  olsearch search "the lord of the rings"
  olsearch search -t "the hobbit" -a tolkien
  olsearch search -f key,title,author_name -n 5 dune
  olsearch search -s new -l en "machine learning"
  olsearch search --offset 40 --no-interactive tolkien
  olsearch search --json -n 1 "the lord of the rings"`,
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd)
	searchCmd.Flags().Bool("json", false, "print the raw response as JSON")
	searchCmd.Flags().Bool("no-cache", false, "bypass the local response cache")
	searchCmd.Flags().Bool("no-interactive", false, "disable interactive mode, just print results")
	searchCmd.Flags().Bool("save", false, "save the selected book")
	_ = searchCmd.RegisterFlagCompletionFunc("sort", completeSortKeys)
}

// addSearchFlags registers the flags that map onto search parameters
func addSearchFlags(cmd *cobra.Command) {
	defaults := openlibrary.DefaultSearchParams()

	cmd.Flags().StringP("title", "t", "", "search by title")
	cmd.Flags().StringP("author", "a", "", "search by author")
	cmd.Flags().StringSliceP("fields", "f", nil, "fields to return, comma separated ('*' for all, 'availability' for availability data)")
	cmd.Flags().StringP("sort", "s", "", "sort results (new, old, random, rating, ...)")
	cmd.Flags().StringP("lang", "l", "", "two-letter language code (ISO 639-1)")
	cmd.Flags().IntP("limit", "n", defaults.Limit, "number of results per page")
	cmd.Flags().IntP("page", "p", defaults.Page, "page number, starting at 1")
	cmd.Flags().IntP("offset", "o", 0, "result offset, supersedes --page")
	cmd.Flags().String("resource", "", "Open Library resource to query (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	params, err := paramsFromFlags(cmd, args, cfg)
	if err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	noInteractive, _ := cmd.Flags().GetBool("no-interactive")
	save, _ := cmd.Flags().GetBool("save")

	svc, client := newSearchService(getString(cmd, "resource"), cfg)
	opts := search.Options{NoCache: noCache}

	Printf("Searching for: %s\n", params.Describe())
	Printf("Request: %s\n", client.SearchURL(params))

	var resp *search.Response
	run := func() error {
		var err error
		resp, err = svc.Run(cmd.Context(), params, opts)
		return err
	}
	if jsonOut || noInteractive {
		err = run()
	} else {
		err = withSpinner("Searching Open Library", run)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if resp.FromCache {
		Printf("Using cached response\n")
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp.Result)
	}

	docs := resp.Summary.Docs
	if len(docs) == 0 {
		fmt.Fprintln(out(), "No books found matching your query.")
		return nil
	}

	fmt.Fprintf(out(), "Found %d result(s)\n\n", resp.Summary.NumFound)

	if noInteractive {
		printDocs(cmd.OutOrStdout(), docs, resp.Summary.Start)
		return nil
	}

	next := params
	loadMore := func() ([]openlibrary.Doc, error) {
		next = next.NextPage()
		more, err := svc.Run(cmd.Context(), next, opts)
		if err != nil {
			return nil, err
		}
		return more.Summary.Docs, nil
	}

	selected, err := tui.RunSelectorWithLoadMore(docs, loadMore)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}
	if selected == nil {
		return nil
	}

	fmt.Fprintln(out())
	printDocDetail(cmd.OutOrStdout(), selected, cfg.OpenLibrary.BaseURL)

	if save {
		return saveDoc(*selected, "")
	}

	fmt.Fprintf(out(), "\nTo save it, run:\n")
	fmt.Fprintf(out(), "  olsearch saved add %s\n", selected.Key)
	return nil
}

// paramsFromFlags maps the search flags and positional args onto search
// parameters, falling back to configured defaults for unset flags
func paramsFromFlags(cmd *cobra.Command, args []string, cfg *config.Config) (openlibrary.SearchParams, error) {
	flags := cmd.Flags()
	params := openlibrary.DefaultSearchParams()

	params.Query = strings.TrimSpace(strings.Join(args, " "))
	params.Title = strings.TrimSpace(getString(cmd, "title"))
	params.Author = strings.TrimSpace(getString(cmd, "author"))
	params.Sort = getString(cmd, "sort")
	params.Lang = strings.ToLower(getString(cmd, "lang"))

	fields, _ := flags.GetStringSlice("fields")
	params.Fields = cleanFields(fields)

	if cfg != nil {
		if !flags.Changed("fields") {
			params.Fields = cleanFields(cfg.Search.Fields)
		}
		if !flags.Changed("lang") && cfg.Search.Lang != "" {
			params.Lang = strings.ToLower(cfg.Search.Lang)
		}
		if !flags.Changed("limit") && cfg.Search.Limit > 0 {
			params.Limit = cfg.Search.Limit
		}
	}

	if flags.Changed("limit") {
		params.Limit, _ = flags.GetInt("limit")
	}
	if params.Limit < 0 {
		return params, fmt.Errorf("--limit must not be negative")
	}

	params.Page, _ = flags.GetInt("page")
	if params.Page < 1 {
		return params, fmt.Errorf("--page starts at 1")
	}

	if flags.Changed("offset") {
		offset, _ := flags.GetInt("offset")
		if offset < 0 {
			return params, fmt.Errorf("--offset must not be negative")
		}
		params = params.WithOffset(offset)
	}

	if !params.HasCriteria() {
		return params, fmt.Errorf("a query, --title or --author is required")
	}

	return params, nil
}

func cleanFields(fields []string) []string {
	var cleaned []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	return cleaned
}

// newSearchService wires the configured client to the local cache and history
func newSearchService(resource string, cfg *config.Config) (*search.Service, *openlibrary.Client) {
	client := openlibrary.NewDefaultClient(resource, logger)
	svc := search.NewService(client, search.DBStore{}, search.Config{
		CacheEnabled:   cfg.Cache.Enabled,
		CacheTTL:       cfg.Cache.TTL,
		HistoryEnabled: cfg.History.Enabled,
		Resource:       client.Resource(),
	}, logger)
	return svc, client
}

// getString safely gets a string flag value
func getString(cmd *cobra.Command, name string) string {
	val, _ := cmd.Flags().GetString(name)
	return val
}
