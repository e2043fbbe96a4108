package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/olsearch/internal/config"
	"github.com/billmal071/olsearch/internal/openlibrary"
)

func parseSearchFlags(t *testing.T, cfg *config.Config, argv ...string) (openlibrary.SearchParams, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "search"}
	addSearchFlags(cmd)
	require.NoError(t, cmd.ParseFlags(argv))
	return paramsFromFlags(cmd, cmd.Flags().Args(), cfg)
}

func TestParamsFromFlags(t *testing.T) {
	params, err := parseSearchFlags(t, nil, "-t", "the hobbit", "-a", "tolkien")
	require.NoError(t, err)
	assert.Equal(t, "the hobbit", params.Title)
	assert.Equal(t, "tolkien", params.Author)
	assert.Empty(t, params.Query)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 1, params.Page)
	assert.Nil(t, params.Offset)

	params, err = parseSearchFlags(t, nil, "-s", "new", "-l", "EN", "-n", "5", "the", "lord", "of", "the", "rings")
	require.NoError(t, err)
	assert.Equal(t, "the lord of the rings", params.Query)
	assert.Equal(t, "new", params.Sort)
	assert.Equal(t, "en", params.Lang)
	assert.Equal(t, 5, params.Limit)
}

func TestParamsFromFlags_Fields(t *testing.T) {
	params, err := parseSearchFlags(t, nil, "-f", "key,title", "-f", " author_name ", "dune")
	require.NoError(t, err)
	assert.Equal(t, []string{"key", "title", "author_name"}, params.Fields)
	assert.Equal(t, "key,title,author_name", params.Values().Get("fields"))
}

func TestParamsFromFlags_OffsetSupersedesPage(t *testing.T) {
	params, err := parseSearchFlags(t, nil, "-p", "3", "--offset", "0", "dune")
	require.NoError(t, err)
	require.NotNil(t, params.Offset)
	assert.Equal(t, 0, *params.Offset)

	values := params.Values()
	assert.Equal(t, "0", values.Get("offset"))
	assert.NotContains(t, values, "page")
}

func TestParamsFromFlags_ConfigFallback(t *testing.T) {
	cfg := &config.Config{Search: config.SearchConfig{Limit: 25, Fields: []string{"key", ""}, Lang: "FR"}}

	params, err := parseSearchFlags(t, cfg, "dune")
	require.NoError(t, err)
	assert.Equal(t, 25, params.Limit)
	assert.Equal(t, []string{"key"}, params.Fields)
	assert.Equal(t, "fr", params.Lang)

	params, err = parseSearchFlags(t, cfg, "-n", "3", "-l", "de", "-f", "title", "dune")
	require.NoError(t, err)
	assert.Equal(t, 3, params.Limit)
	assert.Equal(t, []string{"title"}, params.Fields)
	assert.Equal(t, "de", params.Lang)
}

func TestParamsFromFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{"no criteria", []string{"-s", "new"}, "a query, --title or --author is required"},
		{"blank query", []string{"  "}, "a query, --title or --author is required"},
		{"page zero", []string{"--page=0", "dune"}, "--page starts at 1"},
		{"negative limit", []string{"--limit=-1", "dune"}, "--limit must not be negative"},
		{"negative offset", []string{"--offset=-5", "dune"}, "--offset must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSearchFlags(t, nil, tt.argv...)
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestPrintDocs(t *testing.T) {
	docs := []openlibrary.Doc{
		{Key: "/works/OL27448W", Title: "The Lord of the Rings", Authors: []string{"J.R.R. Tolkien"}, FirstPublishYear: 1954, EditionCount: 251},
		{Key: "/works/OL1W"},
	}

	var buf bytes.Buffer
	printDocs(&buf, docs, 10)

	out := buf.String()
	assert.Contains(t, out, "11. The Lord of the Rings")
	assert.Contains(t, out, "Author: J.R.R. Tolkien")
	assert.Contains(t, out, "First published: 1954 | Editions: 251")
	assert.Contains(t, out, "12. (untitled)")
	assert.Contains(t, out, "Key: /works/OL1W")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, openlibrary.Result{"q": "a&b", "numFound": 0}))
	assert.JSONEq(t, `{"q": "a&b", "numFound": 0}`, buf.String())
	assert.Contains(t, buf.String(), "a&b")
}
