package openlibrary

import "context"

// DefaultResource is the search endpoint under openlibrary.org
const DefaultResource = "search"

// DefaultBaseURL is the public Open Library host
const DefaultBaseURL = "https://openlibrary.org"

// SearchParams holds the optional parameters of a search request.
// Zero values are omitted from the query string.
type SearchParams struct {
	Query  string   `json:"q,omitempty"`
	Title  string   `json:"title,omitempty"`
	Author string   `json:"author,omitempty"`
	Fields []string `json:"fields,omitempty"`
	Sort   string   `json:"sort,omitempty"`
	Lang   string   `json:"lang,omitempty"`
	Limit  int      `json:"limit,omitempty"`
	Page   int      `json:"page,omitempty"`
	// Offset supersedes Page when set
	Offset *int `json:"offset,omitempty"`
}

// Result is the decoded JSON body of a search response, passed through as-is
type Result map[string]any

// Doc is one entry of a search response's docs array
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Authors          []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Languages        []string `json:"language"`
	EditionCount     int      `json:"edition_count"`
}

// Summary is a typed view over the well-known parts of a search response
type Summary struct {
	NumFound int
	Start    int
	Docs     []Doc
}

// Searcher defines the operations used by callers that only need raw search access
type Searcher interface {
	// SearchURL returns the full request URL for the given parameters
	SearchURL(params SearchParams) string

	// SearchRaw performs the request and returns the undecoded body
	SearchRaw(ctx context.Context, params SearchParams) ([]byte, error)
}
