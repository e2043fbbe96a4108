package openlibrary

import (
	"net/url"
	"strconv"
	"strings"
)

// ServerDefaultLimit is the page size Open Library uses when limit is omitted
const ServerDefaultLimit = 100

// DefaultSearchParams returns parameters with the default page size and first page
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit: 10,
		Page:  1,
	}
}

// WithOffset returns a copy of p paginated by offset instead of page
func (p SearchParams) WithOffset(offset int) SearchParams {
	p.Offset = &offset
	return p
}

// NextPage returns the parameters for the page following p
func (p SearchParams) NextPage() SearchParams {
	if p.Offset != nil {
		step := p.Limit
		if step <= 0 {
			step = ServerDefaultLimit
		}
		return p.WithOffset(*p.Offset + step)
	}
	if p.Page < 1 {
		p.Page = 1
	}
	p.Page++
	return p
}

// HasCriteria reports whether any search criterion is set
func (p SearchParams) HasCriteria() bool {
	return p.Query != "" || p.Title != "" || p.Author != ""
}

// Values builds the query string for p. Only set parameters are included,
// and exactly one of offset or page is emitted.
func (p SearchParams) Values() url.Values {
	values := url.Values{}

	if p.Query != "" {
		values.Set("q", p.Query)
	}
	if p.Title != "" {
		values.Set("title", p.Title)
	}
	if p.Author != "" {
		values.Set("author", p.Author)
	}
	if len(p.Fields) > 0 {
		values.Set("fields", strings.Join(p.Fields, ","))
	}
	if p.Sort != "" {
		values.Set("sort", p.Sort)
	}
	if p.Lang != "" {
		values.Set("lang", p.Lang)
	}
	if p.Limit != 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}

	if p.Offset != nil {
		values.Set("offset", strconv.Itoa(*p.Offset))
	} else {
		page := p.Page
		if page < 1 {
			page = 1
		}
		values.Set("page", strconv.Itoa(page))
	}

	return values
}

// Describe returns a short human-readable form of the search criteria
func (p SearchParams) Describe() string {
	var parts []string
	if p.Query != "" {
		parts = append(parts, p.Query)
	}
	if p.Title != "" {
		parts = append(parts, "title="+p.Title)
	}
	if p.Author != "" {
		parts = append(parts, "author="+p.Author)
	}
	return strings.Join(parts, ", ")
}
