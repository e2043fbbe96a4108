package openlibrary

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Summarize extracts the well-known fields of a search response body.
// Bodies that are not a JSON object yield a zero Summary.
func Summarize(raw []byte) Summary {
	if !gjson.ValidBytes(raw) {
		return Summary{}
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Summary{}
	}

	numFound := root.Get("numFound")
	if !numFound.Exists() {
		numFound = root.Get("num_found")
	}

	s := Summary{
		NumFound: int(numFound.Int()),
		Start:    int(root.Get("start").Int()),
	}

	root.Get("docs").ForEach(func(_, doc gjson.Result) bool {
		if !doc.IsObject() {
			return true
		}
		s.Docs = append(s.Docs, Doc{
			Key:              doc.Get("key").String(),
			Title:            doc.Get("title").String(),
			Authors:          stringArray(doc.Get("author_name")),
			FirstPublishYear: int(doc.Get("first_publish_year").Int()),
			Languages:        stringArray(doc.Get("language")),
			EditionCount:     int(doc.Get("edition_count").Int()),
		})
		return true
	})

	return s
}

func stringArray(r gjson.Result) []string {
	if !r.Exists() {
		return nil
	}
	if !r.IsArray() {
		return []string{r.String()}
	}
	var out []string
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}

// AuthorList joins the doc's author names
func (d Doc) AuthorList() string {
	return strings.Join(d.Authors, ", ")
}

// URL returns the page of the doc on the given host
func (d Doc) URL(baseURL string) string {
	if d.Key == "" {
		return ""
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/") + d.Key
}
