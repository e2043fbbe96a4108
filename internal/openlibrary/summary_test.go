package openlibrary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]byte(sampleResponse))

	assert.Equal(t, 2, s.NumFound)
	assert.Equal(t, 0, s.Start)
	require.Len(t, s.Docs, 2)

	first := s.Docs[0]
	assert.Equal(t, "/works/OL27448W", first.Key)
	assert.Equal(t, "The Lord of the Rings", first.Title)
	assert.Equal(t, []string{"J.R.R. Tolkien"}, first.Authors)
	assert.Equal(t, 1954, first.FirstPublishYear)
	assert.Equal(t, []string{"eng", "fre"}, first.Languages)
	assert.Equal(t, 251, first.EditionCount)

	assert.Nil(t, s.Docs[1].Languages)
}

func TestSummarize_AlternateCountKey(t *testing.T) {
	s := Summarize([]byte(`{"num_found": 7, "start": 5, "docs": []}`))
	assert.Equal(t, 7, s.NumFound)
	assert.Equal(t, 5, s.Start)
	assert.Empty(t, s.Docs)
}

func TestSummarize_UnknownShapes(t *testing.T) {
	for _, raw := range []string{``, `null`, `[1,2]`, `{"docs": `, `"text"`} {
		assert.Equal(t, Summary{}, Summarize([]byte(raw)), "input %q", raw)
	}
}

func TestSummarize_SkipsNonObjectDocs(t *testing.T) {
	s := Summarize([]byte(`{"numFound": 1, "docs": [42, {"key": "/works/OL1W", "title": "One"}]}`))
	require.Len(t, s.Docs, 1)
	assert.Equal(t, "One", s.Docs[0].Title)
}

func TestDoc_URL(t *testing.T) {
	d := Doc{Key: "/works/OL27448W"}
	assert.Equal(t, "https://openlibrary.org/works/OL27448W", d.URL(""))
	assert.Equal(t, "http://localhost/works/OL27448W", d.URL("http://localhost/"))
	assert.Equal(t, "", Doc{}.URL(""))
}

func TestDoc_AuthorList(t *testing.T) {
	d := Doc{Authors: []string{"Terry Pratchett", "Neil Gaiman"}}
	assert.Equal(t, "Terry Pratchett, Neil Gaiman", d.AuthorList())
}
