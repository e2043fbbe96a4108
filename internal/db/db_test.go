package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, Open(filepath.Join(t.TempDir(), "nested", "test.db")))
	t.Cleanup(func() { _ = Close() })
}

func TestOpen_CreatesSchema(t *testing.T) {
	openTestDB(t)

	for _, table := range []string{"search_cache", "search_history", "saved_books"} {
		var name string
		err := DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestSearchCache(t *testing.T) {
	openTestDB(t)

	key := GenerateCacheKey("https://openlibrary.org/search.json?page=1&q=dune")
	assert.Len(t, key, 32)
	assert.Equal(t, key, GenerateCacheKey("https://openlibrary.org/search.json?page=1&q=dune"))
	assert.NotEqual(t, key, GenerateCacheKey("https://openlibrary.org/search.json?page=2&q=dune"))

	entry, err := GetCachedSearch(key)
	require.NoError(t, err)
	assert.Nil(t, entry, "miss before save")

	require.NoError(t, SaveCachedSearch(key, "dune", `{"limit":10}`, `{"numFound":1}`, 1, time.Hour))

	entry, err = GetCachedSearch(key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "dune", entry.Query)
	assert.Equal(t, `{"numFound":1}`, entry.ResultsJSON)
	assert.Equal(t, 1, entry.ResultCount)

	// Replacing an entry keeps one row
	require.NoError(t, SaveCachedSearch(key, "dune", `{}`, `{"numFound":2}`, 2, time.Hour))
	stats, err := GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Expired)
	assert.Equal(t, int64(len(`{"numFound":2}`)), stats.Bytes)
	assert.WithinDuration(t, time.Now(), stats.Newest, time.Minute)
}

func TestSearchCache_Expiry(t *testing.T) {
	openTestDB(t)

	require.NoError(t, SaveCachedSearch("fresh", "a", "", `{}`, 0, time.Hour))
	require.NoError(t, SaveCachedSearch("stale", "b", "", `{}`, 0, -time.Hour))

	entry, err := GetCachedSearch("stale")
	require.NoError(t, err)
	assert.Nil(t, entry)

	stats, err := GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 1, stats.Valid())

	n, err := CleanExpiredCache()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entry, err = GetCachedSearch("fresh")
	require.NoError(t, err)
	assert.NotNil(t, entry)

	require.NoError(t, ClearSearchCache())
	stats, err = GetCacheStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Bytes)
	assert.True(t, stats.Newest.IsZero())
}

func TestSearchHistory(t *testing.T) {
	openTestDB(t)

	offset := 20
	require.NoError(t, AddSearchHistory("dune", 5, SearchFilters{Limit: 10, Page: 1}))
	require.NoError(t, AddSearchHistory("", 2, SearchFilters{Author: "herbert", Lang: "en", Offset: &offset}))
	require.NoError(t, AddSearchHistory("dune", 5, SearchFilters{Limit: 10, Page: 1}))

	all, err := GetSearchHistory(10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "dune", all[0].Query, "newest first")

	unique, err := GetUniqueSearchHistory(10)
	require.NoError(t, err)
	require.Len(t, unique, 2)

	var byAuthor *SearchHistory
	for _, h := range unique {
		if h.Filters.Author == "herbert" {
			byAuthor = h
		}
	}
	require.NotNil(t, byAuthor)
	assert.Equal(t, "en", byAuthor.Filters.Lang)
	require.NotNil(t, byAuthor.Filters.Offset)
	assert.Equal(t, 20, *byAuthor.Filters.Offset)
	assert.Equal(t, "author=herbert, lang=en", byAuthor.Filters.String())
	assert.Equal(t, "author:herbert", byAuthor.Label())
	assert.Equal(t, "offset 20", byAuthor.Filters.Pagination())

	n, err := DeleteSearchHistoryOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, ClearSearchHistory())
	all, err = GetSearchHistory(0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSavedBooks(t *testing.T) {
	openTestDB(t)

	book := &SavedBook{
		WorkKey:          "/works/OL27448W",
		Title:            "The Lord of the Rings",
		Authors:          "J.R.R. Tolkien",
		FirstPublishYear: 1954,
		Languages:        "eng",
	}
	require.NoError(t, SaveBook(book))
	assert.NotZero(t, book.ID)

	assert.True(t, SavedBookExists("OL27448W"))
	assert.False(t, SavedBookExists("OL1W"))

	// Duplicate keys are rejected
	assert.Error(t, SaveBook(&SavedBook{WorkKey: "/works/OL27448W", Title: "dup"}))

	got, err := GetSavedBookByKey("works/OL27448W")
	require.NoError(t, err)
	assert.Equal(t, book.ID, got.ID)
	assert.Equal(t, 1954, got.FirstPublishYear)

	require.NoError(t, UpdateSavedBookNotes(book.ID, "re-read"))
	got, err = GetSavedBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "re-read", got.Notes)

	require.NoError(t, SaveBook(&SavedBook{WorkKey: "/works/OL14933414W", Title: "The Hobbit"}))
	books, err := ListSavedBooks()
	require.NoError(t, err)
	assert.Len(t, books, 2)
	assert.Equal(t, "The Hobbit", books[0].Title, "newest first")

	require.NoError(t, DeleteSavedBookByKey("OL14933414W"))
	require.NoError(t, DeleteSavedBook(book.ID))

	_, err = GetSavedBook(book.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, DeleteSavedBook(book.ID), ErrNotFound)
	assert.ErrorIs(t, UpdateSavedBookNotes(book.ID, "x"), ErrNotFound)
}

func TestSearchHistory_Describe(t *testing.T) {
	offset := 40
	tests := []struct {
		name       string
		history    SearchHistory
		label      string
		pagination string
	}{
		{"query wins", SearchHistory{Query: "dune", Filters: SearchFilters{Title: "dune", Limit: 10, Page: 2}}, "dune", "page 2, 10 per page"},
		{"title and author", SearchHistory{Filters: SearchFilters{Title: "emma", Author: "austen"}}, "title:emma author:austen", "page 1"},
		{"nothing", SearchHistory{Filters: SearchFilters{Limit: 5, Offset: &offset}}, "(no criteria)", "offset 40, 5 per page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.label, tt.history.Label())
			assert.Equal(t, tt.pagination, tt.history.Filters.Pagination())
		})
	}
}

func TestNormalizeWorkKey(t *testing.T) {
	assert.Equal(t, "/works/OL27448W", NormalizeWorkKey("OL27448W"))
	assert.Equal(t, "/works/OL27448W", NormalizeWorkKey("works/OL27448W"))
	assert.Equal(t, "/works/OL27448W", NormalizeWorkKey(" /works/OL27448W "))
	assert.Equal(t, "/books/OL1M", NormalizeWorkKey("/books/OL1M"))
	assert.Equal(t, "", NormalizeWorkKey(""))
}
