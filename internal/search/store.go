package search

import (
	"time"

	"github.com/billmal071/olsearch/internal/db"
)

// DBStore backs the service with the package-level SQLite database
type DBStore struct{}

func (DBStore) GetCachedSearch(cacheKey string) (*db.SearchCacheEntry, error) {
	return db.GetCachedSearch(cacheKey)
}

func (DBStore) SaveCachedSearch(cacheKey, query, filters, resultsJSON string, resultCount int, ttl time.Duration) error {
	return db.SaveCachedSearch(cacheKey, query, filters, resultsJSON, resultCount, ttl)
}

func (DBStore) AddSearchHistory(query string, resultCount int, filters db.SearchFilters) error {
	return db.AddSearchHistory(query, resultCount, filters)
}
