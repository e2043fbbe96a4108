package db

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"time"
)

// SearchCacheEntry represents a cached search response
type SearchCacheEntry struct {
	ID          int64
	CacheKey    string
	Query       string
	Filters     string
	ResultsJSON string
	ResultCount int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// GenerateCacheKey derives a cache key from the full request URL,
// which already encodes the resource and every parameter
func GenerateCacheKey(requestURL string) string {
	hash := sha256.Sum256([]byte(requestURL))
	return fmt.Sprintf("%x", hash[:16])
}

// GetCachedSearch retrieves a cached search result if it hasn't expired.
// A miss returns nil, nil.
func GetCachedSearch(cacheKey string) (*SearchCacheEntry, error) {
	entry := &SearchCacheEntry{}
	err := database.QueryRow(`
		SELECT id, cache_key, query, filters, results_json, result_count, created_at, expires_at
		FROM search_cache
		WHERE cache_key = ? AND expires_at > ?`, cacheKey, time.Now().UTC()).Scan(
		&entry.ID, &entry.CacheKey, &entry.Query, &entry.Filters,
		&entry.ResultsJSON, &entry.ResultCount, &entry.CreatedAt, &entry.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SaveCachedSearch saves a search response to cache
func SaveCachedSearch(cacheKey, query, filters string, resultsJSON string, resultCount int, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := database.Exec(`
		INSERT OR REPLACE INTO search_cache (cache_key, query, filters, results_json, result_count, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cacheKey, query, filters, resultsJSON, resultCount, now, now.Add(ttl))
	return err
}

// CleanExpiredCache removes expired cache entries
func CleanExpiredCache() (int64, error) {
	res, err := database.Exec(`DELETE FROM search_cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearSearchCache clears all cached search results
func ClearSearchCache() error {
	_, err := database.Exec(`DELETE FROM search_cache`)
	return err
}

// CacheStats summarizes the search cache
type CacheStats struct {
	Total   int
	Expired int
	Bytes   int64     // size of the stored response bodies
	Newest  time.Time // zero when the cache is empty
}

// Valid returns the number of entries that can still be served
func (s *CacheStats) Valid() int {
	return s.Total - s.Expired
}

// GetCacheStats returns cache statistics
func GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}
	err := database.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(LENGTH(CAST(results_json AS BLOB))), 0)
		FROM search_cache`, time.Now().UTC()).Scan(&stats.Total, &stats.Expired, &stats.Bytes)
	if err != nil {
		return nil, err
	}

	err = database.QueryRow(`SELECT created_at FROM search_cache ORDER BY created_at DESC LIMIT 1`).Scan(&stats.Newest)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	return stats, nil
}
