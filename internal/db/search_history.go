package db

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SearchHistory represents a saved search query
type SearchHistory struct {
	ID          int64
	Query       string
	ResultCount int
	Filters     SearchFilters
	CreatedAt   time.Time
}

// SearchFilters stores the non-query parameters used in a search
type SearchFilters struct {
	Title    string   `json:"title,omitempty"`
	Author   string   `json:"author,omitempty"`
	Fields   []string `json:"fields,omitempty"`
	Sort     string   `json:"sort,omitempty"`
	Lang     string   `json:"lang,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Page     int      `json:"page,omitempty"`
	Offset   *int     `json:"offset,omitempty"`
	Resource string   `json:"resource,omitempty"`
}

// String returns a human-readable representation of the set filters
func (f SearchFilters) String() string {
	var parts []string
	if f.Title != "" {
		parts = append(parts, "title="+f.Title)
	}
	if f.Author != "" {
		parts = append(parts, "author="+f.Author)
	}
	if len(f.Fields) > 0 {
		parts = append(parts, "fields="+strings.Join(f.Fields, ","))
	}
	if f.Sort != "" {
		parts = append(parts, "sort="+f.Sort)
	}
	if f.Lang != "" {
		parts = append(parts, "lang="+f.Lang)
	}
	if f.Resource != "" && f.Resource != "search" {
		parts = append(parts, "resource="+f.Resource)
	}
	return strings.Join(parts, ", ")
}

// Label is the text a search is listed under: its free-text query, or its
// title and author criteria when it had none
func (h *SearchHistory) Label() string {
	if h.Query != "" {
		return h.Query
	}
	var parts []string
	if h.Filters.Title != "" {
		parts = append(parts, "title:"+h.Filters.Title)
	}
	if h.Filters.Author != "" {
		parts = append(parts, "author:"+h.Filters.Author)
	}
	if len(parts) == 0 {
		return "(no criteria)"
	}
	return strings.Join(parts, " ")
}

// Pagination describes the requested page
func (f SearchFilters) Pagination() string {
	var where string
	if f.Offset != nil {
		where = fmt.Sprintf("offset %d", *f.Offset)
	} else {
		page := f.Page
		if page < 1 {
			page = 1
		}
		where = fmt.Sprintf("page %d", page)
	}
	if f.Limit > 0 {
		return fmt.Sprintf("%s, %d per page", where, f.Limit)
	}
	return where
}

// AddSearchHistory adds a search to history
func AddSearchHistory(query string, resultCount int, filters SearchFilters) error {
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		filtersJSON = []byte("{}")
	}

	_, err = database.Exec(`
		INSERT INTO search_history (query, result_count, filters, created_at)
		VALUES (?, ?, ?, ?)`,
		query, resultCount, string(filtersJSON), time.Now().UTC(),
	)
	return err
}

// GetSearchHistory retrieves recent search history
func GetSearchHistory(limit int) ([]*SearchHistory, error) {
	if limit <= 0 {
		limit = 20
	}

	return querySearchHistory(`
		SELECT id, query, result_count, filters, created_at
		FROM search_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
}

// GetUniqueSearchHistory retrieves unique recent searches (no duplicates)
func GetUniqueSearchHistory(limit int) ([]*SearchHistory, error) {
	if limit <= 0 {
		limit = 20
	}

	return querySearchHistory(`
		SELECT id, query, result_count, filters, created_at
		FROM search_history
		WHERE id IN (
			SELECT MAX(id) FROM search_history GROUP BY query, filters
		)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
}

func querySearchHistory(query string, args ...any) ([]*SearchHistory, error) {
	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*SearchHistory
	for rows.Next() {
		h := &SearchHistory{}
		var filtersJSON string
		if err := rows.Scan(&h.ID, &h.Query, &h.ResultCount, &filtersJSON, &h.CreatedAt); err != nil {
			return nil, err
		}

		if filtersJSON != "" {
			_ = json.Unmarshal([]byte(filtersJSON), &h.Filters)
		}

		history = append(history, h)
	}
	return history, rows.Err()
}

// ClearSearchHistory removes all search history
func ClearSearchHistory() error {
	_, err := database.Exec(`DELETE FROM search_history`)
	return err
}

// DeleteSearchHistoryOlderThan removes history older than the given duration
func DeleteSearchHistoryOlderThan(d time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-d)
	res, err := database.Exec(`DELETE FROM search_history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
