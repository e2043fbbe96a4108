// Package search runs Open Library searches through the local cache and
// records them in the search history.
package search

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/billmal071/olsearch/internal/db"
	"github.com/billmal071/olsearch/internal/openlibrary"
)

// Store is the subset of the local database the service needs
type Store interface {
	GetCachedSearch(cacheKey string) (*db.SearchCacheEntry, error)
	SaveCachedSearch(cacheKey, query, filters, resultsJSON string, resultCount int, ttl time.Duration) error
	AddSearchHistory(query string, resultCount int, filters db.SearchFilters) error
}

// Config controls caching and history recording
type Config struct {
	CacheEnabled   bool
	CacheTTL       time.Duration
	HistoryEnabled bool
	Resource       string
}

// Options are per-call overrides
type Options struct {
	NoCache bool
}

// Response is the outcome of one search
type Response struct {
	URL       string
	Result    openlibrary.Result
	Raw       []byte
	Summary   openlibrary.Summary
	FromCache bool
}

// Service runs searches
type Service struct {
	client openlibrary.Searcher
	store  Store
	cfg    Config
	logger *zap.Logger
}

// NewService creates a search service. A nil logger discards output.
func NewService(client openlibrary.Searcher, store Store, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Run performs one search. On failure the returned Response carries an
// empty Result, and the error tells the caller the request did not succeed.
func (s *Service) Run(ctx context.Context, params openlibrary.SearchParams, opts Options) (*Response, error) {
	reqURL := s.client.SearchURL(params)
	cacheKey := db.GenerateCacheKey(reqURL)
	useCache := s.cfg.CacheEnabled && !opts.NoCache

	if useCache {
		if resp := s.fromCache(cacheKey, reqURL); resp != nil {
			s.recordHistory(params, resp.Summary.NumFound)
			return resp, nil
		}
	}

	raw, err := s.client.SearchRaw(ctx, params)
	if err != nil {
		s.logger.Warn("search failed", zap.String("url", reqURL), zap.Error(err))
		return &Response{URL: reqURL, Result: openlibrary.Result{}}, err
	}

	result, err := openlibrary.Decode(raw)
	if err != nil {
		return &Response{URL: reqURL, Result: openlibrary.Result{}}, err
	}

	resp := &Response{
		URL:     reqURL,
		Result:  result,
		Raw:     raw,
		Summary: openlibrary.Summarize(raw),
	}

	if useCache {
		filtersJSON, _ := json.Marshal(s.filters(params))
		err := s.store.SaveCachedSearch(cacheKey, params.Query, string(filtersJSON), string(raw), resp.Summary.NumFound, s.cfg.CacheTTL)
		if err != nil {
			s.logger.Debug("cache save failed", zap.Error(err))
		}
	}

	s.recordHistory(params, resp.Summary.NumFound)
	return resp, nil
}

func (s *Service) fromCache(cacheKey, reqURL string) *Response {
	entry, err := s.store.GetCachedSearch(cacheKey)
	if err != nil {
		s.logger.Debug("cache lookup failed", zap.Error(err))
		return nil
	}
	if entry == nil {
		return nil
	}

	raw := []byte(entry.ResultsJSON)
	result, err := openlibrary.Decode(raw)
	if err != nil {
		s.logger.Debug("discarding unreadable cache entry", zap.String("key", cacheKey), zap.Error(err))
		return nil
	}

	s.logger.Debug("cache hit", zap.String("url", reqURL))
	return &Response{
		URL:       reqURL,
		Result:    result,
		Raw:       raw,
		Summary:   openlibrary.Summarize(raw),
		FromCache: true,
	}
}

func (s *Service) recordHistory(params openlibrary.SearchParams, resultCount int) {
	if !s.cfg.HistoryEnabled {
		return
	}
	if err := s.store.AddSearchHistory(params.Query, resultCount, s.filters(params)); err != nil {
		s.logger.Debug("history save failed", zap.Error(err))
	}
}

func (s *Service) filters(params openlibrary.SearchParams) db.SearchFilters {
	return FiltersFromParams(params, s.cfg.Resource)
}

// FiltersFromParams converts search parameters into their stored form
func FiltersFromParams(params openlibrary.SearchParams, resource string) db.SearchFilters {
	return db.SearchFilters{
		Title:    params.Title,
		Author:   params.Author,
		Fields:   params.Fields,
		Sort:     params.Sort,
		Lang:     params.Lang,
		Limit:    params.Limit,
		Page:     params.Page,
		Offset:   params.Offset,
		Resource: resource,
	}
}

// ParamsFromHistory rebuilds the parameters of a recorded search
func ParamsFromHistory(h *db.SearchHistory) openlibrary.SearchParams {
	return openlibrary.SearchParams{
		Query:  h.Query,
		Title:  h.Filters.Title,
		Author: h.Filters.Author,
		Fields: h.Filters.Fields,
		Sort:   h.Filters.Sort,
		Lang:   h.Filters.Lang,
		Limit:  h.Filters.Limit,
		Page:   h.Filters.Page,
		Offset: h.Filters.Offset,
	}
}
