package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "numFound": 2,
  "start": 0,
  "numFoundExact": true,
  "docs": [
    {"key": "/works/OL27448W", "title": "The Lord of the Rings", "author_name": ["J.R.R. Tolkien"], "first_publish_year": 1954, "language": ["eng", "fre"], "edition_count": 251},
    {"key": "/works/OL14933414W", "title": "The Hobbit", "author_name": ["J.R.R. Tolkien"], "first_publish_year": 1937}
  ],
  "q": "the lord of the rings",
  "offset": null
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL)}, opts...)
	return NewClient("search", opts...), srv
}

func TestNewClient_BaseURL(t *testing.T) {
	assert.Equal(t, "https://openlibrary.org/search.json", NewClient("").BaseURL())
	assert.Equal(t, "https://openlibrary.org/search.json", NewClient("search").BaseURL())
	assert.Equal(t, "https://openlibrary.org/search/authors.json", NewClient("search/authors").BaseURL())
	assert.Equal(t, "http://localhost:8080/search.json", NewClient("search", WithBaseURL("http://localhost:8080/")).BaseURL())
}

func TestWithTimeout_DoesNotModifyCallerClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}
	client := NewClient("search", WithHTTPClient(hc), WithTimeout(5*time.Second))

	assert.Equal(t, time.Minute, hc.Timeout)
	assert.Equal(t, 5*time.Second, client.http.Timeout)
	assert.NotSame(t, hc, client.http)
}

func TestClient_ResourceOnlyChangesPath(t *testing.T) {
	params := SearchParams{Query: "tolkien", Fields: []string{"key", "name"}, Limit: 3, Page: 2}

	books := NewClient("search")
	authors := NewClient("search/authors")

	assert.Equal(t, "https://openlibrary.org/search.json?"+params.Values().Encode(), books.SearchURL(params))
	assert.Equal(t, "https://openlibrary.org/search/authors.json?"+params.Values().Encode(), authors.SearchURL(params))
}

func TestClient_Search_PassThrough(t *testing.T) {
	var gotQuery string
	var gotHeaders http.Header
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		gotQuery = r.URL.RawQuery
		gotHeaders = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}, WithUserAgent("olsearch-test/1.0"))

	params := DefaultSearchParams()
	params.Query = "the lord of the rings"
	params.Limit = 1

	result, err := client.Search(context.Background(), params)
	require.NoError(t, err)

	want, err := Decode([]byte(sampleResponse))
	require.NoError(t, err)
	assert.Equal(t, want, result)
	assert.Contains(t, result, "offset")
	assert.Nil(t, result["offset"])

	assert.Equal(t, params.Values().Encode(), gotQuery)
	assert.Equal(t, "olsearch-test/1.0", gotHeaders.Get("User-Agent"))
	assert.Equal(t, "application/json", gotHeaders.Get("Accept"))
}

func TestClient_Search_HTTPFailureYieldsEmptyResult(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusTooManyRequests} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", status)
		})

		result, err := client.Search(context.Background(), SearchParams{Query: "x", Page: 1})

		require.Error(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
		assert.True(t, errors.Is(err, ErrRequestFailed))

		var reqErr *RequestError
		require.True(t, errors.As(err, &reqErr))
		assert.Equal(t, status, reqErr.StatusCode)
	}
}

func TestClient_Search_TransportFailureYieldsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient("search", WithBaseURL(url), WithTimeout(2*time.Second))
	result, err := client.Search(context.Background(), SearchParams{Query: "x", Page: 1})

	require.Error(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
	assert.True(t, errors.Is(err, ErrRequestFailed))

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Zero(t, reqErr.StatusCode)
}

func TestClient_SearchOrEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	result := client.SearchOrEmpty(context.Background(), SearchParams{Query: "x", Page: 1})
	assert.NotNil(t, result)
	assert.Len(t, result, 0)
}

func TestClient_Search_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numFound": `))
	})

	result, err := client.Search(context.Background(), SearchParams{Query: "x", Page: 1})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRequestFailed))
	assert.Empty(t, result)
}

func TestClient_Search_NullBodyIsEmptyResult(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	result, err := client.Search(context.Background(), SearchParams{Query: "x", Page: 1})
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchRaw(context.Background(), SearchParams{Query: "x", Page: 1})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleResponse))
	}, WithRetry(RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2,
	}))

	body, err := client.SearchRaw(context.Background(), SearchParams{Query: "x", Page: 1})
	require.NoError(t, err)
	assert.JSONEq(t, sampleResponse, string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}, WithRetry(RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}))

	_, err := client.SearchRaw(context.Background(), SearchParams{Query: "x", Page: 1})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_CancelledContext(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := client.Search(ctx, SearchParams{Query: "x", Page: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, result)
}

func TestClient_RateLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, WithRateLimit(20))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.SearchRaw(context.Background(), SearchParams{Query: "x", Page: 1})
		require.NoError(t, err)
	}
	// burst of 1 at 20 rps: the 2nd and 3rd requests wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
