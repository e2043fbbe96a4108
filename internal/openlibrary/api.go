package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client queries a single Open Library resource such as search.json
type Client struct {
	resource  string
	baseURL   string
	userAgent string
	http      *http.Client
	retry     RetryConfig
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the host the resource is served from
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout. A client passed to
// WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRetry sets the retry policy
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithRateLimit caps outgoing requests per second. Zero means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger used to report request failures
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the given resource; an empty resource means search
func NewClient(resource string, opts ...Option) *Client {
	if resource == "" {
		resource = DefaultResource
	}
	c := &Client{
		resource: strings.Trim(resource, "/"),
		baseURL:  DefaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry:  NoRetry(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resource returns the resource name the client was built with
func (c *Client) Resource() string {
	return c.resource
}

// BaseURL returns the endpoint requests are sent to, without a query string
func (c *Client) BaseURL() string {
	return fmt.Sprintf("%s/%s.json", c.baseURL, c.resource)
}

// SearchURL returns the full request URL for params
func (c *Client) SearchURL(params SearchParams) string {
	return c.BaseURL() + "?" + params.Values().Encode()
}

// SearchRaw performs the request and returns the body of a successful response.
// Any failure is returned as a *RequestError.
func (c *Client) SearchRaw(ctx context.Context, params SearchParams) ([]byte, error) {
	reqURL := c.SearchURL(params)

	var body []byte
	err := RetryOperation(ctx, c.retry, func() (int, error) {
		b, status, err := c.get(ctx, reqURL)
		body = b
		return status, err
	})
	if err != nil {
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			err = &RequestError{URL: reqURL, Err: err}
		}
		return nil, err
	}
	return body, nil
}

// Search performs the request and returns the decoded body unmodified.
// On failure the error is logged and an empty, non-nil Result is returned
// alongside it, so callers that ignore the error see zero results.
func (c *Client) Search(ctx context.Context, params SearchParams) (Result, error) {
	body, err := c.SearchRaw(ctx, params)
	if err != nil {
		c.logger.Warn("search request failed", zap.String("resource", c.resource), zap.Error(err))
		return Result{}, err
	}

	result, err := Decode(body)
	if err != nil {
		c.logger.Warn("search response not decodable", zap.String("resource", c.resource), zap.Error(err))
		return Result{}, err
	}
	return result, nil
}

// SearchOrEmpty is Search without the error: failures are only logged
func (c *Client) SearchOrEmpty(ctx context.Context, params SearchParams) Result {
	result, _ := c.Search(ctx, params)
	return result
}

// Decode parses a response body into a Result
func Decode(body []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if result == nil {
		result = Result{}
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, &RequestError{URL: reqURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, &RequestError{URL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &RequestError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("open library response",
		zap.String("url", reqURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, &RequestError{
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &RequestError{URL: reqURL, Err: err}
	}
	return body, resp.StatusCode, nil
}
