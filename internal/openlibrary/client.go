package openlibrary

import (
	"go.uber.org/zap"

	"github.com/billmal071/olsearch/internal/config"
)

// NewDefaultClient creates a client for the given resource using the
// application configuration. An empty resource falls back to the configured one.
func NewDefaultClient(resource string, logger *zap.Logger) *Client {
	cfg := config.Get()

	if resource == "" {
		resource = cfg.OpenLibrary.Resource
	}

	return NewClient(resource,
		WithBaseURL(cfg.OpenLibrary.BaseURL),
		WithTimeout(cfg.Network.Timeout),
		WithUserAgent(cfg.Network.UserAgent),
		WithRetry(DefaultRetryConfig()),
		WithRateLimit(cfg.Network.RequestsPerSecond),
		WithLogger(logger),
	)
}

// DefaultRetryConfig returns retry config from app settings
func DefaultRetryConfig() RetryConfig {
	cfg := config.Get()
	return RetryConfig{
		MaxAttempts: cfg.Network.RetryAttempts,
		BaseDelay:   cfg.Network.RetryBaseDelay,
		MaxDelay:    cfg.Network.RetryMaxDelay,
		Multiplier:  cfg.Network.RetryMultiplier,
	}
}
