package storefront

import (
	"errors"
	"time"

	appconfig "github.com/erp/stocksync/internal/infrastructure/config"
)

// Config holds configuration for the storefront REST API
type Config struct {
	// BaseURL is the base URL of the storefront REST endpoint
	BaseURL string
	// ConsumerKey is the storefront API consumer key
	ConsumerKey string
	// ConsumerSecret is the storefront API consumer secret
	ConsumerSecret string
	// Timeout is the HTTP request timeout. Storefront catalog calls are
	// slow on large installations, so this defaults much higher than the
	// other clients.
	Timeout time.Duration
}

// Errors for storefront configuration
var (
	ErrConfigMissingBaseURL        = errors.New("storefront: base url is required")
	ErrConfigMissingConsumerKey    = errors.New("storefront: consumer key is required")
	ErrConfigMissingConsumerSecret = errors.New("storefront: consumer secret is required")
)

// NewConfig creates a new storefront configuration with defaults
func NewConfig(baseURL, consumerKey, consumerSecret string) *Config {
	return &Config{
		BaseURL:        baseURL,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		Timeout:        30 * time.Minute,
	}
}

// NewConfigFromApp creates a storefront configuration from application config
func NewConfigFromApp(cfg *appconfig.StorefrontConfig) *Config {
	return &Config{
		BaseURL:        cfg.BaseURL,
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		Timeout:        cfg.Timeout,
	}
}

// Validate validates the storefront configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.ConsumerKey == "" {
		return ErrConfigMissingConsumerKey
	}
	if c.ConsumerSecret == "" {
		return ErrConfigMissingConsumerSecret
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Minute
	}
	return nil
}
