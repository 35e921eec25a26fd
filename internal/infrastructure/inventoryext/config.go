package inventoryext

import (
	"errors"
	"time"

	appconfig "github.com/erp/stocksync/internal/infrastructure/config"
)

// Config holds configuration for the inventory extension REST API
type Config struct {
	// BaseURL is the base URL of the extension endpoint
	BaseURL string
	// APIKey authenticates requests against the extension
	APIKey string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// Errors for inventory extension configuration
var (
	ErrConfigMissingBaseURL = errors.New("inventoryext: base url is required")
	ErrConfigMissingAPIKey  = errors.New("inventoryext: api key is required")
)

// NewConfig creates a new extension configuration with defaults
func NewConfig(baseURL, apiKey string) *Config {
	return &Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 30 * time.Second,
	}
}

// NewConfigFromApp creates an extension configuration from application config
func NewConfigFromApp(cfg *appconfig.InventoryExtConfig) *Config {
	return &Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}
}

// Validate validates the extension configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
