package erp

import (
	"errors"
	"time"

	appconfig "github.com/erp/stocksync/internal/infrastructure/config"
)

// Config holds configuration for the ERP item API
type Config struct {
	// BaseURL is the base URL of the ERP HTTP API
	BaseURL string
	// APIKey authenticates requests against the ERP
	APIKey string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// Errors for ERP configuration
var (
	ErrConfigMissingBaseURL = errors.New("erp: base url is required")
	ErrConfigMissingAPIKey  = errors.New("erp: api key is required")
)

// NewConfig creates a new ERP configuration with defaults
func NewConfig(baseURL, apiKey string) *Config {
	return &Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 30 * time.Second,
	}
}

// NewConfigFromApp creates an ERP configuration from application config
func NewConfigFromApp(cfg *appconfig.ERPConfig) *Config {
	return &Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}
}

// Validate validates the ERP configuration
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
