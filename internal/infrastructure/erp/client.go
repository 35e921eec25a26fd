package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/erp/stocksync/internal/domain/catalog"
)

// maxResponseSize is the maximum allowed response size from the ERP API.
// Full item exports for large catalogs run to a few megabytes (50MB cap).
const maxResponseSize = 50 * 1024 * 1024

// Errors returned by the ERP client
var (
	ErrUnavailable     = errors.New("erp: service unavailable")
	ErrRequestFailed   = errors.New("erp: request failed")
	ErrInvalidResponse = errors.New("erp: invalid response")
)

// Client fetches columnar item exports from the ERP HTTP API. The ERP
// answers with a field-definition header and positional rows rather than
// keyed objects, so the payload is decoded into catalog.FieldTable and
// interpreted downstream by the configured field mapping.
type Client struct {
	config     *Config
	httpClient *http.Client

	// storeConfigs stores per-store configurations for deployments where
	// stores live on separate ERP accounts
	storeConfigs map[string]*Config
	mu           sync.RWMutex
}

// NewClient creates a new ERP client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		storeConfigs: make(map[string]*Config),
	}, nil
}

// SetStoreConfig sets the configuration for a specific store
func (c *Client) SetStoreConfig(storeID string, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeConfigs[storeID] = config
	return nil
}

// getStoreConfig retrieves the configuration for a store
func (c *Client) getStoreConfig(storeID string) *Config {
	c.mu.RLock()
	config, ok := c.storeConfigs[storeID]
	c.mu.RUnlock()
	if ok {
		return config
	}
	return c.config
}

// FetchItems downloads the full item table for a store
func (c *Client) FetchItems(ctx context.Context, storeID string) (catalog.FieldTable, error) {
	config := c.getStoreConfig(storeID)

	endpoint, err := url.JoinPath(config.BaseURL, "api", "v1", "items")
	if err != nil {
		return catalog.FieldTable{}, fmt.Errorf("erp: invalid base url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return catalog.FieldTable{}, fmt.Errorf("erp: failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("store", storeID)
	q.Set("timestamp", time.Now().UTC().Format(time.RFC3339))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return catalog.FieldTable{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return catalog.FieldTable{}, fmt.Errorf("erp: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return catalog.FieldTable{}, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	var table catalog.FieldTable
	if err := json.Unmarshal(body, &table); err != nil {
		return catalog.FieldTable{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(table.Definitions) == 0 {
		return catalog.FieldTable{}, fmt.Errorf("%w: missing field definitions", ErrInvalidResponse)
	}

	return table, nil
}
