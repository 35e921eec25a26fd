package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	appsync "github.com/erp/stocksync/internal/application/sync"
)

// maxResponseSize is the maximum allowed response size from the storefront API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Errors returned by the storefront client
var (
	ErrUnavailable     = errors.New("storefront: service unavailable")
	ErrRequestFailed   = errors.New("storefront: request failed")
	ErrInvalidResponse = errors.New("storefront: invalid response")
)

// productEntry is the wire shape of a storefront catalog product
type productEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

// createProductRequest is the payload for creating a storefront product
type createProductRequest struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	RegularPrice string `json:"regular_price,omitempty"`
	Status       string `json:"status"`
	ManageStock  bool   `json:"manage_stock"`
}

// Client talks to the storefront catalog REST API
type Client struct {
	config     *Config
	httpClient *http.Client

	// storeConfigs stores per-store configurations
	storeConfigs map[string]*Config
	mu           sync.RWMutex
}

// NewClient creates a new storefront client with the given configuration
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

// FindBySKU looks up a storefront product by exact sku. Returns nil when no
// product carries the sku.
func (c *Client) FindBySKU(ctx context.Context, storeID, sku string) (*appsync.StorefrontProduct, error) {
	config := c.getStoreConfig(storeID)

	endpoint, err := url.JoinPath(config.BaseURL, "products")
	if err != nil {
		return nil, fmt.Errorf("storefront: invalid base url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("sku", sku)
	q.Set("per_page", "1")
	req.URL.RawQuery = q.Encode()

	body, err := c.doRequest(req, config)
	if err != nil {
		return nil, err
	}

	var entries []productEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	return toStorefrontProduct(&entries[0]), nil
}

// CreateProduct creates a storefront product and returns it with its
// assigned id
func (c *Client) CreateProduct(ctx context.Context, storeID string, input appsync.StorefrontProductInput) (*appsync.StorefrontProduct, error) {
	config := c.getStoreConfig(storeID)

	endpoint, err := url.JoinPath(config.BaseURL, "products")
	if err != nil {
		return nil, fmt.Errorf("storefront: invalid base url: %w", err)
	}

	create := createProductRequest{
		Name:        input.Name,
		SKU:         input.SKU,
		Status:      "draft",
		ManageStock: true,
	}
	if input.Price != nil {
		create.RegularPrice = input.Price.StringFixed(2)
	}

	payload, err := json.Marshal(create)
	if err != nil {
		return nil, fmt.Errorf("storefront: failed to encode product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("storefront: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.doRequest(req, config)
	if err != nil {
		return nil, err
	}

	var entry productEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if entry.ID == 0 {
		return nil, fmt.Errorf("%w: missing product id", ErrInvalidResponse)
	}

	return toStorefrontProduct(&entry), nil
}

// doRequest performs an HTTP request against the storefront API
func (c *Client) doRequest(req *http.Request, config *Config) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(config.ConsumerKey, config.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("storefront: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	return body, nil
}

func toStorefrontProduct(entry *productEntry) *appsync.StorefrontProduct {
	return &appsync.StorefrontProduct{
		ID:   strconv.FormatInt(entry.ID, 10),
		Name: entry.Name,
		SKU:  entry.SKU,
	}
}
