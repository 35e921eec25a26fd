package inventoryext

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

	"github.com/shopspring/decimal"

	"github.com/erp/stocksync/internal/domain/catalog"
	syncdomain "github.com/erp/stocksync/internal/domain/sync"
)

// maxResponseSize is the maximum allowed response size from the extension API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// stockPageSize is the page size used when listing stock entries
const stockPageSize = 100

// Errors returned by the extension client
var (
	ErrUnavailable     = errors.New("inventoryext: service unavailable")
	ErrRequestFailed   = errors.New("inventoryext: request failed")
	ErrInvalidResponse = errors.New("inventoryext: invalid response")
)

// stockEntry is the wire shape of one extension inventory entry. Quantities
// arrive as strings and may carry fractions.
type stockEntry struct {
	ID       int64  `json:"id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity string `json:"stock_quantity"`
}

// Client talks to the multi-location inventory extension REST API
type Client struct {
	config     *Config
	httpClient *http.Client

	// storeConfigs stores per-store configurations for deployments with
	// more than one storefront installation
	storeConfigs map[string]*Config
	mu           sync.RWMutex
}

// NewClient creates a new extension client with the given configuration
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

// FetchStock lists all extension inventory entries for a store, walking
// pages until a short page signals the end
func (c *Client) FetchStock(ctx context.Context, storeID string) ([]catalog.ExtensionRecord, error) {
	config := c.getStoreConfig(storeID)

	records := make([]catalog.ExtensionRecord, 0, stockPageSize)
	for page := 1; ; page++ {
		entries, err := c.fetchStockPage(ctx, config, page)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			records = append(records, catalog.ExtensionRecord{
				ID:       strconv.FormatInt(entry.ID, 10),
				SKU:      entry.SKU,
				Name:     entry.Name,
				Quantity: parseQuantity(entry.Quantity),
			})
		}

		if len(entries) < stockPageSize {
			return records, nil
		}
	}
}

// fetchStockPage fetches one page of stock entries
func (c *Client) fetchStockPage(ctx context.Context, config *Config, page int) ([]stockEntry, error) {
	endpoint, err := url.JoinPath(config.BaseURL, "inventories")
	if err != nil {
		return nil, fmt.Errorf("inventoryext: invalid base url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("inventoryext: failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(stockPageSize))
	req.URL.RawQuery = q.Encode()

	body, err := c.doRequest(req, config)
	if err != nil {
		return nil, err
	}

	var entries []stockEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return entries, nil
}

// SubmitBatch submits one create/update batch and returns the extension's
// per-item results
func (c *Client) SubmitBatch(ctx context.Context, storeID string, batch syncdomain.BatchRequest) (*syncdomain.BatchResponse, error) {
	config := c.getStoreConfig(storeID)

	endpoint, err := url.JoinPath(config.BaseURL, "inventories", "batch")
	if err != nil {
		return nil, fmt.Errorf("inventoryext: invalid base url: %w", err)
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("inventoryext: failed to encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("inventoryext: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.doRequest(req, config)
	if err != nil {
		return nil, err
	}

	var resp syncdomain.BatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &resp, nil
}

// doRequest performs an HTTP request against the extension API
func (c *Client) doRequest(req *http.Request, config *Config) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("inventoryext: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	return body, nil
}

// parseQuantity parses a wire quantity, treating unparseable values as zero
func parseQuantity(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
