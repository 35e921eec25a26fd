package inventoryext

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "github.com/erp/stocksync/internal/domain/sync"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}
}

func stockPage(start, count int) string {
	entries := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		id := start + i
		entries = append(entries, map[string]any{
			"id":             id,
			"sku":            fmt.Sprintf("SKU-%d", id),
			"name":           fmt.Sprintf("Item %d", id),
			"stock_quantity": "5",
		})
	}
	payload, _ := json.Marshal(entries)
	return string(payload)
}

func TestFetchStock_SinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventories", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Write([]byte(`[
			{"id": 55, "sku": "SKU-1", "name": "Widget", "stock_quantity": "7.5"},
			{"id": 56, "sku": "SKU-2", "name": "Gadget", "stock_quantity": "oops"}
		]`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	records, err := client.FetchStock(context.Background(), "store-1")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "55", records[0].ID)
	assert.Equal(t, "SKU-1", records[0].SKU)
	assert.True(t, records[0].Quantity.Equal(decimal.RequireFromString("7.5")))
	// Unparseable wire quantities come through as zero.
	assert.True(t, records[1].Quantity.IsZero())
}

func TestFetchStock_PaginatesUntilShortPage(t *testing.T) {
	var pagesServed []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pagesServed = append(pagesServed, page)
		switch page {
		case 1:
			w.Write([]byte(stockPage(1, 100)))
		case 2:
			w.Write([]byte(stockPage(101, 100)))
		default:
			w.Write([]byte(stockPage(201, 30)))
		}
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	records, err := client.FetchStock(context.Background(), "store-1")

	require.NoError(t, err)
	assert.Len(t, records, 230)
	assert.Equal(t, []int{1, 2, 3}, pagesServed)
}

func TestFetchStock_EmptyFirstPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	records, err := client.FetchStock(context.Background(), "store-1")

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchStock_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.FetchStock(context.Background(), "store-1")

	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestSubmitBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/inventories/batch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req syncdomain.BatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Create, 1)
		require.Len(t, req.Update, 1)
		assert.Equal(t, "SKU-1", req.Create[0].SKU)
		assert.Equal(t, "55", req.Update[0].ExtensionID)

		w.Write([]byte(`{
			"create": [{"id": 77, "name": "Widget", "correlation_key": "key-1"}],
			"update": [{"id": "55"}]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	resp, err := client.SubmitBatch(context.Background(), "store-1", syncdomain.BatchRequest{
		Create: []syncdomain.CreateItem{{CorrelationKey: "key-1", Name: "Widget", SKU: "SKU-1", Quantity: 5}},
		Update: []syncdomain.UpdateItem{{ExtensionID: "55", Quantity: 8}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Create, 1)
	assert.Equal(t, int64(77), resp.Create[0].ID)
	assert.Equal(t, "key-1", resp.Create[0].CorrelationKey)
	require.Len(t, resp.Update, 1)
	assert.Equal(t, "55", resp.Update[0].ID)
}

func TestSubmitBatch_ErrorPayloadsPassedThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"create": [], "update": [{"id": "55", "error": "entry locked"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	resp, err := client.SubmitBatch(context.Background(), "store-1", syncdomain.BatchRequest{
		Update: []syncdomain.UpdateItem{{ExtensionID: "55", Quantity: 8}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Update, 1)
	assert.Equal(t, "entry locked", resp.Update[0].Error)
}

func TestParseQuantity(t *testing.T) {
	assert.True(t, parseQuantity("").IsZero())
	assert.True(t, parseQuantity("n/a").IsZero())
	assert.True(t, parseQuantity("3.25").Equal(decimal.RequireFromString("3.25")))
	assert.True(t, parseQuantity("-2").Equal(decimal.NewFromInt(-2)))
}
