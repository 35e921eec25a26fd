package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/erp/stocksync/internal/application/sync"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:        baseURL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		Timeout:        5 * time.Second,
	}
}

func TestFindBySKU(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "SKU-1", r.URL.Query().Get("sku"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)

		w.Write([]byte(`[{"id": 42, "name": "Widget", "sku": "SKU-1"}]`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	product, err := client.FindBySKU(context.Background(), "store-1", "SKU-1")

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "42", product.ID)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, "SKU-1", product.SKU)
}

func TestFindBySKU_NoMatchReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	product, err := client.FindBySKU(context.Background(), "store-1", "SKU-MISSING")

	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestFindBySKU_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.FindBySKU(context.Background(), "store-1", "SKU-1")

	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestCreateProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Widget", req["name"])
		assert.Equal(t, "SKU-1", req["sku"])
		assert.Equal(t, "9.90", req["regular_price"])
		assert.Equal(t, "draft", req["status"])
		assert.Equal(t, true, req["manage_stock"])

		w.Write([]byte(`{"id": 43, "name": "Widget", "sku": "SKU-1"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	price := decimal.RequireFromString("9.9")
	product, err := client.CreateProduct(context.Background(), "store-1", appsync.StorefrontProductInput{
		Name:  "Widget",
		SKU:   "SKU-1",
		Price: &price,
	})

	require.NoError(t, err)
	assert.Equal(t, "43", product.ID)
}

func TestCreateProduct_NoPriceOmitsField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, present := req["regular_price"]
		assert.False(t, present)

		w.Write([]byte(`{"id": 44, "name": "Widget", "sku": "SKU-1"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.CreateProduct(context.Background(), "store-1", appsync.StorefrontProductInput{
		Name: "Widget",
		SKU:  "SKU-1",
	})

	require.NoError(t, err)
}

func TestCreateProduct_MissingIDRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Widget", "sku": "SKU-1"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.CreateProduct(context.Background(), "store-1", appsync.StorefrontProductInput{
		Name: "Widget",
		SKU:  "SKU-1",
	})

	assert.ErrorIs(t, err, ErrInvalidResponse)
}
