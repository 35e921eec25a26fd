package erp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}
}

func TestNewClient_RejectsInvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{APIKey: "key"})
	assert.Error(t, err)

	_, err = NewClient(&Config{BaseURL: "http://erp.local"})
	assert.Error(t, err)
}

func TestFetchItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/items", r.URL.Path)
		assert.Equal(t, "store-1", r.URL.Query().Get("store"))
		assert.NotEmpty(t, r.URL.Query().Get("timestamp"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"field_definitions": [
				{"name": "item_id", "type": "string"},
				{"name": "code", "type": "string"},
				{"name": "stock", "type": "number"}
			],
			"rows": [
				["1001", "SKU-1", "12.5"],
				["1002", null, "0"]
			]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	table, err := client.FetchItems(context.Background(), "store-1")

	require.NoError(t, err)
	require.Len(t, table.Definitions, 3)
	assert.Equal(t, "item_id", table.Definitions[0].Name)
	require.Len(t, table.Rows, 2)
	require.NotNil(t, table.Rows[0][0])
	assert.Equal(t, "1001", *table.Rows[0][0])
	assert.Nil(t, table.Rows[1][1])
}

func TestFetchItems_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.FetchItems(context.Background(), "store-1")

	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestFetchItems_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.FetchItems(context.Background(), "store-1")

	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestFetchItems_MissingDefinitions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"field_definitions": [], "rows": []}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.FetchItems(context.Background(), "store-1")

	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestFetchItems_ConnectionRefused(t *testing.T) {
	client, err := NewClient(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)

	_, err = client.FetchItems(context.Background(), "store-1")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchItems_PerStoreConfig(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Authorization")
		w.Write([]byte(`{"field_definitions": [{"name": "item_id", "type": "string"}], "rows": []}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	storeConfig := testConfig(server.URL)
	storeConfig.APIKey = "store-specific-key"
	require.NoError(t, client.SetStoreConfig("store-2", storeConfig))

	_, err = client.FetchItems(context.Background(), "store-2")
	require.NoError(t, err)
	assert.Equal(t, "Bearer store-specific-key", gotKey)

	_, err = client.FetchItems(context.Background(), "store-other")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotKey)
}
