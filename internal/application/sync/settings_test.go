package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/stocksync/internal/domain/catalog"
)

func TestStoreSettingsNormalize(t *testing.T) {
	s := StoreSettings{StoreID: "store-1"}
	s.Normalize()

	assert.Equal(t, DefaultMaxBatchSize, s.MaxBatchSize)
	assert.Equal(t, DefaultChunkSize, s.ChunkSize)
	assert.Equal(t, DefaultChunkDelay, s.ChunkDelay)
	assert.Equal(t, DefaultSyncInterval, s.SyncInterval)
	assert.Equal(t, DefaultStorefrontConcurrency, s.Storefront.Concurrency)
	assert.Equal(t, catalog.CodeFieldSKU, s.Matcher.PrimaryCode)
	assert.Equal(t, catalog.CodeFieldBarcode, s.Matcher.SecondaryCode)
}

func TestStoreSettingsNormalize_KeepsExplicitValues(t *testing.T) {
	s := StoreSettings{
		StoreID:      "store-1",
		MaxBatchSize: 10,
		ChunkSize:    5,
		ChunkDelay:   time.Second,
		SyncInterval: time.Hour,
		Matcher: catalog.MatcherOptions{
			PrimaryCode:   catalog.CodeFieldBarcode,
			SecondaryCode: catalog.CodeFieldSKU,
		},
	}
	s.Normalize()

	assert.Equal(t, 10, s.MaxBatchSize)
	assert.Equal(t, 5, s.ChunkSize)
	assert.Equal(t, time.Second, s.ChunkDelay)
	assert.Equal(t, time.Hour, s.SyncInterval)
	assert.Equal(t, catalog.CodeFieldBarcode, s.Matcher.PrimaryCode)
}

func TestStoreSettingsValidate(t *testing.T) {
	s := StoreSettings{}
	require.Error(t, s.Validate())

	s.StoreID = "store-1"
	require.NoError(t, s.Validate())
}
