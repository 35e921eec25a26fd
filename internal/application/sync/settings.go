package sync

import (
	"time"

	"github.com/erp/stocksync/internal/domain/catalog"
	"github.com/erp/stocksync/internal/domain/shared"
)

// StorefrontSettings controls the optional storefront matching phase.
type StorefrontSettings struct {
	Enabled bool
	// CreateMissing creates storefront products for skus the storefront
	// does not know yet
	CreateMissing bool
	// Concurrency bounds in-flight storefront calls; the storefront is
	// the slowest collaborator and rate limited
	Concurrency int
}

// StoreSettings is the read-only configuration snapshot one run operates
// on. It is taken at a well-defined boundary (scheduler tick or manual
// trigger) and never re-read mid-run.
type StoreSettings struct {
	StoreID string
	Enabled bool

	FieldMapping catalog.FieldMapping
	Matcher      catalog.MatcherOptions

	// CreateEnabled and UpdateEnabled toggle the respective halves of the
	// delta plan for this store
	CreateEnabled bool
	UpdateEnabled bool

	MaxBatchSize int
	ChunkSize    int
	ChunkDelay   time.Duration
	SyncInterval time.Duration

	Storefront StorefrontSettings
}

// Defaults mirror the legacy system's shipped configuration.
const (
	DefaultMaxBatchSize          = 200
	DefaultChunkSize             = 50
	DefaultChunkDelay            = 500 * time.Millisecond
	DefaultSyncInterval          = 15 * time.Minute
	DefaultStorefrontConcurrency = 10
)

// Normalize fills unset numeric settings with defaults.
func (s *StoreSettings) Normalize() {
	if s.MaxBatchSize <= 0 {
		s.MaxBatchSize = DefaultMaxBatchSize
	}
	if s.ChunkSize <= 0 {
		s.ChunkSize = DefaultChunkSize
	}
	if s.ChunkDelay <= 0 {
		s.ChunkDelay = DefaultChunkDelay
	}
	if s.SyncInterval <= 0 {
		s.SyncInterval = DefaultSyncInterval
	}
	if s.Storefront.Concurrency <= 0 {
		s.Storefront.Concurrency = DefaultStorefrontConcurrency
	}
	if s.Matcher.PrimaryCode == "" {
		s.Matcher = catalog.DefaultMatcherOptions()
	}
}

// Validate checks the snapshot is usable at all.
func (s *StoreSettings) Validate() error {
	if s.StoreID == "" {
		return shared.NewDomainError("INVALID_SETTINGS", "store id is required")
	}
	return nil
}
