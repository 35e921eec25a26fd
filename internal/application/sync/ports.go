package sync

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/stocksync/internal/domain/catalog"
	"github.com/erp/stocksync/internal/domain/shared"
	syncdomain "github.com/erp/stocksync/internal/domain/sync"
)

// ErrRunInProgress is returned when a run is requested for a store that is
// already being synced. Concurrent triggers are rejected, never raced.
var ErrRunInProgress = shared.NewDomainError("RUN_IN_PROGRESS", "A sync run is already in progress for this store")

// ItemSource fetches the raw columnar item payload from the ERP.
type ItemSource interface {
	FetchItems(ctx context.Context, storeID string) (catalog.FieldTable, error)
}

// ExtensionGateway talks to the multi-location inventory extension.
type ExtensionGateway interface {
	// FetchStock returns the extension's current per-item stock entries
	FetchStock(ctx context.Context, storeID string) ([]catalog.ExtensionRecord, error)

	// SubmitBatch submits one create/update batch and returns the
	// extension's per-item results
	SubmitBatch(ctx context.Context, storeID string, req syncdomain.BatchRequest) (*syncdomain.BatchResponse, error)
}

// StorefrontProduct is the storefront's view of a catalog entry. The id is
// treated as an opaque identifier.
type StorefrontProduct struct {
	ID   string
	Name string
	SKU  string
}

// StorefrontProductInput carries the fields needed to create a storefront
// product.
type StorefrontProductInput struct {
	Name  string
	SKU   string
	Price *decimal.Decimal
}

// StorefrontGateway talks to the storefront catalog.
type StorefrontGateway interface {
	// FindBySKU returns the storefront product with the given sku, or
	// nil when none exists
	FindBySKU(ctx context.Context, storeID, sku string) (*StorefrontProduct, error)

	// CreateProduct creates a storefront product and returns it with its
	// assigned id
	CreateProduct(ctx context.Context, storeID string, input StorefrontProductInput) (*StorefrontProduct, error)
}

// RunLock is a held per-store advisory lock.
type RunLock interface {
	Release(ctx context.Context) error
}

// RunLocker serializes runs per store. Acquire returns ErrRunInProgress when
// the store is already locked by another run.
type RunLocker interface {
	Acquire(ctx context.Context, storeID string, ttl time.Duration) (RunLock, error)
}
