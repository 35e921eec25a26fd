package catalog

import (
	"context"

	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository errors
var (
	ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrDuplicateSKU    = shared.NewDomainError("DUPLICATE_SKU", "A product with this SKU already exists")
)

// ProductRepository defines the interface for product persistence.
// The query shapes are exactly the ones the matching engine and the batch
// planner need; nothing broader is required.
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByInternalID finds a product by its ERP primary key within a store,
	// searched across all products matched or not
	FindByInternalID(ctx context.Context, storeID, internalID string) (*Product, error)

	// FindUnidentifiedByCode finds a product whose sku or barcode equals code,
	// restricted to products with an empty internal id. Products the ERP has
	// already identified are never candidates for code-based matching.
	FindUnidentifiedByCode(ctx context.Context, storeID, code string) (*Product, error)

	// FindByExtensionID finds a product by its inventory-extension entry id
	FindByExtensionID(ctx context.Context, storeID, extID string) (*Product, error)

	// FindBySKU finds a product by exact sku within a store
	FindBySKU(ctx context.Context, storeID, sku string) (*Product, error)

	// FindAllByStore returns the full product set for a store (planner scan)
	FindAllByStore(ctx context.Context, storeID string) ([]Product, error)

	// Save inserts a new product
	Save(ctx context.Context, product *Product) error

	// Update persists changes to an existing product in place
	Update(ctx context.Context, product *Product) error
}
