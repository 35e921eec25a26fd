package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SyncStatus values recorded on a product after each reconciliation step.
// These are free-text markers rather than an enum, so downstream tooling can
// surface new error classes without a schema change.
const (
	SyncStatusCreated         = "Created"
	SyncStatusUpdated         = "Updated"
	SyncStatusSynced          = "Synced"
	SyncStatusErrNoSKU        = "Error - No SKU"
	SyncStatusErrInvalidExtID = "Error - Invalid ATUM ID"
)

// Product is the merged view of one real-world item as known to up to three
// systems: the ERP item master, the storefront catalog and the multi-location
// inventory extension. Identity fields stay empty until the corresponding
// system has been heard from.
type Product struct {
	// ID is the unique identifier of this product
	ID uuid.UUID
	// StoreID is the store this product belongs to
	StoreID string

	// InternalID is the ERP primary key. Once set it is authoritative:
	// the product is never re-matched by sku or barcode again.
	InternalID string
	// LegacyID is the secondary ERP source identifier kept for items
	// imported before internal ids were exposed by the ERP API.
	LegacyID string
	// SKU is the ERP secondary code. Unique across products once assigned.
	SKU string
	// Barcode is the ERP tertiary code.
	Barcode string
	// StorefrontID is the product id assigned by the storefront catalog.
	StorefrontID string
	// InventoryExtID is the entry id assigned by the inventory extension.
	InventoryExtID string

	// Descriptive fields, sourced from the ERP, last write wins.
	Name     string
	Category string
	Unit     string
	Group    string
	VatCode  string

	// SourceQuantity is the ERP stock figure as last fetched.
	SourceQuantity decimal.Decimal
	// ExtQuantity is the last quantity the inventory extension confirmed
	// accepted, not the desired target.
	ExtQuantity decimal.Decimal

	// Pricing, optional decimals (nil = never provided by the source).
	RetailPrice    *decimal.Decimal
	WholesalePrice *decimal.Decimal
	SalePrice      *decimal.Decimal
	PurchasePrice  *decimal.Decimal
	Discount       *decimal.Decimal

	// Sync bookkeeping.
	LastSyncedAt   *time.Time
	LastSyncStatus string
	LastSyncError  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProductFromERP creates a product from an ERP item record that matched
// nothing in the existing set.
func NewProductFromERP(storeID string, rec ItemRecord, now time.Time) *Product {
	p := &Product{
		ID:             uuid.New(),
		StoreID:        storeID,
		LastSyncStatus: SyncStatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p.applyERPFields(rec)
	syncedAt := now
	p.LastSyncedAt = &syncedAt
	return p
}

// NewProductFromExtension creates a product seeded from an inventory
// extension entry with no ERP counterpart yet. SourceQuantity starts at zero;
// the product stays extension-only until an ERP cycle identifies it.
func NewProductFromExtension(storeID string, rec ExtensionRecord, now time.Time) *Product {
	syncedAt := now
	return &Product{
		ID:             uuid.New(),
		StoreID:        storeID,
		InventoryExtID: rec.ID,
		SKU:            rec.SKU,
		Name:           rec.Name,
		SourceQuantity: decimal.Zero,
		ExtQuantity:    rec.Quantity,
		LastSyncedAt:   &syncedAt,
		LastSyncStatus: SyncStatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ApplyERPRecord overwrites all ERP-mapped fields. The ERP is authoritative
// for identity codes, descriptive fields, prices and source quantity; the
// extension linkage (InventoryExtID, ExtQuantity) is left untouched.
func (p *Product) ApplyERPRecord(rec ItemRecord, now time.Time) {
	p.applyERPFields(rec)
	syncedAt := now
	p.LastSyncedAt = &syncedAt
	p.LastSyncStatus = SyncStatusUpdated
	p.LastSyncError = ""
	p.UpdatedAt = now
}

func (p *Product) applyERPFields(rec ItemRecord) {
	p.InternalID = rec.InternalID
	p.SKU = rec.SKU
	p.Barcode = rec.Barcode
	p.Name = rec.Name
	p.Category = rec.Category
	p.Unit = rec.Unit
	p.Group = rec.Group
	p.VatCode = rec.VatCode
	if rec.Quantity != nil {
		p.SourceQuantity = *rec.Quantity
	} else {
		p.SourceQuantity = decimal.Zero
	}
	p.RetailPrice = rec.RetailPrice
	p.WholesalePrice = rec.WholesalePrice
	p.SalePrice = rec.SalePrice
	p.PurchasePrice = rec.PurchasePrice
	p.Discount = rec.Discount
}

// ApplyExtensionRecord updates the extension linkage and last confirmed
// quantity. Name and SKU are backfilled only when the product's own fields
// are empty: ERP data, when present, is never overwritten by extension data.
func (p *Product) ApplyExtensionRecord(rec ExtensionRecord, now time.Time) {
	p.InventoryExtID = rec.ID
	p.ExtQuantity = rec.Quantity
	if p.Name == "" {
		p.Name = rec.Name
	}
	if p.SKU == "" {
		p.SKU = rec.SKU
	}
	syncedAt := now
	p.LastSyncedAt = &syncedAt
	p.LastSyncStatus = SyncStatusUpdated
	p.UpdatedAt = now
}

// HasERPIdentity reports whether the ERP still vouches for this item.
// Products that have lost ERP identity exist only in the extension and get
// their stock zeroed out by the planner.
func (p *Product) HasERPIdentity() bool {
	return p.InternalID != "" || p.LegacyID != ""
}

// DisplayName returns the name used on outbound create requests, falling
// back to a sku-derived label for unnamed items.
func (p *Product) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Product %s", p.SKU)
}

// MarkSyncError records a data-quality failure for this cycle. The product
// is excluded from the current batch and retried automatically next cycle
// once the underlying data is fixed.
func (p *Product) MarkSyncError(status, detail string, now time.Time) {
	p.LastSyncStatus = status
	p.LastSyncError = detail
	p.UpdatedAt = now
}

// MarkSynced records a confirmed extension write: the extension id (for
// creates) and the quantity it accepted.
func (p *Product) MarkSynced(extID string, quantity decimal.Decimal, now time.Time) {
	if extID != "" {
		p.InventoryExtID = extID
	}
	p.ExtQuantity = quantity
	syncedAt := now
	p.LastSyncedAt = &syncedAt
	p.LastSyncStatus = SyncStatusSynced
	p.LastSyncError = ""
	p.UpdatedAt = now
}
