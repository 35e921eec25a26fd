package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/stocksync/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	StoreID string    `gorm:"type:varchar(50);not null;index:idx_products_store,priority:1"`

	InternalID     string `gorm:"type:varchar(100);index:idx_products_internal_id"`
	LegacyID       string `gorm:"type:varchar(100)"`
	SKU            string `gorm:"type:varchar(100);index:idx_products_sku"`
	Barcode        string `gorm:"type:varchar(100);index:idx_products_barcode"`
	StorefrontID   string `gorm:"type:varchar(100)"`
	InventoryExtID string `gorm:"type:varchar(100);index:idx_products_inventory_ext_id"`

	Name     string `gorm:"type:varchar(255)"`
	Category string `gorm:"type:varchar(100)"`
	Unit     string `gorm:"type:varchar(50)"`
	// "group" is a reserved word in SQL
	ItemGroup string `gorm:"type:varchar(100);column:item_group"`
	VatCode   string `gorm:"type:varchar(50)"`

	SourceQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExtQuantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	RetailPrice    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	WholesalePrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SalePrice      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	PurchasePrice  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Discount       *decimal.Decimal `gorm:"type:decimal(18,4)"`

	LastSyncedAt   *time.Time
	LastSyncStatus string `gorm:"type:varchar(100)"`
	LastSyncError  string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		ID:             m.ID,
		StoreID:        m.StoreID,
		InternalID:     m.InternalID,
		LegacyID:       m.LegacyID,
		SKU:            m.SKU,
		Barcode:        m.Barcode,
		StorefrontID:   m.StorefrontID,
		InventoryExtID: m.InventoryExtID,
		Name:           m.Name,
		Category:       m.Category,
		Unit:           m.Unit,
		Group:          m.ItemGroup,
		VatCode:        m.VatCode,
		SourceQuantity: m.SourceQuantity,
		ExtQuantity:    m.ExtQuantity,
		RetailPrice:    m.RetailPrice,
		WholesalePrice: m.WholesalePrice,
		SalePrice:      m.SalePrice,
		PurchasePrice:  m.PurchasePrice,
		Discount:       m.Discount,
		LastSyncedAt:   m.LastSyncedAt,
		LastSyncStatus: m.LastSyncStatus,
		LastSyncError:  m.LastSyncError,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.StoreID = p.StoreID
	m.InternalID = p.InternalID
	m.LegacyID = p.LegacyID
	m.SKU = p.SKU
	m.Barcode = p.Barcode
	m.StorefrontID = p.StorefrontID
	m.InventoryExtID = p.InventoryExtID
	m.Name = p.Name
	m.Category = p.Category
	m.Unit = p.Unit
	m.ItemGroup = p.Group
	m.VatCode = p.VatCode
	m.SourceQuantity = p.SourceQuantity
	m.ExtQuantity = p.ExtQuantity
	m.RetailPrice = p.RetailPrice
	m.WholesalePrice = p.WholesalePrice
	m.SalePrice = p.SalePrice
	m.PurchasePrice = p.PurchasePrice
	m.Discount = p.Discount
	m.LastSyncedAt = p.LastSyncedAt
	m.LastSyncStatus = p.LastSyncStatus
	m.LastSyncError = p.LastSyncError
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}
