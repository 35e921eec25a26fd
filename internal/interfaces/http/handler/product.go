package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/erp/stocksync/internal/domain/catalog"
)

// ProductHandler handles product read API endpoints
type ProductHandler struct {
	BaseHandler
	products catalog.ProductRepository
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products catalog.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// ProductResponse represents a reconciled product in API responses
type ProductResponse struct {
	ID             string     `json:"id"`
	StoreID        string     `json:"store_id"`
	InternalID     string     `json:"internal_id,omitempty"`
	LegacyID       string     `json:"legacy_id,omitempty"`
	SKU            string     `json:"sku,omitempty"`
	Barcode        string     `json:"barcode,omitempty"`
	StorefrontID   string     `json:"storefront_id,omitempty"`
	InventoryExtID string     `json:"inventory_ext_id,omitempty"`
	Name           string     `json:"name"`
	Category       string     `json:"category,omitempty"`
	SourceQuantity string     `json:"source_quantity"`
	ExtQuantity    string     `json:"ext_quantity"`
	RetailPrice    *string    `json:"retail_price,omitempty"`
	LastSyncStatus string     `json:"last_sync_status,omitempty"`
	LastSyncError  string     `json:"last_sync_error,omitempty"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID.String(),
		StoreID:        p.StoreID,
		InternalID:     p.InternalID,
		LegacyID:       p.LegacyID,
		SKU:            p.SKU,
		Barcode:        p.Barcode,
		StorefrontID:   p.StorefrontID,
		InventoryExtID: p.InventoryExtID,
		Name:           p.Name,
		Category:       p.Category,
		SourceQuantity: p.SourceQuantity.String(),
		ExtQuantity:    p.ExtQuantity.String(),
		RetailPrice:    formatPrice(p.RetailPrice),
		LastSyncStatus: p.LastSyncStatus,
		LastSyncError:  p.LastSyncError,
		LastSyncedAt:   p.LastSyncedAt,
	}
}

func formatPrice(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stores/:store_id/products", h.ListProducts)
}

// listProductsRequest binds the product listing query parameters
type listProductsRequest struct {
	SKU string `form:"sku"`
}

// ListProducts returns a store's reconciled products, optionally narrowed
// to one sku
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var req storeIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "store id is required")
		return
	}

	var query listProductsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "invalid query parameters")
		return
	}

	if query.SKU != "" {
		product, err := h.products.FindBySKU(c.Request.Context(), req.StoreID, query.SKU)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, []ProductResponse{toProductResponse(product)})
		return
	}

	products, err := h.products.FindAllByStore(c.Request.Context(), req.StoreID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = toProductResponse(&products[i])
	}
	h.Success(c, responses)
}
