package sync

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/stocksync/internal/domain/catalog"
)

// Planner scans the full product set of a store and computes the minimal
// create/update operation lists needed to bring the inventory extension in
// line with the source-of-truth quantities.
type Planner struct {
	products catalog.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewPlanner creates a batch delta planner.
func NewPlanner(products catalog.ProductRepository, logger *zap.Logger) *Planner {
	return &Planner{
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildPlan produces the delta plan for one store.
//
// Data-quality failures (missing sku, malformed extension id) are recorded
// on the product and persisted before the plan is returned, so a crash
// between planning and submission cannot lose the diagnostic. They are
// terminal for this cycle only: the product is retried next cycle once the
// data is fixed.
func (p *Planner) BuildPlan(ctx context.Context, products []catalog.Product, maxBatchSize int) (*BatchPlan, error) {
	var creates []CreateItem
	var updates []UpdateItem

	for i := range products {
		product := &products[i]

		if product.InventoryExtID != "" {
			item, ok, err := p.planUpdate(ctx, product)
			if err != nil {
				return nil, err
			}
			if ok {
				updates = append(updates, item)
			}
			continue
		}

		item, ok, err := p.planCreate(ctx, product)
		if err != nil {
			return nil, err
		}
		if ok {
			creates = append(creates, item)
		}
	}

	return p.applyBatchLimit(creates, updates, maxBatchSize), nil
}

// planCreate evaluates a product with no extension entry yet. Only items the
// ERP vouches for and that actually carry stock are worth creating.
func (p *Planner) planCreate(ctx context.Context, product *catalog.Product) (CreateItem, bool, error) {
	if !product.HasERPIdentity() || !product.SourceQuantity.IsPositive() {
		return CreateItem{}, false, nil
	}

	if product.SKU == "" {
		// Data-quality gate, not a transient failure: without a sku the
		// extension entry could never be matched back.
		product.MarkSyncError(catalog.SyncStatusErrNoSKU, "create candidate has no sku", p.now())
		if err := p.products.Update(ctx, product); err != nil {
			return CreateItem{}, false, err
		}
		p.logger.Warn("Create candidate excluded: no sku",
			zap.String("store_id", product.StoreID),
			zap.String("product_id", product.ID.String()),
			zap.String("internal_id", product.InternalID),
		)
		return CreateItem{}, false, nil
	}

	return CreateItem{
		ProductID:      product.ID,
		CorrelationKey: product.ID.String(),
		Name:           product.DisplayName(),
		SKU:            product.SKU,
		Quantity:       targetQuantity(product.SourceQuantity),
	}, true, nil
}

// planUpdate evaluates a product already present in the extension. The core
// idempotence rule lives here: an update is queued only when the last
// confirmed extension quantity differs from the target, so a no-op pass
// yields an empty update list.
func (p *Planner) planUpdate(ctx context.Context, product *catalog.Product) (UpdateItem, bool, error) {
	if !validExtensionID(product.InventoryExtID) {
		product.MarkSyncError(catalog.SyncStatusErrInvalidExtID, "extension id is not a positive integer: "+product.InventoryExtID, p.now())
		if err := p.products.Update(ctx, product); err != nil {
			return UpdateItem{}, false, err
		}
		p.logger.Warn("Update candidate excluded: malformed extension id",
			zap.String("store_id", product.StoreID),
			zap.String("product_id", product.ID.String()),
			zap.String("extension_id", product.InventoryExtID),
		)
		return UpdateItem{}, false, nil
	}

	var target int64
	if product.HasERPIdentity() {
		target = targetQuantity(product.SourceQuantity)
	}
	// Items the source system no longer reports get zeroed out rather than
	// left with stale positive stock.

	if product.ExtQuantity.Equal(decimal.NewFromInt(target)) {
		return UpdateItem{}, false, nil
	}

	return UpdateItem{
		ProductID:   product.ID,
		ExtensionID: product.InventoryExtID,
		Quantity:    target,
	}, true, nil
}

// applyBatchLimit caps the plan at maxBatchSize operations. Updates are
// prioritized over creates: stale stock figures are the costlier error
// class. Excess candidates are deferred to the next pass.
func (p *Planner) applyBatchLimit(creates []CreateItem, updates []UpdateItem, maxBatchSize int) *BatchPlan {
	if maxBatchSize <= 0 || len(creates)+len(updates) <= maxBatchSize {
		return &BatchPlan{Creates: creates, Updates: updates}
	}

	total := len(creates) + len(updates)
	if len(updates) > maxBatchSize {
		updates = updates[:maxBatchSize]
	}
	remaining := maxBatchSize - len(updates)
	if len(creates) > remaining {
		creates = creates[:remaining]
	}

	plan := &BatchPlan{
		Creates:  creates,
		Updates:  updates,
		Deferred: total - maxBatchSize,
	}
	p.logger.Info("Batch plan capped",
		zap.Int("max_batch_size", maxBatchSize),
		zap.Int("updates", len(plan.Updates)),
		zap.Int("creates", len(plan.Creates)),
		zap.Int("deferred", plan.Deferred),
	)
	return plan
}

// targetQuantity clamps a source quantity to max(0, floor(q)). Quantities
// are floored at planning time only, never at ingestion.
func targetQuantity(q decimal.Decimal) int64 {
	floored := q.Floor().IntPart()
	if floored < 0 {
		return 0
	}
	return floored
}

// validExtensionID accepts well-formed positive integers only.
func validExtensionID(id string) bool {
	n, err := strconv.ParseInt(id, 10, 64)
	return err == nil && n > 0
}
