package sync

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/stocksync/internal/domain/catalog"
)

// Reconciler applies the inventory extension's response to a submitted batch
// back onto the internal products.
//
// Re-applying the same response is safe: every write sets the same fields to
// the same values, so at-least-once delivery of responses cannot corrupt
// state.
type Reconciler struct {
	products catalog.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconciler creates a batch response reconciler.
func NewReconciler(products catalog.ProductRepository, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// Apply correlates the response items back to the plan they answer and
// updates the matched products. Returns aggregate created/updated/error
// counts.
//
// Created entries are joined by the echoed correlation key when the
// extension supports it, by display name otherwise (the create request does
// not carry the internal product id). Updated entries are joined by the
// extension id that was on the request item. An item that cannot be
// correlated, or that carries an error payload, is counted as an error and
// the product left stale; its delta stays non-zero so the next cycle
// retries it.
func (r *Reconciler) Apply(ctx context.Context, plan *BatchPlan, resp *BatchResponse) (Counts, error) {
	var counts Counts

	byKey := make(map[string]*CreateItem, len(plan.Creates))
	byName := make(map[string]*CreateItem, len(plan.Creates))
	for i := range plan.Creates {
		item := &plan.Creates[i]
		byKey[item.CorrelationKey] = item
		byName[item.Name] = item
	}
	byExtID := make(map[string]*UpdateItem, len(plan.Updates))
	for i := range plan.Updates {
		byExtID[plan.Updates[i].ExtensionID] = &plan.Updates[i]
	}

	for _, result := range resp.Create {
		if result.Error != "" {
			counts.Errors++
			r.logger.Error("Extension rejected create item",
				zap.String("name", result.Name),
				zap.String("error", result.Error),
			)
			continue
		}

		item := byKey[result.CorrelationKey]
		if item == nil {
			item = byName[result.Name]
		}
		if item == nil {
			counts.Errors++
			r.logger.Error("Create result matched no planned item",
				zap.String("name", result.Name),
				zap.Int64("extension_id", result.ID),
			)
			continue
		}

		if err := r.confirm(ctx, item.ProductID, result.ID, item.Quantity); err != nil {
			counts.Errors++
			r.logger.Error("Failed to record created extension entry",
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
			continue
		}
		counts.Created++
	}

	for _, result := range resp.Update {
		if result.Error != "" {
			counts.Errors++
			r.logger.Error("Extension rejected update item",
				zap.String("extension_id", result.ID),
				zap.String("error", result.Error),
			)
			continue
		}

		item := byExtID[result.ID]
		if item == nil {
			counts.Errors++
			r.logger.Error("Update result matched no planned item",
				zap.String("extension_id", result.ID),
			)
			continue
		}

		if err := r.confirm(ctx, item.ProductID, 0, item.Quantity); err != nil {
			counts.Errors++
			r.logger.Error("Failed to record confirmed extension update",
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
			continue
		}
		counts.Updated++
	}

	return counts, nil
}

// confirm writes the accepted quantity (and, for creates, the assigned
// extension id) onto the product. extID zero means the id is already known.
func (r *Reconciler) confirm(ctx context.Context, productID uuid.UUID, extID int64, quantity int64) error {
	product, err := r.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	assigned := ""
	if extID > 0 {
		assigned = strconv.FormatInt(extID, 10)
	}
	product.MarkSynced(assigned, decimal.NewFromInt(quantity), r.now())
	return r.products.Update(ctx, product)
}
