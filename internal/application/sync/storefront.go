package sync

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/erp/stocksync/internal/domain/catalog"
	syncdomain "github.com/erp/stocksync/internal/domain/sync"
)

// storefrontOutcome is the per-product result of the storefront phase.
// Results may arrive in any order; each one only ever touches its own
// product row, so no shared collection is mutated across workers.
type storefrontOutcome struct {
	created bool
	updated bool
	failed  bool
}

// matchStorefront links products that have no storefront id yet: look up by
// sku, create when absent and creation is enabled. Calls run through a
// bounded worker pool to respect storefront rate limits without serializing
// a whole catalog.
func (s *Service) matchStorefront(ctx context.Context, settings StoreSettings, counts *syncdomain.Counts) {
	products, err := s.products.FindAllByStore(ctx, settings.StoreID)
	if err != nil {
		counts.Errors++
		s.logger.Error("Storefront phase: product scan failed",
			zap.String("store_id", settings.StoreID),
			zap.Error(err),
		)
		return
	}

	var candidates []catalog.Product
	for _, p := range products {
		if p.StorefrontID == "" && p.SKU != "" {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return
	}

	jobs := make(chan catalog.Product)
	outcomes := make(chan storefrontOutcome, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < settings.Storefront.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for product := range jobs {
				outcomes <- s.linkStorefrontProduct(ctx, settings, product)
			}
		}()
	}

	for _, product := range candidates {
		if ctx.Err() != nil {
			break
		}
		jobs <- product
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	for outcome := range outcomes {
		switch {
		case outcome.failed:
			counts.Errors++
		case outcome.created:
			counts.Created++
		case outcome.updated:
			counts.Updated++
		default:
			counts.Skipped++
		}
	}
}

// linkStorefrontProduct resolves one product against the storefront and
// persists the learned id on that product's own row.
func (s *Service) linkStorefrontProduct(ctx context.Context, settings StoreSettings, product catalog.Product) storefrontOutcome {
	found, err := s.storefront.FindBySKU(ctx, settings.StoreID, product.SKU)
	if err != nil {
		s.logger.Error("Storefront lookup failed",
			zap.String("store_id", settings.StoreID),
			zap.String("sku", product.SKU),
			zap.Error(err),
		)
		return storefrontOutcome{failed: true}
	}

	created := false
	if found == nil {
		if !settings.Storefront.CreateMissing {
			return storefrontOutcome{}
		}
		found, err = s.storefront.CreateProduct(ctx, settings.StoreID, StorefrontProductInput{
			Name:  product.DisplayName(),
			SKU:   product.SKU,
			Price: product.RetailPrice,
		})
		if err != nil {
			s.logger.Error("Storefront create failed",
				zap.String("store_id", settings.StoreID),
				zap.String("sku", product.SKU),
				zap.Error(err),
			)
			return storefrontOutcome{failed: true}
		}
		created = true
	}

	product.StorefrontID = found.ID
	product.UpdatedAt = s.now()
	if err := s.products.Update(ctx, &product); err != nil {
		s.logger.Error("Failed to persist storefront link",
			zap.String("store_id", settings.StoreID),
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
		return storefrontOutcome{failed: true}
	}

	return storefrontOutcome{created: created, updated: !created}
}
