package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/erp/stocksync/internal/domain/catalog"
	syncdomain "github.com/erp/stocksync/internal/domain/sync"
)

// runLockTTL bounds how long a crashed run can keep a store locked.
const runLockTTL = 30 * time.Minute

// Service is the sync orchestrator. Per store it sequences
// fetch -> extract -> match/upsert -> plan -> submit -> reconcile, bracketed
// by a Run audit record. Stores are isolated from each other: one store's
// failure is caught, recorded and does not block subsequent stores.
type Service struct {
	products   catalog.ProductRepository
	runs       syncdomain.RunRepository
	matcher    *catalog.Matcher
	planner    *syncdomain.Planner
	reconciler *syncdomain.Reconciler
	erp        ItemSource
	extension  ExtensionGateway
	storefront StorefrontGateway
	locks      RunLocker
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates the sync orchestrator. storefront may be nil when no
// storefront is configured; the matching phase is then skipped regardless of
// per-store settings.
func NewService(
	products catalog.ProductRepository,
	runs syncdomain.RunRepository,
	erp ItemSource,
	extension ExtensionGateway,
	storefront StorefrontGateway,
	locks RunLocker,
	logger *zap.Logger,
) *Service {
	return &Service{
		products:   products,
		runs:       runs,
		matcher:    catalog.NewMatcher(products),
		planner:    syncdomain.NewPlanner(products, logger),
		reconciler: syncdomain.NewReconciler(products, logger),
		erp:        erp,
		extension:  extension,
		storefront: storefront,
		locks:      locks,
		logger:     logger,
		now:        time.Now,
	}
}

// RunAll executes one reconciliation cycle for every enabled store in the
// snapshot, sequentially. Per-store failures are logged and isolated.
func (s *Service) RunAll(ctx context.Context, stores []StoreSettings, trigger syncdomain.Trigger) {
	for _, settings := range stores {
		if !settings.Enabled {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		run, err := s.RunStore(ctx, settings, trigger)
		switch {
		case errors.Is(err, ErrRunInProgress):
			s.logger.Info("Skipping store: run already in progress",
				zap.String("store_id", settings.StoreID),
			)
		case err != nil:
			s.logger.Error("Store sync failed",
				zap.String("store_id", settings.StoreID),
				zap.Error(err),
			)
		default:
			s.logger.Info("Store sync finished",
				zap.String("store_id", settings.StoreID),
				zap.String("run_id", run.ID.String()),
				zap.String("status", string(run.Status)),
				zap.Int("processed", run.Counts.Processed),
				zap.Int("created", run.Counts.Created),
				zap.Int("updated", run.Counts.Updated),
				zap.Int("skipped", run.Counts.Skipped),
				zap.Int("errors", run.Counts.Errors),
			)
		}
	}
}

// RunStore executes one reconciliation cycle for one store. A second
// concurrent attempt for the same store is rejected with ErrRunInProgress
// rather than silently racing.
func (s *Service) RunStore(ctx context.Context, settings StoreSettings, trigger syncdomain.Trigger) (*syncdomain.Run, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.Normalize()

	lock, err := s.locks.Acquire(ctx, settings.StoreID, runLockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := lock.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			s.logger.Warn("Failed to release run lock",
				zap.String("store_id", settings.StoreID),
				zap.Error(releaseErr),
			)
		}
	}()

	run := syncdomain.NewRun(settings.StoreID, trigger, s.now())
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}

	counts, execErr := s.execute(ctx, settings)

	switch {
	case execErr != nil && errors.Is(execErr, context.Canceled):
		run.Cancel(counts, s.now())
	case execErr != nil:
		run.Fail(counts, execErr.Error(), s.now())
	default:
		run.Complete(counts, s.now())
	}

	// Finalization must survive a cancelled run context.
	if err := s.runs.Update(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Error("Failed to finalize sync run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	}

	return run, execErr
}

// execute performs the pipeline steps and aggregates counts. It returns an
// error only for run-fatal conditions (source fetch failure, persistence
// breakdown, cancellation); per-record and per-chunk failures are absorbed
// into the error count.
func (s *Service) execute(ctx context.Context, settings StoreSettings) (syncdomain.Counts, error) {
	var counts syncdomain.Counts

	if err := s.ingestERP(ctx, settings, &counts); err != nil {
		return counts, err
	}
	if err := s.ingestExtension(ctx, settings, &counts); err != nil {
		return counts, err
	}
	if s.storefront != nil && settings.Storefront.Enabled {
		s.matchStorefront(ctx, settings, &counts)
	}
	if err := s.planAndSubmit(ctx, settings, &counts); err != nil {
		return counts, err
	}

	return counts, nil
}

// ingestERP pulls the item master and resolves every row through the
// matching engine. A failure on one record does not abort its siblings.
func (s *Service) ingestERP(ctx context.Context, settings StoreSettings, counts *syncdomain.Counts) error {
	table, err := s.erp.FetchItems(ctx, settings.StoreID)
	if err != nil {
		return fmt.Errorf("fetch ERP items: %w", err)
	}

	records := catalog.ExtractItems(table, settings.FieldMapping)
	s.logger.Debug("Extracted ERP item records",
		zap.String("store_id", settings.StoreID),
		zap.Int("rows", len(table.Rows)),
		zap.Int("records", len(records)),
	)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		result := s.matcher.MatchERPRecord(ctx, settings.StoreID, rec, settings.Matcher)
		counts.Processed++
		s.tally(result, counts, settings.StoreID, "erp")
	}
	return nil
}

// ingestExtension pulls the extension's stock entries and resolves each one.
func (s *Service) ingestExtension(ctx context.Context, settings StoreSettings, counts *syncdomain.Counts) error {
	records, err := s.extension.FetchStock(ctx, settings.StoreID)
	if err != nil {
		return fmt.Errorf("fetch extension stock: %w", err)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		result := s.matcher.MatchExtensionRecord(ctx, settings.StoreID, rec)
		counts.Processed++
		s.tally(result, counts, settings.StoreID, "extension")
	}
	return nil
}

func (s *Service) tally(result catalog.MatchResult, counts *syncdomain.Counts, storeID, source string) {
	if !result.Success {
		counts.Errors++
		s.logger.Error("Record matching failed",
			zap.String("store_id", storeID),
			zap.String("source", source),
			zap.Error(result.Err),
		)
		return
	}
	switch result.Action {
	case catalog.MatchActionCreated:
		counts.Created++
	case catalog.MatchActionUpdated:
		counts.Updated++
	}
}

// planAndSubmit builds the delta plan, submits it in chunks and reconciles
// each chunk response. A chunk failure marks all of that chunk's items as
// errored and the loop proceeds to the next chunk.
func (s *Service) planAndSubmit(ctx context.Context, settings StoreSettings, counts *syncdomain.Counts) error {
	products, err := s.products.FindAllByStore(ctx, settings.StoreID)
	if err != nil {
		return fmt.Errorf("scan products for planning: %w", err)
	}

	plan, err := s.planner.BuildPlan(ctx, products, settings.MaxBatchSize)
	if err != nil {
		return fmt.Errorf("build batch plan: %w", err)
	}

	if !settings.CreateEnabled {
		counts.Skipped += len(plan.Creates)
		plan.Creates = nil
	}
	if !settings.UpdateEnabled {
		counts.Skipped += len(plan.Updates)
		plan.Updates = nil
	}
	counts.Skipped += plan.Deferred

	if plan.IsEmpty() {
		s.logger.Debug("Delta plan empty, nothing to submit",
			zap.String("store_id", settings.StoreID),
		)
		return nil
	}

	chunks := chunkPlan(plan, settings.ChunkSize)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, err := s.extension.SubmitBatch(ctx, settings.StoreID, syncdomain.BatchRequest{
			Create: chunk.Creates,
			Update: chunk.Updates,
		})
		if err != nil {
			counts.Errors += chunk.Size()
			s.logger.Error("Batch chunk submission failed",
				zap.String("store_id", settings.StoreID),
				zap.Int("chunk", i+1),
				zap.Int("chunks", len(chunks)),
				zap.Int("items", chunk.Size()),
				zap.Error(err),
			)
			continue
		}

		chunkCounts, err := s.reconciler.Apply(ctx, chunk, resp)
		if err != nil {
			return fmt.Errorf("reconcile batch response: %w", err)
		}
		counts.Add(chunkCounts)

		if i < len(chunks)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(settings.ChunkDelay):
			}
		}
	}

	return nil
}

// chunkPlan splits a plan into submission-sized chunks, updates first.
func chunkPlan(plan *syncdomain.BatchPlan, chunkSize int) []*syncdomain.BatchPlan {
	if chunkSize <= 0 || plan.Size() <= chunkSize {
		return []*syncdomain.BatchPlan{plan}
	}

	var chunks []*syncdomain.BatchPlan
	current := &syncdomain.BatchPlan{}

	flush := func() {
		if !current.IsEmpty() {
			chunks = append(chunks, current)
			current = &syncdomain.BatchPlan{}
		}
	}

	for _, item := range plan.Updates {
		current.Updates = append(current.Updates, item)
		if current.Size() == chunkSize {
			flush()
		}
	}
	for _, item := range plan.Creates {
		current.Creates = append(current.Creates, item)
		if current.Size() == chunkSize {
			flush()
		}
	}
	flush()

	return chunks
}
