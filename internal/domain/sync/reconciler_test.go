package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/stocksync/internal/domain/catalog"
)

func TestApply_CreateCorrelatedByKey(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	reconciler := NewReconciler(repo, zap.NewNop())

	productID := uuid.New()
	product := &catalog.Product{ID: productID, StoreID: "store-1", SKU: "SKU-1"}
	plan := &BatchPlan{
		Creates: []CreateItem{{
			ProductID:      productID,
			CorrelationKey: productID.String(),
			Name:           "Widget",
			SKU:            "SKU-1",
			Quantity:       5,
		}},
	}
	resp := &BatchResponse{
		Create: []CreateResult{{ID: 77, Name: "Widget", CorrelationKey: productID.String()}},
	}

	repo.On("FindByID", ctx, productID).Return(product, nil)
	repo.On("Update", ctx, product).Return(nil)

	counts, err := reconciler.Apply(ctx, plan, resp)

	require.NoError(t, err)
	assert.Equal(t, 1, counts.Created)
	assert.Equal(t, 0, counts.Errors)
	assert.Equal(t, "77", product.InventoryExtID)
	assert.True(t, product.ExtQuantity.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, catalog.SyncStatusSynced, product.LastSyncStatus)
	repo.AssertExpectations(t)
}

func TestApply_CreateFallsBackToNameCorrelation(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	reconciler := NewReconciler(repo, zap.NewNop())

	productID := uuid.New()
	product := &catalog.Product{ID: productID, StoreID: "store-1"}
	plan := &BatchPlan{
		Creates: []CreateItem{{
			ProductID:      productID,
			CorrelationKey: productID.String(),
			Name:           "Widget",
			Quantity:       5,
		}},
	}
	// Extension that does not echo the correlation key.
	resp := &BatchResponse{
		Create: []CreateResult{{ID: 77, Name: "Widget"}},
	}

	repo.On("FindByID", ctx, productID).Return(product, nil)
	repo.On("Update", ctx, product).Return(nil)

	counts, err := reconciler.Apply(ctx, plan, resp)

	require.NoError(t, err)
	assert.Equal(t, 1, counts.Created)
	assert.Equal(t, "77", product.InventoryExtID)
	repo.AssertExpectations(t)
}

func TestApply_UncorrelatedCreateCounted(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	reconciler := NewReconciler(repo, zap.NewNop())

	plan := &BatchPlan{
		Creates: []CreateItem{{ProductID: uuid.New(), CorrelationKey: "key-1", Name: "Widget", Quantity: 5}},
	}
	resp := &BatchResponse{
		Create: []CreateResult{{ID: 77, Name: "Something else"}},
	}

	counts, err := reconciler.Apply(ctx, plan, resp)

	require.NoError(t, err)
	assert.Equal(t, 0, counts.Created)
	assert.Equal(t, 1, counts.Errors)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestApply_CreateErrorPayloadCounted(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	reconciler := NewReconciler(repo, zap.NewNop())

	plan := &BatchPlan{
		Creates: []CreateItem{{ProductID: uuid.New(), CorrelationKey: "key-1", Name: "Widget", Quantity: 5}},
	}
	resp := &BatchResponse{
		Create: []CreateResult{{Name: "Widget", Error: "duplicate sku"}},
	}

	counts, err := reconciler.Apply(ctx, plan, resp)

	require.NoError(t, err)
	assert.Equal(t, 0, counts.Created)
	assert.Equal(t, 1, counts.Errors)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestApply_UpdateCorrelatedByExtensionID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	reconciler := NewReconciler(repo, zap.NewNop())

	productID := uuid.New()
	product := &catalog.Product{ID: productID, StoreID: "store-1", InventoryExtID: "55"}
	plan := &BatchPlan{
		Updates: []UpdateItem{{ProductID: productID, ExtensionID: "55", Quantity: 8}},
	}
	resp := &BatchResponse{
		Update: []UpdateResult{{ID: "55"}},
	}

	repo.On("FindByID", ctx, productID).Return(product, nil)
	repo.On("Update", ctx, product).Return(nil)

	counts, err := reconciler.Apply(ctx, plan, resp)

	require.NoError(t, err)
	assert.Equal(t, 1, counts.Updated)
	// The id was already known; the confirmed quantity is what changes.
	assert.Equal(t, "55", product.InventoryExtID)
	assert.True(t, product.ExtQuantity.Equal(decimal.NewFromInt(8)))
	repo.AssertExpectations(t)
}

func TestApply_UpdateErrorAndUnmatchedCounted(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	reconciler := NewReconciler(repo, zap.NewNop())

	plan := &BatchPlan{
		Updates: []UpdateItem{{ProductID: uuid.New(), ExtensionID: "55", Quantity: 8}},
	}
	resp := &BatchResponse{
		Update: []UpdateResult{
			{ID: "55", Error: "entry locked"},
			{ID: "999"},
		},
	}

	counts, err := reconciler.Apply(ctx, plan, resp)

	require.NoError(t, err)
	assert.Equal(t, 0, counts.Updated)
	assert.Equal(t, 2, counts.Errors)
}

func TestApply_ConfirmFailureCountsErrorAndContinues(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	reconciler := NewReconciler(repo, zap.NewNop())

	failingID := uuid.New()
	okID := uuid.New()
	okProduct := &catalog.Product{ID: okID, StoreID: "store-1", InventoryExtID: "56"}
	plan := &BatchPlan{
		Updates: []UpdateItem{
			{ProductID: failingID, ExtensionID: "55", Quantity: 8},
			{ProductID: okID, ExtensionID: "56", Quantity: 3},
		},
	}
	resp := &BatchResponse{
		Update: []UpdateResult{{ID: "55"}, {ID: "56"}},
	}

	repo.On("FindByID", ctx, failingID).Return(nil, errors.New("connection reset"))
	repo.On("FindByID", ctx, okID).Return(okProduct, nil)
	repo.On("Update", ctx, okProduct).Return(nil)

	counts, err := reconciler.Apply(ctx, plan, resp)

	require.NoError(t, err)
	assert.Equal(t, 1, counts.Updated)
	assert.Equal(t, 1, counts.Errors)
	repo.AssertExpectations(t)
}

func TestApply_ReapplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	reconciler := NewReconciler(repo, zap.NewNop())

	productID := uuid.New()
	product := &catalog.Product{ID: productID, StoreID: "store-1"}
	plan := &BatchPlan{
		Creates: []CreateItem{{ProductID: productID, CorrelationKey: productID.String(), Name: "Widget", Quantity: 5}},
	}
	resp := &BatchResponse{
		Create: []CreateResult{{ID: 77, Name: "Widget", CorrelationKey: productID.String()}},
	}

	repo.On("FindByID", ctx, productID).Return(product, nil)
	repo.On("Update", ctx, product).Return(nil)

	_, err := reconciler.Apply(ctx, plan, resp)
	require.NoError(t, err)
	_, err = reconciler.Apply(ctx, plan, resp)
	require.NoError(t, err)

	assert.Equal(t, "77", product.InventoryExtID)
	assert.True(t, product.ExtQuantity.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, catalog.SyncStatusSynced, product.LastSyncStatus)
}
