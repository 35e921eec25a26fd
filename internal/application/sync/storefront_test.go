package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/erp/stocksync/internal/domain/catalog"
	syncdomain "github.com/erp/stocksync/internal/domain/sync"
)

func storefrontSettings() StoreSettings {
	s := testSettings()
	s.Storefront = StorefrontSettings{
		Enabled:       true,
		CreateMissing: true,
		Concurrency:   2,
	}
	return s
}

func storefrontCandidate(sku string) catalog.Product {
	return catalog.Product{
		ID:      uuid.New(),
		StoreID: "store-1",
		SKU:     sku,
		Name:    "Item " + sku,
	}
}

func TestMatchStorefront_LinksAndCreates(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	storefront := new(MockStorefrontGateway)

	known := storefrontCandidate("SKU-KNOWN")
	missing := storefrontCandidate("SKU-MISSING")
	alreadyLinked := storefrontCandidate("SKU-LINKED")
	alreadyLinked.StorefrontID = "10"
	noSKU := storefrontCandidate("")

	products.On("FindAllByStore", mock.Anything, "store-1").
		Return([]catalog.Product{known, missing, alreadyLinked, noSKU}, nil)
	storefront.On("FindBySKU", mock.Anything, "store-1", "SKU-KNOWN").
		Return(&StorefrontProduct{ID: "11", SKU: "SKU-KNOWN"}, nil)
	storefront.On("FindBySKU", mock.Anything, "store-1", "SKU-MISSING").
		Return(nil, nil)
	storefront.On("CreateProduct", mock.Anything, "store-1", mock.AnythingOfType("sync.StorefrontProductInput")).
		Return(&StorefrontProduct{ID: "12", SKU: "SKU-MISSING"}, nil)
	products.On("Update", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	svc := newTestService(products, new(MockRunRepository), new(MockItemSource), new(MockExtensionGateway), storefront, &fakeLocker{})

	var counts syncdomain.Counts
	svc.matchStorefront(ctx, storefrontSettings(), &counts)

	assert.Equal(t, 1, counts.Created)
	assert.Equal(t, 1, counts.Updated)
	assert.Equal(t, 0, counts.Errors)
	// Linked and sku-less products never reach the storefront.
	storefront.AssertNotCalled(t, "FindBySKU", mock.Anything, "store-1", "SKU-LINKED")
	storefront.AssertNotCalled(t, "FindBySKU", mock.Anything, "store-1", "")
	storefront.AssertExpectations(t)
}

func TestMatchStorefront_CreateMissingDisabledSkips(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	storefront := new(MockStorefrontGateway)

	products.On("FindAllByStore", mock.Anything, "store-1").
		Return([]catalog.Product{storefrontCandidate("SKU-MISSING")}, nil)
	storefront.On("FindBySKU", mock.Anything, "store-1", "SKU-MISSING").Return(nil, nil)

	svc := newTestService(products, new(MockRunRepository), new(MockItemSource), new(MockExtensionGateway), storefront, &fakeLocker{})

	settings := storefrontSettings()
	settings.Storefront.CreateMissing = false

	var counts syncdomain.Counts
	svc.matchStorefront(ctx, settings, &counts)

	assert.Equal(t, 1, counts.Skipped)
	storefront.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchStorefront_LookupFailureCounted(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	storefront := new(MockStorefrontGateway)

	products.On("FindAllByStore", mock.Anything, "store-1").
		Return([]catalog.Product{storefrontCandidate("SKU-1"), storefrontCandidate("SKU-2")}, nil)
	storefront.On("FindBySKU", mock.Anything, "store-1", "SKU-1").
		Return(nil, errors.New("rate limited"))
	storefront.On("FindBySKU", mock.Anything, "store-1", "SKU-2").
		Return(&StorefrontProduct{ID: "13", SKU: "SKU-2"}, nil)
	products.On("Update", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	svc := newTestService(products, new(MockRunRepository), new(MockItemSource), new(MockExtensionGateway), storefront, &fakeLocker{})

	var counts syncdomain.Counts
	svc.matchStorefront(ctx, storefrontSettings(), &counts)

	assert.Equal(t, 1, counts.Errors)
	assert.Equal(t, 1, counts.Updated)
}

func TestMatchStorefront_CreateCarriesPriceAndName(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	storefront := new(MockStorefrontGateway)

	price := decimal.RequireFromString("4.50")
	candidate := storefrontCandidate("SKU-1")
	candidate.RetailPrice = &price

	products.On("FindAllByStore", mock.Anything, "store-1").
		Return([]catalog.Product{candidate}, nil)
	storefront.On("FindBySKU", mock.Anything, "store-1", "SKU-1").Return(nil, nil)
	storefront.On("CreateProduct", mock.Anything, "store-1", StorefrontProductInput{
		Name:  "Item SKU-1",
		SKU:   "SKU-1",
		Price: &price,
	}).Return(&StorefrontProduct{ID: "14", SKU: "SKU-1"}, nil)
	products.On("Update", mock.Anything, mock.AnythingOfType("*catalog.Product")).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*catalog.Product)
			assert.Equal(t, "14", p.StorefrontID)
		}).
		Return(nil)

	svc := newTestService(products, new(MockRunRepository), new(MockItemSource), new(MockExtensionGateway), storefront, &fakeLocker{})

	var counts syncdomain.Counts
	svc.matchStorefront(ctx, storefrontSettings(), &counts)

	assert.Equal(t, 1, counts.Created)
	storefront.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestMatchStorefront_ScanFailureCounted(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	storefront := new(MockStorefrontGateway)

	products.On("FindAllByStore", mock.Anything, "store-1").
		Return(nil, errors.New("db down"))

	svc := newTestService(products, new(MockRunRepository), new(MockItemSource), new(MockExtensionGateway), storefront, &fakeLocker{})

	var counts syncdomain.Counts
	svc.matchStorefront(ctx, storefrontSettings(), &counts)

	assert.Equal(t, 1, counts.Errors)
	storefront.AssertNotCalled(t, "FindBySKU", mock.Anything, mock.Anything, mock.Anything)
}
