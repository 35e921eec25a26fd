package catalog

import (
	"context"
	"errors"
	"time"
)

// MatchAction says what the matching engine did with an incoming record.
type MatchAction string

const (
	MatchActionCreated MatchAction = "CREATED"
	MatchActionUpdated MatchAction = "UPDATED"
)

// MatchType identifies which strategy resolved the record.
type MatchType string

const (
	MatchTypeInternalID    MatchType = "INTERNAL_ID"
	MatchTypePrimaryCode   MatchType = "PRIMARY_CODE"
	MatchTypeSecondaryCode MatchType = "SECONDARY_CODE"
	MatchTypeExtensionID   MatchType = "EXTENSION_ID"
	MatchTypeSKU           MatchType = "SKU"
	MatchTypeNone          MatchType = "NONE"
)

// CodeField selects which ERP record field acts as the primary or secondary
// matching code for a store.
type CodeField string

const (
	CodeFieldSKU     CodeField = "sku"
	CodeFieldBarcode CodeField = "barcode"
)

// codeValue returns the record value the given code field refers to.
func (r ItemRecord) codeValue(field CodeField) string {
	switch field {
	case CodeFieldBarcode:
		return r.Barcode
	default:
		return r.SKU
	}
}

// MatchResult reports the outcome of resolving one incoming record. Expected
// conditions (no match found, record created instead) are not errors; Err is
// populated only for lookup or persistence failures, and such a failure for
// one record never aborts its siblings.
type MatchResult struct {
	Product   *Product
	Action    MatchAction
	MatchType MatchType
	Success   bool
	Err       error
}

func matchFailure(err error) MatchResult {
	return MatchResult{Success: false, Err: err}
}

// MatcherOptions carries the per-store matching choices from the settings
// snapshot.
type MatcherOptions struct {
	// PrimaryCode and SecondaryCode choose which record fields are tried
	// at the code-matching tiers.
	PrimaryCode   CodeField
	SecondaryCode CodeField
}

// DefaultMatcherOptions matches by sku first, barcode second.
func DefaultMatcherOptions() MatcherOptions {
	return MatcherOptions{PrimaryCode: CodeFieldSKU, SecondaryCode: CodeFieldBarcode}
}

// Matcher resolves incoming records from either source against the existing
// product set and applies exactly one create or update per record.
//
// The per-source lookup order is held as an ordered strategy list rather
// than nested conditionals, so the precedence policy is a single testable
// data structure.
type Matcher struct {
	products ProductRepository
	now      func() time.Time
}

// NewMatcher creates a matching engine over the given product store.
func NewMatcher(products ProductRepository) *Matcher {
	return &Matcher{
		products: products,
		now:      time.Now,
	}
}

type erpStrategy struct {
	matchType MatchType
	find      func(ctx context.Context, storeID string, rec ItemRecord) (*Product, error)
}

// erpStrategies returns the ordered ERP lookup tiers:
//
//  1. internal id equality, across all products. The ERP key is immutable
//     and unique per item, so it always wins.
//  2. primary code against sku-or-barcode, but only among products whose
//     internal id is still empty. A code coincidence must never hijack a
//     record the ERP has already identified elsewhere.
//  3. secondary code, same restriction.
func (m *Matcher) erpStrategies(opts MatcherOptions) []erpStrategy {
	return []erpStrategy{
		{
			matchType: MatchTypeInternalID,
			find: func(ctx context.Context, storeID string, rec ItemRecord) (*Product, error) {
				if rec.InternalID == "" {
					return nil, nil
				}
				return m.lookup(m.products.FindByInternalID(ctx, storeID, rec.InternalID))
			},
		},
		{
			matchType: MatchTypePrimaryCode,
			find: func(ctx context.Context, storeID string, rec ItemRecord) (*Product, error) {
				code := rec.codeValue(opts.PrimaryCode)
				if code == "" {
					return nil, nil
				}
				return m.lookup(m.products.FindUnidentifiedByCode(ctx, storeID, code))
			},
		},
		{
			matchType: MatchTypeSecondaryCode,
			find: func(ctx context.Context, storeID string, rec ItemRecord) (*Product, error) {
				code := rec.codeValue(opts.SecondaryCode)
				if code == "" {
					return nil, nil
				}
				return m.lookup(m.products.FindUnidentifiedByCode(ctx, storeID, code))
			},
		},
	}
}

// MatchERPRecord resolves one ERP item record: first hit of the ordered
// strategy list updates that product in place (full replace of ERP-mapped
// fields); no hit creates a new product.
func (m *Matcher) MatchERPRecord(ctx context.Context, storeID string, rec ItemRecord, opts MatcherOptions) MatchResult {
	for _, strategy := range m.erpStrategies(opts) {
		product, err := strategy.find(ctx, storeID, rec)
		if err != nil {
			return matchFailure(err)
		}
		if product == nil {
			continue
		}

		product.ApplyERPRecord(rec, m.now())
		if err := m.products.Update(ctx, product); err != nil {
			return matchFailure(err)
		}
		return MatchResult{
			Product:   product,
			Action:    MatchActionUpdated,
			MatchType: strategy.matchType,
			Success:   true,
		}
	}

	product := NewProductFromERP(storeID, rec, m.now())
	if err := m.products.Save(ctx, product); err != nil {
		return matchFailure(err)
	}
	return MatchResult{
		Product:   product,
		Action:    MatchActionCreated,
		MatchType: MatchTypeNone,
		Success:   true,
	}
}

// MatchExtensionRecord resolves one inventory-extension stock entry:
// extension id first, sku second, create when neither hits.
func (m *Matcher) MatchExtensionRecord(ctx context.Context, storeID string, rec ExtensionRecord) MatchResult {
	strategies := []struct {
		matchType MatchType
		find      func() (*Product, error)
	}{
		{
			matchType: MatchTypeExtensionID,
			find: func() (*Product, error) {
				if rec.ID == "" {
					return nil, nil
				}
				return m.lookup(m.products.FindByExtensionID(ctx, storeID, rec.ID))
			},
		},
		{
			matchType: MatchTypeSKU,
			find: func() (*Product, error) {
				if rec.SKU == "" {
					return nil, nil
				}
				return m.lookup(m.products.FindBySKU(ctx, storeID, rec.SKU))
			},
		},
	}

	for _, strategy := range strategies {
		product, err := strategy.find()
		if err != nil {
			return matchFailure(err)
		}
		if product == nil {
			continue
		}

		product.ApplyExtensionRecord(rec, m.now())
		if err := m.products.Update(ctx, product); err != nil {
			return matchFailure(err)
		}
		return MatchResult{
			Product:   product,
			Action:    MatchActionUpdated,
			MatchType: strategy.matchType,
			Success:   true,
		}
	}

	product := NewProductFromExtension(storeID, rec, m.now())
	if err := m.products.Save(ctx, product); err != nil {
		return matchFailure(err)
	}
	return MatchResult{
		Product:   product,
		Action:    MatchActionCreated,
		MatchType: MatchTypeNone,
		Success:   true,
	}
}

// lookup normalizes repository results: not-found becomes a nil product so
// the next strategy tier gets its turn.
func (m *Matcher) lookup(product *Product, err error) (*Product, error) {
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}
