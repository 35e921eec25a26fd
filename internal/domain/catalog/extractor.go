package catalog

import (
	"github.com/shopspring/decimal"
)

// FieldDefinition describes one column of the ERP item API response.
type FieldDefinition struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FieldTable is the columnar payload returned by the ERP item API: an
// ordered descriptor list plus rows of positional, optional string values
// aligned to it.
type FieldTable struct {
	Definitions []FieldDefinition `json:"field_definitions"`
	Rows        [][]*string       `json:"rows"`
}

// ItemRecord is one typed ERP item row. Numeric fields are pointers so that
// "unset" (source value absent or unparseable) stays distinct from zero.
type ItemRecord struct {
	InternalID string
	LegacyID   string
	SKU        string
	Barcode    string
	Name       string
	Category   string
	Unit       string
	Group      string
	VatCode    string

	Quantity       *decimal.Decimal
	RetailPrice    *decimal.Decimal
	WholesalePrice *decimal.Decimal
	SalePrice      *decimal.Decimal
	PurchasePrice  *decimal.Decimal
	Discount       *decimal.Decimal
}

// ExtensionRecord is one per-location stock entry reported by the inventory
// extension.
type ExtensionRecord struct {
	ID       string
	SKU      string
	Name     string
	Quantity decimal.Decimal
}

// FieldMapping names which ERP source field plays which role. Supplied per
// store by the settings snapshot; empty entries mean the role is not mapped
// for that store.
type FieldMapping struct {
	InternalID     string `mapstructure:"internal_id"`
	LegacyID       string `mapstructure:"legacy_id"`
	SKU            string `mapstructure:"sku"`
	Barcode        string `mapstructure:"barcode"`
	Name           string `mapstructure:"name"`
	Category       string `mapstructure:"category"`
	Unit           string `mapstructure:"unit"`
	Group          string `mapstructure:"group"`
	VatCode        string `mapstructure:"vat_code"`
	Quantity       string `mapstructure:"quantity"`
	RetailPrice    string `mapstructure:"retail_price"`
	WholesalePrice string `mapstructure:"wholesale_price"`
	SalePrice      string `mapstructure:"sale_price"`
	PurchasePrice  string `mapstructure:"purchase_price"`
	Discount       string `mapstructure:"discount"`
}

type fieldAssigner func(rec *ItemRecord, value string)

// assigners builds the source-field-name -> setter index for this mapping.
// Mapping entries left empty are skipped, so descriptor names that map to
// nothing are ignored silently.
func (m FieldMapping) assigners() map[string]fieldAssigner {
	out := make(map[string]fieldAssigner, 15)
	addString := func(name string, set func(rec *ItemRecord, v string)) {
		if name != "" {
			out[name] = set
		}
	}
	addDecimal := func(name string, set func(rec *ItemRecord, v *decimal.Decimal)) {
		if name != "" {
			out[name] = func(rec *ItemRecord, value string) {
				set(rec, parseOptionalDecimal(value))
			}
		}
	}

	addString(m.InternalID, func(r *ItemRecord, v string) { r.InternalID = v })
	addString(m.LegacyID, func(r *ItemRecord, v string) { r.LegacyID = v })
	addString(m.SKU, func(r *ItemRecord, v string) { r.SKU = v })
	addString(m.Barcode, func(r *ItemRecord, v string) { r.Barcode = v })
	addString(m.Name, func(r *ItemRecord, v string) { r.Name = v })
	addString(m.Category, func(r *ItemRecord, v string) { r.Category = v })
	addString(m.Unit, func(r *ItemRecord, v string) { r.Unit = v })
	addString(m.Group, func(r *ItemRecord, v string) { r.Group = v })
	addString(m.VatCode, func(r *ItemRecord, v string) { r.VatCode = v })

	addDecimal(m.Quantity, func(r *ItemRecord, v *decimal.Decimal) { r.Quantity = v })
	addDecimal(m.RetailPrice, func(r *ItemRecord, v *decimal.Decimal) { r.RetailPrice = v })
	addDecimal(m.WholesalePrice, func(r *ItemRecord, v *decimal.Decimal) { r.WholesalePrice = v })
	addDecimal(m.SalePrice, func(r *ItemRecord, v *decimal.Decimal) { r.SalePrice = v })
	addDecimal(m.PurchasePrice, func(r *ItemRecord, v *decimal.Decimal) { r.PurchasePrice = v })
	addDecimal(m.Discount, func(r *ItemRecord, v *decimal.Decimal) { r.Discount = v })

	return out
}

// ExtractItems converts a columnar ERP response into typed item records.
// Rows shorter than the descriptor list stop at the shorter length; unmapped
// or unknown descriptors are skipped; absent string values default to "".
// The transform is pure and produces exactly one record per row.
func ExtractItems(table FieldTable, mapping FieldMapping) []ItemRecord {
	assign := mapping.assigners()
	records := make([]ItemRecord, 0, len(table.Rows))

	for _, row := range table.Rows {
		var rec ItemRecord
		n := len(table.Definitions)
		if len(row) < n {
			n = len(row)
		}
		for i := 0; i < n; i++ {
			set, ok := assign[table.Definitions[i].Name]
			if !ok || row[i] == nil {
				continue
			}
			set(&rec, *row[i])
		}
		records = append(records, rec)
	}

	return records
}

// parseOptionalDecimal parses a numeric source value with a period decimal
// separator regardless of host locale. Unparseable input yields nil, never
// zero: callers must treat unset and zero as distinct.
func parseOptionalDecimal(value string) *decimal.Decimal {
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &d
}
