package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func testMapping() FieldMapping {
	return FieldMapping{
		InternalID: "item_id",
		SKU:        "code",
		Barcode:    "ean",
		Name:       "title",
		Quantity:   "stock",
		RetailPrice: "price",
	}
}

func TestExtractItems_MapsConfiguredFields(t *testing.T) {
	table := FieldTable{
		Definitions: []FieldDefinition{
			{Name: "item_id", Type: "string"},
			{Name: "code", Type: "string"},
			{Name: "ean", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "stock", Type: "number"},
			{Name: "price", Type: "number"},
		},
		Rows: [][]*string{
			{strPtr("1001"), strPtr("SKU-1"), strPtr("4740001"), strPtr("Widget"), strPtr("12.5"), strPtr("9.90")},
		},
	}

	records := ExtractItems(table, testMapping())
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "1001", rec.InternalID)
	assert.Equal(t, "SKU-1", rec.SKU)
	assert.Equal(t, "4740001", rec.Barcode)
	assert.Equal(t, "Widget", rec.Name)
	require.NotNil(t, rec.Quantity)
	assert.True(t, rec.Quantity.Equal(decimal.RequireFromString("12.5")))
	require.NotNil(t, rec.RetailPrice)
	assert.True(t, rec.RetailPrice.Equal(decimal.RequireFromString("9.90")))
}

func TestExtractItems_OneRecordPerRow(t *testing.T) {
	table := FieldTable{
		Definitions: []FieldDefinition{{Name: "item_id", Type: "string"}},
		Rows: [][]*string{
			{strPtr("1")},
			{strPtr("2")},
			{nil},
		},
	}

	records := ExtractItems(table, testMapping())
	// A row of nothing but nils still yields an (empty) record.
	require.Len(t, records, 3)
	assert.Equal(t, "1", records[0].InternalID)
	assert.Equal(t, "2", records[1].InternalID)
	assert.Equal(t, "", records[2].InternalID)
}

func TestExtractItems_ShortRowStopsAtRowLength(t *testing.T) {
	table := FieldTable{
		Definitions: []FieldDefinition{
			{Name: "item_id", Type: "string"},
			{Name: "code", Type: "string"},
			{Name: "title", Type: "string"},
		},
		Rows: [][]*string{
			{strPtr("1001"), strPtr("SKU-1")},
		},
	}

	records := ExtractItems(table, testMapping())
	require.Len(t, records, 1)
	assert.Equal(t, "1001", records[0].InternalID)
	assert.Equal(t, "SKU-1", records[0].SKU)
	assert.Equal(t, "", records[0].Name)
}

func TestExtractItems_UnmappedFieldIgnored(t *testing.T) {
	table := FieldTable{
		Definitions: []FieldDefinition{
			{Name: "weird_column", Type: "string"},
			{Name: "code", Type: "string"},
		},
		Rows: [][]*string{
			{strPtr("garbage"), strPtr("SKU-2")},
		},
	}

	records := ExtractItems(table, testMapping())
	require.Len(t, records, 1)
	assert.Equal(t, "SKU-2", records[0].SKU)
}

func TestExtractItems_NilValuesLeaveDefaults(t *testing.T) {
	table := FieldTable{
		Definitions: []FieldDefinition{
			{Name: "code", Type: "string"},
			{Name: "stock", Type: "number"},
		},
		Rows: [][]*string{
			{nil, nil},
		},
	}

	records := ExtractItems(table, testMapping())
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].SKU)
	assert.Nil(t, records[0].Quantity)
}

func TestExtractItems_UnparseableNumberStaysUnset(t *testing.T) {
	table := FieldTable{
		Definitions: []FieldDefinition{
			{Name: "code", Type: "string"},
			{Name: "stock", Type: "number"},
		},
		Rows: [][]*string{
			{strPtr("SKU-3"), strPtr("12,5")},
		},
	}

	records := ExtractItems(table, testMapping())
	require.Len(t, records, 1)
	// Unset must stay distinct from zero.
	assert.Nil(t, records[0].Quantity)
}

func TestParseOptionalDecimal(t *testing.T) {
	assert.Nil(t, parseOptionalDecimal(""))
	assert.Nil(t, parseOptionalDecimal("abc"))

	d := parseOptionalDecimal("-3.75")
	require.NotNil(t, d)
	assert.True(t, d.Equal(decimal.RequireFromString("-3.75")))
}
