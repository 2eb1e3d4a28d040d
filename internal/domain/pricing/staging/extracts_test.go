package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/table"
)

func TestPresentMappings(t *testing.T) {
	tbl := table.FromRecords([]string{"Product Name", "Boots Jan24"}, nil)
	present, unmatched := PresentMappings([]pricing.ColumnMapping{
		{Column: "Boots Jan24"},
		{Column: "Boots Jan 24"},
		{Column: "Product Name"},
	}, tbl)

	assert.Equal(t, []pricing.ColumnMapping{{Column: "Boots Jan24"}, {Column: "Product Name"}}, present)
	assert.Equal(t, []string{"Boots Jan 24"}, unmatched)
}

func TestReferenceColumns(t *testing.T) {
	refs := ReferenceColumns([]pricing.ColumnMapping{
		{Column: "Avg Price", Notes: "derived", FinalBucket: pricing.BucketReference},
		{Column: "Boots Jan24", FinalBucket: pricing.BucketSupplierPrice},
		{Column: "Avg Price", Notes: "again", FinalBucket: pricing.BucketReference},
		{Column: "Boots Jan24", Notes: "duplicate", FinalBucket: pricing.BucketReference},
	}, "2024-03-05")

	// the first mapping row of a column decides its bucket
	assert.Equal(t, []pricing.ReferenceColumn{{ColumnName: "Avg Price", Notes: "derived", LastSeenOn: "2024-03-05"}}, refs)
	assert.NotNil(t, ReferenceColumns(nil, "2024-03-05"))
}

func TestSuppliers(t *testing.T) {
	got := Suppliers(map[string]pricing.ResolvedColumn{
		"a": {Supplier: "Lexon"},
		"b": {Supplier: "Boots"},
		"c": {Supplier: "Lexon"},
		"d": {Supplier: ""},
	})
	assert.Equal(t, []pricing.Supplier{{Name: "Boots"}, {Name: "Lexon"}}, got)
}

func TestProducts(t *testing.T) {
	ids := pricing.DefaultIdentifierColumns()

	t.Run("dedupes and drops missing identifiers", func(t *testing.T) {
		set := Products(priceTableWithRepeats(), ids)
		require.NotNil(t, set)
		assert.True(t, set.HasPackSize)
		assert.Equal(t, []pricing.Product{
			{MedicarePIP: "1111111", Name: "Paracetamol 500mg", PackSize: "32"},
			{MedicarePIP: "1111111", Name: "Paracetamol 500mg", PackSize: "16"},
		}, set.Products)
		assert.Equal(t, []string{"medicare_pip", "name", "pack_size"}, set.Header())
	})

	t.Run("without pack size", func(t *testing.T) {
		tbl := table.FromRecords([]string{"MediCare PIPCode", "Product Name"}, [][]string{{"1", "A"}})
		set := Products(tbl, ids)
		require.NotNil(t, set)
		assert.Equal(t, []string{"medicare_pip", "name"}, set.Header())
		assert.Equal(t, [][]string{{"1", "A"}}, set.Records())
	})

	t.Run("skipped without name column", func(t *testing.T) {
		tbl := table.FromRecords([]string{"MediCare PIPCode"}, [][]string{{"1"}})
		assert.Nil(t, Products(tbl, ids))
	})
}

func priceTableWithRepeats() *table.Table {
	return table.FromRecords(
		[]string{"MediCare PIPCode", "Product Name", "Pack Size"},
		[][]string{
			{"1111111", "Paracetamol 500mg", "32"},
			{"1111111", "Paracetamol 500mg", "32"},
			{"1111111", "Paracetamol 500mg", "16"},
			{"", "Orphan", "1"},
		},
	)
}

func TestSupplierItems(t *testing.T) {
	quotes := pricing.QuoteSet{
		HasProductID: true,
		Quotes: []pricing.PriceQuote{
			{Supplier: "Boots", ProductID: "1"},
			{Supplier: "Boots", ProductID: "1"},
			{Supplier: "Lexon", ProductID: "1"},
			{Supplier: "Lexon", ProductID: ""},
		},
	}

	assert.Equal(t, []pricing.SupplierItem{
		{Supplier: "Boots", MedicarePIP: "1"},
		{Supplier: "Lexon", MedicarePIP: "1"},
	}, SupplierItems(quotes))

	assert.Nil(t, SupplierItems(pricing.QuoteSet{Quotes: quotes.Quotes}))
}
