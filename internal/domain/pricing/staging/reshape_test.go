package staging

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/table"
	"github.com/FACorreiaa/price-loader/pkg/money"
)

var testStamp = pricing.NewRunStamp(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC), pricing.DefaultBatchPrefix)

func priceTable() *table.Table {
	return table.FromRecords(
		[]string{"MediCare PIPCode", "Product Name", "Pack Size", "Boots Direct Jan24 Price", "Lexon T&R Sept2023"},
		[][]string{
			{"1111111", "Paracetamol 500mg", "32", "1,234.50", "0"},
			{"2222222", "Ibuprofen 200mg", "24", "-5", "2.10"},
			{"3333333", "Aspirin 75mg", "", "", "N/A"},
			{"", "Loose item", "1", "0.99", ""},
		},
	)
}

func testResolved() map[string]pricing.ResolvedColumn {
	return map[string]pricing.ResolvedColumn{
		"Boots Direct Jan24 Price": {Column: "Boots Direct Jan24 Price", Supplier: "Boots", Channel: "Direct", ValidFrom: "2024-01-01"},
		"Lexon T&R Sept2023":       {Column: "Lexon T&R Sept2023", Supplier: "Lexon", Channel: "T&R", ValidFrom: "2023-09-01"},
	}
}

func newTestReshaper(buf *bytes.Buffer) *Reshaper {
	return NewReshaper(pricing.DefaultIdentifierColumns(), slog.New(slog.NewTextHandler(buf, nil)))
}

func TestMelt(t *testing.T) {
	tbl := priceTable()
	candidates := Melt(tbl, []int{3, 4})

	require.Len(t, candidates, 8)
	assert.Equal(t, Candidate{Row: 0, Column: 3, Raw: table.Text("1,234.50")}, candidates[0])
	assert.Equal(t, Candidate{Row: 3, Column: 3, Raw: table.Text("0.99")}, candidates[3])
	assert.Equal(t, Candidate{Row: 0, Column: 4, Raw: table.Text("0")}, candidates[4])
	assert.Equal(t, table.Missing, candidates[7].Raw)
}

func TestReshaper_Stage(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReshaper(&buf)

	set := r.Stage(priceTable(), []string{"Boots Direct Jan24 Price", "Lexon T&R Sept2023"}, testResolved(), testStamp)

	assert.True(t, set.HasProductID)
	assert.True(t, set.HasProductName)
	assert.True(t, set.HasPackSize)
	require.Len(t, set.Quotes, 3)

	first := set.Quotes[0]
	assert.Equal(t, "1111111", first.ProductID)
	assert.Equal(t, "Boots", first.Supplier)
	assert.Equal(t, "Direct", first.Channel)
	assert.Equal(t, "Boots Direct Jan24 Price", first.SourceColumn)
	assert.Equal(t, "2024-01-01", first.ValidFrom)
	assert.Equal(t, "2024-03-05", first.QuotedOn)
	assert.Equal(t, "initial_migration_20240305T140709Z", first.BatchID)
	assert.True(t, first.QuotedPrice.Equal(decimal.RequireFromString("1234.50")))

	assert.Equal(t, "", set.Quotes[1].ProductID, "missing identifiers are copied as blank")
	assert.Equal(t, "0.99", set.Quotes[1].QuotedPrice.String())
	assert.Equal(t, "Lexon", set.Quotes[2].Supplier)
	assert.Equal(t, "2222222", set.Quotes[2].ProductID)

	for _, q := range set.Quotes {
		assert.True(t, q.QuotedPrice.IsPositive())
		assert.Equal(t, testStamp.BatchID, q.BatchID)
	}

	assert.Equal(t, []string{
		"MediCarePIPCode", "ProductName", "PackSize",
		"Supplier", "Channel", "SourceColumn", "ValidFrom", "QuotedOn", "BatchId", "QuotedPrice",
	}, set.Header())
	assert.Equal(t, []string{
		"1111111", "Paracetamol 500mg", "32",
		"Boots", "Direct", "Boots Direct Jan24 Price", "2024-01-01", "2024-03-05", "initial_migration_20240305T140709Z", "1234.5",
	}, set.Records()[0])
	assert.NotContains(t, buf.String(), "level=WARN")
}

func TestReshaper_Stage_Degraded(t *testing.T) {
	tests := []struct {
		name    string
		tbl     *table.Table
		columns []string
	}{
		{
			name:    "no identifier columns",
			tbl:     table.FromRecords([]string{"Boots Jan24"}, [][]string{{"1.00"}}),
			columns: []string{"Boots Jan24"},
		},
		{
			name:    "no price columns",
			tbl:     priceTable(),
			columns: nil,
		},
		{
			name:    "price columns absent from table",
			tbl:     priceTable(),
			columns: []string{"Nowhere Jan24"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			set := newTestReshaper(&buf).Stage(tt.tbl, tt.columns, testResolved(), testStamp)

			assert.Empty(t, set.Quotes)
			assert.Contains(t, buf.String(), "level=WARN")
			assert.Contains(t, buf.String(), "unable to build price quotes")
		})
	}
}

func TestReshaper_Stage_PartialIdentifiers(t *testing.T) {
	tbl := table.FromRecords(
		[]string{"Product Name", "Boots Jan24"},
		[][]string{{"Paracetamol", "3.20"}},
	)
	var buf bytes.Buffer
	set := newTestReshaper(&buf).Stage(tbl, []string{"Boots Jan24"}, nil, testStamp)

	require.Len(t, set.Quotes, 1)
	assert.Equal(t, []string{"ProductName", "Supplier", "Channel", "SourceColumn", "ValidFrom", "QuotedOn", "BatchId", "QuotedPrice"}, set.Header())
	assert.Equal(t, "", set.Quotes[0].Supplier, "unresolved columns have blank supplier")
}

func TestFilterAndEnrich_GeneratedCells(t *testing.T) {
	gen := money.NewTestDataGeneratorWithSeed(3)
	headers := []string{"MediCare PIPCode", "Boots Jan24"}

	var records [][]string
	var want []decimal.Decimal
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			price, cell := gen.PositivePrice()
			records = append(records, []string{"p", cell})
			want = append(want, price)
		} else {
			records = append(records, []string{"p", gen.NonQuoteCell()})
		}
	}
	tbl := table.FromRecords(headers, records)
	layout := NewLayout(tbl, pricing.DefaultIdentifierColumns(), []string{"Boots Jan24"})

	quotes := FilterAndEnrich(tbl, layout, Melt(tbl, layout.Prices), nil, testStamp)

	require.Len(t, quotes, len(want))
	for i, q := range quotes {
		assert.True(t, want[i].Equal(q.QuotedPrice))
	}
}

func TestStage_Deterministic(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReshaper(&buf)
	cols := []string{"Boots Direct Jan24 Price", "Lexon T&R Sept2023"}

	later := pricing.NewRunStamp(testStamp.StartedAt.Add(26*time.Hour), pricing.DefaultBatchPrefix)
	a := r.Stage(priceTable(), cols, testResolved(), testStamp)
	b := r.Stage(priceTable(), cols, testResolved(), later)

	require.Equal(t, len(a.Quotes), len(b.Quotes))
	for i := range a.Quotes {
		qa, qb := a.Quotes[i], b.Quotes[i]
		assert.NotEqual(t, qa.BatchID, qb.BatchID)
		assert.NotEqual(t, qa.QuotedOn, qb.QuotedOn)
		qa.BatchID, qa.QuotedOn = "", ""
		qb.BatchID, qb.QuotedOn = "", ""
		assert.Equal(t, qa, qb)
	}
}
