// Package staging reshapes the wide price table into long-form quote records
// and derives the remaining extracts from it. The reshape runs as two stages,
// Melt then FilterAndEnrich, each a pure function of its inputs.
package staging

import (
	"log/slog"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/table"
	"github.com/FACorreiaa/price-loader/pkg/money"
)

// Candidate is one (row, price column) cell before validation.
type Candidate struct {
	Row    int
	Column int
	Raw    table.Value
}

// Layout is the column positions the reshape reads. A negative identifier
// position means the column is absent from the table.
type Layout struct {
	ProductID   int
	ProductName int
	PackSize    int
	Prices      []int
}

// HasIdentifiers reports whether at least one identifier column is present.
func (l Layout) HasIdentifiers() bool {
	return l.ProductID >= 0 || l.ProductName >= 0 || l.PackSize >= 0
}

// NewLayout locates the identifier columns and the price columns in tbl.
// Price columns that are not table headers, or that double as an identifier,
// are left out; order follows priceColumns.
func NewLayout(tbl *table.Table, ids pricing.IdentifierColumns, priceColumns []string) Layout {
	l := Layout{
		ProductID:   position(tbl, ids.ProductID),
		ProductName: position(tbl, ids.ProductName),
		PackSize:    position(tbl, ids.PackSize),
	}

	seen := map[int]bool{l.ProductID: true, l.ProductName: true, l.PackSize: true}
	for _, name := range priceColumns {
		idx, ok := tbl.ColumnIndex(name)
		if !ok || seen[idx] {
			continue
		}
		seen[idx] = true
		l.Prices = append(l.Prices, idx)
	}
	return l
}

func position(tbl *table.Table, name string) int {
	if name == "" {
		return -1
	}
	if idx, ok := tbl.ColumnIndex(name); ok {
		return idx
	}
	return -1
}

// Melt emits one candidate per (row, price column) pair, column by column and
// top to bottom within a column.
func Melt(tbl *table.Table, priceCols []int) []Candidate {
	candidates := make([]Candidate, 0, tbl.Len()*len(priceCols))
	for _, col := range priceCols {
		for row := 0; row < tbl.Len(); row++ {
			candidates = append(candidates, Candidate{Row: row, Column: col, Raw: tbl.Cell(row, col)})
		}
	}
	return candidates
}

// FilterAndEnrich keeps candidates whose cell parses to a price above zero and
// stamps each with its column's resolution and the run provenance.
func FilterAndEnrich(
	tbl *table.Table,
	layout Layout,
	candidates []Candidate,
	resolved map[string]pricing.ResolvedColumn,
	stamp pricing.RunStamp,
) []pricing.PriceQuote {
	var quotes []pricing.PriceQuote
	for _, c := range candidates {
		if !c.Raw.Valid {
			continue
		}
		price, ok := money.ParsePositive(c.Raw.Text)
		if !ok {
			continue
		}

		source := tbl.Header(c.Column)
		rc := resolved[source]
		quotes = append(quotes, pricing.PriceQuote{
			ProductID:    cellText(tbl, c.Row, layout.ProductID),
			ProductName:  cellText(tbl, c.Row, layout.ProductName),
			PackSize:     cellText(tbl, c.Row, layout.PackSize),
			Supplier:     rc.Supplier,
			Channel:      rc.Channel,
			SourceColumn: source,
			ValidFrom:    rc.ValidFrom,
			QuotedOn:     stamp.RunDate,
			BatchID:      stamp.BatchID,
			QuotedPrice:  price,
		})
	}
	return quotes
}

func cellText(tbl *table.Table, row, col int) string {
	if col < 0 {
		return ""
	}
	return tbl.Cell(row, col).String()
}

// Reshaper runs both reshape stages and reports degraded inputs.
type Reshaper struct {
	ids    pricing.IdentifierColumns
	logger *slog.Logger
}

// NewReshaper creates a reshaper reading the given identifier headers.
func NewReshaper(ids pricing.IdentifierColumns, logger *slog.Logger) *Reshaper {
	return &Reshaper{ids: ids, logger: logger}
}

// Stage builds the price-quotes extract. When the table has no identifier
// columns or none of the price columns, the extract is empty and a warning
// is logged.
func (r *Reshaper) Stage(
	tbl *table.Table,
	priceColumns []string,
	resolved map[string]pricing.ResolvedColumn,
	stamp pricing.RunStamp,
) pricing.QuoteSet {
	layout := NewLayout(tbl, r.ids, priceColumns)
	set := pricing.QuoteSet{
		HasProductID:   layout.ProductID >= 0,
		HasProductName: layout.ProductName >= 0,
		HasPackSize:    layout.PackSize >= 0,
	}

	if !layout.HasIdentifiers() || len(layout.Prices) == 0 {
		r.logger.Warn("unable to build price quotes",
			"identifier_columns_present", layout.HasIdentifiers(),
			"price_columns_present", len(layout.Prices))
		return set
	}

	candidates := Melt(tbl, layout.Prices)
	set.Quotes = FilterAndEnrich(tbl, layout, candidates, resolved, stamp)

	r.logger.Info("price quotes staged",
		"candidates", len(candidates),
		"quotes", len(set.Quotes),
		"price_columns", len(layout.Prices))
	return set
}
