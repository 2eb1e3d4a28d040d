package staging

import (
	"sort"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/table"
)

// PresentMappings keeps the mapping rows whose column is a table header, in
// mapping order, and returns the names of the rows that matched nothing.
func PresentMappings(mappings []pricing.ColumnMapping, tbl *table.Table) (present []pricing.ColumnMapping, unmatched []string) {
	for _, m := range mappings {
		if tbl.Has(m.Column) {
			present = append(present, m)
		} else {
			unmatched = append(unmatched, m.Column)
		}
	}
	return present, unmatched
}

// ReferenceColumns lists the mapped columns classified Reference/Derived,
// once per column, stamped with the run date.
func ReferenceColumns(mappings []pricing.ColumnMapping, runDate string) []pricing.ReferenceColumn {
	seen := make(map[string]bool)
	refs := make([]pricing.ReferenceColumn, 0)
	for _, m := range mappings {
		if seen[m.Column] {
			continue
		}
		seen[m.Column] = true
		if m.FinalBucket != pricing.BucketReference {
			continue
		}
		refs = append(refs, pricing.ReferenceColumn{
			ColumnName: m.Column,
			Notes:      m.Notes,
			LastSeenOn: runDate,
		})
	}
	return refs
}

// Suppliers returns the distinct non-empty supplier names across the
// resolved price columns, sorted.
func Suppliers(resolved map[string]pricing.ResolvedColumn) []pricing.Supplier {
	names := make(map[string]bool)
	for _, rc := range resolved {
		if rc.Supplier != "" {
			names[rc.Supplier] = true
		}
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	suppliers := make([]pricing.Supplier, len(sorted))
	for i, n := range sorted {
		suppliers[i] = pricing.Supplier{Name: n}
	}
	return suppliers
}

// Products returns the distinct (id, name, pack size) rows that carry a
// product identifier. It returns nil when the identifier or name column is
// missing from the table.
func Products(tbl *table.Table, ids pricing.IdentifierColumns) *pricing.ProductSet {
	idCol, name, size := position(tbl, ids.ProductID), position(tbl, ids.ProductName), position(tbl, ids.PackSize)
	if idCol < 0 || name < 0 {
		return nil
	}

	type key struct{ id, name, size table.Value }
	seen := make(map[key]bool)
	set := &pricing.ProductSet{HasPackSize: size >= 0, Products: make([]pricing.Product, 0)}

	for row := 0; row < tbl.Len(); row++ {
		id := tbl.Cell(row, idCol)
		if !id.Valid {
			continue
		}
		k := key{id: id, name: tbl.Cell(row, name)}
		if size >= 0 {
			k.size = tbl.Cell(row, size)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		set.Products = append(set.Products, pricing.Product{
			MedicarePIP: k.id.Text,
			Name:        k.name.Text,
			PackSize:    k.size.Text,
		})
	}
	return set
}

// SupplierItems returns the distinct (supplier, product id) pairs among the
// staged quotes, in first-seen order. It returns nil when the quotes carry no
// product identifier column. Quotes with a blank identifier are skipped.
func SupplierItems(quotes pricing.QuoteSet) []pricing.SupplierItem {
	if !quotes.HasProductID {
		return nil
	}

	seen := make(map[pricing.SupplierItem]bool)
	items := make([]pricing.SupplierItem, 0)
	for _, q := range quotes.Quotes {
		if q.ProductID == "" {
			continue
		}
		item := pricing.SupplierItem{Supplier: q.Supplier, MedicarePIP: q.ProductID}
		if seen[item] {
			continue
		}
		seen[item] = true
		items = append(items, item)
	}
	return items
}
