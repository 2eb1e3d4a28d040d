package normalizer

import (
	"sort"
	"strings"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
)

// AliasResolver resolves price columns to a supplier and channel, using the
// curated alias table when it has an entry and falling back to the header.
type AliasResolver struct {
	aliases map[string]pricing.AliasEntry
	headers *HeaderParser
}

// NewAliasResolver indexes entries by source column. When a column is listed
// more than once the last entry wins.
func NewAliasResolver(entries []pricing.AliasEntry, headers *HeaderParser) *AliasResolver {
	aliases := make(map[string]pricing.AliasEntry, len(entries))
	for _, e := range entries {
		aliases[e.SourceColumn] = e
	}
	return &AliasResolver{aliases: aliases, headers: headers}
}

// Resolve returns the supplier, channel and validity month of column.
// An alias entry applies when either proposed field is non-blank, and then
// both of its fields are used as given, even if one of them is blank.
func (r *AliasResolver) Resolve(column string) pricing.ResolvedColumn {
	resolved := pricing.ResolvedColumn{
		Column:    column,
		ValidFrom: r.headers.ValidFrom(column),
	}

	var supplier, channel string
	if e, ok := r.aliases[column]; ok && (strings.TrimSpace(e.ProposedSupplier) != "" || strings.TrimSpace(e.ProposedChannel) != "") {
		supplier, channel = e.ProposedSupplier, e.ProposedChannel
		resolved.FromAlias = true
	} else {
		supplier, channel = r.headers.SupplierAndChannel(column)
	}

	resolved.Supplier = titleCase(strings.TrimSpace(supplier))
	resolved.Channel = strings.TrimSpace(channel)
	return resolved
}

// ResolveAll resolves every column, keyed by column name.
func (r *AliasResolver) ResolveAll(columns []string) map[string]pricing.ResolvedColumn {
	out := make(map[string]pricing.ResolvedColumn, len(columns))
	for _, c := range columns {
		out[c] = r.Resolve(c)
	}
	return out
}

// Unused returns the alias source columns that name none of columns, sorted.
func (r *AliasResolver) Unused(columns []string) []string {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	var unused []string
	for source := range r.aliases {
		if !known[source] {
			unused = append(unused, source)
		}
	}
	sort.Strings(unused)
	return unused
}
