package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
)

func TestAliasResolver_Resolve(t *testing.T) {
	r := NewAliasResolver([]pricing.AliasEntry{
		{SourceColumn: "Boots Direct Jan24 Price", ProposedSupplier: "  boots uk ", ProposedChannel: " Direct "},
		{SourceColumn: "Lexon T&R Sept2023", ProposedSupplier: "", ProposedChannel: ""},
		{SourceColumn: "AAH Feb24", ProposedSupplier: "", ProposedChannel: "Tender"},
		{SourceColumn: "Sigma Mar24", ProposedSupplier: "  ", ProposedChannel: "\t"},
		{SourceColumn: "Phoenix Apr24", ProposedSupplier: "First", ProposedChannel: ""},
		{SourceColumn: "Phoenix Apr24", ProposedSupplier: "Second", ProposedChannel: ""},
	}, NewHeaderParser())

	tests := []struct {
		name   string
		column string
		want   pricing.ResolvedColumn
	}{
		{
			name:   "alias applies with trimming and title case",
			column: "Boots Direct Jan24 Price",
			want: pricing.ResolvedColumn{
				Column: "Boots Direct Jan24 Price", Supplier: "Boots Uk", Channel: "Direct",
				ValidFrom: "2024-01-01", FromAlias: true,
			},
		},
		{
			name:   "blank alias falls back to header",
			column: "Lexon T&R Sept2023",
			want: pricing.ResolvedColumn{
				Column: "Lexon T&R Sept2023", Supplier: "Lexon", Channel: "T&R", ValidFrom: "2023-09-01",
			},
		},
		{
			name:   "blank supplier with channel keeps the blank supplier",
			column: "AAH Feb24",
			want: pricing.ResolvedColumn{
				Column: "AAH Feb24", Supplier: "", Channel: "Tender", ValidFrom: "2024-02-01", FromAlias: true,
			},
		},
		{
			name:   "whitespace-only alias falls back",
			column: "Sigma Mar24",
			want: pricing.ResolvedColumn{
				Column: "Sigma Mar24", Supplier: "Sigma", ValidFrom: "2024-03-01",
			},
		},
		{
			name:   "last alias row wins",
			column: "Phoenix Apr24",
			want: pricing.ResolvedColumn{
				Column: "Phoenix Apr24", Supplier: "Second", ValidFrom: "2024-04-01", FromAlias: true,
			},
		},
		{
			name:   "no alias",
			column: "Alliance Tender May 2024",
			want: pricing.ResolvedColumn{
				Column: "Alliance Tender May 2024", Supplier: "Alliance", Channel: "Tender", ValidFrom: "2024-05-01",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.column))
		})
	}
}

func TestAliasResolver_ResolveAllAndUnused(t *testing.T) {
	r := NewAliasResolver([]pricing.AliasEntry{
		{SourceColumn: "Boots Jan24", ProposedSupplier: "Boots"},
		{SourceColumn: "Zeta Old", ProposedSupplier: "Zeta"},
		{SourceColumn: "Alpha Old", ProposedSupplier: "Alpha"},
	}, NewHeaderParser())

	resolved := r.ResolveAll([]string{"Boots Jan24", "Lexon Direct"})
	assert.Len(t, resolved, 2)
	assert.Equal(t, "Boots", resolved["Boots Jan24"].Supplier)
	assert.Equal(t, "Direct", resolved["Lexon Direct"].Channel)

	assert.Equal(t, []string{"Alpha Old", "Zeta Old"}, r.Unused([]string{"Boots Jan24", "Lexon Direct"}))
}
