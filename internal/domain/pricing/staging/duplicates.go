package staging

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/table"
)

const (
	missingToken       = "<NA>"
	signatureSeparator = "|"
)

// ContentSignature hashes a column's values in row order. Missing cells
// become "<NA>" and every value is trimmed, so two columns share a signature
// exactly when their cleaned contents are identical.
func ContentSignature(values []table.Value) string {
	cleaned := make([]string, len(values))
	for i, v := range values {
		if !v.Valid {
			cleaned[i] = missingToken
			continue
		}
		cleaned[i] = strings.TrimSpace(v.Text)
	}

	hash := sha256.Sum256([]byte(strings.Join(cleaned, signatureSeparator)))
	return hex.EncodeToString(hash[:])
}

// DuplicateReport groups the given columns by content signature and returns
// the groups with two or more members, largest first. Groups of equal size
// keep first-seen order and members keep column order.
func DuplicateReport(tbl *table.Table, columns []string) []pricing.DuplicateGroup {
	var order []string
	members := make(map[string][]string)
	seen := make(map[string]bool)

	for _, name := range columns {
		idx, ok := tbl.ColumnIndex(name)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true

		sig := ContentSignature(tbl.Column(idx))
		if _, exists := members[sig]; !exists {
			order = append(order, sig)
		}
		members[sig] = append(members[sig], name)
	}

	var groups []pricing.DuplicateGroup
	for _, sig := range order {
		if cols := members[sig]; len(cols) > 1 {
			groups = append(groups, pricing.DuplicateGroup{Signature: sig, Columns: cols, Count: len(cols)})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}
