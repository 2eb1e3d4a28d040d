// Package classifier assigns every mapped spreadsheet column one of the five
// canonical buckets from its declared bucket label and free-text notes.
package classifier

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
)

// DefaultNoteKeywords flag a column as reference data regardless of its
// declared bucket.
var DefaultNoteKeywords = []string{
	"ref only",
	"reference",
	"derived",
	"duplicate",
	"do not stage",
	"not part of staging",
	"exclude",
}

// bucketRule matches a lower-cased declared bucket when it contains any of
// anyOf, or every one of allOf.
type bucketRule struct {
	bucket pricing.Bucket
	anyOf  []string
	allOf  []string
}

func (r bucketRule) matches(declared string) bool {
	if len(r.allOf) > 0 {
		for _, s := range r.allOf {
			if !strings.Contains(declared, s) {
				return false
			}
		}
		return true
	}
	for _, s := range r.anyOf {
		if strings.Contains(declared, s) {
			return true
		}
	}
	return false
}

// Rules are evaluated in order, first match wins.
var defaultRules = []bucketRule{
	{bucket: pricing.BucketMaster, anyOf: []string{"master", "dm"}},
	{bucket: pricing.BucketOrderQty, allOf: []string{"order", "qty"}},
	{bucket: pricing.BucketSupplierPrice, anyOf: []string{"supplier", "price"}},
	{bucket: pricing.BucketReference, anyOf: []string{"reference", "derived"}},
	{bucket: pricing.BucketOther, anyOf: []string{"other", "meta"}},
}

// BucketClassifier maps (declared bucket, notes) to a canonical bucket.
// Notes are scanned for every keyword in one pass with Aho-Corasick.
type BucketClassifier struct {
	notes *ahocorasick.Matcher
	rules []bucketRule
	mu    sync.Mutex // the matcher keeps per-search state
}

// New creates a classifier that flags notes containing any of keywords.
// A nil keywords slice uses DefaultNoteKeywords.
func New(keywords []string) *BucketClassifier {
	if keywords == nil {
		keywords = DefaultNoteKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	c := &BucketClassifier{rules: defaultRules}
	if len(lowered) > 0 {
		c.notes = ahocorasick.NewStringMatcher(lowered)
	}
	return c
}

// Classify returns the canonical bucket. Every input maps to exactly one
// bucket; unknown labels fall back to Other/Meta so they are never staged.
func (c *BucketClassifier) Classify(declared, notes string) pricing.Bucket {
	if c.flagged(notes) {
		return pricing.BucketReference
	}

	declared = strings.ToLower(strings.TrimSpace(declared))
	for _, rule := range c.rules {
		if rule.matches(declared) {
			return rule.bucket
		}
	}
	return pricing.BucketOther
}

func (c *BucketClassifier) flagged(notes string) bool {
	notes = strings.ToLower(strings.TrimSpace(notes))
	if notes == "" || c.notes == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notes.Match([]byte(notes))) > 0
}

// ClassifyAll returns a copy of mappings with FinalBucket filled in.
func (c *BucketClassifier) ClassifyAll(mappings []pricing.ColumnMapping) []pricing.ColumnMapping {
	out := make([]pricing.ColumnMapping, len(mappings))
	for i, m := range mappings {
		m.FinalBucket = c.Classify(m.DeclaredBucket, m.Notes)
		out[i] = m
	}
	return out
}

// Columns returns the column names in mappings classified as bucket, in
// mapping order, keeping only the first occurrence of each name.
func Columns(mappings []pricing.ColumnMapping, bucket pricing.Bucket) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, m := range mappings {
		if seen[m.Column] {
			continue
		}
		seen[m.Column] = true
		if m.FinalBucket == bucket {
			cols = append(cols, m.Column)
		}
	}
	return cols
}
