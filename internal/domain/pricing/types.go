// Package pricing defines the domain model shared by the price loader stages:
// column classification, supplier/channel resolution, quote reshaping and the
// extracts written at the end of a run.
package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bucket is the canonical category assigned to a spreadsheet column.
type Bucket string

const (
	BucketMaster        Bucket = "Master/DM+D"
	BucketOrderQty      Bucket = "Order Qty"
	BucketSupplierPrice Bucket = "Supplier/Price"
	BucketReference     Bucket = "Reference/Derived"
	BucketOther         Bucket = "Other/Meta"
)

// ColumnMapping is one row of the column-mapping table.
// FinalBucket is derived from DeclaredBucket and Notes, never read from input.
type ColumnMapping struct {
	Column         string
	DeclaredBucket string
	Notes          string
	FinalBucket    Bucket
}

// AliasEntry is a curated supplier/channel override for one price column.
type AliasEntry struct {
	SourceColumn     string
	ProposedSupplier string
	ProposedChannel  string
}

// ResolvedColumn is the supplier, channel and validity date of a price column.
type ResolvedColumn struct {
	Column    string
	Supplier  string
	Channel   string
	ValidFrom string // YYYY-MM-01, empty when the header carries no month/year
	FromAlias bool
}

// IdentifierColumns names the price-table headers that identify a product.
type IdentifierColumns struct {
	ProductID   string
	ProductName string
	PackSize    string
}

// DefaultIdentifierColumns returns the headers used by the MediCare workbook.
func DefaultIdentifierColumns() IdentifierColumns {
	return IdentifierColumns{
		ProductID:   "MediCare PIPCode",
		ProductName: "Product Name",
		PackSize:    "Pack Size",
	}
}

// RunStamp is the provenance captured once at the start of a run and copied
// onto every record the run produces.
type RunStamp struct {
	StartedAt time.Time
	RunDate   string // YYYY-MM-DD, UTC
	BatchID   string
}

// DefaultBatchPrefix prefixes every batch identifier.
const DefaultBatchPrefix = "initial_migration_"

// NewRunStamp derives the run date and batch id from a single instant.
func NewRunStamp(now time.Time, batchPrefix string) RunStamp {
	utc := now.UTC()
	return RunStamp{
		StartedAt: utc,
		RunDate:   utc.Format("2006-01-02"),
		BatchID:   batchPrefix + utc.Format("20060102T150405Z"),
	}
}

// PriceQuote is one positive price a supplier quoted for one product.
type PriceQuote struct {
	ProductID    string
	ProductName  string
	PackSize     string
	Supplier     string
	Channel      string
	SourceColumn string
	ValidFrom    string
	QuotedOn     string
	BatchID      string
	QuotedPrice  decimal.Decimal
}

// QuoteSet is the price-quotes extract. The Has* flags record which
// identifier columns were present in the price table and are therefore part
// of the extract schema.
type QuoteSet struct {
	HasProductID   bool
	HasProductName bool
	HasPackSize    bool
	Quotes         []PriceQuote
}

// Header returns the extract columns: identifiers first, then the fixed tail.
func (s QuoteSet) Header() []string {
	header := make([]string, 0, 10)
	if s.HasProductID {
		header = append(header, "MediCarePIPCode")
	}
	if s.HasProductName {
		header = append(header, "ProductName")
	}
	if s.HasPackSize {
		header = append(header, "PackSize")
	}
	return append(header, "Supplier", "Channel", "SourceColumn", "ValidFrom", "QuotedOn", "BatchId", "QuotedPrice")
}

// Records returns one row per quote in Header order.
func (s QuoteSet) Records() [][]string {
	records := make([][]string, 0, len(s.Quotes))
	for _, q := range s.Quotes {
		record := make([]string, 0, 10)
		if s.HasProductID {
			record = append(record, q.ProductID)
		}
		if s.HasProductName {
			record = append(record, q.ProductName)
		}
		if s.HasPackSize {
			record = append(record, q.PackSize)
		}
		record = append(record,
			q.Supplier, q.Channel, q.SourceColumn, q.ValidFrom, q.QuotedOn, q.BatchID, q.QuotedPrice.String())
		records = append(records, record)
	}
	return records
}

// Product is one deduplicated row of the products extract.
type Product struct {
	MedicarePIP string
	Name        string
	PackSize    string
}

// ProductSet is the products extract.
type ProductSet struct {
	HasPackSize bool
	Products    []Product
}

// Header returns the products extract columns.
func (s ProductSet) Header() []string {
	if s.HasPackSize {
		return []string{"medicare_pip", "name", "pack_size"}
	}
	return []string{"medicare_pip", "name"}
}

// Records returns one row per product in Header order.
func (s ProductSet) Records() [][]string {
	records := make([][]string, 0, len(s.Products))
	for _, p := range s.Products {
		if s.HasPackSize {
			records = append(records, []string{p.MedicarePIP, p.Name, p.PackSize})
		} else {
			records = append(records, []string{p.MedicarePIP, p.Name})
		}
	}
	return records
}

// SupplierItem links a supplier to a product it quoted for.
type SupplierItem struct {
	Supplier    string `csv:"Supplier"`
	MedicarePIP string `csv:"medicare_pip"`
}

// Supplier is one row of the suppliers extract.
type Supplier struct {
	Name string `csv:"name"`
}

// ReferenceColumn is a column classified as reference/derived data.
type ReferenceColumn struct {
	ColumnName string `csv:"column_name"`
	Notes      string `csv:"notes"`
	LastSeenOn string `csv:"last_seen_on"`
}

// DuplicateGroup is a set of price columns with byte-identical content.
type DuplicateGroup struct {
	Signature string
	Columns   []string
	Count     int
}

// Extracts is everything one run produces, ready to be persisted.
// Products and SupplierItems are nil when their source columns are absent.
type Extracts struct {
	Products         *ProductSet
	Suppliers        []Supplier
	SupplierItems    []SupplierItem
	Quotes           QuoteSet
	ReferenceColumns []ReferenceColumn
	Duplicates       []DuplicateGroup
}

// ManifestRows counts the rows of each extract.
type ManifestRows struct {
	Products         int `json:"products"`
	Suppliers        int `json:"suppliers"`
	SupplierItems    int `json:"supplier_items"`
	PriceQuotes      int `json:"price_quotes"`
	ReferenceColumns int `json:"reference_columns"`
	Duplicates       int `json:"duplicates"`
}

// ManifestInputs echoes the inputs a run consumed.
type ManifestInputs struct {
	Excel   string `json:"excel"`
	Sheet   string `json:"sheet"`
	Mapping string `json:"mapping"`
	Alias   string `json:"alias"`
}

// PriceRange is the lowest and highest quoted price of a run.
type PriceRange struct {
	Min      string `json:"min"`
	Max      string `json:"max"`
	Currency string `json:"currency"`
}

// Manifest summarizes a run.
type Manifest struct {
	BatchID           string         `json:"batch_id"`
	RunID             string         `json:"run_id"`
	Rows              ManifestRows   `json:"rows"`
	Inputs            ManifestInputs `json:"inputs"`
	HeaderFingerprint string         `json:"header_fingerprint"`
	QuotedPriceRange  *PriceRange    `json:"quoted_price_range,omitempty"`
	CreatedAtUTC      string         `json:"created_at_utc"`
}

// CountRows fills the per-extract row counts from a set of extracts.
func CountRows(ex *Extracts) ManifestRows {
	rows := ManifestRows{
		Suppliers:        len(ex.Suppliers),
		SupplierItems:    len(ex.SupplierItems),
		PriceQuotes:      len(ex.Quotes.Quotes),
		ReferenceColumns: len(ex.ReferenceColumns),
		Duplicates:       len(ex.Duplicates),
	}
	if ex.Products != nil {
		rows.Products = len(ex.Products.Products)
	}
	return rows
}

// DuplicateRecord is the flat form of a DuplicateGroup in the duplicates extract.
type DuplicateRecord struct {
	Signature string `csv:"signature"`
	Columns   string `csv:"columns"`
	Count     int    `csv:"count"`
}

// Record flattens a group, joining member columns with "; ".
func (g DuplicateGroup) Record() DuplicateRecord {
	return DuplicateRecord{Signature: g.Signature, Columns: strings.Join(g.Columns, "; "), Count: g.Count}
}
