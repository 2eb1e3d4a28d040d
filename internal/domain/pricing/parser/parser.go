// Package parser loads the loader's three inputs: the wide price table and
// the two metadata tables that describe its columns. Metadata rows are decoded
// with gocsv into tagged structs after their required headers are checked.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/sniffer"
)

var (
	ErrMissingColumn = errors.New("required column missing")
	ErrSheetNotFound = errors.New("sheet not found")
)

// mappingRow is one row of the column-mapping table.
type mappingRow struct {
	Column string `csv:"Column"`
	Bucket string `csv:"Bucket"`
	Notes  string `csv:"Notes"`
}

// aliasRow is one row of the supplier alias table.
type aliasRow struct {
	SourceColumn     string `csv:"SourceColumn"`
	ProposedSupplier string `csv:"ProposedSupplier"`
	ProposedChannel  string `csv:"ProposedChannel"`
}

var (
	mappingRequired = []string{"Column"}
	aliasRequired   = []string{"SourceColumn", "ProposedSupplier", "ProposedChannel"}
)

// LoadColumnMapping reads the column-mapping table. Bucket and Notes are
// optional and default to empty. FinalBucket is left for the classifier.
func LoadColumnMapping(path string) ([]pricing.ColumnMapping, error) {
	var rows []mappingRow
	if err := decodeFile(path, mappingRequired, &rows); err != nil {
		return nil, fmt.Errorf("column mapping %s: %w", path, err)
	}

	mappings := make([]pricing.ColumnMapping, 0, len(rows))
	for _, r := range rows {
		mappings = append(mappings, pricing.ColumnMapping{
			Column:         r.Column,
			DeclaredBucket: r.Bucket,
			Notes:          r.Notes,
		})
	}
	return mappings, nil
}

// LoadAliasTable reads the supplier alias table. All three columns must be
// present in the header; blank cells decode as empty strings.
func LoadAliasTable(path string) ([]pricing.AliasEntry, error) {
	var rows []aliasRow
	if err := decodeFile(path, aliasRequired, &rows); err != nil {
		return nil, fmt.Errorf("supplier alias %s: %w", path, err)
	}

	entries := make([]pricing.AliasEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, pricing.AliasEntry{
			SourceColumn:     r.SourceColumn,
			ProposedSupplier: r.ProposedSupplier,
			ProposedChannel:  r.ProposedChannel,
		})
	}
	return entries, nil
}

func decodeFile(path string, required []string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return decode(raw, required, out)
}

func decode(raw []byte, required []string, out any) error {
	data, err := sniffer.Normalize(raw)
	if err != nil {
		return err
	}
	delimiter := sniffer.DetectDelimiter(data)

	headers, err := newReader(bytes.NewReader(data), delimiter).Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if err := requireColumns(headers, required); err != nil {
		return err
	}

	if err := gocsv.UnmarshalCSV(newReader(bytes.NewReader(data), delimiter), out); err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	return nil
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

func requireColumns(headers, required []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, name := range required {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}
