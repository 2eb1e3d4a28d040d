package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing/sniffer"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/table"
)

// LoadPriceTable reads the wide price table. Workbooks (.xlsx, .xlsm) are read
// from the named sheet; any other extension is treated as delimited text and
// the sheet name is ignored. The first row is the header row.
func LoadPriceTable(path, sheet string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("price table %s: %w", path, err)
	}
	defer f.Close()

	var tbl *table.Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		tbl, err = ReadWorkbook(f, sheet)
	default:
		tbl, err = ReadDelimited(f)
	}
	if err != nil {
		return nil, fmt.Errorf("price table %s: %w", path, err)
	}
	return tbl, nil
}

// ReadWorkbook reads one sheet of an Excel workbook. Cells are read raw, so
// numeric prices keep their stored precision rather than the display format.
func ReadWorkbook(r io.Reader, sheet string) (*table.Table, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrSheetNotFound, sheet, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return table.New(nil, nil), nil
	}
	return table.FromRecords(rows[0], rows[1:]), nil
}

// ReadDelimited reads a CSV/TSV price table, detecting its delimiter.
func ReadDelimited(r io.Reader) (*table.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data, err := sniffer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	records, err := newReader(bytes.NewReader(data), sniffer.DetectDelimiter(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return table.New(nil, nil), nil
	}
	return table.FromRecords(records[0], records[1:]), nil
}
