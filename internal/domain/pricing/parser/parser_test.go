package parser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/table"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadColumnMapping(t *testing.T) {
	t.Run("optional columns default to empty", func(t *testing.T) {
		path := writeFile(t, "mapping.csv", "Column,Bucket\nBoots Jan24,Supplier price\nProduct Name,\n")

		got, err := LoadColumnMapping(path)
		require.NoError(t, err)
		assert.Equal(t, []pricing.ColumnMapping{
			{Column: "Boots Jan24", DeclaredBucket: "Supplier price"},
			{Column: "Product Name"},
		}, got)
	})

	t.Run("semicolon delimited with BOM and quotes", func(t *testing.T) {
		path := writeFile(t, "mapping.csv", "\ufeffColumn;Bucket;Notes\n\"Lexon; T&R\";Price;ref only\n")

		got, err := LoadColumnMapping(path)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Lexon; T&R", got[0].Column)
		assert.Equal(t, "ref only", got[0].Notes)
	})

	t.Run("missing Column header is fatal", func(t *testing.T) {
		path := writeFile(t, "mapping.csv", "Header,Bucket\nA,B\n")

		_, err := LoadColumnMapping(path)
		require.ErrorIs(t, err, ErrMissingColumn)
		assert.Contains(t, err.Error(), "Column")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadColumnMapping(filepath.Join(t.TempDir(), "nope.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadAliasTable(t *testing.T) {
	t.Run("blank cells decode as empty", func(t *testing.T) {
		path := writeFile(t, "alias.csv", "SourceColumn,ProposedSupplier,ProposedChannel\nBoots Jan24,,Direct\n")

		got, err := LoadAliasTable(path)
		require.NoError(t, err)
		assert.Equal(t, []pricing.AliasEntry{
			{SourceColumn: "Boots Jan24", ProposedChannel: "Direct"},
		}, got)
	})

	t.Run("names every missing header", func(t *testing.T) {
		path := writeFile(t, "alias.csv", "SourceColumn\nBoots Jan24\n")

		_, err := LoadAliasTable(path)
		require.ErrorIs(t, err, ErrMissingColumn)
		assert.Contains(t, err.Error(), "ProposedSupplier, ProposedChannel")
	})
}

func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadWorkbook(t *testing.T) {
	data := buildWorkbook(t, "Prices", [][]any{
		{"MediCare PIPCode", "Product Name", "Boots Direct Jan24 Price"},
		{"1234567", "Paracetamol 500mg", 1.25},
		{"7654321", "Ibuprofen 200mg", nil},
	})

	t.Run("reads named sheet", func(t *testing.T) {
		tbl, err := ReadWorkbook(bytes.NewReader(data), "Prices")
		require.NoError(t, err)

		assert.Equal(t, []string{"MediCare PIPCode", "Product Name", "Boots Direct Jan24 Price"}, tbl.Headers())
		assert.Equal(t, 2, tbl.Len())
		assert.Equal(t, table.Text("1.25"), tbl.Cell(0, 2))
		assert.Equal(t, table.Missing, tbl.Cell(1, 2))
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := ReadWorkbook(bytes.NewReader(data), "Missing")
		assert.ErrorIs(t, err, ErrSheetNotFound)
	})

	t.Run("empty sheet gives empty table", func(t *testing.T) {
		empty := buildWorkbook(t, "Sheet1", nil)
		tbl, err := ReadWorkbook(bytes.NewReader(empty), "Sheet1")
		require.NoError(t, err)
		assert.True(t, tbl.IsEmpty())
	})
}

func TestLoadPriceTable(t *testing.T) {
	t.Run("csv ignores sheet", func(t *testing.T) {
		path := writeFile(t, "prices.csv", "Product Name,Boots Jan24\nParacetamol,\"1,234.50\"\n")

		tbl, err := LoadPriceTable(path, "whatever")
		require.NoError(t, err)
		assert.Equal(t, table.Text("1,234.50"), tbl.Cell(0, 1))
	})

	t.Run("xlsx by extension", func(t *testing.T) {
		data := buildWorkbook(t, "Sheet1", [][]any{{"Product Name"}, {"Aspirin"}})
		path := writeFile(t, "prices.xlsx", string(data))

		tbl, err := LoadPriceTable(path, "Sheet1")
		require.NoError(t, err)
		assert.Equal(t, table.Text("Aspirin"), tbl.Cell(0, 0))
	})

	t.Run("error names the file", func(t *testing.T) {
		path := writeFile(t, "prices.xlsx", "not a workbook")

		_, err := LoadPriceTable(path, "Sheet1")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "prices.xlsx"))
	})
}
