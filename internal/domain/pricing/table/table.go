// Package table holds the in-memory, row-major grid the loader works on.
// Tables are built once from a source file and never mutated; every later
// stage addresses cells by (row, column) index.
package table

import "fmt"

// Value is a single cell. Valid is false for a missing (blank) cell, which is
// distinct from a present cell whose text is whitespace.
type Value struct {
	Text  string
	Valid bool
}

// Text returns a present cell holding s.
func Text(s string) Value {
	return Value{Text: s, Valid: true}
}

// Missing is the blank cell.
var Missing = Value{}

// String returns the cell text; missing cells render as the empty string.
func (v Value) String() string {
	return v.Text
}

// Table is an immutable grid of Values with named columns.
type Table struct {
	headers []string
	index   map[string]int
	rows    [][]Value
}

// New builds a table. Short rows are padded with Missing and long rows are
// truncated to the header width. When a header repeats, lookups by name
// resolve to its first position.
func New(headers []string, rows [][]Value) *Table {
	t := &Table{
		headers: append([]string(nil), headers...),
		index:   make(map[string]int, len(headers)),
		rows:    make([][]Value, 0, len(rows)),
	}
	for i, h := range t.headers {
		if _, exists := t.index[h]; !exists {
			t.index[h] = i
		}
	}
	for _, row := range rows {
		normalized := make([]Value, len(t.headers))
		copy(normalized, row)
		t.rows = append(t.rows, normalized)
	}
	return t
}

// FromRecords builds a table from raw string records where the empty string
// marks a missing cell. Blank headers are named "Unnamed: <position>".
func FromRecords(headers []string, records [][]string) *Table {
	named := make([]string, len(headers))
	for i, h := range headers {
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		named[i] = h
	}

	rows := make([][]Value, 0, len(records))
	for _, record := range records {
		row := make([]Value, len(record))
		for i, cell := range record {
			if cell != "" {
				row[i] = Text(cell)
			}
		}
		rows = append(rows, row)
	}
	return New(named, rows)
}

// Headers returns a copy of the column names in source order.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.headers)
}

// IsEmpty reports whether the table has no data rows.
func (t *Table) IsEmpty() bool {
	return len(t.rows) == 0
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	idx, ok := t.index[name]
	return idx, ok
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Header returns the name of the column at col.
func (t *Table) Header(col int) string {
	return t.headers[col]
}

// Cell returns the value at (row, col); out-of-range positions are Missing.
func (t *Table) Cell(row, col int) Value {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.headers) {
		return Missing
	}
	return t.rows[row][col]
}

// Column returns a copy of every value in a column, top to bottom.
func (t *Table) Column(col int) []Value {
	values := make([]Value, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[col]
	}
	return values
}
