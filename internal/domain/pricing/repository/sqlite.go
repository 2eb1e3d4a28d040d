package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
)

// SQLiteRepository mirrors the extracts into a SQLite file, one table per
// extract. Each save replaces the tables wholesale inside one transaction.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return &SQLiteRepository{db: db}, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// DB exposes the handle for read-side queries.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

type sqliteTable struct {
	name    string
	columns []string
	types   map[string]string
	rows    [][]any
}

// SaveExtracts recreates one table per extract and fills it.
func (r *SQLiteRepository) SaveExtracts(ctx context.Context, ex *pricing.Extracts) error {
	tables := []sqliteTable{
		suppliersTable(ex.Suppliers),
		quotesTable(ex.Quotes),
		referenceTable(ex.ReferenceColumns),
		duplicatesTable(ex.Duplicates),
	}
	if ex.Products != nil {
		tables = append(tables, productsTable(ex.Products))
	} else {
		tables = append(tables, sqliteTable{name: "products"})
	}
	if ex.SupplierItems != nil {
		tables = append(tables, supplierItemsTable(ex.SupplierItems))
	} else {
		tables = append(tables, sqliteTable{name: "supplier_items"})
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tables {
			if err := writeTable(ctx, tx, t); err != nil {
				return fmt.Errorf("table %s: %w", t.name, err)
			}
		}
		return nil
	})
}

// SaveManifest stores the manifest as a single JSON row.
func (r *SQLiteRepository) SaveManifest(ctx context.Context, m *pricing.Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return writeTable(ctx, tx, sqliteTable{
			name:    "manifest",
			columns: []string{"batch_id", "run_id", "created_at_utc", "body"},
			rows:    [][]any{{m.BatchID, m.RunID, m.CreatedAtUTC, string(data)}},
		})
	})
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// writeTable recreates t. A table without columns is only dropped.
func writeTable(ctx context.Context, tx *sql.Tx, t sqliteTable) error {
	defs := make([]string, 0, len(t.columns))
	quoted := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		typ := t.types[c]
		if typ == "" {
			typ = "TEXT"
		}
		defs = append(defs, fmt.Sprintf("%q %s", c, typ))
		quoted = append(quoted, fmt.Sprintf("%q", c))
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, t.name)); err != nil {
		return err
	}
	if len(t.columns) == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %q (%s)`, t.name, strings.Join(defs, ","))); err != nil {
		return err
	}
	if len(t.rows) == 0 {
		return nil
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(t.columns)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, t.name, strings.Join(quoted, ","), ph))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return err
		}
	}
	return nil
}

func stringRows(records [][]string) [][]any {
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		rows[i] = row
	}
	return rows
}

func productsTable(set *pricing.ProductSet) sqliteTable {
	return sqliteTable{name: "products", columns: set.Header(), rows: stringRows(set.Records())}
}

func suppliersTable(suppliers []pricing.Supplier) sqliteTable {
	rows := make([][]any, len(suppliers))
	for i, s := range suppliers {
		rows[i] = []any{s.Name}
	}
	return sqliteTable{name: "suppliers", columns: []string{"name"}, rows: rows}
}

func supplierItemsTable(items []pricing.SupplierItem) sqliteTable {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.Supplier, it.MedicarePIP}
	}
	return sqliteTable{name: "supplier_items", columns: []string{"Supplier", "medicare_pip"}, rows: rows}
}

// quotesTable keeps prices as REAL for querying; the CSV extract holds the
// exact decimal text.
func quotesTable(set pricing.QuoteSet) sqliteTable {
	header := set.Header()
	records := set.Records()
	rows := stringRows(records)
	priceCol := len(header) - 1
	for i, q := range set.Quotes {
		rows[i][priceCol] = q.QuotedPrice.InexactFloat64()
	}
	return sqliteTable{
		name:    "price_quotes",
		columns: header,
		types:   map[string]string{"QuotedPrice": "REAL"},
		rows:    rows,
	}
}

func referenceTable(refs []pricing.ReferenceColumn) sqliteTable {
	rows := make([][]any, len(refs))
	for i, r := range refs {
		rows[i] = []any{r.ColumnName, r.Notes, r.LastSeenOn}
	}
	return sqliteTable{name: "reference_columns", columns: []string{"column_name", "notes", "last_seen_on"}, rows: rows}
}

func duplicatesTable(groups []pricing.DuplicateGroup) sqliteTable {
	rows := make([][]any, len(groups))
	for i, g := range groups {
		rec := g.Record()
		rows[i] = []any{rec.Signature, rec.Columns, rec.Count}
	}
	return sqliteTable{
		name:    "duplicates",
		columns: []string{"signature", "columns", "count"},
		types:   map[string]string{"count": "INTEGER"},
		rows:    rows,
	}
}
