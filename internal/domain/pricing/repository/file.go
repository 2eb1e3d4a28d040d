package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/pkg/storage"
)

// FileRepository writes extracts as CSV files and the manifest as JSON into
// an artifact store. Fixed-schema extracts are encoded with gocsv; products
// and price quotes have a schema that depends on the input columns and are
// written record by record.
type FileRepository struct {
	store storage.Storage
}

// NewFileRepository creates a repository over store.
func NewFileRepository(store storage.Storage) *FileRepository {
	return &FileRepository{store: store}
}

// SaveExtracts writes every extract. Products and supplier items are only
// written when their source columns exist; the others are always written,
// with just a header row when empty.
func (r *FileRepository) SaveExtracts(ctx context.Context, ex *pricing.Extracts) error {
	if ex.Products != nil {
		if err := r.putRecords(ctx, ProductsFile, ex.Products.Header(), ex.Products.Records()); err != nil {
			return err
		}
	}
	if err := r.putStructs(ctx, SuppliersFile, ex.Suppliers); err != nil {
		return err
	}
	if ex.SupplierItems != nil {
		if err := r.putStructs(ctx, SupplierItemsFile, ex.SupplierItems); err != nil {
			return err
		}
	}
	if err := r.putRecords(ctx, PriceQuotesFile, ex.Quotes.Header(), ex.Quotes.Records()); err != nil {
		return err
	}
	if err := r.putStructs(ctx, ReferenceColumnsFile, ex.ReferenceColumns); err != nil {
		return err
	}

	dupes := make([]pricing.DuplicateRecord, 0, len(ex.Duplicates))
	for _, g := range ex.Duplicates {
		dupes = append(dupes, g.Record())
	}
	return r.putStructs(ctx, DuplicatesFile, dupes)
}

// SaveManifest writes the manifest as indented JSON.
func (r *FileRepository) SaveManifest(ctx context.Context, m *pricing.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if _, err := r.store.Put(ctx, ManifestFile, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store %s: %w", ManifestFile, err)
	}
	return nil
}

// LastManifest reads the manifest currently in the store.
func (r *FileRepository) LastManifest(ctx context.Context) (*pricing.Manifest, error) {
	rc, err := r.store.Open(ctx, ManifestFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", ManifestFile, err)
	}
	defer rc.Close()

	var m pricing.Manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ManifestFile, err)
	}
	return &m, nil
}

func (r *FileRepository) putStructs(ctx context.Context, name string, rows any) error {
	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if _, err := r.store.Put(ctx, name, &buf); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

func (r *FileRepository) putRecords(ctx context.Context, name string, header []string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if _, err := r.store.Put(ctx, name, &buf); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}
