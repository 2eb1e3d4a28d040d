// Package repository persists the extracts and manifest of a run.
package repository

import (
	"context"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
)

// Artifact names written by every run.
const (
	ProductsFile         = "products.csv"
	SuppliersFile        = "suppliers.csv"
	SupplierItemsFile    = "supplier_items.csv"
	PriceQuotesFile      = "price_quotes.csv"
	ReferenceColumnsFile = "reference_columns.csv"
	DuplicatesFile       = "duplicates.csv"
	ManifestFile         = "manifest.json"
)

// ExtractRepository stores the output of one run.
type ExtractRepository interface {
	SaveExtracts(ctx context.Context, ex *pricing.Extracts) error
	SaveManifest(ctx context.Context, m *pricing.Manifest) error
}

// ManifestReader is implemented by repositories that keep the previous run's
// manifest. LastManifest returns nil and no error when there is none yet.
type ManifestReader interface {
	LastManifest(ctx context.Context) (*pricing.Manifest, error)
}
