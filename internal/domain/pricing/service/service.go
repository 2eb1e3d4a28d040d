// Package service provides the price loader orchestration: classify the
// mapped columns, resolve supplier and channel per price column, reshape the
// price table into quotes and persist every extract with a run manifest.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/classifier"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/normalizer"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/parser"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/repository"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/sniffer"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/staging"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/table"
	"github.com/FACorreiaa/price-loader/pkg/metrics"
	"github.com/FACorreiaa/price-loader/pkg/money"
)

var tracer = otel.Tracer("github.com/FACorreiaa/price-loader/internal/domain/pricing/service")

// Inputs is everything one run consumes, already loaded.
type Inputs struct {
	PriceTable *table.Table
	Mappings   []pricing.ColumnMapping
	Aliases    []pricing.AliasEntry
	Sources    pricing.ManifestInputs
}

// Result is what a run produced.
type Result struct {
	Extracts *pricing.Extracts
	Manifest *pricing.Manifest
}

// Options tunes a LoaderService.
type Options struct {
	Identifiers pricing.IdentifierColumns
	BatchPrefix string
	Currency    string
}

// LoaderService runs the loader pipeline.
type LoaderService struct {
	repo        repository.ExtractRepository
	mirror      repository.ExtractRepository
	classifier  *classifier.BucketClassifier
	headers     *normalizer.HeaderParser
	reshaper    *staging.Reshaper
	metrics     *metrics.Metrics
	metricsPath string
	opts        Options
	logger      *slog.Logger

	now   func() time.Time
	runID func() string
}

// NewLoaderService creates a loader that persists through repo.
func NewLoaderService(
	repo repository.ExtractRepository,
	bucketClassifier *classifier.BucketClassifier,
	headers *normalizer.HeaderParser,
	opts Options,
	logger *slog.Logger,
) *LoaderService {
	if opts.BatchPrefix == "" {
		opts.BatchPrefix = pricing.DefaultBatchPrefix
	}
	if opts.Currency == "" {
		opts.Currency = money.GBP
	}
	if opts.Identifiers == (pricing.IdentifierColumns{}) {
		opts.Identifiers = pricing.DefaultIdentifierColumns()
	}

	return &LoaderService{
		repo:       repo,
		classifier: bucketClassifier,
		headers:    headers,
		reshaper:   staging.NewReshaper(opts.Identifiers, logger),
		opts:       opts,
		logger:     logger,
		now:        time.Now,
		runID:      func() string { return uuid.NewString() },
	}
}

// WithMirror additionally saves every run to mirror.
func (s *LoaderService) WithMirror(mirror repository.ExtractRepository) *LoaderService {
	s.mirror = mirror
	return s
}

// WithMetrics records run metrics and, when path is set, exports them to a
// textfile after every run.
func (s *LoaderService) WithMetrics(m *metrics.Metrics, path string) *LoaderService {
	s.metrics = m
	s.metricsPath = path
	return s
}

// RunFiles loads the three inputs named in src and runs the pipeline.
func (s *LoaderService) RunFiles(ctx context.Context, src pricing.ManifestInputs) (*Result, error) {
	start := s.now()
	in, err := s.load(ctx, src)
	if err != nil {
		s.recordFailure(start)
		return nil, err
	}
	return s.run(ctx, in, start)
}

func (s *LoaderService) load(ctx context.Context, src pricing.ManifestInputs) (Inputs, error) {
	_, span := tracer.Start(ctx, "loader.load")
	defer span.End()

	tbl, err := parser.LoadPriceTable(src.Excel, src.Sheet)
	if err != nil {
		return Inputs{}, spanError(span, err)
	}
	mappings, err := parser.LoadColumnMapping(src.Mapping)
	if err != nil {
		return Inputs{}, spanError(span, err)
	}
	aliases, err := parser.LoadAliasTable(src.Alias)
	if err != nil {
		return Inputs{}, spanError(span, err)
	}

	s.logger.Info("inputs loaded",
		slog.Int("price_rows", tbl.Len()),
		slog.Int("price_columns", tbl.Width()),
		slog.Int("mapping_rows", len(mappings)),
		slog.Int("alias_rows", len(aliases)),
	)
	return Inputs{PriceTable: tbl, Mappings: mappings, Aliases: aliases, Sources: src}, nil
}

// Run stages in and persists the extracts and manifest.
func (s *LoaderService) Run(ctx context.Context, in Inputs) (*Result, error) {
	return s.run(ctx, in, s.now())
}

func (s *LoaderService) run(ctx context.Context, in Inputs, start time.Time) (*Result, error) {
	ctx, span := tracer.Start(ctx, "loader.run")
	defer span.End()

	stamp := pricing.NewRunStamp(start, s.opts.BatchPrefix)
	span.SetAttributes(attribute.String("batch_id", stamp.BatchID))

	ex := s.Stage(ctx, in, stamp)
	manifest := s.buildManifest(in, ex, stamp)

	s.compareWithPrevious(ctx, manifest)

	if err := s.persist(ctx, s.repo, ex, manifest); err != nil {
		s.recordFailure(start)
		return nil, spanError(span, err)
	}
	if s.mirror != nil {
		if err := s.persist(ctx, s.mirror, ex, manifest); err != nil {
			s.recordFailure(start)
			return nil, spanError(span, fmt.Errorf("mirror: %w", err))
		}
	}
	s.recordSuccess(manifest.Rows, start)

	s.logger.Info("run completed",
		slog.String("batch_id", manifest.BatchID),
		slog.String("run_id", manifest.RunID),
		slog.Int("price_quotes", manifest.Rows.PriceQuotes),
		slog.Int("suppliers", manifest.Rows.Suppliers),
		slog.Int("duplicates", manifest.Rows.Duplicates),
	)
	return &Result{Extracts: ex, Manifest: manifest}, nil
}

// compareWithPrevious logs when the price table headers differ from the
// run whose manifest the repository still holds.
func (s *LoaderService) compareWithPrevious(ctx context.Context, m *pricing.Manifest) {
	reader, ok := s.repo.(repository.ManifestReader)
	if !ok {
		return
	}
	prev, err := reader.LastManifest(ctx)
	if err != nil {
		s.logger.Warn("failed to read previous manifest", slog.Any("error", err))
		return
	}
	if prev == nil || prev.HeaderFingerprint == m.HeaderFingerprint {
		return
	}
	s.logger.Info("price table headers changed since previous run",
		slog.String("previous_batch_id", prev.BatchID),
		slog.String("previous_fingerprint", prev.HeaderFingerprint),
		slog.String("fingerprint", m.HeaderFingerprint),
	)
}

func (s *LoaderService) persist(ctx context.Context, repo repository.ExtractRepository, ex *pricing.Extracts, m *pricing.Manifest) error {
	ctx, span := tracer.Start(ctx, "loader.persist")
	defer span.End()

	if err := repo.SaveExtracts(ctx, ex); err != nil {
		return spanError(span, fmt.Errorf("failed to save extracts: %w", err))
	}
	if err := repo.SaveManifest(ctx, m); err != nil {
		return spanError(span, fmt.Errorf("failed to save manifest: %w", err))
	}
	return nil
}

// Stage computes every extract from in. It performs no I/O beyond logging,
// and the same inputs and stamp always produce the same extracts.
func (s *LoaderService) Stage(ctx context.Context, in Inputs, stamp pricing.RunStamp) *pricing.Extracts {
	_, span := tracer.Start(ctx, "loader.stage")
	defer span.End()

	tbl := in.PriceTable
	if tbl == nil {
		tbl = table.New(nil, nil)
	}
	if tbl.IsEmpty() {
		s.logger.Warn("price table is empty")
	}

	classified := s.classifier.ClassifyAll(in.Mappings)
	present, unmatched := staging.PresentMappings(classified, tbl)
	s.reportUnmatchedMappings(present, unmatched, tbl.Headers())

	priceColumns := classifier.Columns(present, pricing.BucketSupplierPrice)
	resolver := normalizer.NewAliasResolver(in.Aliases, s.headers)
	resolved := resolver.ResolveAll(priceColumns)
	s.reportUnusedAliases(resolver.Unused(priceColumns), priceColumns)

	products := staging.Products(tbl, s.opts.Identifiers)
	if products == nil {
		s.logger.Warn("unable to emit products, identifier or name column missing",
			slog.String("id_column", s.opts.Identifiers.ProductID),
			slog.String("name_column", s.opts.Identifiers.ProductName),
		)
	}

	quotes := s.reshaper.Stage(tbl, priceColumns, resolved, stamp)
	ex := &pricing.Extracts{
		Products:         products,
		Suppliers:        staging.Suppliers(resolved),
		SupplierItems:    staging.SupplierItems(quotes),
		Quotes:           quotes,
		ReferenceColumns: staging.ReferenceColumns(present, stamp.RunDate),
		Duplicates:       staging.DuplicateReport(tbl, priceColumns),
	}

	span.SetAttributes(
		attribute.Int("price_columns", len(priceColumns)),
		attribute.Int("price_quotes", len(quotes.Quotes)),
		attribute.Int("duplicate_groups", len(ex.Duplicates)),
	)
	s.logger.Info("staging completed",
		slog.Int("price_columns", len(priceColumns)),
		slog.Int("reference_columns", len(ex.ReferenceColumns)),
		slog.Int("price_quotes", len(quotes.Quotes)),
		slog.Int("duplicate_groups", len(ex.Duplicates)),
	)
	return ex
}

func (s *LoaderService) reportUnmatchedMappings(present []pricing.ColumnMapping, unmatched, headers []string) {
	if len(present) == 0 {
		s.logger.Warn("no mapping rows matched the price table headers",
			slog.Int("mapping_rows", len(unmatched)),
		)
	}
	for _, column := range unmatched {
		attrs := []any{slog.String("column", column)}
		if suggestion, ok := normalizer.SuggestHeader(column, headers); ok {
			attrs = append(attrs, slog.String("did_you_mean", suggestion))
		}
		s.logger.Info("mapping column not in price table", attrs...)
	}
}

func (s *LoaderService) reportUnusedAliases(unused, priceColumns []string) {
	if len(unused) == 0 {
		return
	}
	suggestions := make(map[string]string)
	for _, source := range unused {
		if suggestion, ok := normalizer.SuggestHeader(source, priceColumns); ok {
			suggestions[source] = suggestion
		}
	}
	s.logger.Warn("alias rows name no price column",
		slog.Int("count", len(unused)),
		slog.Any("columns", unused),
		slog.Any("did_you_mean", suggestions),
	)
}

func (s *LoaderService) buildManifest(in Inputs, ex *pricing.Extracts, stamp pricing.RunStamp) *pricing.Manifest {
	var headers []string
	if in.PriceTable != nil {
		headers = in.PriceTable.Headers()
	}

	m := &pricing.Manifest{
		BatchID:           stamp.BatchID,
		RunID:             s.runID(),
		Rows:              pricing.CountRows(ex),
		Inputs:            in.Sources,
		HeaderFingerprint: sniffer.Fingerprint(headers),
		CreatedAtUTC:      s.now().UTC().Format(time.RFC3339),
	}

	var r money.Range
	for _, q := range ex.Quotes.Quotes {
		r.Observe(q.QuotedPrice)
	}
	if !r.Empty() {
		lo := money.NewFromDecimal(r.Min, s.opts.Currency)
		hi := money.NewFromDecimal(r.Max, s.opts.Currency)
		m.QuotedPriceRange = &pricing.PriceRange{
			Min:      lo.Display(),
			Max:      hi.Display(),
			Currency: lo.Currency(),
		}
	}
	return m
}

func (s *LoaderService) recordSuccess(rows pricing.ManifestRows, start time.Time) {
	if s.metrics == nil {
		return
	}
	finished := s.now()
	s.metrics.ObserveSuccess(map[string]int{
		"products":          rows.Products,
		"suppliers":         rows.Suppliers,
		"supplier_items":    rows.SupplierItems,
		"price_quotes":      rows.PriceQuotes,
		"reference_columns": rows.ReferenceColumns,
		"duplicates":        rows.Duplicates,
	}, finished.Sub(start), finished)
	s.exportMetrics()
}

func (s *LoaderService) recordFailure(start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveFailure(s.now().Sub(start))
	s.exportMetrics()
}

func (s *LoaderService) exportMetrics() {
	if s.metricsPath == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.metricsPath); err != nil {
		s.logger.Warn("failed to write metrics textfile",
			slog.String("path", s.metricsPath),
			slog.Any("error", err),
		)
	}
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
