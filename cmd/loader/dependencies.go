package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/price-loader/internal/domain/pricing"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/classifier"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/normalizer"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/repository"
	"github.com/FACorreiaa/price-loader/internal/domain/pricing/service"
	"github.com/FACorreiaa/price-loader/pkg/config"
	"github.com/FACorreiaa/price-loader/pkg/cron"
	"github.com/FACorreiaa/price-loader/pkg/metrics"
	"github.com/FACorreiaa/price-loader/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Storage
	OutputStorage storage.Storage

	// Repositories
	ExtractRepo repository.ExtractRepository
	SQLiteRepo  *repository.SQLiteRepository

	// Services
	Metrics       *metrics.Metrics
	LoaderService *service.LoaderService
	Scheduler     *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initRepositories(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStorage prepares the output directory
func (d *Dependencies) initStorage() error {
	store, err := storage.NewLocalStorage(d.Config.Outputs.Dir)
	if err != nil {
		return err
	}
	d.OutputStorage = store

	d.Logger.Info("output storage ready", slog.String("dir", store.BasePath()))
	return nil
}

// initRepositories initializes the extract writers
func (d *Dependencies) initRepositories() error {
	d.ExtractRepo = repository.NewFileRepository(d.OutputStorage)

	if path := d.Config.Outputs.SQLitePath; path != "" {
		sqliteRepo, err := repository.OpenSQLite(path)
		if err != nil {
			return err
		}
		d.SQLiteRepo = sqliteRepo
		d.Logger.Info("sqlite mirror enabled", slog.String("path", path))
	}

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes the loader and its collaborators
func (d *Dependencies) initServices() error {
	d.Metrics = metrics.New()

	d.LoaderService = service.NewLoaderService(
		d.ExtractRepo,
		classifier.New(nil),
		normalizer.NewHeaderParser(),
		service.Options{
			Identifiers: pricing.IdentifierColumns{
				ProductID:   d.Config.Columns.ProductID,
				ProductName: d.Config.Columns.ProductName,
				PackSize:    d.Config.Columns.PackSize,
			},
			BatchPrefix: d.Config.Run.BatchPrefix,
			Currency:    d.Config.Run.Currency,
		},
		d.Logger,
	).WithMetrics(d.Metrics, d.Config.Outputs.MetricsTextfile)

	// Optional relational copy of every extract
	if d.SQLiteRepo != nil {
		d.LoaderService.WithMirror(d.SQLiteRepo)
	}

	d.Scheduler = cron.NewScheduler(d.RunLoader, 0, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// Inputs returns the files one run reads.
func (d *Dependencies) Inputs() pricing.ManifestInputs {
	return pricing.ManifestInputs{
		Excel:   d.Config.Inputs.PriceWorkbook,
		Sheet:   d.Config.Inputs.SheetName,
		Mapping: d.Config.Inputs.ColumnMappingCSV,
		Alias:   d.Config.Inputs.SupplierAliasCSV,
	}
}

// RunLoader runs the loader once and logs the artifacts left in the output
// directory.
func (d *Dependencies) RunLoader(ctx context.Context) error {
	if _, err := d.LoaderService.RunFiles(ctx, d.Inputs()); err != nil {
		return err
	}

	files, err := d.OutputStorage.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list outputs: %w", err)
	}
	for _, f := range files {
		d.Logger.Debug("artifact written",
			slog.String("name", f.Name),
			slog.Int64("size", f.Size),
			slog.Time("modified_at", f.CreatedAt),
		)
	}
	d.Logger.Info("outputs available", slog.Int("artifacts", len(files)))
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.SQLiteRepo != nil {
		if err := d.SQLiteRepo.Close(); err != nil {
			d.Logger.Warn("failed to close sqlite mirror", slog.Any("error", err))
		}
	}
	d.Logger.Info("cleanup completed")
}
