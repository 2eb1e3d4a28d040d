// Package config loads the loader configuration from a YAML file, with
// environment variables (and an optional .env file) taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingKey    = errors.New("missing config key")
	ErrInputNotFound = errors.New("required input not found")
)

// Config holds all application configuration
type Config struct {
	Inputs        InputsConfig        `yaml:"inputs"`
	Outputs       OutputsConfig       `yaml:"outputs"`
	Columns       ColumnsConfig       `yaml:"columns"`
	Run           RunConfig           `yaml:"run"`
	Observability ObservabilityConfig `yaml:"-"`
}

type InputsConfig struct {
	PriceWorkbook    string `yaml:"price_workbook"`
	SheetName        string `yaml:"sheet_name"`
	ColumnMappingCSV string `yaml:"column_mapping_csv"`
	SupplierAliasCSV string `yaml:"supplier_alias_csv"`
}

type OutputsConfig struct {
	Dir             string `yaml:"dir"`
	SQLitePath      string `yaml:"sqlite_path"`
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// ColumnsConfig names the identifier headers in the price table.
type ColumnsConfig struct {
	ProductID   string `yaml:"product_id"`
	ProductName string `yaml:"product_name"`
	PackSize    string `yaml:"pack_size"`
}

type RunConfig struct {
	BatchPrefix string `yaml:"batch_prefix"`
	Currency    string `yaml:"currency"`
	Schedule    string `yaml:"schedule"` // cron expression; empty runs once
}

type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

// Load reads path, applies defaults and environment overrides, and validates
// the result. A .env file in the working directory is loaded first when
// present; variables already set in the environment win over it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML and fills defaults. It does not read the environment.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Columns.ProductID == "" {
		c.Columns.ProductID = "MediCare PIPCode"
	}
	if c.Columns.ProductName == "" {
		c.Columns.ProductName = "Product Name"
	}
	if c.Columns.PackSize == "" {
		c.Columns.PackSize = "Pack Size"
	}
	if c.Run.BatchPrefix == "" {
		c.Run.BatchPrefix = "initial_migration_"
	}
	if c.Run.Currency == "" {
		c.Run.Currency = "GBP"
	}
}

func (c *Config) applyEnv() {
	c.Outputs.Dir = getEnv("LOADER_OUTPUT_DIR", c.Outputs.Dir)
	c.Outputs.SQLitePath = getEnv("LOADER_SQLITE_PATH", c.Outputs.SQLitePath)
	c.Outputs.MetricsTextfile = getEnv("LOADER_METRICS_TEXTFILE", c.Outputs.MetricsTextfile)
	c.Inputs.SheetName = getEnv("LOADER_SHEET_NAME", c.Inputs.SheetName)
	c.Run.Schedule = getEnv("LOADER_SCHEDULE", c.Run.Schedule)
	c.Run.BatchPrefix = getEnv("LOADER_BATCH_PREFIX", c.Run.BatchPrefix)
	c.Observability = ObservabilityConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks that the required keys are set and the input files exist.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"inputs.price_workbook", c.Inputs.PriceWorkbook},
		{"inputs.sheet_name", c.Inputs.SheetName},
		{"inputs.column_mapping_csv", c.Inputs.ColumnMappingCSV},
		{"inputs.supplier_alias_csv", c.Inputs.SupplierAliasCSV},
		{"outputs.dir", c.Outputs.Dir},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}

	inputs := []struct {
		key  string
		path string
	}{
		{"price_workbook", c.Inputs.PriceWorkbook},
		{"column_mapping_csv", c.Inputs.ColumnMappingCSV},
		{"supplier_alias_csv", c.Inputs.SupplierAliasCSV},
	}
	for _, in := range inputs {
		if _, err := os.Stat(in.path); err != nil {
			return fmt.Errorf("%w: %s at %s", ErrInputNotFound, in.key, in.path)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
