package main

import (
	"log"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/joho/godotenv"

	"github.com/javajack/xltables"
)

// config holds settings shared by every subcommand. Values come from a .env
// file, then the environment, then flags.
type config struct {
	Workbook    string
	OutputDir   string
	Catalog     string
	DSN         string
	Concurrency int
	Recalculate bool
	Verbosity   int
}

func loadConfig() *config {
	// A missing .env file is normal.
	_ = godotenv.Load()

	return &config{
		Workbook:    getEnvOrDefault("XLTABLES_WORKBOOK", "reference/directory/Base Pricing27.1_Pro_SMART_RCGV.xlsx"),
		OutputDir:   getEnvOrDefault("XLTABLES_OUTPUT_DIR", "src/data/lookups"),
		Catalog:     getEnvOrDefault("XLTABLES_CATALOG", ""),
		DSN:         getEnvOrDefault("XLTABLES_DATABASE_URL", ""),
		Concurrency: getEnvIntOrDefault("XLTABLES_CONCURRENCY", 4),
		Recalculate: getEnvOrDefault("XLTABLES_RECALCULATE", "") == "true",
		Verbosity:   verbosityFromLevel(os.Getenv("LOG_LEVEL")),
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func verbosityFromLevel(level string) int {
	switch level {
	case "DEBUG":
		return 1
	case "TRACE":
		return 2
	default:
		return 0
	}
}

// catalog returns the configured catalog or the built-in one.
func (c *config) catalog() (*xltables.Catalog, error) {
	if c.Catalog == "" {
		return xltables.DefaultCatalog(), nil
	}
	return xltables.LoadCatalog(c.Catalog)
}

func (c *config) logger() logr.Logger {
	stdr.SetVerbosity(c.Verbosity)
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags))
}

// workbookOptions are the options every subcommand opening the workbook uses.
func (c *config) workbookOptions() []xltables.Option {
	return []xltables.Option{
		xltables.WithRecalculate(c.Recalculate),
		xltables.WithLogger(c.logger()),
	}
}

func (c *config) options(cat *xltables.Catalog) []xltables.Option {
	return append(c.workbookOptions(),
		xltables.WithCatalog(cat),
		xltables.WithConcurrency(c.Concurrency),
	)
}
