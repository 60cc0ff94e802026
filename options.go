package xltables

import (
	"io"

	"github.com/go-logr/logr"
)

// Options holds configuration for the Extractor and the workbook reader.
type Options struct {
	workbookPath   string
	workbookReader io.Reader
	catalog        *Catalog
	concurrency    int
	recalculate    bool
	previewRows    int
	logger         logr.Logger
}

func defaultOptions() *Options {
	return &Options{
		concurrency: 4,
		previewRows: 30,
		logger:      logr.Discard(),
	}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures the Extractor.
type Option func(*Options)

// WithWorkbook sets the workbook file path.
func WithWorkbook(path string) Option {
	return func(o *Options) { o.workbookPath = path }
}

// WithWorkbookReader sets the workbook as an io.Reader.
func WithWorkbookReader(r io.Reader) Option {
	return func(o *Options) { o.workbookReader = r }
}

// WithCatalog sets the tables to extract (default: DefaultCatalog).
func WithCatalog(c *Catalog) Option {
	return func(o *Options) { o.catalog = c }
}

// WithConcurrency bounds how many tables are extracted at once (default: 4).
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRecalculate evaluates formula cells that have no cached value instead
// of reading them as blank.
func WithRecalculate(recalc bool) Option {
	return func(o *Options) { o.recalculate = recalc }
}

// WithPreviewRows sets how many rows Describe prints per sheet (default: 30).
func WithPreviewRows(n int) Option {
	return func(o *Options) { o.previewRows = n }
}

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.logger = l }
}
