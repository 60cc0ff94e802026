package xltables

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// TableResult is the outcome of extracting one table. Err is set when the
// table could not be read; Records is then empty.
type TableResult struct {
	Spec    TableSpec
	Records []Record
	Err     error
}

// Result holds the outcome of every table, in catalog order.
type Result struct {
	Tables []TableResult
}

// Table returns the result for the named table.
func (r *Result) Table(name string) (TableResult, bool) {
	for _, t := range r.Tables {
		if t.Spec.Name == name {
			return t, true
		}
	}
	return TableResult{}, false
}

// Failed returns the tables that could not be extracted.
func (r *Result) Failed() []TableResult {
	var out []TableResult
	for _, t := range r.Tables {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// Total returns the number of records across all tables.
func (r *Result) Total() int {
	n := 0
	for _, t := range r.Tables {
		n += len(t.Records)
	}
	return n
}

// Extractor pulls every table of a catalog out of a workbook.
type Extractor struct {
	opts *Options
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	return &Extractor{opts: buildOptions(opts)}
}

// Extract opens the workbook at path and extracts the catalog tables.
func Extract(ctx context.Context, path string, opts ...Option) (*Result, error) {
	allOpts := append([]Option{WithWorkbook(path)}, opts...)
	return NewExtractor(allOpts...).Run(ctx)
}

// Run opens the workbook and extracts each table independently. A table
// that fails (for example because its sheet is missing) is reported in the
// result and does not stop the others. The error return is reserved for a
// workbook that cannot be opened or a cancelled context.
func (e *Extractor) Run(ctx context.Context) (*Result, error) {
	wb, err := e.openWorkbook()
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return e.RunWorkbook(ctx, wb)
}

// RunWorkbook extracts the catalog tables from an open workbook.
func (e *Extractor) RunWorkbook(ctx context.Context, wb *Workbook) (*Result, error) {
	log := e.opts.logger
	catalog := e.opts.catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	// Sheets are loaded up front; extraction then only reads immutable snapshots.
	sheets := make(map[string]*Sheet)
	sheetErrs := make(map[string]error)
	for _, name := range catalog.Sheets() {
		s, err := wb.Sheet(name)
		if err != nil {
			log.Error(err, "sheet unavailable", "sheet", name)
			sheetErrs[name] = err
			continue
		}
		sheets[name] = s
	}

	res := &Result{Tables: make([]TableResult, len(catalog.Tables))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.concurrency)

	for i, spec := range catalog.Tables {
		i, spec := i, spec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tr := TableResult{Spec: spec, Records: []Record{}}
			if err, ok := sheetErrs[spec.Sheet]; ok {
				tr.Err = fmt.Errorf("table %s: %w", spec.Name, err)
				res.Tables[i] = tr
				return nil
			}

			records, err := spec.Extract(sheets[spec.Sheet])
			if err != nil {
				tr.Err = err
				log.Error(err, "table not extracted", "table", spec.Name)
			} else {
				tr.Records = records
				log.Info("table extracted", "table", spec.Name, "source", spec.Source(), "records", len(records))
			}
			res.Tables[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// openWorkbook opens the workbook from file path or reader.
func (e *Extractor) openWorkbook() (*Workbook, error) {
	if e.opts.workbookReader != nil {
		return OpenWorkbookReader(e.opts.workbookReader, WithRecalculate(e.opts.recalculate), WithLogger(e.opts.logger))
	}
	if e.opts.workbookPath != "" {
		return OpenWorkbook(e.opts.workbookPath, WithRecalculate(e.opts.recalculate), WithLogger(e.opts.logger))
	}
	return nil, fmt.Errorf("no workbook specified: use WithWorkbook or WithWorkbookReader")
}
