package xltables

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// WrittenFile describes one JSON document produced by WriteTables.
type WrittenFile struct {
	Table   string
	Path    string
	Records int
	Sample  Record // first record, nil for an empty table
}

// namedTables serializes tables as one object keyed by table name, in
// catalog order.
type namedTables []TableResult

func (n namedTables) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Spec.Name)
		if err != nil {
			return nil, err
		}
		records := t.Records
		if records == nil {
			records = []Record{}
		}
		val, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Spec.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteTables writes every successfully extracted table to its own file in
// dir, then the combined document. Tables that failed get no file of their
// own and appear as empty arrays in the combined document.
func WriteTables(dir string, res *Result) ([]WrittenFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %q: %w", dir, err)
	}

	var written []WrittenFile
	for _, t := range res.Tables {
		if t.Err != nil {
			continue
		}
		path := filepath.Join(dir, t.Spec.File)
		if err := writeJSON(path, t.Records); err != nil {
			return written, err
		}
		wf := WrittenFile{Table: t.Spec.Name, Path: path, Records: len(t.Records)}
		if len(t.Records) > 0 {
			wf.Sample = t.Records[0]
		}
		written = append(written, wf)
	}

	combined := filepath.Join(dir, CombinedFile)
	if err := writeJSON(combined, namedTables(res.Tables)); err != nil {
		return written, err
	}
	return written, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// WriteSummary prints the extraction summary for the written files.
func WriteSummary(w io.Writer, files []WrittenFile, res *Result) error {
	rule := strings.Repeat("=", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nEXTRACTION SUMMARY\n%s\n", rule, rule)
	for _, f := range files {
		fmt.Fprintf(&b, "\n%s:\n", filepath.Base(f.Path))
		fmt.Fprintf(&b, "  Location: %s\n", f.Path)
		fmt.Fprintf(&b, "  Records: %d\n", f.Records)
		if f.Sample != nil {
			sample, err := json.Marshal(f.Sample)
			if err != nil {
				return err
			}
			fmt.Fprintf(&b, "  Sample: %s\n", sample)
		}
	}
	for _, t := range res.Failed() {
		fmt.Fprintf(&b, "\n%s: FAILED\n  Error: %v\n", t.Spec.File, t.Err)
	}
	fmt.Fprintf(&b, "\n%s\n", rule)
	if len(res.Failed()) == 0 {
		b.WriteString("Extraction complete!\n")
	} else {
		fmt.Fprintf(&b, "Extraction finished with %d failed table(s)\n", len(res.Failed()))
	}
	fmt.Fprintf(&b, "%s\n", rule)
	_, err := io.WriteString(w, b.String())
	return err
}
