package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/xltables"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "lookups.db")
	s, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(factor xltables.Float) *xltables.Result {
	return &xltables.Result{Tables: []xltables.TableResult{
		{
			Spec: xltables.TableSpec{Name: "sqft", File: "sqft-factors.json", Kind: xltables.TablePairs,
				Sheet: "VLOOKUP Tables", KeyColumn: "G", ValueColumn: "H", StartRow: 4},
			Records: []xltables.Record{
				{{Name: "squareFeet", Value: int64(0)}, {Name: "factor", Value: factor}},
				{{Name: "squareFeet", Value: "55000+"}, {Name: "factor", Value: xltables.Float(1.3)}},
			},
		},
		{
			Spec:    xltables.TableSpec{Name: "rates", File: "rates.json", Sheet: "Rates"},
			Records: []xltables.Record{},
			Err:     &xltables.SheetError{Sheet: "Rates"},
		},
	}}
}

func TestStore_LoadAndRead(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Load(ctx, testResult(1)))

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1, "failed tables are not stored")
	assert.Equal(t, "sqft", tables[0].Name)
	assert.Equal(t, "VLOOKUP Tables!G4:H", tables[0].Source)
	assert.Equal(t, 2, tables[0].RecordCount)
	assert.NotEmpty(t, tables[0].ID)

	records, err := s.Records(ctx, "sqft")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"squareFeet":0,"factor":1.0}`, string(records[0]))
	assert.Equal(t, `{"squareFeet":"55000+","factor":1.3}`, string(records[1]))

	records, err = s.Records(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_ReloadReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Load(ctx, testResult(1)))
	first, err := s.Tables(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Load(ctx, testResult(1.05)))
	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.NotEqual(t, first[0].ID, tables[0].ID)

	records, err := s.Records(ctx, "sqft")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `{"squareFeet":0,"factor":1.05}`, string(records[0]))
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn, driver, source string
	}{
		{"sqlite:///tmp/lookups.db", "sqlite", "/tmp/lookups.db"},
		{"sqlite://lookups.db", "sqlite", "lookups.db"},
		{"postgres://u:p@localhost/pricing?sslmode=disable", "postgres", "postgres://u:p@localhost/pricing?sslmode=disable"},
		{"postgresql://u:p@localhost/pricing", "postgres", "postgres://u:p@localhost/pricing"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, source, err := parseDSN(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.source, source)
		})
	}

	for _, dsn := range []string{"mysql://localhost/db", "sqlite://", "::bad"} {
		_, _, err := parseDSN(dsn)
		assert.Error(t, err, dsn)
	}
}
