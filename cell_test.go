package xltables

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want CellValue
	}{
		{"", Blank},
		{"  ", Blank},
		{"100000", Int(100000)},
		{"-3", Int(-3)},
		{"1.2", Number(1.2)},
		{"1.0", Number(1.0)},
		{"1E-3", Number(0.001)},
		{"55000+", Text("55000+")},
		{"6+", Text("6+")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.raw))
		})
	}
}

func TestCellValue_Coercions(t *testing.T) {
	assert.Equal(t, int64(100000), Int(100000).Natural())
	assert.Equal(t, Float(1.2), Number(1.2).Natural())
	assert.Equal(t, Float(3), Number(3.0).Natural())
	assert.Equal(t, "55000+", Text("55000+").Natural())
	assert.Nil(t, Blank.Natural())

	assert.Equal(t, Float(1), Int(1).Factor())
	assert.Equal(t, "n/a", Text("n/a").Factor())

	assert.Equal(t, int64(3), Number(3.0).Normalized())
	assert.Equal(t, Float(3.5), Number(3.5).Normalized())
	assert.Equal(t, Float(math.Inf(1)), Number(math.Inf(1)).Normalized())

	assert.Equal(t, int64(27), Number(27.5).Truncated())
	assert.Equal(t, "x", Text("x").Truncated())
	assert.Nil(t, Blank.Truncated())
}

func TestCellValue_String(t *testing.T) {
	assert.Equal(t, "100000", Int(100000).String())
	assert.Equal(t, "1.5", Number(1.5).String())
	assert.Equal(t, "2.0", Number(2).String())
	assert.Equal(t, "6+", Text("6+").String())
	assert.Equal(t, "", Blank.String())
	assert.Equal(t, "Number", CellNumber.String())
	assert.Equal(t, "Blank", CellBlank.String())
}

func TestFloat_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]any{Float(1), Float(1.2), Float(1.075), Float(-0.5), int64(3), "6+"})
	require.NoError(t, err)
	assert.Equal(t, `[1.0,1.2,1.075,-0.5,3,"6+"]`, string(data))

	_, err = json.Marshal(Float(math.NaN()))
	assert.Error(t, err)
}
