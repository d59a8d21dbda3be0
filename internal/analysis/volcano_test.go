package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSignificant(t *testing.T) {
	tests := []struct {
		lfc, p float64
		want   bool
	}{
		{2, 0.01, true},
		{0.5, 0.01, false},
		{2, 0.2, false},
		{-2, 0.01, true},
		{1, 0.01, false},
		{2, 0.05, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSignificant(tt.lfc, tt.p), "lfc=%v p=%v", tt.lfc, tt.p)
	}
}

func TestVolcano(t *testing.T) {
	tbl := parse(t, "gene,log2FoldChange,p-value\n"+
		"A,2,0.01\n"+
		"B,0.5,0.01\n"+
		"C,2,0.2\n"+
		"D,-3,0.001\n"+
		"E,,0.5\n"+
		"F,4,0\n")

	res, err := Volcano(tbl)
	require.NoError(t, err)

	require.Len(t, res.Points, 4)
	assert.Equal(t, 2, res.Skipped, "missing value and p=0")
	assert.Equal(t, 2, res.Significant)

	assert.True(t, res.Points[0].Significant)
	assert.False(t, res.Points[1].Significant)
	assert.False(t, res.Points[2].Significant)
	assert.InDelta(t, 2.0, res.Points[0].NegLog10P, 1e-12)
	assert.InDelta(t, 3.0, res.Points[3].NegLog10P, 1e-12)
	assert.Equal(t, 3, res.Points[3].Row)
	for _, p := range res.Points {
		assert.False(t, math.IsInf(p.NegLog10P, 0))
	}
}

func TestVolcano_MissingColumns(t *testing.T) {
	tests := []string{
		"gene,log2FoldChange\nA,2\n",
		"gene,p-value\nA,0.01\n",
		"gene,log2foldchange,pvalue\nA,2,0.01\n",
	}
	for _, content := range tests {
		_, err := Volcano(parse(t, content))
		assert.ErrorIs(t, err, ErrMissingVolcanoColumns)
	}
}

func TestVolcano_NonNumeric(t *testing.T) {
	_, err := Volcano(parse(t, "log2FoldChange,p-value\nup,0.01\n"))
	assert.ErrorIs(t, err, ErrNotNumeric)
}
