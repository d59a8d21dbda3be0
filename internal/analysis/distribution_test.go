package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistogram(t *testing.T) {
	values := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 10}
	h := NewHistogram(values)

	require.NotEmpty(t, h.Counts)
	assert.Len(t, h.Edges, len(h.Counts)+1)
	assert.Equal(t, 1.0, h.Edges[0])
	assert.InDelta(t, 10.0, h.Edges[len(h.Edges)-1], 1e-9)

	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, len(values), total)
	assert.Greater(t, h.MaxCount(), 0)
}

func TestNewHistogram_Constant(t *testing.T) {
	h := NewHistogram([]float64{3, 3, 3})
	assert.Equal(t, []int{3}, h.Counts)
	assert.Equal(t, []float64{2.5, 3.5}, h.Edges)
}

func TestNewHistogram_ExtremeRange(t *testing.T) {
	h := NewHistogram([]float64{-1e308, 1e308, 0})

	require.NotEmpty(t, h.Counts)
	for _, e := range h.Edges {
		assert.False(t, math.IsInf(e, 0) || math.IsNaN(e), "edge %v", e)
	}
	assert.Equal(t, -1e308, h.Edges[0])
	assert.InEpsilon(t, 1e308, h.Edges[len(h.Edges)-1], 1e-9)
	assert.True(t, math.IsInf(h.BinWidth, 1) || h.BinWidth > 0)

	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, 3, total)
}

func TestNewHistogram_Empty(t *testing.T) {
	assert.Empty(t, NewHistogram(nil).Counts)
}

func TestKDE(t *testing.T) {
	values := []float64{-1, 0, 0, 1}
	xs := []float64{-10, 0, 10}
	d := KDE(values, xs)
	require.Len(t, d, 3)
	assert.Greater(t, d[1], d[0])
	assert.Greater(t, d[1], d[2])

	assert.Nil(t, KDE([]float64{1}, xs))
	assert.Nil(t, KDE([]float64{2, 2, 2}, xs))
}

func TestNewBoxStats(t *testing.T) {
	b := NewBoxStats([]float64{1, 2, 3, 4, 5, 6, 7, 8, 100})

	assert.Equal(t, 3.0, b.Q1)
	assert.Equal(t, 5.0, b.Median)
	assert.Equal(t, 7.0, b.Q3)
	assert.Equal(t, 1.0, b.LowerWhisker)
	assert.Equal(t, 8.0, b.UpperWhisker)
	assert.Equal(t, []float64{100}, b.Outliers)
}
