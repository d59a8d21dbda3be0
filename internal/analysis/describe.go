package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"cleanviz/internal/dataset"
)

// StatNames lists the summary rows in display order.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// ColumnStats is the descriptive summary of one numeric column. Undefined
// statistics are NaN.
type ColumnStats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// Values returns the statistics in StatNames order.
func (s ColumnStats) Values() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max}
}

// Describe summarises every numeric column of t in column order. A table
// without numeric columns yields an empty slice.
func Describe(t *dataset.Table) []ColumnStats {
	names := t.NumericColumns()
	out := make([]ColumnStats, 0, len(names))
	for _, name := range names {
		c, _ := t.Column(name)
		out = append(out, Summarize(name, c.Values()))
	}
	return out
}

// Summarize computes count, mean, sample std, min, quartiles and max.
func Summarize(name string, values []float64) ColumnStats {
	nan := math.NaN()
	s := ColumnStats{Column: name, Count: len(values), Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	if len(values) == 0 {
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = Quantile(sorted, 0.25)
	s.Q50 = Quantile(sorted, 0.50)
	s.Q75 = Quantile(sorted, 0.75)
	return s
}

// Quantile linearly interpolates between the closest ranks of sorted data.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
