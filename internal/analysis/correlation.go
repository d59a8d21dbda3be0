package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"cleanviz/internal/dataset"
)

// CorrelationMatrix is a symmetric Pearson matrix over Columns.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// Correlation computes pairwise Pearson correlation between every numeric
// column using only rows where both values are present and finite. Pairs with fewer
// than two observations or zero variance are NaN.
func Correlation(t *dataset.Table) (CorrelationMatrix, error) {
	names := t.NumericColumns()
	if len(names) == 0 {
		return CorrelationMatrix{}, ErrNoNumericColumns
	}

	cols := make([][]float64, len(names))
	for i, name := range names {
		c, _ := t.Column(name)
		cols[i] = c.Floats()
	}

	m := CorrelationMatrix{Columns: names, Values: make([][]float64, len(names))}
	for i := range names {
		m.Values[i] = make([]float64, len(names))
	}
	for i := range names {
		for j := i; j < len(names); j++ {
			r := pearson(cols[i], cols[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsInf(x[i], 0) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	return math.Max(-1, math.Min(1, r))
}
