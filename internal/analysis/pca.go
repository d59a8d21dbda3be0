package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"cleanviz/internal/dataset"
)

// PCAComponents is the number of projected components.
const PCAComponents = 2

// PCAResult is a two-component projection of the complete numeric rows.
type PCAResult struct {
	Columns []string
	// Rows are the source row indices that were complete and projected.
	Rows              []int
	PC1               []float64
	PC2               []float64
	ExplainedVariance [PCAComponents]float64
}

// PCA standardizes the numeric columns of t (zero mean, unit population
// variance), drops rows with any missing or infinite value and projects onto the first
// two principal components. It returns ErrInsufficientData when fewer than
// two numeric columns or fewer than two complete rows remain.
func PCA(t *dataset.Table) (*PCAResult, error) {
	names := t.NumericColumns()
	if len(names) < PCAComponents {
		return nil, fmt.Errorf("%w: PCA needs at least %d numeric columns, found %d", ErrInsufficientData, PCAComponents, len(names))
	}

	cols := make([][]float64, len(names))
	for j, name := range names {
		c, _ := t.Column(name)
		cols[j] = c.Floats()
	}

	var rows []int
	for i := 0; i < t.NumRows(); i++ {
		complete := true
		for _, col := range cols {
			if math.IsNaN(col[i]) || math.IsInf(col[i], 0) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, i)
		}
	}
	if len(rows) < PCAComponents {
		return nil, fmt.Errorf("%w: PCA needs at least %d complete rows, found %d", ErrInsufficientData, PCAComponents, len(rows))
	}

	n, d := len(rows), len(names)
	z := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := range names {
		for i, r := range rows {
			col[i] = cols[j][r]
		}
		standardize(col)
		z.SetCol(j, col)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(z, nil); !ok {
		return nil, ErrDecomposition
	}
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	basis := mat.DenseCopyOf(vecs.Slice(0, d, 0, PCAComponents))
	alignSigns(basis)

	var proj mat.Dense
	proj.Mul(z, basis)

	res := &PCAResult{
		Columns: names,
		Rows:    rows,
		PC1:     mat.Col(nil, 0, &proj),
		PC2:     mat.Col(nil, 1, &proj),
	}
	if total := floats.Sum(vars); total > 0 {
		for k := 0; k < PCAComponents; k++ {
			res.ExplainedVariance[k] = math.Max(0, math.Min(1, vars[k]/total))
		}
	}
	return res, nil
}

// standardize centers values in place and scales them to unit population
// variance. Constant columns are only centered.
func standardize(values []float64) {
	// z-scores ignore scale; working in [-1, 1] keeps the sums finite
	if m := floats.Norm(values, math.Inf(1)); m > 0 {
		for i := range values {
			values[i] /= m
		}
	}
	mean := stat.Mean(values, nil)
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(ss / float64(len(values)))
	if sd == 0 {
		sd = 1
	}
	for i, v := range values {
		values[i] = (v - mean) / sd
	}
}

// alignSigns flips each component so its largest-magnitude loading is
// positive, making the projection deterministic.
func alignSigns(basis *mat.Dense) {
	r, c := basis.Dims()
	for k := 0; k < c; k++ {
		maxAbs, sign := 0.0, 1.0
		for j := 0; j < r; j++ {
			if v := basis.At(j, k); math.Abs(v) > maxAbs {
				maxAbs = math.Abs(v)
				sign = math.Copysign(1, v)
			}
		}
		if sign < 0 {
			for j := 0; j < r; j++ {
				basis.Set(j, k, -basis.At(j, k))
			}
		}
	}
}
