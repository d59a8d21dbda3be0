package analysis

import (
	"fmt"
	"math"

	"cleanviz/internal/dataset"
)

// Volcano column names and significance thresholds.
const (
	Log2FoldChangeColumn = "log2FoldChange"
	PValueColumn         = "p-value"

	FoldChangeThreshold = 1.0
	PValueThreshold     = 0.05
)

// IsSignificant reports |log2FC| > 1 and p < 0.05.
func IsSignificant(log2FC, pValue float64) bool {
	return math.Abs(log2FC) > FoldChangeThreshold && pValue < PValueThreshold
}

// VolcanoPoint is one annotated row.
type VolcanoPoint struct {
	Row         int
	Log2FC      float64
	PValue      float64
	NegLog10P   float64
	Significant bool
}

// VolcanoResult holds the plottable points of a volcano analysis. Rows
// missing either value, or whose -log10(p) is not finite, are counted in
// Skipped.
type VolcanoResult struct {
	Points      []VolcanoPoint
	Significant int
	Skipped     int
}

// Volcano annotates every row of t using the log2FoldChange and p-value
// columns.
func Volcano(t *dataset.Table) (*VolcanoResult, error) {
	lfcCol, ok1 := t.Column(Log2FoldChangeColumn)
	pCol, ok2 := t.Column(PValueColumn)
	if !ok1 || !ok2 {
		return nil, ErrMissingVolcanoColumns
	}
	for _, c := range []*dataset.Column{lfcCol, pCol} {
		if !c.Kind.IsNumeric() {
			return nil, fmt.Errorf("%w: %s", ErrNotNumeric, c.Name)
		}
	}

	lfc, p := lfcCol.Floats(), pCol.Floats()
	res := &VolcanoResult{}
	for i := range lfc {
		if math.IsNaN(lfc[i]) || math.IsNaN(p[i]) {
			res.Skipped++
			continue
		}
		y := -math.Log10(p[i])
		if math.IsNaN(y) || math.IsInf(y, 0) {
			res.Skipped++
			continue
		}
		pt := VolcanoPoint{
			Row:         i,
			Log2FC:      lfc[i],
			PValue:      p[i],
			NegLog10P:   y,
			Significant: IsSignificant(lfc[i], p[i]),
		}
		if pt.Significant {
			res.Significant++
		}
		res.Points = append(res.Points, pt)
	}
	return res, nil
}
