package charts

import (
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"

	"cleanviz/internal/analysis"
)

// Scatter plots y against x for every row where both values are present.
func (r *Renderer) Scatter(xName, yName string, xs, ys []float64) ([]byte, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("scatter needs equal length columns, got %d and %d", len(xs), len(ys))
	}
	xs, ys = pairs(xs, ys)
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: no rows with both %q and %q", ErrNoPoints, xName, yName)
	}
	xRange, yRange, err := axisRanges(xs, ys)
	if err != nil {
		return nil, err
	}
	xs, ys = ensureTwo(xs, ys)

	return r.render(chart.Chart{
		Title: fmt.Sprintf("%s vs %s", yName, xName),
		XAxis: chart.XAxis{Name: xName, Range: xRange},
		YAxis: chart.YAxis{Name: yName, Range: yRange},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style:   pointStyle(colorPrimary),
			},
		},
	})
}

// PCA plots the two-component projection with the explained variance of
// each component in its axis label.
func (r *Renderer) PCA(res *analysis.PCAResult) ([]byte, error) {
	if res == nil || len(res.PC1) == 0 {
		return nil, fmt.Errorf("%w: empty PCA projection", ErrNoPoints)
	}
	xs, ys := pairs(res.PC1, res.PC2)
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: empty PCA projection", ErrNoPoints)
	}
	xRange, yRange, err := axisRanges(xs, ys)
	if err != nil {
		return nil, err
	}
	xs, ys = ensureTwo(xs, ys)

	return r.render(chart.Chart{
		Title: "PCA (2 Components)",
		XAxis: chart.XAxis{
			Name:  fmt.Sprintf("PC1 (%.1f%%)", res.ExplainedVariance[0]*100),
			Range: xRange,
		},
		YAxis: chart.YAxis{
			Name:  fmt.Sprintf("PC2 (%.1f%%)", res.ExplainedVariance[1]*100),
			Range: yRange,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style:   pointStyle(colorPrimary),
			},
		},
	})
}

func axisRanges(xs, ys []float64) (*chart.ContinuousRange, *chart.ContinuousRange, error) {
	xRange, err := paddedRange(xs)
	if err != nil {
		return nil, nil, err
	}
	yRange, err := paddedRange(ys)
	if err != nil {
		return nil, nil, err
	}
	return xRange, yRange, nil
}
